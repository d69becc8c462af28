// Package format describes texel formats by their DXGI numbering.
//
// Formats carry the block geometry needed to size a mip level: block
// compressed formats use 4x4 blocks, packed 4:2:2 formats use 2x1 blocks,
// and every other format is a 1x1 block of a whole number of bytes.
package format

import (
	"strconv"

	"github.com/meigma/asset/internal/sizing"
)

// Format identifies a texel format using DXGI_FORMAT values.
type Format uint32

// Formats recognized by this package.
const (
	Undefined Format = 0

	R32G32B32A32Typeless Format = 1
	R32G32B32A32Float    Format = 2
	R32G32B32A32Uint     Format = 3
	R32G32B32A32Sint     Format = 4
	R32G32B32Typeless    Format = 5
	R32G32B32Float       Format = 6
	R32G32B32Uint        Format = 7
	R32G32B32Sint        Format = 8
	R16G16B16A16Typeless Format = 9
	R16G16B16A16Float    Format = 10
	R16G16B16A16Unorm    Format = 11
	R16G16B16A16Uint     Format = 12
	R16G16B16A16Snorm    Format = 13
	R16G16B16A16Sint     Format = 14
	R32G32Typeless       Format = 15
	R32G32Float          Format = 16
	R32G32Uint           Format = 17
	R32G32Sint           Format = 18
	R10G10B10A2Typeless  Format = 23
	R10G10B10A2Unorm     Format = 24
	R10G10B10A2Uint      Format = 25
	R11G11B10Float       Format = 26
	R8G8B8A8Typeless     Format = 27
	R8G8B8A8Unorm        Format = 28
	R8G8B8A8UnormSRGB    Format = 29
	R8G8B8A8Uint         Format = 30
	R8G8B8A8Snorm        Format = 31
	R8G8B8A8Sint         Format = 32
	R16G16Typeless       Format = 33
	R16G16Float          Format = 34
	R16G16Unorm          Format = 35
	R16G16Uint           Format = 36
	R16G16Snorm          Format = 37
	R16G16Sint           Format = 38
	R32Typeless          Format = 39
	D32Float             Format = 40
	R32Float             Format = 41
	R32Uint              Format = 42
	R32Sint              Format = 43
	R8G8Typeless         Format = 48
	R8G8Unorm            Format = 49
	R8G8Uint             Format = 50
	R8G8Snorm            Format = 51
	R8G8Sint             Format = 52
	R16Typeless          Format = 53
	R16Float             Format = 54
	D16Unorm             Format = 55
	R16Unorm             Format = 56
	R16Uint              Format = 57
	R16Snorm             Format = 58
	R16Sint              Format = 59
	R8Typeless           Format = 60
	R8Unorm              Format = 61
	R8Uint               Format = 62
	R8Snorm              Format = 63
	R8Sint               Format = 64
	A8Unorm              Format = 65
	R9G9B9E5SharedExp    Format = 67
	R8G8B8G8Unorm        Format = 68
	G8R8G8B8Unorm        Format = 69
	BC1Typeless          Format = 70
	BC1Unorm             Format = 71
	BC1UnormSRGB         Format = 72
	BC2Typeless          Format = 73
	BC2Unorm             Format = 74
	BC2UnormSRGB         Format = 75
	BC3Typeless          Format = 76
	BC3Unorm             Format = 77
	BC3UnormSRGB         Format = 78
	BC4Typeless          Format = 79
	BC4Unorm             Format = 80
	BC4Snorm             Format = 81
	BC5Typeless          Format = 82
	BC5Unorm             Format = 83
	BC5Snorm             Format = 84
	B5G6R5Unorm          Format = 85
	B5G5R5A1Unorm        Format = 86
	B8G8R8A8Unorm        Format = 87
	B8G8R8X8Unorm        Format = 88
	B8G8R8A8Typeless     Format = 90
	B8G8R8A8UnormSRGB    Format = 91
	B8G8R8X8Typeless     Format = 92
	B8G8R8X8UnormSRGB    Format = 93
	BC6HTypeless         Format = 94
	BC6HUF16             Format = 95
	BC6HSF16             Format = 96
	BC7Typeless          Format = 97
	BC7Unorm             Format = 98
	BC7UnormSRGB         Format = 99
	B4G4R4A4Unorm        Format = 115
)

// Block is the storage geometry of a format: Bytes bytes hold a
// Width x Height texel block.
type Block struct {
	Width  uint32
	Height uint32
	Bytes  uint32
}

type formatInfo struct {
	name  string
	block Block
}

func texel(name string, bits uint32) formatInfo {
	return formatInfo{name: name, block: Block{Width: 1, Height: 1, Bytes: bits / 8}}
}

func compressed(name string, bytes uint32) formatInfo {
	return formatInfo{name: name, block: Block{Width: 4, Height: 4, Bytes: bytes}}
}

var formats = map[Format]formatInfo{
	R32G32B32A32Typeless: texel("R32G32B32A32_TYPELESS", 128),
	R32G32B32A32Float:    texel("R32G32B32A32_FLOAT", 128),
	R32G32B32A32Uint:     texel("R32G32B32A32_UINT", 128),
	R32G32B32A32Sint:     texel("R32G32B32A32_SINT", 128),
	R32G32B32Typeless:    texel("R32G32B32_TYPELESS", 96),
	R32G32B32Float:       texel("R32G32B32_FLOAT", 96),
	R32G32B32Uint:        texel("R32G32B32_UINT", 96),
	R32G32B32Sint:        texel("R32G32B32_SINT", 96),
	R16G16B16A16Typeless: texel("R16G16B16A16_TYPELESS", 64),
	R16G16B16A16Float:    texel("R16G16B16A16_FLOAT", 64),
	R16G16B16A16Unorm:    texel("R16G16B16A16_UNORM", 64),
	R16G16B16A16Uint:     texel("R16G16B16A16_UINT", 64),
	R16G16B16A16Snorm:    texel("R16G16B16A16_SNORM", 64),
	R16G16B16A16Sint:     texel("R16G16B16A16_SINT", 64),
	R32G32Typeless:       texel("R32G32_TYPELESS", 64),
	R32G32Float:          texel("R32G32_FLOAT", 64),
	R32G32Uint:           texel("R32G32_UINT", 64),
	R32G32Sint:           texel("R32G32_SINT", 64),
	R10G10B10A2Typeless:  texel("R10G10B10A2_TYPELESS", 32),
	R10G10B10A2Unorm:     texel("R10G10B10A2_UNORM", 32),
	R10G10B10A2Uint:      texel("R10G10B10A2_UINT", 32),
	R11G11B10Float:       texel("R11G11B10_FLOAT", 32),
	R8G8B8A8Typeless:     texel("R8G8B8A8_TYPELESS", 32),
	R8G8B8A8Unorm:        texel("R8G8B8A8_UNORM", 32),
	R8G8B8A8UnormSRGB:    texel("R8G8B8A8_UNORM_SRGB", 32),
	R8G8B8A8Uint:         texel("R8G8B8A8_UINT", 32),
	R8G8B8A8Snorm:        texel("R8G8B8A8_SNORM", 32),
	R8G8B8A8Sint:         texel("R8G8B8A8_SINT", 32),
	R16G16Typeless:       texel("R16G16_TYPELESS", 32),
	R16G16Float:          texel("R16G16_FLOAT", 32),
	R16G16Unorm:          texel("R16G16_UNORM", 32),
	R16G16Uint:           texel("R16G16_UINT", 32),
	R16G16Snorm:          texel("R16G16_SNORM", 32),
	R16G16Sint:           texel("R16G16_SINT", 32),
	R32Typeless:          texel("R32_TYPELESS", 32),
	D32Float:             texel("D32_FLOAT", 32),
	R32Float:             texel("R32_FLOAT", 32),
	R32Uint:              texel("R32_UINT", 32),
	R32Sint:              texel("R32_SINT", 32),
	R8G8Typeless:         texel("R8G8_TYPELESS", 16),
	R8G8Unorm:            texel("R8G8_UNORM", 16),
	R8G8Uint:             texel("R8G8_UINT", 16),
	R8G8Snorm:            texel("R8G8_SNORM", 16),
	R8G8Sint:             texel("R8G8_SINT", 16),
	R16Typeless:          texel("R16_TYPELESS", 16),
	R16Float:             texel("R16_FLOAT", 16),
	D16Unorm:             texel("D16_UNORM", 16),
	R16Unorm:             texel("R16_UNORM", 16),
	R16Uint:              texel("R16_UINT", 16),
	R16Snorm:             texel("R16_SNORM", 16),
	R16Sint:              texel("R16_SINT", 16),
	R8Typeless:           texel("R8_TYPELESS", 8),
	R8Unorm:              texel("R8_UNORM", 8),
	R8Uint:               texel("R8_UINT", 8),
	R8Snorm:              texel("R8_SNORM", 8),
	R8Sint:               texel("R8_SINT", 8),
	A8Unorm:              texel("A8_UNORM", 8),
	R9G9B9E5SharedExp:    texel("R9G9B9E5_SHAREDEXP", 32),
	R8G8B8G8Unorm:        {name: "R8G8_B8G8_UNORM", block: Block{Width: 2, Height: 1, Bytes: 4}},
	G8R8G8B8Unorm:        {name: "G8R8_G8B8_UNORM", block: Block{Width: 2, Height: 1, Bytes: 4}},
	BC1Typeless:          compressed("BC1_TYPELESS", 8),
	BC1Unorm:             compressed("BC1_UNORM", 8),
	BC1UnormSRGB:         compressed("BC1_UNORM_SRGB", 8),
	BC2Typeless:          compressed("BC2_TYPELESS", 16),
	BC2Unorm:             compressed("BC2_UNORM", 16),
	BC2UnormSRGB:         compressed("BC2_UNORM_SRGB", 16),
	BC3Typeless:          compressed("BC3_TYPELESS", 16),
	BC3Unorm:             compressed("BC3_UNORM", 16),
	BC3UnormSRGB:         compressed("BC3_UNORM_SRGB", 16),
	BC4Typeless:          compressed("BC4_TYPELESS", 8),
	BC4Unorm:             compressed("BC4_UNORM", 8),
	BC4Snorm:             compressed("BC4_SNORM", 8),
	BC5Typeless:          compressed("BC5_TYPELESS", 16),
	BC5Unorm:             compressed("BC5_UNORM", 16),
	BC5Snorm:             compressed("BC5_SNORM", 16),
	B5G6R5Unorm:          texel("B5G6R5_UNORM", 16),
	B5G5R5A1Unorm:        texel("B5G5R5A1_UNORM", 16),
	B8G8R8A8Unorm:        texel("B8G8R8A8_UNORM", 32),
	B8G8R8X8Unorm:        texel("B8G8R8X8_UNORM", 32),
	B8G8R8A8Typeless:     texel("B8G8R8A8_TYPELESS", 32),
	B8G8R8A8UnormSRGB:    texel("B8G8R8A8_UNORM_SRGB", 32),
	B8G8R8X8Typeless:     texel("B8G8R8X8_TYPELESS", 32),
	B8G8R8X8UnormSRGB:    texel("B8G8R8X8_UNORM_SRGB", 32),
	BC6HTypeless:         compressed("BC6H_TYPELESS", 16),
	BC6HUF16:             compressed("BC6H_UF16", 16),
	BC6HSF16:             compressed("BC6H_SF16", 16),
	BC7Typeless:          compressed("BC7_TYPELESS", 16),
	BC7Unorm:             compressed("BC7_UNORM", 16),
	BC7UnormSRGB:         compressed("BC7_UNORM_SRGB", 16),
	B4G4R4A4Unorm:        texel("B4G4R4A4_UNORM", 16),
}

// BlockOf returns the block geometry of f.
// ok is false for formats this package cannot size.
func BlockOf(f Format) (Block, bool) {
	info, ok := formats[f]
	if !ok {
		return Block{}, false
	}
	return info.block, true
}

// Known reports whether f can be sized.
func (f Format) Known() bool {
	_, ok := formats[f]
	return ok
}

// Compressed reports whether f is a 4x4 block compressed format.
func (f Format) Compressed() bool {
	info, ok := formats[f]
	return ok && info.block.Width == 4
}

// String returns the DXGI name without its DXGI_FORMAT_ prefix.
func (f Format) String() string {
	if f == Undefined {
		return "UNKNOWN"
	}
	if info, ok := formats[f]; ok {
		return info.name
	}
	return "Format(" + strconv.FormatUint(uint64(f), 10) + ")"
}

// LevelSize returns the byte size of a width x height x depth image in
// format f, rounding each dimension up to whole blocks.
// ok is false for unknown formats and for sizes that overflow uint64.
func LevelSize(f Format, width, height, depth uint32) (uint64, bool) {
	block, ok := BlockOf(f)
	if !ok {
		return 0, false
	}
	wide := max(1, (uint64(width)+uint64(block.Width)-1)/uint64(block.Width))
	high := max(1, (uint64(height)+uint64(block.Height)-1)/uint64(block.Height))
	size, ok := sizing.MulUint64(wide, high)
	if !ok {
		return 0, false
	}
	if size, ok = sizing.MulUint64(size, uint64(max(depth, 1))); !ok {
		return 0, false
	}
	return sizing.MulUint64(size, uint64(block.Bytes))
}
