// Package dds parses the headers of DirectDraw Surface files and computes
// where each (layer, face, level) image lives inside the file.
//
// Only headers are read; pixel data is never touched. All fields are
// little-endian.
package dds

import (
	"bytes"
	"encoding/binary"
)

// Sizes of the fixed parts of a DDS file.
const (
	MagicSize      = 4
	HeaderSize     = 124
	HeaderDX10Size = 20

	// MaxLevels is the largest mip count accepted by Parse.
	MaxLevels = 16
)

// Magic is the signature at the start of every DDS file.
var Magic = [MagicSize]byte{'D', 'D', 'S', ' '}

// Header flags (Header.Flags).
const (
	FlagCaps        uint32 = 0x1
	FlagHeight      uint32 = 0x2
	FlagWidth       uint32 = 0x4
	FlagPitch       uint32 = 0x8
	FlagPixelFormat uint32 = 0x1000
	FlagMipMapCount uint32 = 0x20000
	FlagLinearSize  uint32 = 0x80000
	FlagDepth       uint32 = 0x800000
)

// Pixel format flags (PixelFormat.Flags).
const (
	PixelAlphaPixels uint32 = 0x1
	PixelAlpha       uint32 = 0x2
	PixelFourCC      uint32 = 0x4
	PixelRGB         uint32 = 0x40
	PixelLuminance   uint32 = 0x20000
)

// Surface capability flags (Header.Caps and Header.Caps2).
const (
	CapsComplex uint32 = 0x8
	CapsTexture uint32 = 0x1000
	CapsMipMap  uint32 = 0x400000

	Caps2Cubemap   uint32 = 0x200
	Caps2PositiveX uint32 = 0x400
	Caps2NegativeX uint32 = 0x800
	Caps2PositiveY uint32 = 0x1000
	Caps2NegativeY uint32 = 0x2000
	Caps2PositiveZ uint32 = 0x4000
	Caps2NegativeZ uint32 = 0x8000
	Caps2AllFaces  uint32 = 0xFC00
	Caps2Volume    uint32 = 0x200000
)

// FourCC builds a four character code.
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// Four character codes that gate the extension header.
var (
	FourCCDX10 = FourCC('D', 'X', '1', '0')
	FourCCGLI1 = FourCC('G', 'L', 'I', '1')
)

// PixelFormat is the DDS_PIXELFORMAT block embedded in Header.
type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// Header is the fixed legacy DDS_HEADER that follows the magic.
type Header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// HeaderDX10 is the DDS_HEADER_DXT10 extension.
type HeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// HasExtension reports whether the legacy compression flags announce an
// extension header.
func (h *Header) HasExtension() bool {
	if h.PixelFormat.Flags&PixelFourCC == 0 {
		return false
	}
	return h.PixelFormat.FourCC == FourCCDX10 || h.PixelFormat.FourCC == FourCCGLI1
}

// Encode serializes the magic, h and, when non-nil, ext.
func Encode(h Header, ext *HeaderDX10) []byte {
	var buf bytes.Buffer
	buf.Grow(MagicSize + HeaderSize + HeaderDX10Size)
	buf.Write(Magic[:])
	// Writes into a bytes.Buffer cannot fail for fixed-size structs.
	_ = binary.Write(&buf, binary.LittleEndian, &h) //nolint:errcheck // see above
	if ext != nil {
		_ = binary.Write(&buf, binary.LittleEndian, ext) //nolint:errcheck // see above
	}
	return buf.Bytes()
}
