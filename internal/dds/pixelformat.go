package dds

import "github.com/meigma/asset/format"

type maskFormat struct {
	bits       uint32
	r, g, b, a uint32
	format     format.Format
}

var rgbFormats = []maskFormat{
	{32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000, format.R8G8B8A8Unorm},
	{32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000, format.B8G8R8A8Unorm},
	{32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0x00000000, format.B8G8R8X8Unorm},
	{32, 0x000003ff, 0x000ffc00, 0x3ff00000, 0xc0000000, format.R10G10B10A2Unorm},
	{32, 0x0000ffff, 0xffff0000, 0x00000000, 0x00000000, format.R16G16Unorm},
	{32, 0xffffffff, 0x00000000, 0x00000000, 0x00000000, format.R32Float},
	{16, 0x0000f800, 0x000007e0, 0x0000001f, 0x00000000, format.B5G6R5Unorm},
	{16, 0x00007c00, 0x000003e0, 0x0000001f, 0x00008000, format.B5G5R5A1Unorm},
	{16, 0x00000f00, 0x000000f0, 0x0000000f, 0x0000f000, format.B4G4R4A4Unorm},
}

var fourCCFormats = map[uint32]format.Format{
	FourCC('D', 'X', 'T', '1'): format.BC1Unorm,
	FourCC('D', 'X', 'T', '2'): format.BC2Unorm,
	FourCC('D', 'X', 'T', '3'): format.BC2Unorm,
	FourCC('D', 'X', 'T', '4'): format.BC3Unorm,
	FourCC('D', 'X', 'T', '5'): format.BC3Unorm,
	FourCC('A', 'T', 'I', '1'): format.BC4Unorm,
	FourCC('B', 'C', '4', 'U'): format.BC4Unorm,
	FourCC('B', 'C', '4', 'S'): format.BC4Snorm,
	FourCC('A', 'T', 'I', '2'): format.BC5Unorm,
	FourCC('B', 'C', '5', 'U'): format.BC5Unorm,
	FourCC('B', 'C', '5', 'S'): format.BC5Snorm,
	FourCC('R', 'G', 'B', 'G'): format.R8G8B8G8Unorm,
	FourCC('G', 'R', 'G', 'B'): format.G8R8G8B8Unorm,
	36:                         format.R16G16B16A16Unorm,
	110:                        format.R16G16B16A16Snorm,
	111:                        format.R16Float,
	112:                        format.R16G16Float,
	113:                        format.R16G16B16A16Float,
	114:                        format.R32Float,
	115:                        format.R32G32Float,
	116:                        format.R32G32B32A32Float,
}

// pixelFormat derives the texel format from the legacy header or, when
// present, the DX10 extension. GLI1 extensions carry a format enumeration
// that has no DXGI equivalent and resolve to format.Undefined.
func pixelFormat(h *Header, ext *HeaderDX10) format.Format {
	pf := &h.PixelFormat
	if pf.Flags&PixelFourCC != 0 {
		switch pf.FourCC {
		case FourCCDX10:
			return format.Format(ext.DXGIFormat)
		case FourCCGLI1:
			return format.Undefined
		}
		return fourCCFormats[pf.FourCC]
	}

	switch {
	case pf.Flags&PixelRGB != 0:
		var alpha uint32
		if pf.Flags&PixelAlphaPixels != 0 {
			alpha = pf.ABitMask
		}
		if f, ok := matchMasks(pf, alpha, true); ok {
			return f
		}
		if f, ok := matchMasks(pf, 0, false); ok {
			return f
		}
	case pf.Flags&PixelLuminance != 0:
		switch {
		case pf.RGBBitCount == 8 && pf.RBitMask == 0xff:
			return format.R8Unorm
		case pf.RGBBitCount == 16 && pf.RBitMask == 0xffff:
			return format.R16Unorm
		case pf.RGBBitCount == 16 && pf.RBitMask == 0xff && pf.ABitMask == 0xff00:
			return format.R8G8Unorm
		}
	case pf.Flags&PixelAlpha != 0:
		if pf.RGBBitCount == 8 {
			return format.A8Unorm
		}
	}
	return format.Undefined
}

func matchMasks(pf *PixelFormat, alpha uint32, exactAlpha bool) (format.Format, bool) {
	for _, m := range rgbFormats {
		if pf.RGBBitCount != m.bits || pf.RBitMask != m.r || pf.GBitMask != m.g || pf.BBitMask != m.b {
			continue
		}
		if exactAlpha && m.a != alpha {
			continue
		}
		return m.format, true
	}
	return format.Undefined, false
}
