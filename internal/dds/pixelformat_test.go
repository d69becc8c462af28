package dds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meigma/asset/format"
)

func TestPixelFormatMasks(t *testing.T) {
	tests := []struct {
		name string
		pf   PixelFormat
		want format.Format
	}{
		{
			name: "rgba8",
			pf:   PixelFormat{Flags: PixelRGB | PixelAlphaPixels, RGBBitCount: 32, RBitMask: 0xff, GBitMask: 0xff00, BBitMask: 0xff0000, ABitMask: 0xff000000},
			want: format.R8G8B8A8Unorm,
		},
		{
			name: "bgra8",
			pf:   PixelFormat{Flags: PixelRGB | PixelAlphaPixels, RGBBitCount: 32, RBitMask: 0xff0000, GBitMask: 0xff00, BBitMask: 0xff, ABitMask: 0xff000000},
			want: format.B8G8R8A8Unorm,
		},
		{
			name: "bgrx8",
			pf:   PixelFormat{Flags: PixelRGB, RGBBitCount: 32, RBitMask: 0xff0000, GBitMask: 0xff00, BBitMask: 0xff},
			want: format.B8G8R8X8Unorm,
		},
		{
			name: "rgbx8 falls back to rgba8",
			pf:   PixelFormat{Flags: PixelRGB, RGBBitCount: 32, RBitMask: 0xff, GBitMask: 0xff00, BBitMask: 0xff0000},
			want: format.R8G8B8A8Unorm,
		},
		{
			name: "b5g6r5",
			pf:   PixelFormat{Flags: PixelRGB, RGBBitCount: 16, RBitMask: 0xf800, GBitMask: 0x7e0, BBitMask: 0x1f},
			want: format.B5G6R5Unorm,
		},
		{
			name: "luminance8",
			pf:   PixelFormat{Flags: PixelLuminance, RGBBitCount: 8, RBitMask: 0xff},
			want: format.R8Unorm,
		},
		{
			name: "luminance alpha",
			pf:   PixelFormat{Flags: PixelLuminance | PixelAlphaPixels, RGBBitCount: 16, RBitMask: 0xff, ABitMask: 0xff00},
			want: format.R8G8Unorm,
		},
		{
			name: "alpha8",
			pf:   PixelFormat{Flags: PixelAlpha, RGBBitCount: 8, ABitMask: 0xff},
			want: format.A8Unorm,
		},
		{
			name: "rgb24 unsupported",
			pf:   PixelFormat{Flags: PixelRGB, RGBBitCount: 24, RBitMask: 0xff0000, GBitMask: 0xff00, BBitMask: 0xff},
			want: format.Undefined,
		},
		{
			name: "dxt5",
			pf:   PixelFormat{Flags: PixelFourCC, FourCC: FourCC('D', 'X', 'T', '5')},
			want: format.BC3Unorm,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header{PixelFormat: tt.pf}
			assert.Equal(t, tt.want, pixelFormat(&h, &HeaderDX10{}))
		})
	}
}

func TestPixelFormatDX10(t *testing.T) {
	h := Header{PixelFormat: PixelFormat{Flags: PixelFourCC, FourCC: FourCCDX10}}
	assert.True(t, h.HasExtension())
	assert.Equal(t, format.BC7UnormSRGB, pixelFormat(&h, &HeaderDX10{DXGIFormat: uint32(format.BC7UnormSRGB)}))
}

func TestHasExtensionRequiresFourCCFlag(t *testing.T) {
	h := Header{PixelFormat: PixelFormat{Flags: PixelRGB, FourCC: FourCCDX10}}
	assert.False(t, h.HasExtension())
}
