// Package testutil provides builders for DDS files and packages used in tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meigma/asset/format"
	"github.com/meigma/asset/internal/dds"
)

// DDSSpec describes a DDS file to build.
type DDSSpec struct {
	Width  uint32
	Height uint32

	// Depth makes the file a volume texture when greater than zero.
	Depth uint32

	// Levels sets the mip count; zero omits the mip count flag.
	Levels uint32

	// Layers writes a DX10 header with this array size when greater than zero.
	Layers uint32

	// CubeFaces holds dds.Caps2 face bits; non-zero marks the file a cubemap.
	CubeFaces uint32

	// Format is written to the DX10 header. It is ignored when FourCC is set.
	Format format.Format

	// FourCC writes a legacy header with this code instead of a DX10 header.
	FourCC uint32

	// Truncate drops this many bytes from the end of the file.
	Truncate int
}

// Header returns the headers described by spec.
func (s DDSSpec) Header() (dds.Header, *dds.HeaderDX10) {
	h := dds.Header{
		Size:   dds.HeaderSize,
		Flags:  dds.FlagCaps | dds.FlagHeight | dds.FlagWidth | dds.FlagPixelFormat,
		Height: s.Height,
		Width:  s.Width,
		Caps:   dds.CapsTexture,
	}
	h.PixelFormat.Size = 32
	h.PixelFormat.Flags = dds.PixelFourCC
	if s.Levels > 0 {
		h.Flags |= dds.FlagMipMapCount
		h.MipMapCount = s.Levels
		h.Caps |= dds.CapsMipMap | dds.CapsComplex
	}
	if s.Depth > 0 {
		h.Flags |= dds.FlagDepth
		h.Depth = s.Depth
		h.Caps2 |= dds.Caps2Volume
	}
	if s.CubeFaces != 0 {
		h.Caps2 |= dds.Caps2Cubemap | s.CubeFaces
		h.Caps |= dds.CapsComplex
	}
	if s.FourCC != 0 {
		h.PixelFormat.FourCC = s.FourCC
		return h, nil
	}
	h.PixelFormat.FourCC = dds.FourCCDX10
	return h, &dds.HeaderDX10{
		DXGIFormat:        uint32(s.Format),
		ResourceDimension: 3,
		ArraySize:         max(s.Layers, 1),
	}
}

// DataSize returns the size of the image data described by spec.
func (s DDSSpec) DataSize(f format.Format) int {
	levels := max(s.Levels, 1)
	faces := 1
	if s.CubeFaces != 0 {
		faces = 0
		for bits := s.CubeFaces & dds.Caps2AllFaces; bits != 0; bits &= bits - 1 {
			faces++
		}
	}
	var face uint64
	for level := range levels {
		size, _ := format.LevelSize(f, max(s.Width>>level, 1), max(s.Height>>level, 1), max(s.Depth>>level, 1))
		face += size
	}
	return int(face) * faces * int(max(s.Layers, 1))
}

// Bytes builds the file described by spec. Image bytes follow a
// deterministic pattern so tests can compare slices.
func (s DDSSpec) Bytes(f format.Format) []byte {
	h, ext := s.Header()
	out := dds.Encode(h, ext)
	size := s.DataSize(f)
	for i := range size {
		out = append(out, Pattern(i))
	}
	return out[:len(out)-s.Truncate]
}

// Pattern returns the byte stored at offset i of a generated data region.
func Pattern(i int) byte {
	return byte(i*31 + 7)
}

// WriteDDS writes a DDS file for spec to dir/name and returns its path.
// f is the format used to size the data region; it matters for FourCC files.
func WriteDDS(tb testing.TB, dir, name string, spec DDSSpec) string {
	tb.Helper()
	f := spec.Format
	if spec.FourCC != 0 {
		f = fourCCFormat(spec.FourCC)
	}
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, spec.Bytes(f), 0o644); err != nil {
		tb.Fatalf("write dds: %v", err)
	}
	return path
}

func fourCCFormat(code uint32) format.Format {
	switch code {
	case dds.FourCC('D', 'X', 'T', '1'), dds.FourCC('A', 'T', 'I', '1'):
		return format.BC1Unorm
	case 113:
		return format.R16G16B16A16Float
	default:
		return format.BC3Unorm
	}
}
