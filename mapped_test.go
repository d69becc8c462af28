package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/asset/format"
	"github.com/meigma/asset/internal/dds"
	"github.com/meigma/asset/internal/testutil"
)

const ddsDataStart = dds.MagicSize + dds.HeaderSize + dds.HeaderDX10Size

func openMapped(t *testing.T, path string) *MappedView {
	t.Helper()
	v, err := OpenMapped(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestOpenMappedDescriptor(t *testing.T) {
	t.Parallel()

	path := testutil.WriteDDS(t, t.TempDir(), "stone.dds", testutil.DDSSpec{
		Width: 64, Height: 32, Levels: 7, Layers: 2, Format: format.BC1Unorm,
	})
	v := openMapped(t, path)

	d := v.Descriptor()
	assert.Equal(t, KindImage2D, d.Kind)
	assert.Equal(t, CompressionNone, d.Compression)
	assert.Equal(t, format.BC1Unorm, d.Format)
	assert.Equal(t, Extent{Width: 64, Height: 32, Depth: 1}, d.Extent)
	assert.Equal(t, 7, d.MipLevels)
	assert.Equal(t, 5, d.MinLevelsToUpload)
	assert.Equal(t, 2, d.NumLayers)
	assert.Equal(t, path, d.SourcePath)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), d.LastWriteTime)
}

func TestMappedKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec testutil.DDSSpec
		want Kind
	}{
		{"row", testutil.DDSSpec{Width: 16, Height: 1, Format: format.R8G8B8A8Unorm}, KindImage1D},
		{"single texel", testutil.DDSSpec{Width: 1, Height: 1, Format: format.R8G8B8A8Unorm}, KindImage2D},
		{"square", testutil.DDSSpec{Width: 4, Height: 4, Format: format.R8G8B8A8Unorm}, KindImage2D},
		{"volume", testutil.DDSSpec{Width: 4, Height: 4, Depth: 4, Format: format.R8G8B8A8Unorm}, KindImage3D},
		{"thin volume", testutil.DDSSpec{Width: 4, Height: 1, Depth: 2, Format: format.R8G8B8A8Unorm}, KindImage3D},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := openMapped(t, testutil.WriteDDS(t, t.TempDir(), "a.dds", tt.spec))
			assert.Equal(t, tt.want, v.Descriptor().Kind)
		})
	}
}

func TestMappedData(t *testing.T) {
	t.Parallel()

	spec := testutil.DDSSpec{Width: 8, Height: 8, Levels: 4, Layers: 2, Format: format.R8G8B8A8Unorm}
	path := testutil.WriteDDS(t, t.TempDir(), "a.dds", spec)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	v := openMapped(t, path)

	const face = 256 + 64 + 16 + 4
	level2, err := v.Data(1, 2)
	require.NoError(t, err)
	start := ddsDataStart + face + 256 + 64
	assert.Equal(t, raw[start:start+16], level2)
	assert.Equal(t, len(level2), cap(level2))

	p, err := v.Placement(1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, Placement{File: path, Offset: uint64(start), Size: 16}, p)

	_, err = v.Data(2, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.Data(0, 4)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestMappedReleaseSource(t *testing.T) {
	t.Parallel()

	path := testutil.WriteDDS(t, t.TempDir(), "a.dds", testutil.DDSSpec{Width: 4, Height: 4, Format: format.R8G8B8A8Unorm})
	v := openMapped(t, path)

	// Release and evict before any access are no-ops.
	v.EvictCache(0, 0)
	require.NoError(t, v.ReleaseSource())
	require.NoError(t, v.ReleaseSource())

	first, err := v.Data(0, 0)
	require.NoError(t, err)
	want := append([]byte(nil), first...)

	require.NoError(t, v.ReleaseSource())
	require.NoError(t, v.ReleaseSource())

	again, err := v.Data(0, 0)
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestMappedTruncatedAfterOpen(t *testing.T) {
	t.Parallel()

	path := testutil.WriteDDS(t, t.TempDir(), "a.dds", testutil.DDSSpec{Width: 8, Height: 8, Levels: 2, Format: format.R8G8B8A8Unorm})
	v := openMapped(t, path)
	require.NoError(t, os.Truncate(path, ddsDataStart+100))

	_, err := v.Data(0, 0)
	require.ErrorIs(t, err, ErrTruncated)

	require.NoError(t, v.ReleaseSource())
	_, err = v.Data(0, 1)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestOpenMappedRejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := OpenMapped(filepath.Join(dir, "missing.dds"))
	require.ErrorIs(t, err, os.ErrNotExist)

	short := filepath.Join(dir, "short.dds")
	require.NoError(t, os.WriteFile(short, []byte("DDS "), 0o644))
	_, err = OpenMapped(short)
	require.ErrorIs(t, err, ErrMalformed)

	truncated := testutil.WriteDDS(t, dir, "truncated.dds", testutil.DDSSpec{Width: 8, Height: 8, Format: format.R8G8B8A8Unorm, Truncate: 1})
	_, err = OpenMapped(truncated)
	require.ErrorIs(t, err, ErrMalformed)

	tooMany := testutil.WriteDDS(t, dir, "levels.dds", testutil.DDSSpec{Width: 1 << 16, Height: 1, Levels: 17, Format: format.R8Unorm})
	_, err = OpenMapped(tooMany)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestMappedContentHash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := testutil.WriteDDS(t, dir, "a.dds", testutil.DDSSpec{Width: 4, Height: 4, Format: format.R8G8B8A8Unorm})
	b := testutil.WriteDDS(t, dir, "b.dds", testutil.DDSSpec{Width: 4, Height: 4, Format: format.R8G8B8A8Unorm})

	assert.Equal(t, openMapped(t, a).ContentHash(), openMapped(t, a).ContentHash())
	assert.NotEqual(t, openMapped(t, a).ContentHash(), openMapped(t, b).ContentHash())
}

func TestMappedClosed(t *testing.T) {
	t.Parallel()

	path := testutil.WriteDDS(t, t.TempDir(), "a.dds", testutil.DDSSpec{Width: 4, Height: 4, Format: format.R8G8B8A8Unorm})
	v, err := OpenMapped(path)
	require.NoError(t, err)
	_, err = v.Data(0, 0)
	require.NoError(t, err)

	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
	_, err = v.Data(0, 0)
	require.ErrorIs(t, err, ErrClosed)
}
