package asset

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/asset/format"
	"github.com/meigma/asset/internal/testutil"
	"github.com/meigma/asset/pack"
)

// newMockPackage returns a package with a two-layer texture whose last two
// levels live in a mip tail, a buffer, and a cubemap.
func newMockPackage(t *testing.T) *testutil.MockPackage {
	t.Helper()
	blobs := make([][]byte, 14)
	for i := range blobs {
		blobs[i] = bytes.Repeat([]byte{byte(i + 1)}, 4*(i+1))
	}
	blobs[5] = nil // gap between the tails of layer 0 and layer 1
	return testutil.NewMockPackage(t, []pack.AssetDesc{
		{
			Path: "tex.dds", Type: pack.AssetImage2D, Format: uint32(format.BC7Unorm),
			Width: 32, Height: 16, NumMips: 4, NumTailMips: 2, ArraySize: 2,
			BaseBlob: 0, TailBlob: 4,
		},
		{Path: "buf.bin", Type: pack.AssetBuffer, Size: 32, BaseBlob: 7, TailBlob: 7},
		{
			Path: "cube.dds", Type: pack.AssetImageCube, Format: uint32(format.R8G8B8A8Unorm),
			Width: 8, Height: 8, NumMips: 1, BaseBlob: 8, TailBlob: 8,
		},
	}, blobs)
}

func newView(t *testing.T, pkg *testutil.MockPackage, path string) *PackagedView {
	t.Helper()
	idx := pkg.FindAsset(path)
	require.NotEqual(t, pack.NoAsset, idx)
	v, err := NewPackagedView(pkg, idx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestPackagedDescriptor(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)

	tex := newView(t, pkg, "tex.dds").Descriptor()
	assert.Equal(t, KindImage2D, tex.Kind)
	assert.Equal(t, format.BC7Unorm, tex.Format)
	assert.Equal(t, Extent{Width: 32, Height: 16, Depth: 1}, tex.Extent)
	assert.Equal(t, 4, tex.MipLevels)
	assert.Equal(t, 2, tex.MinLevelsToUpload)
	assert.Equal(t, 2, tex.NumLayers)
	assert.Equal(t, CompressionNone, tex.Compression)
	assert.Equal(t, pkg.Filename(), tex.SourcePath)
	assert.False(t, tex.LastWriteTime.IsZero())

	buf := newView(t, pkg, "BUF.BIN").Descriptor()
	assert.Equal(t, KindBuffer, buf.Kind)
	assert.Equal(t, Extent{Width: 32, Height: 0, Depth: 1}, buf.Extent)

	cube := newView(t, pkg, "cube.dds").Descriptor()
	assert.Equal(t, KindImage2D, cube.Kind)
	assert.Equal(t, 1, cube.MinLevelsToUpload)
}

func TestPackagedTailAliasing(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)
	v := newView(t, pkg, "tex.dds")

	assert.Equal(t, uint32(4), v.BlobIndex(0, 0, 2))
	assert.Equal(t, uint32(4), v.BlobIndex(0, 0, 3))
	assert.Equal(t, uint32(6), v.BlobIndex(1, 0, 3))
	assert.Equal(t, uint32(3), v.BlobIndex(1, 0, 1))

	a, err := v.Data(0, 2)
	require.NoError(t, err)
	b, err := v.Data(0, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, pkg.Reads(4))

	// Evicting any tail level evicts the shared blob.
	v.EvictCache(0, 3)
	c, err := v.Data(0, 2)
	require.NoError(t, err)
	assert.Equal(t, a, c)
	assert.Equal(t, 2, pkg.Reads(4))
}

func TestPackagedEvictRefetches(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)
	v := newView(t, pkg, "tex.dds")

	// Evict and release before any access are no-ops.
	v.EvictCache(1, 1)
	require.NoError(t, v.ReleaseSource())

	first, err := v.Data(1, 1)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{4}, 16), first)

	again, err := v.Data(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, pkg.Reads(3))
	assert.Equal(t, first, again)

	v.EvictCache(1, 1)
	refetched, err := v.Data(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, pkg.Reads(3))
	assert.Equal(t, first, refetched)
}

func TestPackagedPlacementMatchesBlob(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)
	v := newView(t, pkg, "cube.dds")

	for face := range 6 {
		p, err := v.Placement(0, face, 0)
		require.NoError(t, err)
		b, ok := pkg.BlobDesc(uint32(8 + face))
		require.True(t, ok)
		assert.Equal(t, Placement{File: pkg.Filename(), Offset: b.Offset, Size: b.Size}, p)
	}
	assert.Zero(t, pkg.Reads(8))

	_, err := v.Placement(0, 6, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestPackagedCompressedBlob(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)
	pkg.SetCompression(0, pack.CompressionZstd)
	v := newView(t, pkg, "tex.dds")

	assert.Equal(t, CompressionOpaque, v.Descriptor().Compression)
	_, err := v.Data(0, 0)
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Zero(t, pkg.Reads(0))

	p, err := v.Placement(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), p.Size)
}

func TestPackagedOutOfRange(t *testing.T) {
	t.Parallel()

	v := newView(t, newMockPackage(t), "tex.dds")
	_, err := v.Data(2, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.Data(0, 4)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.Data(-1, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestPackagedReferenceCounting(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)
	require.Equal(t, 1, pkg.Refs())

	v, err := NewPackagedView(pkg, pkg.FindAsset("tex.dds"))
	require.NoError(t, err)
	assert.Equal(t, 2, pkg.Refs())

	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
	assert.Equal(t, 1, pkg.Refs())

	_, err = v.Data(0, 0)
	require.ErrorIs(t, err, ErrClosed)
}

func TestPackagedCorruptReference(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)
	_, err := NewPackagedView(pkg, 42)
	require.ErrorIs(t, err, ErrCorruptReference)
	assert.Equal(t, 1, pkg.Refs())

	dangling := testutil.NewMockPackage(t, []pack.AssetDesc{
		{Path: "a.dds", Type: pack.AssetImage2D, NumMips: 1, BaseBlob: 3},
	}, nil)
	_, err = NewPackagedView(dangling, 0)
	require.ErrorIs(t, err, ErrCorruptReference)
	assert.Equal(t, 1, dangling.Refs())
}

func TestPackagedCacheInsertPanicsWhenOccupied(t *testing.T) {
	t.Parallel()

	v := newView(t, newMockPackage(t), "tex.dds")
	_, err := v.Data(0, 0)
	require.NoError(t, err)
	assert.Panics(t, func() { v.insert(0, nil) })
}

func TestPackagedContentHash(t *testing.T) {
	t.Parallel()

	pkg := newMockPackage(t)
	a := newView(t, pkg, "tex.dds")
	b := newView(t, pkg, "tex.dds")
	c := newView(t, pkg, "buf.bin")

	assert.Equal(t, a.ContentHash(), b.ContentHash())
	assert.NotEqual(t, a.ContentHash(), c.ContentHash())
}

func TestPackagedViewOverRealPackage(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	spec := testutil.DDSSpec{Width: 64, Height: 64, Levels: 7, Format: format.R8G8B8A8Unorm}
	raw := spec.Bytes(format.R8G8B8A8Unorm)
	testutil.WriteFiles(t, src, map[string][]byte{"stone.dds": raw})
	dst := filepath.Join(t.TempDir(), "assets.pkg")
	testutil.BuildPackage(t, src, dst)

	p, err := pack.Open(dst)
	require.NoError(t, err)
	defer p.Close()

	v, err := NewPackagedView(p, p.FindAsset("stone.dds"))
	require.NoError(t, err)
	defer v.Close()

	level0, err := v.Data(0, 0)
	require.NoError(t, err)
	assert.Equal(t, raw[ddsDataStart:ddsDataStart+64*64*4], level0)

	tail, err := v.Data(0, 6)
	require.NoError(t, err)
	assert.Equal(t, raw[ddsDataStart+64*64*4:], tail)
}
