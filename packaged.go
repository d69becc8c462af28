package asset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meigma/asset/format"
	"github.com/meigma/asset/pack"
)

// Package is the view of a package file used by packaged views and the
// resolver. *pack.Package implements it.
//
// Implementations are reference counted: Retain adds a reference and Close
// drops one.
type Package interface {
	// Filename returns the path of the package file.
	Filename() string

	// AssetDesc returns the descriptor of asset idx.
	AssetDesc(idx uint32) (*pack.AssetDesc, bool)

	// BlobDesc returns the descriptor of blob idx.
	BlobDesc(idx uint32) (*pack.BlobDesc, bool)

	// ReadBlob reads the first len(buf) stored bytes of blob idx.
	ReadBlob(idx uint32, buf []byte) error

	// FindAsset returns the index of the asset at a package-relative path,
	// or pack.NoAsset.
	FindAsset(rel string) uint32

	Retain()
	Close() error
}

var _ Package = (*pack.Package)(nil)

// PackagedView exposes one asset of a package. Blobs are read on demand and
// cached by blob index, so every level of a mip tail shares one entry.
type PackagedView struct {
	cfg    viewConfig
	pkg    Package
	idx    uint32
	asset  *pack.AssetDesc
	desc   Descriptor
	hash   uint64
	cache  map[uint32][]byte
	closed bool
}

// NewPackagedView returns a view of asset idx of pkg. The view holds a
// reference to pkg until it is closed.
func NewPackagedView(pkg Package, idx uint32, opts ...ViewOption) (*PackagedView, error) {
	pkg.Retain()
	v, err := newPackagedView(pkg, idx, opts)
	if err != nil {
		_ = pkg.Close()
		return nil, err
	}
	return v, nil
}

func newPackagedView(pkg Package, idx uint32, opts []ViewOption) (*PackagedView, error) {
	a, ok := pkg.AssetDesc(idx)
	if !ok {
		return nil, fmt.Errorf("%s: asset %d: %w", pkg.Filename(), idx, ErrCorruptReference)
	}
	base, ok := pkg.BlobDesc(a.BaseBlob)
	if !ok {
		return nil, fmt.Errorf("%s: asset %q blob %d: %w", pkg.Filename(), a.Path, a.BaseBlob, ErrCorruptReference)
	}
	info, err := os.Stat(pkg.Filename())
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(pkg.Filename())
	if err != nil {
		return nil, err
	}

	mips := int(max(a.NumMips, 1))
	desc := Descriptor{
		Kind:              packagedKind(a.Type),
		Format:            format.Format(a.Format),
		Extent:            Extent{Width: a.Width, Height: a.Height, Depth: max(a.Depth, 1)},
		MipLevels:         mips,
		MinLevelsToUpload: min(max(int(a.NumTailMips), 1), mips),
		NumLayers:         int(max(a.ArraySize, 1)),
		LastWriteTime:     info.ModTime(),
		SourcePath:        pkg.Filename(),
	}
	if a.Type == pack.AssetBuffer {
		desc.Extent = Extent{Width: a.Size, Height: 0, Depth: 1}
	}
	if base.Compression != pack.CompressionNone {
		desc.Compression = CompressionOpaque
	}

	return &PackagedView{
		cfg:   newViewConfig(opts),
		pkg:   pkg,
		idx:   idx,
		asset: a,
		desc:  desc,
		hash:  packagedHash(abs, idx),
		cache: make(map[uint32][]byte),
	}, nil
}

func packagedKind(t pack.AssetType) Kind {
	switch t {
	case pack.AssetBuffer:
		return KindBuffer
	case pack.AssetImage1D:
		return KindImage1D
	case pack.AssetImage2D, pack.AssetImageCube:
		return KindImage2D
	case pack.AssetImage3D:
		return KindImage3D
	default:
		return KindUnknown
	}
}

// BlobIndex returns the blob holding (layer, face, level).
func (v *PackagedView) BlobIndex(layer, face, level int) uint32 {
	return v.asset.BlobIndex(layer, face, level)
}

func (v *PackagedView) checkRange(layer, face, level int) error {
	faces := 1
	if v.asset.Type == pack.AssetImageCube {
		faces = 6
	}
	if layer < 0 || layer >= v.desc.NumLayers || face < 0 || face >= faces || level < 0 || level >= v.desc.MipLevels {
		return fmt.Errorf("%w: layer %d face %d level %d", ErrOutOfRange, layer, face, level)
	}
	return nil
}

// Data returns the bytes of the blob holding one image of face 0.
// Every level of a mip tail returns the whole tail blob.
func (v *PackagedView) Data(layer, level int) ([]byte, error) {
	if v.closed {
		return nil, ErrClosed
	}
	if err := v.checkRange(layer, 0, level); err != nil {
		return nil, err
	}
	blob := v.BlobIndex(layer, 0, level)
	if data, ok := v.cache[blob]; ok {
		return data, nil
	}

	b, ok := v.pkg.BlobDesc(blob)
	if !ok {
		return nil, fmt.Errorf("%s: blob %d: %w", v.pkg.Filename(), blob, ErrCorruptReference)
	}
	if b.Compression != pack.CompressionNone {
		return nil, fmt.Errorf("%s: blob %d is %s compressed: %w", v.pkg.Filename(), blob, b.Compression, ErrUnsupported)
	}
	data := make([]byte, b.Size)
	if err := v.pkg.ReadBlob(blob, data); err != nil {
		return nil, err
	}
	v.insert(blob, data)
	return data, nil
}

// insert adds a cache entry. The slot must be empty.
func (v *PackagedView) insert(blob uint32, data []byte) {
	if _, ok := v.cache[blob]; ok {
		panic(fmt.Sprintf("asset: blob %d already cached", blob))
	}
	v.cache[blob] = data
}

// EvictCache drops the cached blob holding (layer, level).
func (v *PackagedView) EvictCache(layer, level int) {
	delete(v.cache, v.BlobIndex(layer, 0, level))
}

// ReleaseSource is a no-op; the package stays open until the view is closed.
func (v *PackagedView) ReleaseSource() error {
	return nil
}

// Placement returns the stored location of the blob holding one image. The
// cache is bypassed.
func (v *PackagedView) Placement(layer, face, level int) (Placement, error) {
	if err := v.checkRange(layer, face, level); err != nil {
		return Placement{}, err
	}
	blob := v.BlobIndex(layer, face, level)
	b, ok := v.pkg.BlobDesc(blob)
	if !ok {
		return Placement{}, fmt.Errorf("%s: blob %d: %w", v.pkg.Filename(), blob, ErrCorruptReference)
	}
	return Placement{File: v.pkg.Filename(), Offset: b.Offset, Size: b.Size}, nil
}

// Descriptor returns the asset descriptor.
func (v *PackagedView) Descriptor() Descriptor {
	return v.desc
}

// ContentHash returns the hash of the package path and asset index.
func (v *PackagedView) ContentHash() uint64 {
	return v.hash
}

// Close drops the cache and the package reference.
func (v *PackagedView) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.cache = nil
	return v.pkg.Close()
}
