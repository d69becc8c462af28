package pack

import (
	"errors"

	"github.com/opencontainers/go-digest"
)

// NoAsset is returned by FindAsset when a path is not in the package.
const NoAsset = ^uint32(0)

// Sentinel errors.
var (
	// ErrDigestMismatch is returned when blob bytes do not match their digest.
	ErrDigestMismatch = errors.New("pack: digest mismatch")

	// ErrTooManyFiles is returned when a directory holds more files than allowed.
	ErrTooManyFiles = errors.New("pack: too many files")
)

// AssetType tags what an asset holds.
type AssetType uint8

const (
	AssetUnknown AssetType = iota
	AssetBuffer
	AssetImage1D
	AssetImage2D
	AssetImageCube
	AssetImage3D
)

// String returns the human-readable name of the asset type.
func (t AssetType) String() string {
	switch t {
	case AssetBuffer:
		return "buffer"
	case AssetImage1D:
		return "image-1d"
	case AssetImage2D:
		return "image-2d"
	case AssetImageCube:
		return "image-cube"
	case AssetImage3D:
		return "image-3d"
	default:
		return "unknown"
	}
}

// Compression identifies the compression algorithm used for a blob.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// AssetDesc describes one asset in a package.
type AssetDesc struct {
	// Path is the lowercase, slash-separated path relative to the package root.
	Path string

	Type AssetType

	// Format is the DXGI format of image assets.
	Format uint32

	Width  uint32
	Height uint32
	Depth  uint32

	// Size is the byte size of buffer assets.
	Size uint32

	NumMips     uint16
	NumTailMips uint16
	ArraySize   uint16

	// BaseBlob is the blob of layer 0, level 0.
	BaseBlob uint32

	// TailBlob is the blob holding the mip tail of layer 0.
	TailBlob uint32
}

// LooseMips returns the number of levels stored in their own blob.
func (a *AssetDesc) LooseMips() uint32 {
	return uint32(a.NumMips) - uint32(min(a.NumTailMips, a.NumMips))
}

// BlobIndex returns the blob holding (layer, face, level).
//
// Cube images fold face into the layer as layer*6+face. Every level at or
// past LooseMips maps to the tail blob of its layer, so those levels share
// one blob. Buffers always map to BaseBlob.
func (a *AssetDesc) BlobIndex(layer, face, level int) uint32 {
	if a.Type == AssetBuffer {
		return a.BaseBlob
	}
	if a.Type == AssetImageCube {
		layer = layer*6 + face
	}
	loose := a.LooseMips()
	blob := a.BaseBlob + uint32(level) //nolint:gosec // level is bounded by NumMips
	if uint32(level) >= loose {        //nolint:gosec // level is non-negative
		blob = a.TailBlob
	}
	return blob + uint32(layer)*loose //nolint:gosec // layer is bounded by ArraySize
}

// Layers returns the number of blob layers, counting cube faces.
func (a *AssetDesc) Layers() int {
	layers := int(max(a.ArraySize, 1))
	if a.Type == AssetImageCube {
		layers *= 6
	}
	return layers
}

// BlobDesc describes one blob in a package.
type BlobDesc struct {
	// Offset is the byte offset of the stored bytes in the package file.
	Offset uint64

	// Size is the stored (possibly compressed) byte size.
	Size uint64

	// OriginalSize is the uncompressed byte size.
	OriginalSize uint64

	Compression Compression

	// Digest identifies the stored bytes.
	Digest digest.Digest
}
