package asset

import (
	"time"

	"github.com/meigma/asset/format"
)

// Kind classifies the data a view exposes.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBuffer
	KindImage1D
	KindImage2D
	KindImage3D
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindImage1D:
		return "image-1d"
	case KindImage2D:
		return "image-2d"
	case KindImage3D:
		return "image-3d"
	default:
		return "unknown"
	}
}

// Compression reports whether view bytes can be consumed directly.
type Compression uint8

const (
	// CompressionNone means Data returns usable bytes.
	CompressionNone Compression = iota

	// CompressionOpaque means the payload is compressed and Data cannot
	// return it.
	CompressionOpaque
)

// String returns the human-readable name of the compression state.
func (c Compression) String() string {
	if c == CompressionOpaque {
		return "opaque"
	}
	return "none"
}

// Extent is the size of an image in texels, or of a buffer in bytes.
type Extent struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

// Descriptor describes the asset behind a view. It is filled once when the
// view is constructed and never changes.
type Descriptor struct {
	Kind        Kind
	Compression Compression
	Format      format.Format
	Extent      Extent
	MipLevels   int

	// MinLevelsToUpload is the smallest number of trailing levels that must
	// be uploaded together.
	MinLevelsToUpload int

	NumLayers     int
	LastWriteTime time.Time

	// SourcePath is the file the view reads from.
	SourcePath string
}

// Placement locates the stored bytes of one image inside a file.
type Placement struct {
	// File is the path of the file holding the bytes.
	File string

	Offset uint64
	Size   uint64
}

// View is a lazily materialized, read-only view over one asset.
//
// A View is not safe for concurrent use.
type View interface {
	// Data returns the bytes of one image of face 0. The slice stays valid
	// until the view's source is released, its cache entry is evicted, or
	// the view is closed.
	Data(layer, level int) ([]byte, error)

	// EvictCache drops any cached bytes for the image. It is a no-op when
	// nothing is cached.
	EvictCache(layer, level int)

	// ReleaseSource releases the underlying file resources. The view stays
	// usable; the next Data call reacquires them.
	ReleaseSource() error

	// Placement returns where the image is stored, without reading it.
	Placement(layer, face, level int) (Placement, error)

	// Descriptor returns the asset descriptor.
	Descriptor() Descriptor

	// ContentHash identifies the asset source. Views of the same file and
	// asset index return the same hash.
	ContentHash() uint64

	// Close releases every resource held by the view.
	Close() error
}
