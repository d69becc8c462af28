package asset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meigma/asset/format"
)

// FallbackView exposes an image decoded into memory by a Decoder.
// Its data is CPU resident and it cannot report file placements.
type FallbackView struct {
	dec  Decoder
	desc Descriptor
	hash uint64
}

// LoadFallback decodes the file at path with dec and returns a view over it.
func LoadFallback(path string, dec Decoder, opts ...ViewOption) (*FallbackView, error) {
	cfg := newViewConfig(opts)
	if err := dec.Load(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	levels := dec.Levels()
	v := &FallbackView{
		dec:  dec,
		hash: pathHash(abs),
		desc: Descriptor{
			Kind:              targetKind(dec.Target()),
			Format:            dec.Format(),
			Extent:            dec.Extent(0),
			MipLevels:         levels,
			MinLevelsToUpload: min(maxUploadLevels, levels),
			NumLayers:         dec.Layers(),
			LastWriteTime:     info.ModTime(),
			SourcePath:        path,
		},
	}
	cfg.log().Debug("decoded asset into memory", "path", path, "format", v.desc.Format.String())
	return v, nil
}

func targetKind(t format.Target) Kind {
	switch t {
	case format.Target1D, format.Target1DArray:
		return KindImage1D
	case format.Target2D, format.Target2DArray, format.TargetCube, format.TargetCubeArray:
		return KindImage2D
	case format.Target3D:
		return KindImage3D
	default:
		return KindUnknown
	}
}

// Data returns the decoded bytes of one image of face 0.
func (v *FallbackView) Data(layer, level int) ([]byte, error) {
	if v.dec == nil {
		return nil, ErrClosed
	}
	data := v.dec.Data(layer, level)
	if data == nil {
		return nil, fmt.Errorf("%w: layer %d level %d", ErrOutOfRange, layer, level)
	}
	return data, nil
}

// EvictCache is a no-op.
func (v *FallbackView) EvictCache(int, int) {}

// ReleaseSource is a no-op.
func (v *FallbackView) ReleaseSource() error { return nil }

// Placement is not supported; decoded data has no file location.
func (v *FallbackView) Placement(int, int, int) (Placement, error) {
	return Placement{}, ErrUnsupported
}

// Descriptor returns the asset descriptor.
func (v *FallbackView) Descriptor() Descriptor {
	return v.desc
}

// ContentHash returns the hash of the absolute file path.
func (v *FallbackView) ContentHash() uint64 {
	return v.hash
}

// Close releases the decoded data.
func (v *FallbackView) Close() error {
	v.dec = nil
	return nil
}
