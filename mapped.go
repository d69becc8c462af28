package asset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/time/rate"

	"github.com/meigma/asset/internal/dds"
	"github.com/meigma/asset/internal/platform"
)

// maxUploadLevels caps MinLevelsToUpload for views without a mip tail.
const maxUploadLevels = 5

// truncatedWarning limits how often access-time truncation is logged.
var truncatedWarning = rate.Sometimes{First: 1, Interval: 10 * time.Second}

// MappedView exposes the images of a DDS file through a read-only memory
// mapping of the whole file. Data returns subslices of the mapping without
// copying.
type MappedView struct {
	cfg     viewConfig
	path    string
	layout  *dds.Layout
	desc    Descriptor
	hash    uint64
	src     *mappedSource
	cleanup runtime.Cleanup
	closed  bool
}

// mappedSource holds the open file and its mapping.
// It is kept apart from MappedView so a cleanup can release it.
type mappedSource struct {
	file *os.File
	data []byte
}

func (s *mappedSource) release() error {
	var errs []error
	if s.data != nil {
		errs = append(errs, platform.Unmap(s.data))
		s.data = nil
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
		s.file = nil
	}
	return errors.Join(errs...)
}

// OpenMapped validates the DDS file at path and returns a view over it.
//
// Only the headers are read; the file is mapped on the first Data call.
// Running out of file descriptors surfaces as ErrTooManyOpenFiles.
func OpenMapped(path string, opts ...ViewOption) (*MappedView, error) {
	layout, err := dds.Parse(path)
	if err != nil {
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

	v := &MappedView{
		cfg:    newViewConfig(opts),
		path:   path,
		layout: layout,
		hash:   pathHash(abs),
		src:    &mappedSource{},
		desc: Descriptor{
			Kind:              mappedKind(layout),
			Format:            layout.Format,
			Extent:            Extent{Width: layout.Width, Height: layout.Height, Depth: layout.Depth},
			MipLevels:         layout.Levels,
			MinLevelsToUpload: min(maxUploadLevels, layout.Levels),
			NumLayers:         layout.Layers,
			LastWriteTime:     info.ModTime(),
			SourcePath:        path,
		},
	}
	v.cleanup = runtime.AddCleanup(v, func(src *mappedSource) { _ = src.release() }, v.src)
	return v, nil
}

func mappedKind(l *dds.Layout) Kind {
	switch {
	case l.Width > 1 && l.Height == 1 && l.Depth == 1:
		return KindImage1D
	case l.Depth > 1:
		return KindImage3D
	default:
		return KindImage2D
	}
}

// Data returns the bytes of one image of face 0 as a subslice of the mapping.
func (v *MappedView) Data(layer, level int) ([]byte, error) {
	if v.closed {
		return nil, ErrClosed
	}
	off, size, err := v.layout.Placement(layer, 0, level)
	if err != nil {
		return nil, err
	}
	if err := v.acquire(); err != nil {
		return nil, err
	}
	end := off + size
	if end > uint64(len(v.src.data)) {
		truncatedWarning.Do(func() {
			v.cfg.log().Warn("asset file shrank after it was opened",
				"path", v.path, "need", end, "size", len(v.src.data))
		})
		return nil, fmt.Errorf("%s: %w", v.path, ErrTruncated)
	}
	return v.src.data[off:end:end], nil
}

// acquire maps the file if it is not mapped yet.
func (v *MappedView) acquire() error {
	if v.src.data != nil {
		return nil
	}
	f, err := platform.Open(v.path)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	data, err := platform.Map(f, info.Size())
	if err != nil {
		f.Close()
		return fmt.Errorf("map %s: %w", v.path, err)
	}
	v.src.file, v.src.data = f, data
	v.cfg.log().Debug("mapped asset file", "path", v.path, "size", len(data))
	return nil
}

// EvictCache is a no-op; the mapping is released by ReleaseSource.
func (v *MappedView) EvictCache(int, int) {}

// ReleaseSource unmaps the file and closes its handle. Slices returned by
// Data become invalid.
func (v *MappedView) ReleaseSource() error {
	return v.src.release()
}

// Placement returns the file offset and size of one image.
func (v *MappedView) Placement(layer, face, level int) (Placement, error) {
	off, size, err := v.layout.Placement(layer, face, level)
	if err != nil {
		return Placement{}, err
	}
	return Placement{File: v.path, Offset: off, Size: size}, nil
}

// Descriptor returns the asset descriptor.
func (v *MappedView) Descriptor() Descriptor {
	return v.desc
}

// ContentHash returns the hash of the absolute file path.
func (v *MappedView) ContentHash() uint64 {
	return v.hash
}

// Close releases the mapping and the file handle.
func (v *MappedView) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.cleanup.Stop()
	return v.src.release()
}
