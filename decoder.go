package asset

import (
	"fmt"
	"io"

	"github.com/meigma/asset/format"
	"github.com/meigma/asset/internal/dds"
	"github.com/meigma/asset/internal/platform"
)

// Decoder loads an image file into memory for a FallbackView.
type Decoder interface {
	// Load reads and decodes the file at path.
	Load(path string) error

	// Data returns the bytes of one image of face 0, or nil if out of range.
	Data(layer, level int) []byte

	// Extent returns the size of level in texels.
	Extent(level int) Extent

	Format() format.Format
	Levels() int
	Layers() int
	Target() format.Target
}

// NewDDSDecoder returns a Decoder that reads whole DDS files into memory.
func NewDDSDecoder() Decoder {
	return &ddsDecoder{}
}

// ddsDecoder holds a DDS file in memory and slices it by layout.
type ddsDecoder struct {
	data   []byte
	layout *dds.Layout
}

func (d *ddsDecoder) Load(path string) error {
	f, err := platform.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	layout, err := dds.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	d.data, d.layout = data, layout
	return nil
}

func (d *ddsDecoder) Data(layer, level int) []byte {
	if d.layout == nil {
		return nil
	}
	off, size, err := d.layout.Placement(layer, 0, level)
	if err != nil {
		return nil
	}
	return d.data[off : off+size : off+size]
}

func (d *ddsDecoder) Extent(level int) Extent {
	w, h, depth := d.layout.LevelExtent(level)
	return Extent{Width: w, Height: h, Depth: depth}
}

func (d *ddsDecoder) Format() format.Format { return d.layout.Format }
func (d *ddsDecoder) Levels() int           { return d.layout.Levels }
func (d *ddsDecoder) Layers() int           { return d.layout.Layers }

func (d *ddsDecoder) Target() format.Target {
	l := d.layout
	array := l.Layers > 1
	switch {
	case l.Cube && array:
		return format.TargetCubeArray
	case l.Cube:
		return format.TargetCube
	case l.Depth > 1:
		return format.Target3D
	case l.Height == 1 && l.Width > 1 && array:
		return format.Target1DArray
	case l.Height == 1 && l.Width > 1:
		return format.Target1D
	case array:
		return format.Target2DArray
	default:
		return format.Target2D
	}
}
