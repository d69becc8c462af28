package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/meigma/asset/format"
	"github.com/meigma/asset/internal/assettype"
	"github.com/meigma/asset/internal/platform"
	"github.com/meigma/asset/internal/sizing"
)

// Layout describes where the images of a DDS file live.
//
// Images are stored face-major: every level of (layer 0, face 0), then
// every level of (layer 0, face 1), and so on.
type Layout struct {
	// FileSize is the size of the file when it was parsed.
	FileSize int64

	// DataOffset is the offset of the first image, just past the headers.
	DataOffset int64

	Format format.Format
	Width  uint32
	Height uint32
	Depth  uint32
	Levels int
	Layers int
	Faces  int

	// Cube is set when the cubemap capability bit is present.
	Cube bool

	// LevelSizes holds the byte size of each mip level of one face.
	LevelSizes []uint64

	// FaceSize is the sum of LevelSizes.
	FaceSize uint64
}

// Parse validates the headers of the DDS file at path and computes its layout.
//
// The file is opened only for the duration of the call. Running out of file
// descriptors surfaces as assettype.ErrTooManyOpenFiles; every validation
// failure wraps assettype.ErrMalformed.
func Parse(path string) (*Layout, error) {
	f, err := platform.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	l, err := parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return l, nil
}

// ParseBytes computes the layout of a DDS file held in memory.
func ParseBytes(data []byte) (*Layout, error) {
	return parse(bytes.NewReader(data), int64(len(data)))
}

func parse(r io.Reader, size int64) (*Layout, error) {
	if size < MagicSize+HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a DDS header", assettype.ErrMalformed, size)
	}

	var magic [MagicSize]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", assettype.ErrMalformed, magic[:])
	}

	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var ext HeaderDX10
	dataOffset := int64(MagicSize + HeaderSize)
	if h.HasExtension() {
		if size < MagicSize+HeaderSize+HeaderDX10Size {
			return nil, fmt.Errorf("%w: %d bytes is too short for a DX10 header", assettype.ErrMalformed, size)
		}
		if err := binary.Read(r, binary.LittleEndian, &ext); err != nil {
			return nil, fmt.Errorf("read DX10 header: %w", err)
		}
		dataOffset += HeaderDX10Size
	}

	l := &Layout{
		FileSize:   size,
		DataOffset: dataOffset,
		Format:     pixelFormat(&h, &ext),
		Width:      h.Width,
		Height:     h.Height,
		Depth:      1,
		Levels:     1,
		Layers:     int(max(ext.ArraySize, 1)),
		Faces:      1,
	}
	if !l.Format.Known() {
		return nil, fmt.Errorf("%w: unsupported pixel format %s", assettype.ErrMalformed, l.Format)
	}
	if h.Flags&FlagMipMapCount != 0 && h.MipMapCount > 0 {
		if h.MipMapCount > MaxLevels {
			return nil, fmt.Errorf("%w: %d mip levels exceeds the maximum of %d", assettype.ErrMalformed, h.MipMapCount, MaxLevels)
		}
		l.Levels = int(h.MipMapCount)
	}
	if h.Caps2&Caps2Cubemap != 0 {
		l.Cube = true
		l.Faces = bits.OnesCount32(h.Caps2 & Caps2AllFaces)
		if l.Faces == 0 {
			return nil, fmt.Errorf("%w: cubemap without faces", assettype.ErrMalformed)
		}
	}
	if h.Caps2&Caps2Volume != 0 {
		l.Depth = max(h.Depth, 1)
	}

	if err := l.computeLevels(); err != nil {
		return nil, err
	}

	dataSize, ok := l.dataSize()
	if !ok {
		return nil, fmt.Errorf("%w: image data size", assettype.ErrSizeOverflow)
	}
	if !sizing.Within(uint64(dataOffset), dataSize, uint64(size)) {
		return nil, fmt.Errorf("%w: layout needs %d data bytes but only %d remain", assettype.ErrMalformed, dataSize, size-dataOffset)
	}
	return l, nil
}

func (l *Layout) computeLevels() error {
	l.LevelSizes = make([]uint64, l.Levels)
	for level := range l.Levels {
		w, h, d := l.LevelExtent(level)
		levelSize, ok := format.LevelSize(l.Format, w, h, d)
		if !ok {
			return fmt.Errorf("%w: level %d size", assettype.ErrSizeOverflow, level)
		}
		total, ok := sizing.AddUint64(l.FaceSize, levelSize)
		if !ok {
			return fmt.Errorf("%w: face size at level %d", assettype.ErrSizeOverflow, level)
		}
		l.LevelSizes[level] = levelSize
		l.FaceSize = total
	}
	return nil
}

func (l *Layout) dataSize() (uint64, bool) {
	faces, ok := sizing.MulUint64(uint64(l.Layers), uint64(l.Faces))
	if !ok {
		return 0, false
	}
	return sizing.MulUint64(l.FaceSize, faces)
}

// DataSize returns the total byte size of every image in the file.
func (l *Layout) DataSize() uint64 {
	size, _ := l.dataSize()
	return size
}

// LevelExtent returns the dimensions of mip level, clamped to one texel.
func (l *Layout) LevelExtent(level int) (width, height, depth uint32) {
	return max(l.Width>>level, 1), max(l.Height>>level, 1), max(l.Depth>>level, 1)
}

// Placement returns the file offset and size of one image.
func (l *Layout) Placement(layer, face, level int) (offset, size uint64, err error) {
	if layer < 0 || layer >= l.Layers || face < 0 || face >= l.Faces || level < 0 || level >= l.Levels {
		return 0, 0, fmt.Errorf("%w: layer %d face %d level %d", assettype.ErrOutOfRange, layer, face, level)
	}
	linearFace := uint64(layer*l.Faces + face)
	offset = uint64(l.DataOffset) + linearFace*l.FaceSize
	for _, levelSize := range l.LevelSizes[:level] {
		offset += levelSize
	}
	return offset, l.LevelSizes[level], nil
}
