package pack

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/asset/internal/assettype"
	"github.com/meigma/asset/internal/dds"
	"github.com/meigma/asset/internal/platform"
	"github.com/meigma/asset/internal/sizing"
	"github.com/meigma/asset/pack/internal/fb"
)

// Create builds a package from the contents of dir and writes it to w.
//
// Every regular file under dir becomes one asset keyed by its lowercase,
// slash-separated relative path. Files with a .dds extension are split into
// one blob per image level; the smallest levels of each layer, those whose
// largest edge is at most the tail dimension, share one mip tail blob.
// Every other file is stored as a single buffer blob.
//
// Create holds the whole package in memory before writing it; memory use
// scales with the total size of the input files. Symbolic links are not
// followed. The context can be used to cancel a long-running build.
func Create(ctx context.Context, dir string, w io.Writer, opts ...CreateOption) error {
	cfg := createConfig{tailDimension: DefaultTailDimension}
	for _, opt := range opts {
		opt(&cfg)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return err
	}
	defer root.Close()

	b := &builder{cfg: cfg, logger: cfg.logger}
	b.log().Info("creating package", "dir", dir, "compression", cfg.compression.String())

	files, err := b.collect(ctx, root)
	if err != nil {
		return err
	}
	for i := range files {
		if err := b.plan(&files[i]); err != nil {
			return fmt.Errorf("%s: %w", files[i].path, err)
		}
	}
	if uint64(len(b.pending)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d blobs", assettype.ErrSizeOverflow, len(b.pending))
	}
	if err := b.compress(ctx); err != nil {
		return err
	}

	b.log().Debug("package blobs prepared", "asset_count", len(b.assets), "blob_count", len(b.blobs))
	return b.write(w)
}

// builder holds state for package creation.
type builder struct {
	cfg    createConfig
	logger *slog.Logger

	assets  []AssetDesc
	pending [][]byte
	stored  [][]byte
	codecs  []Compression
	blobs   []BlobDesc
}

// sourceFile is one input file read into memory.
type sourceFile struct {
	path string
	data []byte
}

// log returns the logger, falling back to a discard logger if nil.
func (b *builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// collect walks root and reads every regular file, sorted by stored path.
func (b *builder) collect(ctx context.Context, root *os.Root) ([]sourceFile, error) {
	maxFiles := b.cfg.maxFiles
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}

	var files []sourceFile
	err := fs.WalkDir(root.FS(), ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if maxFiles > 0 && len(files) >= maxFiles {
			return ErrTooManyFiles
		}
		data, err := readFile(root, p)
		if errors.Is(err, platform.ErrSymlink) {
			b.log().Debug("skipped symlink", "path", p)
			return nil
		}
		if err != nil {
			return err
		}
		if data == nil {
			return nil
		}
		files = append(files, sourceFile{path: NormalizePath(p), data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b sourceFile) int {
		return strings.Compare(a.path, b.path)
	})
	for i := 1; i < len(files); i++ {
		if files[i].path == files[i-1].path {
			return nil, fmt.Errorf("%w: duplicate asset path %q", assettype.ErrMalformed, files[i].path)
		}
	}
	return files, nil
}

// readFile reads a regular file below root. Non-regular files yield nil data.
func readFile(root *os.Root, name string) ([]byte, error) {
	f, err := platform.OpenFileNoFollow(root, filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	data, err := sizing.ReadAllWithLimit(f, uint64(info.Size()), assettype.ErrSizeOverflow) //nolint:gosec // regular file sizes are non-negative
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// plan appends the asset for f and queues its blobs.
func (b *builder) plan(f *sourceFile) error {
	base := uint32(len(b.pending)) //nolint:gosec // blob count is checked before writing
	if !strings.EqualFold(path.Ext(f.path), ".dds") {
		if uint64(len(f.data)) > math.MaxUint32 {
			return fmt.Errorf("%w: buffer of %d bytes", assettype.ErrSizeOverflow, len(f.data))
		}
		b.assets = append(b.assets, AssetDesc{
			Path:     f.path,
			Type:     AssetBuffer,
			Size:     uint32(len(f.data)),
			BaseBlob: base,
			TailBlob: base,
		})
		b.pending = append(b.pending, f.data)
		return nil
	}

	l, err := dds.ParseBytes(f.data)
	if err != nil {
		return err
	}
	a := AssetDesc{
		Path:    f.path,
		Type:    imageType(l),
		Format:  uint32(l.Format),
		Width:   l.Width,
		Height:  l.Height,
		Depth:   l.Depth,
		NumMips: uint16(l.Levels), //nolint:gosec // levels are capped by the parser
	}
	if l.Cube && l.Faces != 6 {
		return fmt.Errorf("%w: cubemap with %d faces", assettype.ErrUnsupported, l.Faces)
	}
	if l.Layers > math.MaxUint16 {
		return fmt.Errorf("%w: %d array layers", assettype.ErrSizeOverflow, l.Layers)
	}
	a.ArraySize = uint16(l.Layers)

	layers := a.Layers()
	tail := b.tailLevels(l)
	loose := l.Levels - tail
	if loose == 0 && layers > 1 {
		// Layers are strided by the loose count; keep at least one loose level.
		tail--
		loose = 1
	}
	a.NumTailMips = uint16(tail) //nolint:gosec // bounded by NumMips
	a.BaseBlob = base
	a.TailBlob = base
	count := layers * loose
	if tail > 0 {
		a.TailBlob = base + uint32(layers*loose) //nolint:gosec // blob count is checked before writing
		count = layers*loose + (layers-1)*loose + 1
	}

	tailSize := l.FaceSize
	for _, s := range l.LevelSizes[:loose] {
		tailSize -= s
	}

	blobs := make([][]byte, count)
	faces := 1
	if a.Type == AssetImageCube {
		faces = 6
	}
	for linear := range layers {
		layer, face := linear/faces, linear%faces
		for level := range l.Levels {
			off, size, err := l.Placement(layer, face, level)
			if err != nil {
				return err
			}
			if level >= loose {
				// Tail levels of one face are contiguous.
				blobs[a.BlobIndex(layer, face, level)-base] = f.data[off : off+tailSize]
				break
			}
			blobs[a.BlobIndex(layer, face, level)-base] = f.data[off : off+size]
		}
	}

	b.assets = append(b.assets, a)
	b.pending = append(b.pending, blobs...)
	return nil
}

// tailLevels returns how many trailing levels of l fit the tail dimension.
func (b *builder) tailLevels(l *dds.Layout) int {
	if b.cfg.tailDimension == 0 {
		return 0
	}
	n := 0
	for level := l.Levels - 1; level >= 0; level-- {
		w, h, _ := l.LevelExtent(level)
		if max(w, h) > b.cfg.tailDimension {
			break
		}
		n++
	}
	return n
}

func imageType(l *dds.Layout) AssetType {
	switch {
	case l.Cube:
		return AssetImageCube
	case l.Depth > 1:
		return AssetImage3D
	case l.Height == 1 && l.Width > 1:
		return AssetImage1D
	default:
		return AssetImage2D
	}
}

// compress fills stored with the bytes to write for each pending blob.
func (b *builder) compress(ctx context.Context) error {
	b.stored = make([][]byte, len(b.pending))
	b.codecs = make([]Compression, len(b.pending))
	if b.cfg.compression == CompressionNone {
		copy(b.stored, b.pending)
		return nil
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()

	limit := b.cfg.concurrency
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, raw := range b.pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.stored[i] = raw
			if len(raw) == 0 {
				return nil
			}
			if out := enc.EncodeAll(raw, make([]byte, 0, len(raw))); len(out) < len(raw) {
				b.stored[i] = out
				b.codecs[i] = CompressionZstd
			}
			return nil
		})
	}
	return g.Wait()
}

// write lays out the header, blobs, and directory.
func (b *builder) write(w io.Writer) error {
	offset := uint64(HeaderSize)
	b.blobs = make([]BlobDesc, len(b.stored))
	for i, data := range b.stored {
		b.blobs[i] = BlobDesc{
			Offset:       offset,
			Size:         uint64(len(data)),
			OriginalSize: uint64(len(b.pending[i])),
			Compression:  b.codecs[i],
			Digest:       digest.FromBytes(data),
		}
		offset += uint64(len(data))
	}

	dir := buildDirectory(b.assets, b.blobs)
	var hdr [HeaderSize]byte
	copy(hdr[:8], magic[:])
	binary.LittleEndian.PutUint32(hdr[8:], Version)
	binary.LittleEndian.PutUint64(hdr[16:], offset)
	binary.LittleEndian.PutUint64(hdr[24:], uint64(len(dir)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	for _, data := range b.stored {
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	_, err := w.Write(dir)
	return err
}

// buildDirectory serializes descriptors to FlatBuffers format.
func buildDirectory(assets []AssetDesc, blobs []BlobDesc) []byte {
	builder := flatbuffers.NewBuilder(1024)

	// Build tables in reverse order (FlatBuffers requirement)
	blobOffsets := make([]flatbuffers.UOffsetT, len(blobs))
	for i := len(blobs) - 1; i >= 0; i-- {
		bd := blobs[i]
		digestOffset := builder.CreateString(bd.Digest.String())

		fb.BlobStart(builder)
		fb.BlobAddDataOffset(builder, bd.Offset)
		fb.BlobAddDataSize(builder, bd.Size)
		fb.BlobAddOriginalSize(builder, bd.OriginalSize)
		fb.BlobAddCompression(builder, byte(bd.Compression))
		fb.BlobAddDigest(builder, digestOffset)
		blobOffsets[i] = fb.BlobEnd(builder)
	}

	assetOffsets := make([]flatbuffers.UOffsetT, len(assets))
	for i := len(assets) - 1; i >= 0; i-- {
		a := assets[i]
		pathOffset := builder.CreateString(a.Path)

		fb.AssetStart(builder)
		fb.AssetAddPath(builder, pathOffset)
		fb.AssetAddType(builder, byte(a.Type))
		fb.AssetAddFormat(builder, a.Format)
		fb.AssetAddWidth(builder, a.Width)
		fb.AssetAddHeight(builder, a.Height)
		fb.AssetAddDepth(builder, a.Depth)
		fb.AssetAddSize(builder, a.Size)
		fb.AssetAddNumMips(builder, a.NumMips)
		fb.AssetAddNumTailMips(builder, a.NumTailMips)
		fb.AssetAddArraySize(builder, a.ArraySize)
		fb.AssetAddBaseBlob(builder, a.BaseBlob)
		fb.AssetAddTailBlob(builder, a.TailBlob)
		assetOffsets[i] = fb.AssetEnd(builder)
	}

	fb.DirectoryStartBlobsVector(builder, len(blobOffsets))
	for i := len(blobOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(blobOffsets[i])
	}
	blobsOffset := builder.EndVector(len(blobOffsets))

	fb.DirectoryStartAssetsVector(builder, len(assetOffsets))
	for i := len(assetOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(assetOffsets[i])
	}
	assetsOffset := builder.EndVector(len(assetOffsets))

	fb.DirectoryStart(builder)
	fb.DirectoryAddVersion(builder, Version)
	fb.DirectoryAddAssets(builder, assetsOffset)
	fb.DirectoryAddBlobs(builder, blobsOffset)
	builder.Finish(fb.DirectoryEnd(builder))
	return builder.FinishedBytes()
}
