package pack

import (
	"bytes"
	_ "crypto/sha256" // registers the canonical digest algorithm
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/asset/internal/assettype"
	"github.com/meigma/asset/internal/platform"
	"github.com/meigma/asset/internal/sizing"
	"github.com/meigma/asset/pack/internal/fb"
)

// Version is the package format version written by Create.
const Version = 1

// HeaderSize is the size of the fixed package header.
const HeaderSize = 32

var magic = [8]byte{'A', 'S', 'S', 'E', 'T', 'P', 'K', 0}

// header is the fixed header at the start of every package file.
type header struct {
	Magic           [8]byte
	Version         uint32
	Reserved        uint32
	DirectoryOffset uint64
	DirectorySize   uint64
}

// Package provides random access to the assets of a package file.
//
// Package is reference counted: Open returns a package holding one
// reference, Retain adds one, and Close drops one. The file is closed when
// the last reference is dropped. Lookups and reads are safe for concurrent
// use while at least one reference is held.
type Package struct {
	filename         string
	file             *os.File
	assets           []AssetDesc
	blobs            []BlobDesc
	refs             atomic.Int32
	maxDirectorySize uint64
	maxDecoderMemory uint64
	pool             *decompressPool
	logger           *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Package) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// Open opens and validates the package at path.
//
// Validation covers the header, the directory, and every blob reference of
// every asset, so a package that opens successfully never yields an
// out-of-range blob index. Failures wrap assettype.ErrMalformed; running out
// of file descriptors surfaces as assettype.ErrTooManyOpenFiles.
func Open(path string, opts ...Option) (*Package, error) {
	p := &Package{
		filename:         path,
		maxDirectorySize: DefaultMaxDirectorySize,
		maxDecoderMemory: DefaultMaxDecoderMemory,
	}
	for _, opt := range opts {
		opt(p)
	}

	f, err := platform.Open(path)
	if err != nil {
		return nil, err
	}
	p.file = f
	if err := p.load(); err != nil {
		f.Close()
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	p.pool = newDecompressPool(p.maxDecoderMemory)
	p.refs.Store(1)

	p.log().Debug("opened package", "path", path, "assets", len(p.assets), "blobs", len(p.blobs))
	return p, nil
}

func (p *Package) load() error {
	info, err := p.file.Stat()
	if err != nil {
		return err
	}
	size := uint64(info.Size()) //nolint:gosec // file sizes are non-negative
	if size < HeaderSize {
		return fmt.Errorf("%w: %d bytes is too short for a package header", assettype.ErrMalformed, size)
	}

	var h header
	if err := binary.Read(io.NewSectionReader(p.file, 0, HeaderSize), binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if h.Magic != magic {
		return fmt.Errorf("%w: bad magic %q", assettype.ErrMalformed, h.Magic[:])
	}
	if h.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", assettype.ErrMalformed, h.Version)
	}
	if h.DirectoryOffset < HeaderSize || !sizing.Within(h.DirectoryOffset, h.DirectorySize, size) {
		return fmt.Errorf("%w: directory [%d, +%d) outside file of %d bytes", assettype.ErrMalformed, h.DirectoryOffset, h.DirectorySize, size)
	}
	if p.maxDirectorySize > 0 && h.DirectorySize > p.maxDirectorySize {
		return fmt.Errorf("%w: directory of %d bytes exceeds limit %d", assettype.ErrSizeOverflow, h.DirectorySize, p.maxDirectorySize)
	}
	dirSize, err := sizing.ToInt(h.DirectorySize, assettype.ErrSizeOverflow)
	if err != nil {
		return err
	}
	dirOffset, err := sizing.ToInt64(h.DirectoryOffset, assettype.ErrSizeOverflow)
	if err != nil {
		return err
	}

	data := make([]byte, dirSize)
	if _, err := p.file.ReadAt(data, dirOffset); err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	p.assets, p.blobs, err = loadDirectory(data)
	if err != nil {
		return err
	}
	return p.validate(h.DirectoryOffset)
}

// loadDirectory decodes a FlatBuffers directory into descriptors.
func loadDirectory(data []byte) (assets []AssetDesc, blobs []BlobDesc, err error) {
	defer func() {
		if r := recover(); r != nil {
			assets, blobs = nil, nil
			err = fmt.Errorf("%w: failed to parse directory: %v", assettype.ErrMalformed, r)
		}
	}()
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("%w: empty directory", assettype.ErrMalformed)
	}

	root := fb.GetRootAsDirectory(data, 0)
	if root.Version() != Version {
		return nil, nil, fmt.Errorf("%w: unsupported directory version %d", assettype.ErrMalformed, root.Version())
	}

	var fbBlob fb.Blob
	blobs = make([]BlobDesc, root.BlobsLength())
	for i := range blobs {
		if !root.Blobs(&fbBlob, i) {
			return nil, nil, fmt.Errorf("%w: missing blob %d", assettype.ErrMalformed, i)
		}
		blobs[i] = BlobDesc{
			Offset:       fbBlob.DataOffset(),
			Size:         fbBlob.DataSize(),
			OriginalSize: fbBlob.OriginalSize(),
			Compression:  Compression(fbBlob.Compression()),
			Digest:       digest.Digest(fbBlob.Digest()),
		}
	}

	var fbAsset fb.Asset
	assets = make([]AssetDesc, root.AssetsLength())
	for i := range assets {
		if !root.Assets(&fbAsset, i) {
			return nil, nil, fmt.Errorf("%w: missing asset %d", assettype.ErrMalformed, i)
		}
		assets[i] = AssetDesc{
			Path:        string(fbAsset.Path()),
			Type:        AssetType(fbAsset.Type()),
			Format:      fbAsset.Format(),
			Width:       fbAsset.Width(),
			Height:      fbAsset.Height(),
			Depth:       fbAsset.Depth(),
			Size:        fbAsset.Size(),
			NumMips:     fbAsset.NumMips(),
			NumTailMips: fbAsset.NumTailMips(),
			ArraySize:   fbAsset.ArraySize(),
			BaseBlob:    fbAsset.BaseBlob(),
			TailBlob:    fbAsset.TailBlob(),
		}
	}
	return assets, blobs, nil
}

// validate checks that blobs lie in the data region, assets are sorted by
// path, and every blob an asset can address exists.
func (p *Package) validate(dataEnd uint64) error {
	for i := range p.blobs {
		b := &p.blobs[i]
		if b.Offset < HeaderSize || !sizing.Within(b.Offset, b.Size, dataEnd) {
			return fmt.Errorf("%w: blob %d [%d, +%d) outside data region", assettype.ErrMalformed, i, b.Offset, b.Size)
		}
		if b.Compression > CompressionZstd {
			return fmt.Errorf("%w: blob %d has unknown compression %d", assettype.ErrMalformed, i, b.Compression)
		}
	}

	numBlobs := uint64(len(p.blobs))
	for i := range p.assets {
		a := &p.assets[i]
		if i > 0 && p.assets[i-1].Path >= a.Path {
			return fmt.Errorf("%w: asset paths not sorted at %q", assettype.ErrMalformed, a.Path)
		}
		if uint64(a.BaseBlob) >= numBlobs {
			return fmt.Errorf("%w: asset %q base blob %d out of range", assettype.ErrMalformed, a.Path, a.BaseBlob)
		}
		if a.Type == AssetBuffer {
			continue
		}
		if a.NumMips == 0 || a.NumTailMips > a.NumMips {
			return fmt.Errorf("%w: asset %q has %d mips and %d tail mips", assettype.ErrMalformed, a.Path, a.NumMips, a.NumTailMips)
		}
		if a.maxBlobIndex() >= numBlobs {
			return fmt.Errorf("%w: asset %q addresses blob %d of %d", assettype.ErrMalformed, a.Path, a.maxBlobIndex(), numBlobs)
		}
	}
	return nil
}

// maxBlobIndex returns the largest blob index an image asset addresses.
func (a *AssetDesc) maxBlobIndex() uint64 {
	last := uint64(0)
	lastLayer := a.Layers() - 1
	faces := 1
	if a.Type == AssetImageCube {
		faces = 6
	}
	layer, face := lastLayer/faces, lastLayer%faces
	for level := range int(a.NumMips) {
		last = max(last, uint64(a.BlobIndex(layer, face, level)))
	}
	return last
}

// Filename returns the path the package was opened from.
func (p *Package) Filename() string {
	return p.filename
}

// NumAssets returns the number of assets in the package.
func (p *Package) NumAssets() int {
	return len(p.assets)
}

// NumBlobs returns the number of blobs in the package.
func (p *Package) NumBlobs() int {
	return len(p.blobs)
}

// AssetDesc returns the descriptor of asset idx.
// The returned descriptor must be treated as immutable.
func (p *Package) AssetDesc(idx uint32) (*AssetDesc, bool) {
	if uint64(idx) >= uint64(len(p.assets)) {
		return nil, false
	}
	return &p.assets[idx], true
}

// BlobDesc returns the descriptor of blob idx.
// The returned descriptor must be treated as immutable.
func (p *Package) BlobDesc(idx uint32) (*BlobDesc, bool) {
	if uint64(idx) >= uint64(len(p.blobs)) {
		return nil, false
	}
	return &p.blobs[idx], true
}

// Assets returns an iterator over asset indices and descriptors in path order.
func (p *Package) Assets() iter.Seq2[uint32, AssetDesc] {
	return func(yield func(uint32, AssetDesc) bool) {
		for i := range p.assets {
			if !yield(uint32(i), p.assets[i]) { //nolint:gosec // asset count fits uint32
				return
			}
		}
	}
}

// NormalizePath converts a package-relative path to the form stored in the
// directory: lowercase, slash separated, without leading or trailing slashes.
func NormalizePath(rel string) string {
	rel = strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/")
	return strings.Trim(strings.ToLower(rel), "/")
}

// FindAsset returns the index of the asset at the package-relative path
// rel, or NoAsset. Matching is case-insensitive and accepts either slash.
func (p *Package) FindAsset(rel string) uint32 {
	key := NormalizePath(rel)
	i := sort.Search(len(p.assets), func(i int) bool {
		return p.assets[i].Path >= key
	})
	if i < len(p.assets) && p.assets[i].Path == key {
		return uint32(i) //nolint:gosec // asset count fits uint32
	}
	return NoAsset
}

// ReadBlob reads the first len(buf) stored bytes of blob idx into buf.
// Compressed blobs are returned as stored.
func (p *Package) ReadBlob(idx uint32, buf []byte) error {
	if p.refs.Load() <= 0 {
		return assettype.ErrClosed
	}
	b, ok := p.BlobDesc(idx)
	if !ok {
		return fmt.Errorf("%w: blob %d", assettype.ErrOutOfRange, idx)
	}
	if uint64(len(buf)) > b.Size {
		return fmt.Errorf("%w: read of %d bytes from blob %d of %d bytes", assettype.ErrOutOfRange, len(buf), idx, b.Size)
	}
	off, err := sizing.ToInt64(b.Offset, assettype.ErrSizeOverflow)
	if err != nil {
		return err
	}
	if _, err := p.file.ReadAt(buf, off); err != nil {
		return fmt.Errorf("read blob %d of %s: %w", idx, p.filename, err)
	}
	return nil
}

func (p *Package) readStored(idx uint32) ([]byte, *BlobDesc, error) {
	b, ok := p.BlobDesc(idx)
	if !ok {
		return nil, nil, fmt.Errorf("%w: blob %d", assettype.ErrOutOfRange, idx)
	}
	size, err := sizing.ToInt(b.Size, assettype.ErrSizeOverflow)
	if err != nil {
		return nil, nil, err
	}
	buf := make([]byte, size)
	if err := p.ReadBlob(idx, buf); err != nil {
		return nil, nil, err
	}
	return buf, b, nil
}

// DecodeBlob returns the uncompressed bytes of blob idx.
func (p *Package) DecodeBlob(idx uint32) ([]byte, error) {
	stored, b, err := p.readStored(idx)
	if err != nil {
		return nil, err
	}
	if b.Compression == CompressionNone {
		return stored, nil
	}

	dec, release, err := p.pool.get(bytes.NewReader(stored))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer release()

	data, err := sizing.ReadAllWithLimit(dec, b.OriginalSize, assettype.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("decompress blob %d: %w", idx, err)
	}
	if uint64(len(data)) != b.OriginalSize {
		return nil, fmt.Errorf("%w: blob %d decompressed to %d bytes, want %d", assettype.ErrMalformed, idx, len(data), b.OriginalSize)
	}
	return data, nil
}

// VerifyBlob checks the stored bytes of blob idx against its digest.
func (p *Package) VerifyBlob(idx uint32) error {
	stored, b, err := p.readStored(idx)
	if err != nil {
		return err
	}
	if err := b.Digest.Validate(); err != nil {
		return fmt.Errorf("%w: blob %d: %w", assettype.ErrMalformed, idx, err)
	}
	verifier := b.Digest.Verifier()
	if _, err := verifier.Write(stored); err != nil {
		return err
	}
	if !verifier.Verified() {
		return fmt.Errorf("%w: blob %d", ErrDigestMismatch, idx)
	}
	return nil
}

// Retain adds a reference to the package.
func (p *Package) Retain() {
	p.refs.Add(1)
}

// Close drops a reference and closes the file when none remain.
func (p *Package) Close() error {
	switch n := p.refs.Add(-1); {
	case n > 0:
		return nil
	case n < 0:
		p.refs.Add(1)
		return assettype.ErrClosed
	}
	p.log().Debug("closed package", "path", p.filename)
	return p.file.Close()
}
