package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/asset/pack"
)

// MockPackage implements an in-memory package for tests.
//
// It records blob reads and tracks its reference count so tests can check
// that views retain and release the package.
type MockPackage struct {
	mu       sync.Mutex
	filename string
	assets   []pack.AssetDesc
	blobs    []pack.BlobDesc
	data     [][]byte
	reads    map[uint32]int
	refs     int
}

// NewMockPackage returns a package holding assets and blob payloads.
// Assets are sorted by path. An empty backing file is created in a temporary
// directory so the package has a real modification time.
func NewMockPackage(tb testing.TB, assets []pack.AssetDesc, blobs [][]byte) *MockPackage {
	tb.Helper()

	filename := filepath.Join(tb.TempDir(), "mock.pkg")
	if err := os.WriteFile(filename, nil, 0o644); err != nil {
		tb.Fatalf("write mock package: %v", err)
	}

	sorted := slices.Clone(assets)
	slices.SortFunc(sorted, func(a, b pack.AssetDesc) int {
		return strings.Compare(a.Path, b.Path)
	})

	m := &MockPackage{
		filename: filename,
		assets:   sorted,
		data:     blobs,
		reads:    make(map[uint32]int),
		refs:     1,
	}
	offset := uint64(pack.HeaderSize)
	for _, b := range blobs {
		m.blobs = append(m.blobs, pack.BlobDesc{
			Offset:       offset,
			Size:         uint64(len(b)),
			OriginalSize: uint64(len(b)),
			Digest:       digest.FromBytes(b),
		})
		offset += uint64(len(b))
	}
	return m
}

// SetCompression marks blob idx as stored with c.
func (m *MockPackage) SetCompression(idx uint32, c pack.Compression) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[idx].Compression = c
}

// Filename returns the path of the backing file.
func (m *MockPackage) Filename() string {
	return m.filename
}

// AssetDesc returns the descriptor of asset idx.
func (m *MockPackage) AssetDesc(idx uint32) (*pack.AssetDesc, bool) {
	if uint64(idx) >= uint64(len(m.assets)) {
		return nil, false
	}
	return &m.assets[idx], true
}

// BlobDesc returns the descriptor of blob idx.
func (m *MockPackage) BlobDesc(idx uint32) (*pack.BlobDesc, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(idx) >= uint64(len(m.blobs)) {
		return nil, false
	}
	b := m.blobs[idx]
	return &b, true
}

// ReadBlob copies the payload of blob idx into buf and records the read.
func (m *MockPackage) ReadBlob(idx uint32, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(idx) >= uint64(len(m.data)) {
		return fmt.Errorf("mock package: blob %d out of range", idx)
	}
	m.reads[idx]++
	copy(buf, m.data[idx])
	return nil
}

// FindAsset returns the index of the asset at rel, or pack.NoAsset.
func (m *MockPackage) FindAsset(rel string) uint32 {
	key := pack.NormalizePath(rel)
	for i := range m.assets {
		if m.assets[i].Path == key {
			return uint32(i) //nolint:gosec // test data is small
		}
	}
	return pack.NoAsset
}

// Retain adds a reference.
func (m *MockPackage) Retain() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs++
}

// Close drops a reference.
func (m *MockPackage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs--
	return nil
}

// Reads returns how many times blob idx was read.
func (m *MockPackage) Reads(idx uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[idx]
}

// Refs returns the current reference count.
func (m *MockPackage) Refs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs
}
