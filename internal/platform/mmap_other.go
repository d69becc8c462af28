//go:build !unix

package platform

import (
	"fmt"
	"io"
	"os"

	"github.com/meigma/asset/internal/assettype"
	"github.com/meigma/asset/internal/sizing"
)

// ZeroCopy reports whether Map returns a true memory mapping.
const ZeroCopy = false

// Map reads the first size bytes of f into memory. Platforms without a
// unix mmap get a private copy with the same lifetime rules as a mapping.
func Map(f *os.File, size int64) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mapping %s: empty file", f.Name())
	}
	length, err := sizing.ToInt(uint64(size), assettype.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", f.Name(), err)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, size), data); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", f.Name(), err)
	}
	return data, nil
}

// Unmap releases a mapping returned by Map.
func Unmap([]byte) error {
	return nil
}
