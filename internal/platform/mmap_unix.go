//go:build unix

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/meigma/asset/internal/assettype"
	"github.com/meigma/asset/internal/sizing"
)

// ZeroCopy reports whether Map returns a true memory mapping.
const ZeroCopy = true

// Map maps the first size bytes of f read-only and shared.
// The mapping stays valid after f is closed; release it with Unmap.
func Map(f *os.File, size int64) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("memory-mapping %s: empty file", f.Name())
	}
	length, err := sizing.ToInt(uint64(size), assettype.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("memory-mapping %s: %w", f.Name(), err)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		if IsTooManyOpenFiles(err) {
			err = fmt.Errorf("%w: %w", assettype.ErrTooManyOpenFiles, err)
		}
		return nil, fmt.Errorf("memory-mapping %s: %w", f.Name(), err)
	}
	return data, nil
}

// Unmap releases a mapping returned by Map.
func Unmap(data []byte) error {
	if data == nil {
		return nil
	}
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("unmapping: %w", err)
	}
	return nil
}
