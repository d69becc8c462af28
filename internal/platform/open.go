// Package platform wraps the operating system calls used to read asset files.
package platform

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/meigma/asset/internal/assettype"
)

// Open opens name read-only.
//
// Descriptor exhaustion is reported as assettype.ErrTooManyOpenFiles so
// callers can release other open sources before retrying. Open never
// retries on its own.
func Open(name string) (*os.File, error) {
	f, err := os.Open(name)
	if err != nil {
		if IsTooManyOpenFiles(err) {
			return nil, &os.PathError{Op: "open", Path: name, Err: fmt.Errorf("%w: %w", assettype.ErrTooManyOpenFiles, err)}
		}
		return nil, err
	}
	return f, nil
}

// IsTooManyOpenFiles reports whether err signals process or system
// descriptor exhaustion.
func IsTooManyOpenFiles(err error) bool {
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}
