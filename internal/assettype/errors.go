// Package assettype holds the sentinel errors shared by the asset packages.
package assettype

import "errors"

// Sentinel errors.
var (
	// ErrNotFound is returned when no backend can resolve a name.
	ErrNotFound = errors.New("asset: not found")

	// ErrMalformed is returned when file or package contents fail validation.
	ErrMalformed = errors.New("asset: malformed input")

	// ErrTooManyOpenFiles is returned when the process ran out of file descriptors.
	ErrTooManyOpenFiles = errors.New("asset: too many open files; release the source of other open views and retry")

	// ErrUnsupported is returned when a view cannot perform the requested operation.
	ErrUnsupported = errors.New("asset: unsupported operation")

	// ErrTruncated is returned when a file shrank after it was validated.
	ErrTruncated = errors.New("asset: data lies beyond the end of the file")

	// ErrCorruptReference is returned when a package does not describe the referenced asset.
	ErrCorruptReference = errors.New("asset: package does not describe the referenced asset")

	// ErrOutOfRange is returned when a layer, face, or level is outside the asset.
	ErrOutOfRange = errors.New("asset: layer, face or level out of range")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("asset: size overflow")

	// ErrClosed is returned when a closed view or package is used.
	ErrClosed = errors.New("asset: use of closed source")
)
