package asset

import (
	"github.com/meigma/asset/internal/assettype"
	"github.com/meigma/asset/pack"
)

// Errors re-exported from internal/assettype.
var (
	// ErrNotFound is returned when no backend can resolve a name.
	ErrNotFound = assettype.ErrNotFound

	// ErrMalformed is returned when file or package contents fail validation.
	ErrMalformed = assettype.ErrMalformed

	// ErrTooManyOpenFiles is returned when the process ran out of file
	// descriptors. It is never retried; release the source of other views.
	ErrTooManyOpenFiles = assettype.ErrTooManyOpenFiles

	// ErrUnsupported is returned when a view cannot perform the requested operation.
	ErrUnsupported = assettype.ErrUnsupported

	// ErrTruncated is returned when a file shrank after it was validated.
	ErrTruncated = assettype.ErrTruncated

	// ErrCorruptReference is returned when a package does not describe the referenced asset.
	ErrCorruptReference = assettype.ErrCorruptReference

	// ErrOutOfRange is returned when a layer, face, or level is outside the asset.
	ErrOutOfRange = assettype.ErrOutOfRange

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = assettype.ErrSizeOverflow

	// ErrClosed is returned when a closed view or package is used.
	ErrClosed = assettype.ErrClosed
)

// Errors re-exported from pack.
var (
	// ErrDigestMismatch is returned when blob bytes do not match their digest.
	ErrDigestMismatch = pack.ErrDigestMismatch
)
