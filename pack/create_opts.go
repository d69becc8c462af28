package pack

import "log/slog"

const (
	// DefaultMaxFiles is the default limit used when no MaxFiles option is set.
	DefaultMaxFiles = 200_000

	// DefaultTailDimension is the default largest level edge packed into the mip tail.
	DefaultTailDimension = 32
)

// createConfig holds configuration for package creation.
type createConfig struct {
	compression   Compression
	tailDimension uint32
	maxFiles      int
	concurrency   int
	logger        *slog.Logger
}

// CreateOption configures package creation.
type CreateOption func(*createConfig)

// CreateWithCompression sets the compression algorithm to use.
// Use CompressionNone to store blobs uncompressed, CompressionZstd for zstd.
// A compressed blob is only kept when it is smaller than its input.
func CreateWithCompression(c Compression) CreateOption {
	return func(cfg *createConfig) {
		cfg.compression = c
	}
}

// CreateWithTailDimension sets the largest level edge stored in the shared
// mip tail blob of each layer. Zero disables the mip tail.
func CreateWithTailDimension(dim uint32) CreateOption {
	return func(cfg *createConfig) {
		cfg.tailDimension = dim
	}
}

// CreateWithMaxFiles limits the number of files included in the package.
// Zero uses DefaultMaxFiles. Negative means no limit.
func CreateWithMaxFiles(n int) CreateOption {
	return func(cfg *createConfig) {
		cfg.maxFiles = n
	}
}

// CreateWithConcurrency bounds the number of blobs compressed at once.
// Values below 1 use GOMAXPROCS.
func CreateWithConcurrency(n int) CreateOption {
	return func(cfg *createConfig) {
		cfg.concurrency = n
	}
}

// CreateWithLogger sets the logger used during creation.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(cfg *createConfig) {
		cfg.logger = logger
	}
}
