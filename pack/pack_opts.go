package pack

import "log/slog"

const (
	// DefaultMaxDirectorySize is the default limit on the directory size (64MB).
	DefaultMaxDirectorySize = 64 << 20

	// DefaultMaxDecoderMemory is the default maximum decoder memory (256MB).
	DefaultMaxDecoderMemory = 256 << 20
)

// Option configures a Package.
type Option func(*Package)

// WithMaxDirectorySize limits the size of the directory read by Open.
func WithMaxDirectorySize(limit uint64) Option {
	return func(p *Package) {
		p.maxDirectorySize = limit
	}
}

// WithMaxDecoderMemory limits the memory used by the zstd decoder in DecodeBlob.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(p *Package) {
		p.maxDecoderMemory = limit
	}
}

// WithLogger sets the logger used by the package.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Package) {
		p.logger = logger
	}
}
