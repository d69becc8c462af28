package asset

import (
	"log/slog"
	"strings"

	"github.com/meigma/asset/pack"
)

// DefaultMountConcurrency bounds how many packages are opened at once when a
// search path is registered.
const DefaultMountConcurrency = 4

// DefaultPackageExtensions lists the file extensions mounted as packages.
var DefaultPackageExtensions = []string{".pkg", ".pak"}

// PackageOpener opens the package file at path.
type PackageOpener func(path string) (Package, error)

// OpenPackage opens path with pack.Open.
func OpenPackage(path string) (Package, error) {
	p, err := pack.Open(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// resolverConfig holds configuration for a Resolver.
type resolverConfig struct {
	logger             *slog.Logger
	mapped             bool
	packages           bool
	suppressLoadErrors bool
	decoder            func() Decoder
	opener             PackageOpener
	extensions         []string
	mountConcurrency   int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverConfig)

// WithLogger sets the logger used by the resolver and the views it returns.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.logger = logger
	}
}

// WithMappedLoader enables or disables the memory-mapped DDS backend
// (default: enabled).
func WithMappedLoader(enabled bool) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.mapped = enabled
	}
}

// WithPackages enables or disables package discovery and lookup
// (default: enabled).
func WithPackages(enabled bool) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.packages = enabled
	}
}

// WithSuppressLoadErrors logs unresolved names as warnings instead of errors.
func WithSuppressLoadErrors(suppress bool) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.suppressLoadErrors = suppress
	}
}

// WithDecoder sets the factory for fallback decoders (default: NewDDSDecoder).
// A nil factory disables the fallback backend.
func WithDecoder(factory func() Decoder) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.decoder = factory
	}
}

// WithPackageOpener sets how discovered package files are opened
// (default: OpenPackage).
func WithPackageOpener(opener PackageOpener) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.opener = opener
	}
}

// WithPackageExtensions replaces the extensions mounted as packages.
// Matching is case-insensitive.
func WithPackageExtensions(exts ...string) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.extensions = nil
		for _, ext := range exts {
			cfg.extensions = append(cfg.extensions, strings.ToLower(ext))
		}
	}
}

// WithMountConcurrency bounds how many packages are opened at once.
// Values below 1 use DefaultMountConcurrency.
func WithMountConcurrency(n int) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.mountConcurrency = n
	}
}
