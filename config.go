package asset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config describes a resolver in YAML form.
//
//	mapped_loader: true
//	packages: true
//	fallback: true
//	suppress_load_errors: false
//	package_extensions: [.pkg, .pak]
//	mount_concurrency: 4
//	search_paths:
//	  - priority: 10
//	    path: ./mods
//	  - priority: 0
//	    path: ${GAME_DIR}/assets
type Config struct {
	MappedLoader       bool               `yaml:"mapped_loader"`
	Packages           bool               `yaml:"packages"`
	Fallback           bool               `yaml:"fallback"`
	SuppressLoadErrors bool               `yaml:"suppress_load_errors"`
	PackageExtensions  []string           `yaml:"package_extensions"`
	MountConcurrency   int                `yaml:"mount_concurrency"`
	SearchPaths        []SearchPathConfig `yaml:"search_paths"`
}

// SearchPathConfig is one search path registration.
type SearchPathConfig struct {
	Priority int    `yaml:"priority"`
	Path     string `yaml:"path"`
}

// DefaultConfig returns a configuration with every backend enabled and no
// search paths.
func DefaultConfig() *Config {
	return &Config{
		MappedLoader:      true,
		Packages:          true,
		Fallback:          true,
		PackageExtensions: slices.Clone(DefaultPackageExtensions),
		MountConcurrency:  DefaultMountConcurrency,
	}
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
//
// Environment variables in search paths are expanded, and relative search
// paths are resolved against the directory holding the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range cfg.SearchPaths {
		if p := cfg.SearchPaths[i].Path; !filepath.IsAbs(p) {
			cfg.SearchPaths[i].Path = filepath.Join(base, p)
		}
	}
	return cfg, nil
}

// ParseConfig decodes a YAML configuration over DefaultConfig. Unknown keys
// are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i := range cfg.SearchPaths {
		sp := &cfg.SearchPaths[i]
		sp.Path = os.ExpandEnv(sp.Path)
		if sp.Path == "" {
			return nil, fmt.Errorf("search path %d: empty path", i)
		}
	}
	return cfg, nil
}

// Options returns the resolver options described by c.
func (c *Config) Options() []ResolverOption {
	opts := []ResolverOption{
		WithMappedLoader(c.MappedLoader),
		WithPackages(c.Packages),
		WithSuppressLoadErrors(c.SuppressLoadErrors),
		WithMountConcurrency(c.MountConcurrency),
	}
	if len(c.PackageExtensions) > 0 {
		opts = append(opts, WithPackageExtensions(c.PackageExtensions...))
	}
	if !c.Fallback {
		opts = append(opts, WithDecoder(nil))
	}
	return opts
}

// NewResolverFromConfig creates a resolver from cfg and registers its search
// paths in order. opts are applied after the options derived from cfg.
func NewResolverFromConfig(cfg *Config, opts ...ResolverOption) (*Resolver, error) {
	r := NewResolver(append(cfg.Options(), opts...)...)
	for _, sp := range cfg.SearchPaths {
		if err := r.AddSearchPath(sp.Priority, sp.Path); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("register search path %s: %w", sp.Path, err)
		}
	}
	return r, nil
}
