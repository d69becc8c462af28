package asset

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/asset/pack"
)

// Resolver turns file names into views.
//
// A name is tried against three backends in order: the memory-mapped DDS
// loader, the packages mounted from registered search paths, and the
// fallback decoder. Only names with a .dds extension are resolved.
//
// A Resolver is not safe for concurrent use. Callers that register search
// paths while resolving must provide their own read-write exclusion.
type Resolver struct {
	cfg    resolverConfig
	mounts map[int][]*mount
}

// mount is one registered search path and the packages found in it.
type mount struct {
	root     string
	packages []Package
}

// NewResolver creates a resolver with no search paths.
func NewResolver(opts ...ResolverOption) *Resolver {
	cfg := resolverConfig{
		mapped:     true,
		packages:   true,
		decoder:    NewDDSDecoder,
		opener:     OpenPackage,
		extensions: DefaultPackageExtensions,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.mountConcurrency < 1 {
		cfg.mountConcurrency = DefaultMountConcurrency
	}
	return &Resolver{cfg: cfg, mounts: make(map[int][]*mount)}
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Resolver) log() *slog.Logger {
	if r.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.cfg.logger
}

func (r *Resolver) viewOptions() []ViewOption {
	return []ViewOption{ViewWithLogger(r.cfg.logger)}
}

// AddSearchPath registers path under priority. Higher priorities are
// searched first; within a priority the newest registration wins.
//
// Registering a path that is already registered, under any priority, is a
// no-op. When packages are enabled, the package files directly inside path
// are opened and mounted. Packages that fail to open are logged and skipped.
// A missing directory mounts no packages.
func (r *Resolver) AddSearchPath(priority int, path string) error {
	root, err := NormalizePath(path)
	if err != nil {
		return err
	}
	for p, ms := range r.mounts {
		for _, m := range ms {
			if m.root == root {
				r.log().Debug("search path already registered", "path", root, "priority", p)
				return nil
			}
		}
	}

	m := &mount{root: root}
	if r.cfg.packages {
		m.packages = r.mountPackages(path)
	}
	r.mounts[priority] = append(r.mounts[priority], m)
	r.log().Info("registered search path", "path", root, "priority", priority, "packages", len(m.packages))
	return nil
}

// mountPackages opens the package files directly inside dir, ordered by
// path descending.
func (r *Resolver) mountPackages(dir string) []Package {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log().Warn("failed to scan search path for packages", "path", dir, "error", err)
		}
		return nil
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !r.isPackage(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.SortFunc(paths, func(a, b string) int {
		return strings.Compare(b, a)
	})

	opened := make([]Package, len(paths))
	var g errgroup.Group
	g.SetLimit(r.cfg.mountConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			pkg, err := r.cfg.opener(p)
			if err != nil {
				r.log().Error("failed to open package", "path", p, "error", err)
				return nil
			}
			opened[i] = pkg
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never fail

	pkgs := make([]Package, 0, len(opened))
	for _, pkg := range opened {
		if pkg != nil {
			r.log().Debug("mounted package", "path", pkg.Filename())
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs
}

func (r *Resolver) isPackage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(r.cfg.extensions, ext)
}

// SearchPaths returns a copy of the registered search paths by priority.
func (r *Resolver) SearchPaths() map[int][]string {
	out := make(map[int][]string, len(r.mounts))
	for p, ms := range r.mounts {
		for _, m := range ms {
			out[p] = append(out[p], m.root)
		}
	}
	return out
}

// Resolve returns a fresh view of filename.
//
// Names without a .dds extension fail with ErrNotFound before any backend
// is tried. Running out of file descriptors while mapping fails immediately
// with ErrTooManyOpenFiles.
func (r *Resolver) Resolve(filename string) (View, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".dds") {
		return nil, r.notFound(filename, "unsupported extension")
	}

	if r.cfg.mapped {
		v, err := OpenMapped(filename, r.viewOptions()...)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, ErrTooManyOpenFiles) {
			r.log().Error("failed to open asset file", "path", filename, "error", err)
			return nil, err
		}
		r.log().Debug("mapped loader failed", "path", filename, "error", err)
	}

	if v := r.resolvePackaged(filename); v != nil {
		return v, nil
	}

	if r.cfg.decoder != nil {
		v, err := LoadFallback(filename, r.cfg.decoder(), r.viewOptions()...)
		if err == nil {
			r.log().Warn("asset loaded through the fallback decoder; its data is CPU resident", "path", filename)
			return v, nil
		}
		r.log().Debug("fallback decoder failed", "path", filename, "error", err)
	}

	return nil, r.notFound(filename, "no backend could load the asset")
}

// resolvePackaged searches the mounted packages for filename.
func (r *Resolver) resolvePackaged(filename string) View {
	if !r.cfg.packages || len(r.mounts) == 0 {
		return nil
	}
	name, err := normalizeFilename(filename)
	if err != nil {
		r.log().Debug("failed to normalize asset name", "path", filename, "error", err)
		return nil
	}

	priorities := slices.Sorted(maps.Keys(r.mounts))
	slices.Reverse(priorities)
	for _, p := range priorities {
		ms := r.mounts[p]
		for i := len(ms) - 1; i >= 0; i-- {
			m := ms[i]
			rel, ok := strings.CutPrefix(name, m.root)
			if !ok || rel == "" {
				continue
			}
			for _, pkg := range m.packages {
				idx := pkg.FindAsset(rel)
				if idx == pack.NoAsset {
					continue
				}
				v, err := NewPackagedView(pkg, idx, r.viewOptions()...)
				if err != nil {
					r.log().Error("failed to open packaged asset", "path", filename, "package", pkg.Filename(), "error", err)
					continue
				}
				return v
			}
		}
	}
	return nil
}

func (r *Resolver) notFound(filename, reason string) error {
	level := slog.LevelError
	if r.cfg.suppressLoadErrors {
		level = slog.LevelWarn
	}
	r.log().Log(context.Background(), level, "asset not found", "path", filename, "reason", reason)
	return &fs.PathError{Op: "resolve", Path: filename, Err: ErrNotFound}
}

// Close drops the resolver's references to every mounted package and
// forgets all search paths.
func (r *Resolver) Close() error {
	var errs []error
	for _, ms := range r.mounts {
		for _, m := range ms {
			for _, pkg := range m.packages {
				errs = append(errs, pkg.Close())
			}
		}
	}
	clear(r.mounts)
	return errors.Join(errs...)
}
