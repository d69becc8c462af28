package asset

import (
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/asset/format"
	"github.com/meigma/asset/internal/testutil"
)

var testTexture = testutil.DDSSpec{Width: 8, Height: 8, Levels: 2, Format: format.R8G8B8A8Unorm}

// writePackage builds a package holding a texture at each of names and
// writes it to dir/file.
func writePackage(t *testing.T, dir, file string, names ...string) string {
	t.Helper()
	src := t.TempDir()
	files := make(map[string][]byte, len(names))
	for _, name := range names {
		files[name] = testTexture.Bytes(format.R8G8B8A8Unorm)
	}
	testutil.WriteFiles(t, src, files)
	dst := filepath.Join(dir, file)
	testutil.BuildPackage(t, src, dst)
	return dst
}

func closeView(t *testing.T, v View) {
	t.Helper()
	t.Cleanup(func() { _ = v.Close() })
}

func newResolver(t *testing.T, opts ...ResolverOption) *Resolver {
	t.Helper()
	r := NewResolver(opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func countingDecoder(calls *atomic.Int32) func() Decoder {
	return func() Decoder {
		calls.Add(1)
		return NewDDSDecoder()
	}
}

func TestResolveRejectsExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	png := testutil.WriteDDS(t, dir, "x.png", testTexture)
	writePackage(t, dir, "assets.pkg", "x.png")

	var decodes atomic.Int32
	r := newResolver(t, WithDecoder(countingDecoder(&decodes)))
	require.NoError(t, r.AddSearchPath(0, dir))

	_, err := r.Resolve(png)
	require.ErrorIs(t, err, ErrNotFound)
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, png, pathErr.Path)
	assert.Zero(t, decodes.Load())
}

func TestResolveExtensionCaseInsensitive(t *testing.T) {
	t.Parallel()

	path := testutil.WriteDDS(t, t.TempDir(), "Stone.DDS", testTexture)
	v, err := newResolver(t).Resolve(path)
	require.NoError(t, err)
	closeView(t, v)
	assert.IsType(t, &MappedView{}, v)
}

func TestResolveMappedFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteDDS(t, dir, "a.dds", testTexture)
	writePackage(t, dir, "assets.pkg", "a.dds")

	r := newResolver(t)
	require.NoError(t, r.AddSearchPath(0, dir))

	v, err := r.Resolve(path)
	require.NoError(t, err)
	closeView(t, v)
	require.IsType(t, &MappedView{}, v)
	assert.Equal(t, path, v.Descriptor().SourcePath)
}

func TestResolvePackaged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pkg := writePackage(t, dir, "assets.pkg", "textures/a.dds")

	r := newResolver(t, WithDecoder(nil))
	require.NoError(t, r.AddSearchPath(0, dir))

	v, err := r.Resolve(filepath.Join(dir, "Textures", "A.dds"))
	require.NoError(t, err)
	closeView(t, v)
	require.IsType(t, &PackagedView{}, v)
	assert.Equal(t, pkg, v.Descriptor().SourcePath)

	data, err := v.Data(0, 0)
	require.NoError(t, err)
	assert.Len(t, data, 8*8*4)
}

func TestResolvePriority(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	sub := filepath.Join(base, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	basePkg := writePackage(t, base, "base.pkg", "sub/a.dds")
	subPkg := writePackage(t, sub, "sub.pkg", "a.dds")
	name := filepath.Join(sub, "a.dds")

	tests := []struct {
		name              string
		basePrio, subPrio int
		want              string
	}{
		{"higher priority wins", 10, 5, basePkg},
		{"higher priority wins when registered first", 5, 10, subPkg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, WithDecoder(nil))
			require.NoError(t, r.AddSearchPath(tt.basePrio, base))
			require.NoError(t, r.AddSearchPath(tt.subPrio, sub))

			v, err := r.Resolve(name)
			require.NoError(t, err)
			closeView(t, v)
			assert.Equal(t, tt.want, v.Descriptor().SourcePath)
		})
	}
}

func TestResolveNewestRegistrationWins(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	sub := filepath.Join(base, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	basePkg := writePackage(t, base, "base.pkg", "sub/a.dds")
	subPkg := writePackage(t, sub, "sub.pkg", "a.dds")
	name := filepath.Join(sub, "a.dds")

	r := newResolver(t, WithDecoder(nil))
	require.NoError(t, r.AddSearchPath(5, base))
	require.NoError(t, r.AddSearchPath(5, sub))
	v, err := r.Resolve(name)
	require.NoError(t, err)
	closeView(t, v)
	assert.Equal(t, subPkg, v.Descriptor().SourcePath)

	r = newResolver(t, WithDecoder(nil))
	require.NoError(t, r.AddSearchPath(5, sub))
	require.NoError(t, r.AddSearchPath(5, base))
	v, err = r.Resolve(name)
	require.NoError(t, err)
	closeView(t, v)
	assert.Equal(t, basePkg, v.Descriptor().SourcePath)
}

func TestResolveReverseLexicographicPackages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePackage(t, dir, "a.pkg", "tex.dds")
	want := writePackage(t, dir, "b.pak", "tex.dds")
	writePackage(t, dir, "0.pkg", "tex.dds")

	r := newResolver(t, WithDecoder(nil))
	require.NoError(t, r.AddSearchPath(0, dir))

	v, err := r.Resolve(filepath.Join(dir, "tex.dds"))
	require.NoError(t, err)
	closeView(t, v)
	assert.Equal(t, want, v.Descriptor().SourcePath)
}

func TestAddSearchPathDuplicate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePackage(t, dir, "assets.pkg", "a.dds")

	var opens atomic.Int32
	r := newResolver(t, WithPackageOpener(func(path string) (Package, error) {
		opens.Add(1)
		return OpenPackage(path)
	}))
	require.NoError(t, r.AddSearchPath(1, dir))
	require.NoError(t, r.AddSearchPath(1, dir+string(os.PathSeparator)))
	require.NoError(t, r.AddSearchPath(2, filepath.ToSlash(dir)))

	root, err := NormalizePath(dir)
	require.NoError(t, err)
	assert.Equal(t, map[int][]string{1: {root}}, r.SearchPaths())
	assert.Equal(t, int32(1), opens.Load())
}

func TestAddSearchPathMissingDirectory(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing")
	r := newResolver(t)
	require.NoError(t, r.AddSearchPath(3, missing))

	root, err := NormalizePath(missing)
	require.NoError(t, err)
	assert.Equal(t, map[int][]string{3: {root}}, r.SearchPaths())

	_, err = r.Resolve(filepath.Join(missing, "a.dds"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCorruptPackageDiscarded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "z.pkg"), []byte("not a package"), 0o644))
	good := writePackage(t, dir, "a.pkg", "tex.dds")

	var logs bytes.Buffer
	r := newResolver(t, WithDecoder(nil), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, r.AddSearchPath(0, dir))
	assert.Contains(t, logs.String(), "failed to open package")

	v, err := r.Resolve(filepath.Join(dir, "tex.dds"))
	require.NoError(t, err)
	closeView(t, v)
	assert.Equal(t, good, v.Descriptor().SourcePath)
}

func TestPackageExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePackage(t, dir, "ASSETS.PAK", "a.dds")
	writePackage(t, dir, "other.bin", "b.dds")

	r := newResolver(t, WithDecoder(nil))
	require.NoError(t, r.AddSearchPath(0, dir))
	v, err := r.Resolve(filepath.Join(dir, "a.dds"))
	require.NoError(t, err)
	closeView(t, v)
	_, err = r.Resolve(filepath.Join(dir, "b.dds"))
	require.ErrorIs(t, err, ErrNotFound)

	r = newResolver(t, WithDecoder(nil), WithPackageExtensions(".BIN"))
	require.NoError(t, r.AddSearchPath(0, dir))
	v, err = r.Resolve(filepath.Join(dir, "b.dds"))
	require.NoError(t, err)
	closeView(t, v)
}

func TestResolvePackagesDisabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePackage(t, dir, "assets.pkg", "a.dds")

	var opens atomic.Int32
	r := newResolver(t, WithPackages(false), WithDecoder(nil), WithPackageOpener(func(path string) (Package, error) {
		opens.Add(1)
		return OpenPackage(path)
	}))
	require.NoError(t, r.AddSearchPath(0, dir))
	_, err := r.Resolve(filepath.Join(dir, "a.dds"))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, opens.Load())
}

func TestResolveFallbackDecoder(t *testing.T) {
	t.Parallel()

	path := testutil.WriteDDS(t, t.TempDir(), "a.dds", testTexture)

	var decodes atomic.Int32
	var logs bytes.Buffer
	r := newResolver(t,
		WithMappedLoader(false),
		WithDecoder(countingDecoder(&decodes)),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	v, err := r.Resolve(path)
	require.NoError(t, err)
	closeView(t, v)
	assert.IsType(t, &FallbackView{}, v)
	assert.Equal(t, int32(1), decodes.Load())
	assert.Contains(t, logs.String(), "CPU resident")

	r = newResolver(t, WithMappedLoader(false), WithDecoder(nil))
	_, err = r.Resolve(path)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveNotFoundSeverity(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.dds")
	for _, tt := range []struct {
		suppress bool
		level    string
	}{
		{false, "level=ERROR"},
		{true, "level=WARN"},
	} {
		var logs bytes.Buffer
		r := newResolver(t,
			WithSuppressLoadErrors(tt.suppress),
			WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		)
		_, err := r.Resolve(missing)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, logs.String(), tt.level)
		assert.Contains(t, logs.String(), "asset not found")
	}
}

func TestResolverCloseReleasesPackages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.pkg"), nil, 0o644))
	mock := testutil.NewMockPackage(t, nil, nil)

	r := NewResolver(WithPackageOpener(func(string) (Package, error) { return mock, nil }))
	require.NoError(t, r.AddSearchPath(0, dir))
	assert.Equal(t, 1, mock.Refs())

	require.NoError(t, r.Close())
	assert.Zero(t, mock.Refs())
	assert.Empty(t, r.SearchPaths())
}

func TestResolveViewsAreFresh(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePackage(t, dir, "assets.pkg", "a.dds")
	r := newResolver(t, WithDecoder(nil))
	require.NoError(t, r.AddSearchPath(0, dir))

	name := filepath.Join(dir, "a.dds")
	a, err := r.Resolve(name)
	require.NoError(t, err)
	closeView(t, a)
	b, err := r.Resolve(name)
	require.NoError(t, err)
	closeView(t, b)

	assert.NotSame(t, a, b)
	assert.Equal(t, a.ContentHash(), b.ContentHash())
}
