package asset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sep := string(os.PathSeparator)
	want := strings.ToLower(dir) + sep

	tests := []struct {
		name string
		in   string
	}{
		{"plain", dir},
		{"trailing separator", dir + sep},
		{"forward slashes", filepath.ToSlash(dir) + "/"},
		{"backslashes", strings.ReplaceAll(dir, sep, `\`) + `\`},
		{"upper case", strings.ToUpper(dir)},
		{"dot segments", filepath.Join(dir, "a", "..") + sep + "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestNormalizePathIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"relative/Dir", "/", "./x/../Y/", `a\B\c`} {
		once, err := NormalizePath(in)
		require.NoError(t, err)
		twice, err := NormalizePath(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, in)
		assert.True(t, strings.HasSuffix(once, string(os.PathSeparator)))
		assert.False(t, strings.HasSuffix(once, string(os.PathSeparator)+string(os.PathSeparator)))
	}
}

func TestNormalizeFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root, err := NormalizePath(dir)
	require.NoError(t, err)

	name, err := normalizeFilename(filepath.ToSlash(dir) + "/Textures/Stone.DDS")
	require.NoError(t, err)
	rel, ok := strings.CutPrefix(name, root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("textures", "stone.dds"), rel)
}
