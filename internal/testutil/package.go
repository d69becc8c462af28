package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/meigma/asset/pack"
)

// WriteFiles writes files, keyed by slash-separated relative path, below dir.
func WriteFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
}

// BuildPackage packs srcDir and writes the package to dst.
func BuildPackage(tb testing.TB, srcDir, dst string, opts ...pack.CreateOption) {
	tb.Helper()
	var buf bytes.Buffer
	if err := pack.Create(context.Background(), srcDir, &buf, opts...); err != nil {
		tb.Fatalf("create package: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		tb.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		tb.Fatalf("write package: %v", err)
	}
}
