package asset

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath converts a search path to the form used for registration and
// matching.
//
// It performs the following transformations:
//   - Makes the path absolute and cleans it
//   - Converts both "/" and "\" to the OS separator
//   - Lowercases it
//   - Ends it with exactly one separator
//
// NormalizePath is idempotent.
func NormalizePath(path string) (string, error) {
	p, err := normalizeFilename(path)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(p, string(os.PathSeparator)) + string(os.PathSeparator), nil
}

// normalizeFilename applies NormalizePath without the trailing separator.
func normalizeFilename(path string) (string, error) {
	p := strings.NewReplacer("/", string(os.PathSeparator), `\`, string(os.PathSeparator)).Replace(path)
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return strings.ToLower(abs), nil
}
