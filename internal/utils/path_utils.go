package utils

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/geninst/internal/config"
)

// ResolveImportPath resolves an include path relative to a base directory.
// Absolute paths are returned as is.
func ResolveImportPath(baseDir, importPath string) string {
	if importPath == "" || filepath.IsAbs(importPath) {
		return importPath
	}
	if baseDir != "." && baseDir != "" {
		return filepath.Join(baseDir, importPath)
	}
	return filepath.Clean(importPath)
}

// ExtractUniverseName derives a universe name from a file path: the base
// filename without a recognized universe extension.
func ExtractUniverseName(path string) string {
	name := filepath.Base(path)
	for _, ext := range config.UniverseFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
