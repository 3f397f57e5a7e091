package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveImportPath(t *testing.T) {
	assert.Equal(t, filepath.Join("conf", "base.yaml"), ResolveImportPath("conf", "base.yaml"))
	assert.Equal(t, filepath.Join("conf", "..", "base.yaml"), ResolveImportPath("conf", "../base.yaml"))
	assert.Equal(t, "base.yaml", ResolveImportPath(".", "./base.yaml"))
	abs := filepath.Join(string(filepath.Separator), "etc", "base.yaml")
	assert.Equal(t, abs, ResolveImportPath("conf", abs))
}

func TestExtractUniverseName(t *testing.T) {
	assert.Equal(t, "collections", ExtractUniverseName("/tmp/collections.yaml"))
	assert.Equal(t, "extra", ExtractUniverseName("extra.yml"))
	assert.Equal(t, "notes.txt", ExtractUniverseName("notes.txt"))
}
