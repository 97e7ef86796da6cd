package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDomainHasNoOutwardDependencies verifies that the domain layer imports
// nothing from the implementation layers. Domain packages may only depend on
// the standard library, each other, and the wireformat boundary contract.
func TestDomainHasNoOutwardDependencies(t *testing.T) {
	fset := token.NewFileSet()

	for _, dir := range []string{"errors", "ports"} {
		pattern := filepath.Join(".", dir, "*.go")
		files, err := filepath.Glob(pattern)
		require.NoError(t, err, "failed to glob %s files", dir)
		assert.NotEmpty(t, files, "domain/%s should contain Go files", dir)

		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkFileImports(t, fset, file, dir)
		}
	}
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename, pkg string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		if !strings.HasPrefix(importPath, "github.com/clara-ai/clara-go/") {
			continue
		}

		allowed := strings.Contains(importPath, "/domain/") ||
			strings.HasSuffix(importPath, "/wireformat")
		assert.True(t, allowed,
			"domain/%s (%s) imports implementation package %s",
			pkg, filepath.Base(filename), importPath)
	}
}
