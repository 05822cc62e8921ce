package driver

import (
	"fmt"
	"os"

	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/parser"
)

// LoadProgram reads and parses one pseudocode source file.
func LoadProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	program, err := parser.ParseProgram(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// ResolveEntry returns the entry file named by the manifest, fetching it first when the
// manifest points at a git source.
func ResolveEntry(m *Manifest, fetcher *GitFetcher) (string, error) {
	if m.Source == nil || m.Source.Git == nil {
		return m.EntryPath(), nil
	}
	checkout, err := fetcher.Fetch(m.Source.Git)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", m.Source.Git.URL, err)
	}
	return checkout.Entry, nil
}
