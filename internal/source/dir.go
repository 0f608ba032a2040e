package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirFetcher reads tables from a local directory laid out like the remote
// repository's data folder.
type DirFetcher struct {
	dir string
}

// NewDirFetcher creates a fetcher rooted at dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Fetch reads the table file and returns its decoded text.
func (f *DirFetcher) Fetch(ctx context.Context, t Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(filepath.Join(f.dir, filepath.FromSlash(t.Path)))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", t.Name, err)
	}
	text, err := Decode(raw, "")
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.Name, err)
	}
	return text, nil
}
