// Package storage implements the filesystem image pool. Blobs live in a
// single directory named "<uid>-<filename>"; the uid prefix is the lookup
// key and every metadata row must match exactly one file.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"notepool/internal/core"
)

type Pool struct {
	dir string
}

func NewPool(dir string) (*Pool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating image pool %s: %v", dir, err)
	}
	return &Pool{dir: dir}, nil
}

// Path returns the on-disk location of a blob.
func (p *Pool) Path(name string) string {
	return filepath.Join(p.dir, name)
}

// Save writes a new blob. An existing file under the same name means an id
// collision and fails with ErrConflict rather than overwriting.
func (p *Pool) Save(name string, r io.Reader) error {
	path := p.Path(name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("blob %s already exists: %w", name, core.ErrConflict)
		}
		return fmt.Errorf("error creating blob %s: %v", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("error writing blob %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("error closing blob %s: %v", name, err)
	}
	return nil
}

// Resolve scans the pool for the blob whose name prefix (before the first
// dash) equals uid. Zero or multiple matches are an integrity fault.
func (p *Pool) Resolve(uid string) (string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return "", fmt.Errorf("error listing image pool: %v", err)
	}
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if prefix, _, ok := strings.Cut(entry.Name(), "-"); ok && prefix == uid {
			matches = append(matches, entry.Name())
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no blob for uid %s: %w", uid, core.ErrIntegrity)
	default:
		return "", fmt.Errorf("%d blobs for uid %s: %w", len(matches), uid, core.ErrIntegrity)
	}
}

func (p *Pool) Remove(name string) error {
	if err := os.Remove(p.Path(name)); err != nil {
		return fmt.Errorf("error removing blob %s: %v", name, err)
	}
	return nil
}
