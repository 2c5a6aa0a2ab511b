// Package file stores encoded snapshots as files in one directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Persist implements the phtrees.Persist interface for storing and
// loading snapshots from files.
type Persist struct {
	basepath string
}

// Load loads the bytes persisted in the named file.
func (p Persist) Load(ctx context.Context, name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(p.basepath, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}

// Store persists the given bytes in a file of the given name, if it
// doesn't exist already. The file is written under a temporary name and
// renamed into place.
func (p Persist) Store(ctx context.Context, name string, bytes []byte) error {
	path := filepath.Join(p.basepath, name)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	tmp, err := os.CreateTemp(p.basepath, "."+name+".*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(bytes)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), path)
}

// NewPersistForPath returns a Persist that loads and stores snapshots as
// files in the directory at the given path, creating it if needed.
//
//	p, err := NewPersistForPath("/var/db/phtrees")
//	b, err := p.Load(ctx, "3q2-7wAAz0xS4bqyq0RFdf0ihZ7ELa0v9UIUUp0eAZc")
func NewPersistForPath(path string) (Persist, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Persist{}, err
	}
	return Persist{path}, nil
}
