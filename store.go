package phtrees

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/minio/blake2b-simd"
)

// Persist is the interface for loading and storing encoded snapshots. A name
// is derived from the content, so stored bytes are never modified.
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(context.Context, string, []byte) error
	// Load retrieves the previously-stored bytes by the given name.
	Load(context.Context, string) ([]byte, error)
}

// SnapshotName is the content address of an encoded snapshot.
func SnapshotName(encoded []byte) string {
	sum := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SaveSnapshot encodes s, stores it under its content address and returns
// that name.
func SaveSnapshot(ctx context.Context, p Persist, s *Snapshot) (string, error) {
	encoded := MarshalSnapshot(s)
	name := SnapshotName(encoded)
	if err := p.Store(ctx, name, encoded); err != nil {
		return "", fmt.Errorf("persist store %s: %w", name, err)
	}
	return name, nil
}

// LoadSnapshot loads the named snapshot and checks that its content still
// hashes to name.
func LoadSnapshot(ctx context.Context, p Persist, name string) (*Snapshot, error) {
	encoded, err := p.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("persist load %s: %w", name, err)
	}
	if got := SnapshotName(encoded); got != name {
		return nil, fmt.Errorf("snapshot %s: content hashes to %s", name, got)
	}
	s, err := UnmarshalSnapshot(encoded)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return s, nil
}
