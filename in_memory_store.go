package phtrees

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type inMemoryStore struct {
	entries map[string][]byte
	l       sync.Mutex
}

// NewInMemoryStore provides a Persist that keeps snapshots in a map, usually
// for testing.
func NewInMemoryStore() Persist {
	return &inMemoryStore{entries: map[string][]byte{}}
}

func (ims *inMemoryStore) Store(ctx context.Context, key string, value []byte) error {
	ims.l.Lock()
	defer ims.l.Unlock()
	if _, ok := ims.entries[key]; !ok {
		ims.entries[key] = append([]byte(nil), value...)
	}
	return nil
}

func (ims *inMemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	ims.l.Lock()
	defer ims.l.Unlock()
	value, ok := ims.entries[key]
	if !ok {
		return nil, fmt.Errorf("inMemoryStore entry %s: %w", key, ErrNotFound)
	}
	return value, nil
}

func (ims *inMemoryStore) names() []string {
	ims.l.Lock()
	defer ims.l.Unlock()
	out := make([]string, 0, len(ims.entries))
	for k := range ims.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
