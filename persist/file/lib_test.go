package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrhy/phtrees"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	p, err := NewPersistForPath(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)

	err = p.Store(ctx, "foo", []byte("hello"))
	require.NoError(t, err)
	loaded, err := p.Load(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), loaded)

	// names are content addresses, so a second store is a no-op
	err = p.Store(ctx, "foo", []byte("other"))
	require.NoError(t, err)
	loaded, err = p.Load(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), loaded)

	_, err = p.Load(ctx, "missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSnapshotRoundTrip(t *testing.T) {
	p, err := NewPersistForPath(t.TempDir())
	require.NoError(t, err)
	s := &phtrees.Snapshot{
		Degree:    1,
		Dimension: 2,
		Triples: []phtrees.Triple{
			{BirthIndex: 0, DeathIndex: 5, ParentDeath: phtrees.Inf},
			{BirthIndex: 1, DeathIndex: 4, ParentDeath: 5},
		},
		Levels: map[int]float64{0: 0, 1: 1, 4: 3, 5: 4},
	}
	name, err := phtrees.SaveSnapshot(ctx, p, s)
	require.NoError(t, err)
	loaded, err := phtrees.LoadSnapshot(ctx, p, name)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}
