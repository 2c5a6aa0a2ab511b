package phtrees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func chainSnapshot() *Snapshot {
	return &Snapshot{
		Degree:    1,
		Dimension: 2,
		Triples:   chainTriples(),
		Levels:    chainLevels(),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	s := chainSnapshot()
	s.Triples = append(s.Triples, Triple{BirthIndex: -7, DeathIndex: 9, ParentDeath: Inf})
	s.Levels[-7] = -0.5

	buf := MarshalSnapshot(s)
	got, err := UnmarshalSnapshot(buf)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, buf, MarshalSnapshot(got))
}

func TestSnapshotDeterministic(t *testing.T) {
	t.Parallel()
	for i := 0; i < 20; i++ {
		require.Equal(t, MarshalSnapshot(chainSnapshot()), MarshalSnapshot(chainSnapshot()))
	}
}

func TestSnapshotSkipsUnknownFields(t *testing.T) {
	t.Parallel()
	buf := MarshalSnapshot(chainSnapshot())
	buf = protowire.AppendTag(buf, 15, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte("from a newer writer"))
	buf = protowire.AppendTag(buf, 16, protowire.Fixed32Type)
	buf = protowire.AppendFixed32(buf, 7)

	got, err := UnmarshalSnapshot(buf)
	require.NoError(t, err)
	assert.Equal(t, chainSnapshot(), got)
}

func TestSnapshotTruncated(t *testing.T) {
	t.Parallel()
	buf := MarshalSnapshot(chainSnapshot())
	_, err := UnmarshalSnapshot(buf[:len(buf)-3])
	require.Error(t, err)
}

func TestSnapshotMissingDeath(t *testing.T) {
	t.Parallel()
	var body []byte
	body = appendSint(body, tripleBirth, 3)
	var buf []byte
	buf = protowire.AppendTag(buf, snapshotTriple, protowire.BytesType)
	buf = protowire.AppendBytes(buf, body)
	_, err := UnmarshalSnapshot(buf)
	require.ErrorContains(t, err, "missing death index")
}

func TestSnapshotBuild(t *testing.T) {
	t.Parallel()
	coords := &indexResolver{kind: Coordinates}
	f, err := chainSnapshot().Build(&ForestConfig{Coordinates: coords, Degree: 9})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Degree())
	assert.Equal(t, 2, f.Dimension())
	assert.Equal(t, 2.5, f.Level(3))
	r, err := f.GeometryResolver(Coordinates)
	require.NoError(t, err)
	assert.Same(t, coords, r)

	f, err = chainSnapshot().Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
}
