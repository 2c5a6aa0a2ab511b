package phtrees

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
)

// Snapshot is everything needed to rebuild a forest apart from its
// resolvers.
type Snapshot struct {
	Degree    int
	Dimension int
	Triples   []Triple
	Levels    map[int]float64
}

// Build rebuilds the forest. Levels, Degree and Dimension in cfg are
// replaced by the snapshot's.
func (s *Snapshot) Build(cfg *ForestConfig) (*Forest, error) {
	c := ForestConfig{}
	if cfg != nil {
		c = *cfg
	}
	c.Levels = s.Levels
	c.Degree = s.Degree
	c.Dimension = s.Dimension
	return Build(s.Triples, &c)
}

// Field numbers of the snapshot wire format. Root triples omit
// tripleParent.
const (
	snapshotDegree    protowire.Number = 1
	snapshotDimension protowire.Number = 2
	snapshotTriple    protowire.Number = 3
	snapshotLevel     protowire.Number = 4

	tripleBirth  protowire.Number = 1
	tripleDeath  protowire.Number = 2
	tripleParent protowire.Number = 3

	levelIndex protowire.Number = 1
	levelValue protowire.Number = 2
)

func appendSint(buf []byte, num protowire.Number, v int) []byte {
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(v)))
}

// MarshalSnapshot encodes s deterministically: triples in order, levels by
// ascending index.
func MarshalSnapshot(s *Snapshot) []byte {
	var buf []byte
	buf = appendSint(buf, snapshotDegree, s.Degree)
	buf = appendSint(buf, snapshotDimension, s.Dimension)
	for _, t := range s.Triples {
		var body []byte
		body = appendSint(body, tripleBirth, t.BirthIndex)
		body = appendSint(body, tripleDeath, t.DeathIndex)
		if !t.IsRoot() {
			body = appendSint(body, tripleParent, t.ParentDeath)
		}
		buf = protowire.AppendTag(buf, snapshotTriple, protowire.BytesType)
		buf = protowire.AppendBytes(buf, body)
	}
	for _, i := range slices.Sorted(maps.Keys(s.Levels)) {
		var body []byte
		body = appendSint(body, levelIndex, i)
		body = protowire.AppendTag(body, levelValue, protowire.Fixed64Type)
		body = protowire.AppendFixed64(body, math.Float64bits(s.Levels[i]))
		buf = protowire.AppendTag(buf, snapshotLevel, protowire.BytesType)
		buf = protowire.AppendBytes(buf, body)
	}
	return buf
}

// UnmarshalSnapshot decodes a buffer produced by MarshalSnapshot. Unknown
// fields are skipped.
func UnmarshalSnapshot(buf []byte) (*Snapshot, error) {
	s := &Snapshot{Levels: map[int]float64{}}
	err := decodeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case (num == snapshotDegree || num == snapshotDimension) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, nil
			}
			if num == snapshotDegree {
				s.Degree = int(protowire.DecodeZigZag(v))
			} else {
				s.Dimension = int(protowire.DecodeZigZag(v))
			}
			return n, nil
		case num == snapshotTriple && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			t, err := decodeTriple(body)
			if err != nil {
				return 0, fmt.Errorf("triple %d: %w", len(s.Triples), err)
			}
			s.Triples = append(s.Triples, t)
			return n, nil
		case num == snapshotLevel && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			if err := decodeLevel(body, s.Levels); err != nil {
				return 0, fmt.Errorf("level: %w", err)
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

func decodeTriple(buf []byte) (Triple, error) {
	t := Triple{ParentDeath: Inf}
	var seenDeath bool
	err := decodeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return n, nil
		}
		x := int(protowire.DecodeZigZag(v))
		switch num {
		case tripleBirth:
			t.BirthIndex = x
		case tripleDeath:
			t.DeathIndex = x
			seenDeath = true
		case tripleParent:
			t.ParentDeath = x
		}
		return n, nil
	})
	if err == nil && !seenDeath {
		err = errors.New("missing death index")
	}
	return t, err
}

func decodeLevel(buf []byte, levels map[int]float64) error {
	var index int
	var value float64
	var seenIndex, seenValue bool
	err := decodeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == levelIndex && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			index, seenIndex = int(protowire.DecodeZigZag(v)), n >= 0
			return n, nil
		case num == levelValue && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			value, seenValue = math.Float64frombits(v), n >= 0
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return err
	}
	if !seenIndex || !seenValue {
		return errors.New("incomplete level entry")
	}
	levels[index] = value
	return nil
}

// decodeFields walks the tagged fields of buf. f returns the length of the
// field value it consumed, or a negative protowire error code.
func decodeFields(buf []byte, f func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return protowire.ParseError(n)
		}
		buf = buf[n:]
		m, err := f(num, typ, buf)
		if err != nil {
			return err
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		buf = buf[m:]
	}
	return nil
}
