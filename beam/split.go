package beam

import (
	"errors"
	"fmt"

	"github.com/hbushouse/jwreftools/conf"
)

// ============================================================================
// BEAM SPLITTER — flat conf record → one record per beam
// ============================================================================
// Pipeline:
//   1. Keep only beam-qualified keys (BeamKeyPattern); everything else is
//      dropped from the result.
//   2. Strip the beam token from each key and file it under its beam.
//   3. Within each beam, fold ROOT_0 / ROOT_1 into ROOT = (v0, v1).
//
// Folding quirk: a root with only one member present, or with a member that
// is not a plain number, is dropped without error. Both members disappear.
// ============================================================================

var (
	// ErrUnexpectedRange is returned for a range key whose suffix digit is
	// neither 0 nor 1.
	ErrUnexpectedRange = errors.New("Unexpected range variable")

	// ErrRangeCollision is returned when a range root is already present in
	// the beam as an ordinary key.
	ErrRangeCollision = errors.New("range variable collides with existing key")
)

// Beams holds the per-beam records in order of first appearance.
type Beams struct {
	names []string
	byKey map[string]*conf.Record
}

// Names returns the beam tokens in order of first appearance.
func (b *Beams) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Get returns the record of beam name.
func (b *Beams) Get(name string) (*conf.Record, bool) {
	r, ok := b.byKey[name]
	return r, ok
}

// Len returns the number of beams.
func (b *Beams) Len() int { return len(b.names) }

func (b *Beams) record(name string) *conf.Record {
	if r, ok := b.byKey[name]; ok {
		return r
	}
	r := conf.NewRecord()
	b.names = append(b.names, name)
	b.byKey[name] = r
	return r
}

// Split partitions rec by beam and folds range keys into pairs.
func Split(rec *conf.Record) (*Beams, error) {
	if rec == nil {
		return nil, errors.New("beam: nil record")
	}

	beams := &Beams{byKey: make(map[string]*conf.Record)}
	for _, key := range rec.Keys() {
		token, ok := MatchBeamKey(key)
		if !ok {
			continue
		}
		v, _ := rec.Get(key)
		beams.record(token).Set(StripBeam(key, token), v)
	}

	for _, name := range beams.names {
		if err := foldRanges(beams.byKey[name]); err != nil {
			return nil, fmt.Errorf("beam %s: %w", name, err)
		}
	}
	return beams, nil
}

type rangeMembers struct {
	keys []string
	zero *conf.Value
	one  *conf.Value
}

// foldRanges merges ROOT_0/ROOT_1 members of r into ROOT pairs in place.
func foldRanges(r *conf.Record) error {
	var roots []string
	members := make(map[string]*rangeMembers)

	for _, key := range r.Keys() {
		root, digit, ok := MatchRangeKey(key)
		if !ok {
			continue
		}
		v, _ := r.Get(key)
		m, seen := members[root]
		if !seen {
			m = &rangeMembers{}
			members[root] = m
			roots = append(roots, root)
		}
		m.keys = append(m.keys, key)
		switch digit {
		case '0':
			m.zero = &v
		case '1':
			m.one = &v
		default:
			return fmt.Errorf("%w %s", ErrUnexpectedRange, key)
		}
	}

	for _, root := range roots {
		if r.Has(root) {
			return fmt.Errorf("%w: %s", ErrRangeCollision, root)
		}
	}

	for _, root := range roots {
		m := members[root]
		for _, k := range m.keys {
			r.Delete(k)
		}
		if m.zero == nil || m.one == nil {
			continue
		}
		c0, ok0 := m.zero.Float()
		c1, ok1 := m.one.Float()
		if !ok0 || !ok1 {
			continue
		}
		r.Set(root, conf.Pair(c0, c1))
	}
	return nil
}
