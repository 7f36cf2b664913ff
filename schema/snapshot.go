package schema

import (
	"sort"
	"sync/atomic"

	"github.com/wippyai/rna/errors"
)

// nextID hands out entity identities. It is process-wide so that entities of
// different snapshots never share an identity.
var nextID atomic.Uint64

// Snapshot is one versioned description of native layouts. It is immutable
// once constructed.
type Snapshot struct {
	Entities map[string]*Entity
	byID     map[uint64]*Entity
	Version  string
	Min      string
	Max      string
	rng      Range
}

// NewSnapshot builds a snapshot from top-level entities. Min and Max default
// to version when empty. Every reachable entity receives a fresh identity and
// the layout invariants are checked.
func NewSnapshot(version, min, max string, entities map[string]*Entity) (*Snapshot, error) {
	if version == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "snapshot version is required")
	}
	if min == "" {
		min = version
	}
	if max == "" {
		max = version
	}

	lo, err := ParseVersion(min)
	if err != nil {
		return nil, errors.Load("snapshot min version", err)
	}
	hi, err := ParseVersion(max)
	if err != nil {
		return nil, errors.Load("snapshot max version", err)
	}
	if hi.LT(lo) {
		return nil, errors.InvalidInput(errors.PhaseLoad, "snapshot max version "+max+" is below min "+min)
	}

	if entities == nil {
		entities = make(map[string]*Entity)
	}
	s := &Snapshot{
		Entities: entities,
		Version:  version,
		Min:      min,
		Max:      max,
		rng:      Range{Min: lo, Max: hi},
	}
	s.index()

	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// index names and numbers every entity depth-first, parents before children,
// visiting top-level entities in name order.
func (s *Snapshot) index() {
	s.byID = make(map[uint64]*Entity)
	for _, name := range s.Names() {
		top := s.Entities[name]
		if top == nil {
			continue
		}
		top.Name = name
		top.walk(func(e *Entity) {
			for fieldName, f := range e.Fields {
				if f != nil {
					f.Name = fieldName
				}
			}
			e.ID = nextID.Add(1)
			s.byID[e.ID] = e
		})
	}
}

// Entity returns the top-level entity with the given name, or nil.
func (s *Snapshot) Entity(name string) *Entity {
	return s.Entities[name]
}

// ByID returns any entity reachable from the snapshot by identity, or nil.
func (s *Snapshot) ByID(id uint64) *Entity {
	return s.byID[id]
}

// Names returns top-level entity names in sorted order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Entities))
	for name := range s.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Range returns the inclusive version range the snapshot covers.
func (s *Snapshot) Range() Range {
	return s.rng
}

// Len returns the number of entities reachable from the snapshot.
func (s *Snapshot) Len() int {
	return len(s.byID)
}
