package schema

import (
	"fmt"
)

// Persisted document shapes. A snapshot document carries a version, optional
// min/max bounds and an entity map; a bundle document wraps a versions list.

type entityDoc struct {
	Fields map[string]*entityDoc `yaml:"fields,omitempty" json:"fields,omitempty"`
	Type   string                `yaml:"type" json:"type"`
	CType  string                `yaml:"ctype,omitempty" json:"ctype,omitempty"`
	Size   int                   `yaml:"size,omitempty" json:"size,omitempty"`
	Offset int                   `yaml:"offset,omitempty" json:"offset,omitempty"`
	Count  int                   `yaml:"count,omitempty" json:"count,omitempty"`
}

type snapshotDoc struct {
	Entities map[string]*entityDoc `yaml:"entities,omitempty" json:"entities,omitempty"`
	Version  string                `yaml:"version,omitempty" json:"version,omitempty"`
	Min      string                `yaml:"min,omitempty" json:"min,omitempty"`
	Max      string                `yaml:"max,omitempty" json:"max,omitempty"`
}

type bundleDoc struct {
	Versions []*snapshotDoc `yaml:"versions" json:"versions"`
}

// document accepts either shape; the loader decides which one was given.
type document struct {
	Versions    []*snapshotDoc `yaml:"versions" json:"versions"`
	snapshotDoc `yaml:",inline"`
}

func (d *entityDoc) toEntity(path string) (*Entity, error) {
	if d == nil {
		return nil, fmt.Errorf("%s: empty entity", path)
	}

	var kind Kind
	switch {
	case d.Type != "":
		k, err := ParseKind(d.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		kind = k
	case len(d.Fields) > 0:
		kind = KindStruct
	default:
		kind = KindPrimitive
	}

	e := &Entity{
		Kind:   kind,
		CType:  d.CType,
		Size:   d.Size,
		Offset: d.Offset,
		Count:  d.Count,
	}

	if len(d.Fields) > 0 {
		e.Fields = make(map[string]*Entity, len(d.Fields))
		for name, fd := range d.Fields {
			f, err := fd.toEntity(path + "." + name)
			if err != nil {
				return nil, err
			}
			e.Fields[name] = f
		}
	}
	return e, nil
}

func (d *snapshotDoc) toSnapshot() (*Snapshot, error) {
	entities := make(map[string]*Entity, len(d.Entities))
	for name, ed := range d.Entities {
		e, err := ed.toEntity(name)
		if err != nil {
			return nil, err
		}
		entities[name] = e
	}
	return NewSnapshot(d.Version, d.Min, d.Max, entities)
}

func fromEntity(e *Entity) *entityDoc {
	d := &entityDoc{
		Type:   e.Kind.String(),
		CType:  e.CType,
		Size:   e.Size,
		Offset: e.Offset,
		Count:  e.Count,
	}
	if len(e.Fields) > 0 {
		d.Fields = make(map[string]*entityDoc, len(e.Fields))
		for name, f := range e.Fields {
			d.Fields[name] = fromEntity(f)
		}
	}
	return d
}

func fromSnapshot(s *Snapshot) *snapshotDoc {
	d := &snapshotDoc{
		Version:  s.Version,
		Entities: make(map[string]*entityDoc, len(s.Entities)),
	}
	// Bounds equal to the version are the default and are omitted.
	if s.Min != s.Version {
		d.Min = s.Min
	}
	if s.Max != s.Version {
		d.Max = s.Max
	}
	for name, e := range s.Entities {
		d.Entities[name] = fromEntity(e)
	}
	return d
}
