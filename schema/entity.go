package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the shape of a schema entity.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindPointer
	KindArray
	KindStruct
)

var kindNames = [...]string{
	KindPrimitive: "primitive",
	KindPointer:   "pointer",
	KindArray:     "array",
	KindStruct:    "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind converts the persisted name of a kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity type %q", s)
}

// Entity is one node of a snapshot: a struct, primitive, pointer or array.
//
// For pointers and arrays CType names the referenced element type. For arrays
// Size is the size of one element; total storage is Size * Count.
type Entity struct {
	Fields map[string]*Entity
	Name   string
	CType  string
	ID     uint64
	Size   int
	Offset int
	Count  int
	Kind   Kind
}

// Field returns the named child of a struct entity, or nil.
func (e *Entity) Field(name string) *Entity {
	if e == nil || e.Fields == nil {
		return nil
	}
	return e.Fields[name]
}

// FieldNames returns child names ordered by offset, then name.
func (e *Entity) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := e.Fields[names[i]], e.Fields[names[j]]
		if a != nil && b != nil && a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		return names[i] < names[j]
	})
	return names
}

// Storage is the number of bytes the entity occupies inside its parent.
func (e *Entity) Storage() int {
	if e.Kind == KindArray {
		return e.Size * e.Count
	}
	return e.Size
}

var floatCTypes = map[string]bool{
	"float":       true,
	"double":      true,
	"long double": true,
	"float32":     true,
	"float64":     true,
}

// IsFloat reports whether the entity is a primitive declared with a
// floating-point C type.
func (e *Entity) IsFloat() bool {
	return e.Kind == KindPrimitive && floatCTypes[strings.TrimSpace(e.CType)]
}

// IsInteger reports whether the entity is a primitive holding an integer.
func (e *Entity) IsInteger() bool {
	if e.Kind != KindPrimitive || e.IsFloat() {
		return false
	}
	switch e.Size {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

// IsSigned reports whether an integer entity is declared with a signed C type.
func (e *Entity) IsSigned() bool {
	ct := strings.TrimSpace(e.CType)
	switch {
	case strings.HasPrefix(ct, "unsigned"),
		strings.HasPrefix(ct, "uint"),
		strings.HasPrefix(ct, "u_"),
		ct == "uchar", ct == "ushort", ct == "ulong",
		ct == "size_t", ct == "uintptr_t", ct == "bool", ct == "_Bool":
		return false
	}
	return true
}

func (e *Entity) String() string {
	switch e.Kind {
	case KindArray:
		return fmt.Sprintf("%s[%d] @%d (%d bytes each)", e.CType, e.Count, e.Offset, e.Size)
	case KindPointer:
		return fmt.Sprintf("%s* @%d", e.CType, e.Offset)
	default:
		return fmt.Sprintf("%s @%d (%d bytes)", e.CType, e.Offset, e.Size)
	}
}

func (e *Entity) walk(fn func(*Entity)) {
	fn(e)
	for _, name := range e.FieldNames() {
		if f := e.Fields[name]; f != nil {
			f.walk(fn)
		}
	}
}
