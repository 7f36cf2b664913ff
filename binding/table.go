package binding

import (
	"reflect"
	"sync"
)

// Table resolves Go types to their bindings. Explicit registrations take
// precedence over bindings derived from Bound and struct tags. Derived
// results, including failures, are memoized. A Table is safe for concurrent use.
//
// Transcoders cache decode plans per Go type, so a table should be fully
// registered before it is handed to one.
type Table struct {
	explicit sync.Map // reflect.Type -> *Type
	derived  sync.Map // reflect.Type -> derivedEntry
}

type derivedEntry struct {
	t   *Type
	err error
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Register installs an explicit binding, replacing any earlier one for the
// same Go type. Register bindings before the first decode: a transcoder
// keeps the plan it built from the binding it saw first.
func (t *Table) Register(b *Type) {
	t.explicit.Store(b.GoType, b)
}

// Lookup returns the binding for goType, deriving it on first use.
func (t *Table) Lookup(goType reflect.Type) (*Type, bool) {
	b, err := t.Resolve(goType)
	return b, b != nil && err == nil
}

// Resolve is Lookup with the derivation error surfaced. A nil binding with a
// nil error means the type is unbound.
func (t *Table) Resolve(goType reflect.Type) (*Type, error) {
	if goType == nil {
		return nil, nil
	}
	if b, ok := t.explicit.Load(goType); ok {
		return b.(*Type), nil
	}
	if e, ok := t.derived.Load(goType); ok {
		entry := e.(derivedEntry)
		return entry.t, entry.err
	}

	b, _, err := Derive(goType)
	entry, _ := t.derived.LoadOrStore(goType, derivedEntry{t: b, err: err})
	d := entry.(derivedEntry)
	return d.t, d.err
}
