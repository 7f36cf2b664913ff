package binding

import (
	"reflect"

	"github.com/wippyai/rna/errors"
)

// FieldOption adjusts a field binding declared through a Builder.
type FieldOption func(*Field)

// SizeField names the sibling integer field that holds the element count.
func SizeField(name string) FieldOption {
	return func(f *Field) { f.SizeField = name }
}

// Count sets a fixed element count.
func Count(n int) FieldOption {
	return func(f *Field) { f.SizeConst = n }
}

// Builder declares a binding without struct tags or a Bound method:
//
//	binding.For[Mesh]("Mesh").
//		Field("Vertices", "mvert", binding.SizeField("totvert")).
//		Field("Name", "name").
//		Register(table)
type Builder[T any] struct {
	t   *Type
	err error
}

// For starts a binding of T to the named schema entity.
func For[T any](entity string) *Builder[T] {
	goType := reflect.TypeFor[T]()
	b := &Builder[T]{t: &Type{GoType: goType, Entity: entity}}
	switch {
	case goType.Kind() != reflect.Struct:
		b.err = errors.TypeMismatch(errors.PhaseBind, nil, goType.String(), "struct")
	case entity == "":
		b.err = errors.InvalidInput(errors.PhaseBind, "entity name is required")
	}
	return b
}

// Field binds the Go field goName to the schema field schemaName. Declaring
// the same Go field twice keeps the last declaration.
func (b *Builder[T]) Field(goName, schemaName string, opts ...FieldOption) *Builder[T] {
	if b.err != nil {
		return b
	}

	sf, ok := b.t.GoType.FieldByName(goName)
	if !ok || !sf.IsExported() {
		b.err = errors.NotFound(errors.PhaseBind, "exported field", goName)
		return b
	}
	if len(sf.Index) != 1 {
		b.err = errors.InvalidInput(errors.PhaseBind, "field "+goName+" is promoted from an embedded struct")
		return b
	}

	f := Field{SchemaName: schemaName, GoName: goName, Index: sf.Index}
	for _, opt := range opts {
		opt(&f)
	}
	if f.SizeConst < 0 {
		b.err = errors.InvalidInput(errors.PhaseBind, "negative count for field "+goName)
		return b
	}

	if existing := b.t.Field(goName); existing != nil {
		*existing = f
	} else {
		b.t.Fields = append(b.t.Fields, f)
	}
	return b
}

// Build returns the binding or the first declaration error.
func (b *Builder[T]) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.t, nil
}

// Register builds the binding and installs it in table.
func (b *Builder[T]) Register(table *Table) error {
	t, err := b.Build()
	if err != nil {
		return err
	}
	table.Register(t)
	return nil
}
