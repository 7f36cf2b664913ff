package binding

import (
	"reflect"
)

// Bound is implemented by host structs that name their schema entity.
// The method must have a value receiver; it is called on the zero value.
type Bound interface {
	SchemaEntity() string
}

// Type links a Go struct type to a schema entity.
type Type struct {
	GoType reflect.Type
	Entity string
	Fields []Field
}

// Field links one Go struct field to a field of the bound entity.
type Field struct {
	// SchemaName is the schema field read for this Go field.
	SchemaName string
	// SizeField names a sibling integer field holding the element count of a
	// pointer-indirected array.
	SizeField string
	GoName    string
	Index     []int
	// SizeConst is a fixed element count, used when neither the schema nor
	// SizeField provides one. Zero means unset.
	SizeConst int
}

// Field returns the binding of the named Go field, or nil.
func (t *Type) Field(goName string) *Field {
	for i := range t.Fields {
		if t.Fields[i].GoName == goName {
			return &t.Fields[i]
		}
	}
	return nil
}

// StructField returns the reflected Go field the binding refers to.
func (t *Type) StructField(f *Field) reflect.StructField {
	return t.GoType.FieldByIndex(f.Index)
}
