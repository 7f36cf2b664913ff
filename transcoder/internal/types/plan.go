package types

import (
	"reflect"
	"unsafe"
)

// Step decodes one field. base is the native address of the enclosing
// struct, dst the start of the Go value being filled.
type Step func(base uint64, dst unsafe.Pointer) error

// Plan is the compiled decoder for one (Go type, entity) pair.
type Plan struct {
	GoType     reflect.Type
	Entity     string
	Fields     []Field
	Steps      []Step
	GoSize     uintptr
	EntityID   uint64
	SchemaSize int
	// Copy marks a plan that copies raw bytes instead of decoding fields.
	Copy bool
}

// Field describes a compiled field step, for diagnostics.
type Field struct {
	Name         string
	SchemaName   string
	Converter    string
	GoOffset     uintptr
	SchemaOffset int
	Rule         Rule
}

// Run executes every step against dst, stopping at the first error.
func (p *Plan) Run(base uint64, dst unsafe.Pointer) error {
	for _, step := range p.Steps {
		if err := step(base, dst); err != nil {
			return err
		}
	}
	return nil
}

// IsPure reports whether every field is a primitive read or raw copy, so the
// plan never follows a pointer.
func (p *Plan) IsPure() bool {
	if p.Copy {
		return true
	}
	for _, f := range p.Fields {
		if f.Rule != RulePrimitive && f.Rule != RuleCopy {
			return false
		}
	}
	return true
}
