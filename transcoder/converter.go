package transcoder

import (
	"bytes"
	"reflect"
	"unsafe"

	"github.com/wippyai/rna/binding"
	"github.com/wippyai/rna/schema"
	"github.com/wippyai/rna/transcoder/internal/types"
)

// Step decodes one field. Steps emitted by a Converter are called with the
// native address of the enclosing struct and a pointer to the Go field.
type Step = types.Step

// Converter handles a pairing of schema field shape and Go field type that
// the engine does not decode itself. The first converter whose CanConvert
// returns true owns the field.
type Converter interface {
	CanConvert(field *schema.Entity, goType reflect.Type) bool
	Emit(state *State) (Step, error)
}

// State is what a converter sees while a struct plan is being built.
type State struct {
	Transcoder *Transcoder
	// Parent is the entity of the enclosing struct.
	Parent *schema.Entity
	// Child is the schema field being decoded.
	Child   *schema.Entity
	Binding *binding.Field
	Field   reflect.StructField
	// Plan is the enclosing plan, still under construction.
	Plan *types.Plan
	Path []string
}

// Addr returns the native address of the field inside the struct at base.
func (s *State) Addr(base uint64) (uint64, error) {
	return offsetAddr(base, s.Child.Offset)
}

// Element resolves the entity describing elements of goElem named by ctype.
// It falls back to goElem's binding and returns nil when neither resolves,
// in which case elements are copied raw.
func (s *State) Element(ctype string, goElem reflect.Type) *schema.Entity {
	return s.Transcoder.element(ctype, goElem)
}

func (tc *Transcoder) element(ctype string, goElem reflect.Type) *schema.Entity {
	if ctype != "" {
		if e := tc.snap.Entity(ctype); e != nil {
			return e
		}
	}
	if b, _ := tc.bindings.Resolve(goElem); b != nil {
		return tc.snap.Entity(b.Entity)
	}
	return nil
}

var builtinConverters = []Converter{
	fixedArrayConverter{},
	indirectArrayConverter{},
	pointerConverter{},
	listConverter{},
	stringConverter{},
}

// stringConverter decodes a fixed char buffer into a Go string, stopping at
// the first NUL.
type stringConverter struct{}

func (stringConverter) Name() string { return "string" }

func (stringConverter) CanConvert(field *schema.Entity, goType reflect.Type) bool {
	return field.Kind == schema.KindArray && field.Size == 1 && goType.Kind() == reflect.String
}

func (stringConverter) Emit(s *State) (Step, error) {
	n, off := s.Child.Storage(), s.Child.Offset
	tc := s.Transcoder
	return func(base uint64, dst unsafe.Pointer) error {
		addr, err := offsetAddr(base, off)
		if err != nil {
			return err
		}
		buf := make([]byte, n)
		if err := tc.mem.Read(addr, buf); err != nil {
			return err
		}
		if i := bytes.IndexByte(buf, 0); i >= 0 {
			buf = buf[:i]
		}
		*(*string)(dst) = string(buf)
		return nil
	}, nil
}
