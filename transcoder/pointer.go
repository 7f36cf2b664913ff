package transcoder

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rna/errors"
	"github.com/wippyai/rna/schema"
)

type pointerHeader struct {
	tc   *Transcoder
	elem *schema.Entity
	addr uint64
}

// Pointer is a lazy view over a single native pointee. Value decodes on
// every call, so it observes changes to the underlying memory.
type Pointer[T any] struct {
	h pointerHeader
}

type pointerView interface {
	pointerElem() reflect.Type
}

func (Pointer[T]) pointerElem() reflect.Type { return reflect.TypeFor[T]() }

var pointerViewType = reflect.TypeFor[pointerView]()

func isPointerView(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.Implements(pointerViewType)
}

func (p Pointer[T]) IsNull() bool { return p.h.addr == 0 }

func (p Pointer[T]) Addr() uint64 { return p.h.addr }

// Entity returns the pointee entity, or nil when the pointee is copied raw.
func (p Pointer[T]) Entity() *schema.Entity { return p.h.elem }

// Value decodes the pointee.
func (p Pointer[T]) Value() (T, error) {
	var v T
	if p.h.addr == 0 {
		return v, errors.NilPointer(errors.PhaseAccess, reflect.TypeFor[T]().String())
	}
	err := decodeElement(p.h.tc, p.h.elem, p.h.addr, &v)
	return v, err
}

// AsArray views count elements starting at the pointee.
func (p Pointer[T]) AsArray(count int) (Array[T], error) {
	if count < 0 {
		return Array[T]{}, errors.InvalidInput(errors.PhaseAccess, "negative element count")
	}
	if p.h.addr == 0 {
		count = 0
	}
	return Array[T]{h: arrayHeader{
		tc:     p.h.tc,
		elem:   p.h.elem,
		addr:   p.h.addr,
		count:  count,
		stride: stride(p.h.elem, reflect.TypeFor[T]()),
	}}, nil
}

// pointerConverter views a schema pointer field as a Pointer.
type pointerConverter struct{}

func (pointerConverter) Name() string { return "pointer" }

func (pointerConverter) CanConvert(field *schema.Entity, goType reflect.Type) bool {
	return field.Kind == schema.KindPointer && isPointerView(goType)
}

func (pointerConverter) Emit(s *State) (Step, error) {
	elem := s.Element(s.Child.CType, viewElem(s.Field.Type))
	width := pointerWidth(s.Child)

	tc, off := s.Transcoder, s.Child.Offset
	return func(base uint64, dst unsafe.Pointer) error {
		addr, err := offsetAddr(base, off)
		if err != nil {
			return err
		}
		target, err := tc.readPointer(addr, width)
		if err != nil {
			return err
		}
		*(*pointerHeader)(dst) = pointerHeader{tc: tc, elem: elem, addr: target}
		return nil
	}, nil
}

// pointerElementStep decodes a Pointer that is itself a view element, as in
// an array of pointers. entity is either the pointer field or the pointee.
func pointerElementStep(tc *Transcoder, goType reflect.Type, entity *schema.Entity) Step {
	goElem := viewElem(goType)
	var pointee *schema.Entity
	switch {
	case entity == nil:
		pointee = tc.element("", goElem)
	case entity.Kind == schema.KindStruct:
		pointee = entity
	default:
		pointee = tc.element(entity.CType, goElem)
	}
	width := pointerWidth(entity)

	return func(base uint64, dst unsafe.Pointer) error {
		target, err := tc.readPointer(base, width)
		if err != nil {
			return err
		}
		*(*pointerHeader)(dst) = pointerHeader{tc: tc, elem: pointee, addr: target}
		return nil
	}
}
