package transcoder

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/wippyai/rna/errors"
	"github.com/wippyai/rna/schema"
	"github.com/wippyai/rna/transcoder/internal/abi"
)

// arrayHeader is the layout shared by every Array instantiation, which lets
// converters fill an Array[T] without knowing T.
type arrayHeader struct {
	tc     *Transcoder
	elem   *schema.Entity
	addr   uint64
	count  int
	stride int
}

// Array is a lazy view over count elements starting at a native address.
// Elements are decoded on access; nothing is cached or copied ahead.
// Stride follows the schema element size, not the Go size of T.
type Array[T any] struct {
	h arrayHeader
}

type arrayView interface {
	arrayElem() reflect.Type
}

func (Array[T]) arrayElem() reflect.Type { return reflect.TypeFor[T]() }

var arrayViewType = reflect.TypeFor[arrayView]()

func isArrayView(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.Implements(arrayViewType)
}

func (a Array[T]) Len() int { return a.h.count }

func (a Array[T]) Addr() uint64 { return a.h.addr }

// Entity returns the element entity, or nil when elements are copied raw.
func (a Array[T]) Entity() *schema.Entity { return a.h.elem }

func (a Array[T]) Stride() int { return a.h.stride }

func (a Array[T]) IsNull() bool { return a.h.addr == 0 }

// At decodes element i.
func (a Array[T]) At(i int) (T, error) {
	var v T
	if i < 0 || i >= a.h.count {
		return v, errors.IndexOutOfRange(i, a.h.count)
	}
	addr, ok := abi.Element(a.h.addr, i, a.h.stride)
	if !ok {
		return v, errors.Overflow(errors.PhaseAccess, nil, "element address overflows")
	}
	err := decodeElement(a.h.tc, a.h.elem, addr, &v)
	return v, err
}

// All yields elements in order. Iteration stops after the first error.
func (a Array[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i := 0; i < a.h.count; i++ {
			v, err := a.At(i)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Values decodes every element into a slice.
func (a Array[T]) Values() ([]T, error) {
	if a.h.count > abi.MaxCollect {
		return nil, errors.Overflow(errors.PhaseAccess, nil, "array too large to collect")
	}
	out := make([]T, 0, a.h.count)
	for v, err := range a.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Reinterpret views the memory of a as count elements of U. The element
// entity and stride are resolved anew from U's binding; unbound U are
// copied raw with their Go size as stride, and Pointer elements step by the
// host pointer width.
func Reinterpret[U, T any](a Array[T], count int) (Array[U], error) {
	if count < 0 {
		return Array[U]{}, errors.InvalidInput(errors.PhaseAccess, "negative element count")
	}
	if a.h.tc == nil {
		if count == 0 {
			return Array[U]{}, nil
		}
		return Array[U]{}, errors.NilPointer(errors.PhaseAccess, reflect.TypeFor[Array[T]]().String())
	}

	goElem := reflect.TypeFor[U]()
	elem := a.h.tc.element("", goElem)
	return Array[U]{h: arrayHeader{
		tc:     a.h.tc,
		elem:   elem,
		addr:   a.h.addr,
		count:  count,
		stride: stride(elem, goElem),
	}}, nil
}

// ArrayOf views the schema array field stored at addr, for callers that
// walk a snapshot without a bound Go type. Elements are resolved the way
// the fixed array converter resolves them.
func ArrayOf[T any](tc *Transcoder, field *schema.Entity, addr uint64) (Array[T], error) {
	if tc == nil {
		return Array[T]{}, errors.NilPointer(errors.PhaseAccess, "transcoder")
	}
	if field == nil {
		return Array[T]{}, errors.NilPointer(errors.PhaseResolve, "schema.Entity")
	}
	goElem := reflect.TypeFor[T]()
	if field.Kind != schema.KindArray {
		return Array[T]{}, errors.TypeMismatch(errors.PhaseResolve, []string{field.Name},
			reflect.TypeFor[Array[T]]().String(), field.String())
	}

	elem := tc.element(field.CType, goElem)
	elemStride := field.Size
	if elemStride <= 0 {
		elemStride = stride(elem, goElem)
	}
	return Array[T]{h: arrayHeader{
		tc:     tc,
		elem:   elem,
		addr:   addr,
		count:  max(field.Count, 0),
		stride: elemStride,
	}}, nil
}

// stride is the element entity's size, or the Go size when no entity
// describes the element. Pointer elements are stored pointers, so they step
// by the pointer width whatever their pointee is.
func stride(elem *schema.Entity, goElem reflect.Type) int {
	if isPointerView(goElem) {
		return pointerWidth(elem)
	}
	if elem != nil && elem.Size > 0 {
		return elem.Size
	}
	return int(goElem.Size())
}

// decodeElement decodes one view element at addr.
func decodeElement[T any](tc *Transcoder, elem *schema.Entity, addr uint64, dst *T) error {
	if tc == nil {
		return errors.NilPointer(errors.PhaseAccess, "view")
	}
	plan, err := tc.compiler.Plan(reflect.TypeFor[T](), elem)
	if err != nil {
		return err
	}
	return plan.Run(addr, unsafe.Pointer(dst))
}

// fixedArrayConverter views an inline schema array.
type fixedArrayConverter struct{}

func (fixedArrayConverter) Name() string { return "fixed_array" }

func (fixedArrayConverter) CanConvert(field *schema.Entity, goType reflect.Type) bool {
	return field.Kind == schema.KindArray && isArrayView(goType)
}

func (fixedArrayConverter) Emit(s *State) (Step, error) {
	goElem := viewElem(s.Field.Type)
	elem := s.Element(s.Child.CType, goElem)
	count := s.Child.Count
	if count == 0 {
		count = s.Binding.SizeConst
	}
	elemStride := s.Child.Size
	if elemStride <= 0 {
		elemStride = stride(elem, goElem)
	}

	tc, off := s.Transcoder, s.Child.Offset
	return func(base uint64, dst unsafe.Pointer) error {
		addr, err := offsetAddr(base, off)
		if err != nil {
			return err
		}
		*(*arrayHeader)(dst) = arrayHeader{tc: tc, elem: elem, addr: addr, count: count, stride: elemStride}
		return nil
	}, nil
}

// indirectArrayConverter views an array reached through a pointer field.
// The count comes from a sibling size field read at decode time, else from
// the binding's constant, else zero until reinterpreted.
type indirectArrayConverter struct{}

func (indirectArrayConverter) Name() string { return "indirect_array" }

func (indirectArrayConverter) CanConvert(field *schema.Entity, goType reflect.Type) bool {
	return field.Kind == schema.KindPointer && isArrayView(goType)
}

func (indirectArrayConverter) Emit(s *State) (Step, error) {
	goElem := viewElem(s.Field.Type)
	elem := s.Element(s.Child.CType, goElem)
	elemStride := stride(elem, goElem)
	width := pointerWidth(s.Child)

	var sizeField *schema.Entity
	if name := s.Binding.SizeField; name != "" {
		sizeField = s.Parent.Field(name)
		if sizeField == nil {
			return nil, errors.UnknownField(s.Path, s.Parent.Name, name)
		}
		if !sizeField.IsInteger() {
			return nil, errors.SizeFieldType(s.Path, name, sizeField.String())
		}
	}
	sizeConst := s.Binding.SizeConst

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

		count := sizeConst
		if sizeField != nil {
			countAddr, err := offsetAddr(base, sizeField.Offset)
			if err != nil {
				return err
			}
			if count, err = tc.readCount(countAddr, sizeField); err != nil {
				return err
			}
		}
		if target == 0 {
			count = 0
		}

		*(*arrayHeader)(dst) = arrayHeader{tc: tc, elem: elem, addr: target, count: count, stride: elemStride}
		return nil
	}, nil
}

// viewElem returns the element type of an Array, Pointer or List type.
func viewElem(t reflect.Type) reflect.Type {
	switch v := reflect.Zero(t).Interface().(type) {
	case arrayView:
		return v.arrayElem()
	case pointerView:
		return v.pointerElem()
	case listView:
		return v.listElem()
	}
	return nil
}
