package transcoder

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/wippyai/rna/errors"
	"github.com/wippyai/rna/schema"
	"github.com/wippyai/rna/transcoder/internal/abi"
)

type listHeader struct {
	tc      *Transcoder
	elem    *schema.Entity
	first   uint64
	nextOff int
	width   int
}

// List is a lazy view over an intrusive singly linked list. Each node holds
// the address of the next one; a zero address ends the list.
//
// Iteration always restarts from the first node. A cyclic list never ends;
// use Limit when the list is not trusted.
type List[T any] struct {
	h listHeader
}

type listView interface {
	listElem() reflect.Type
}

func (List[T]) listElem() reflect.Type { return reflect.TypeFor[T]() }

var listViewType = reflect.TypeFor[listView]()

func isListView(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.Implements(listViewType)
}

func (l List[T]) IsEmpty() bool { return l.h.first == 0 }

// First returns the address of the first node.
func (l List[T]) First() uint64 { return l.h.first }

// Entity returns the node entity, or nil when nodes are copied raw.
func (l List[T]) Entity() *schema.Entity { return l.h.elem }

// All yields the nodes in link order. A failed read ends the sequence after
// yielding the error.
func (l List[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		addr := l.h.first
		for addr != 0 {
			var v T
			if err := decodeElement(l.h.tc, l.h.elem, addr, &v); err != nil {
				yield(v, err)
				return
			}
			if !yield(v, nil) {
				return
			}
			next, err := l.next(addr)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			addr = next
		}
	}
}

func (l List[T]) next(addr uint64) (uint64, error) {
	at, ok := abi.SafeAdd(addr, uint64(l.h.nextOff))
	if !ok {
		return 0, errors.Overflow(errors.PhaseAccess, nil, "next pointer address overflows")
	}
	return l.h.tc.readPointer(at, l.h.width)
}

// Collect decodes every node into a slice.
func (l List[T]) Collect() ([]T, error) {
	return l.collect(abi.MaxCollect)
}

// Limit decodes at most n nodes.
func (l List[T]) Limit(n int) ([]T, error) {
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseAccess, "negative limit")
	}
	return l.collect(n)
}

func (l List[T]) collect(n int) ([]T, error) {
	var out []T
	if n == 0 {
		return out, nil
	}
	for v, err := range l.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// listConverter views a list field. The field is either a pointer to the
// first node or a list base struct whose "first" member points to it.
type listConverter struct{}

func (listConverter) Name() string { return "list" }

func (listConverter) CanConvert(field *schema.Entity, goType reflect.Type) bool {
	if !isListView(goType) {
		return false
	}
	return field.Kind == schema.KindPointer || field.Kind == schema.KindStruct
}

func (listConverter) Emit(s *State) (Step, error) {
	head := s.Child
	firstOff := head.Offset
	if head.Kind == schema.KindStruct {
		base := s.Transcoder.compiler.structEntity(head)
		first := base.Field("first")
		if first == nil || first.Kind != schema.KindPointer {
			return nil, errors.UnsupportedFieldType(s.Path, s.Field.Type.String(),
				"list base struct has no \"first\" pointer")
		}
		head = first
		firstOff += first.Offset
	}

	elem := s.Element(head.CType, viewElem(s.Field.Type))
	width := pointerWidth(head)
	nextOff, nextWidth := 0, width
	if next := elem.Field("next"); next != nil && next.Kind == schema.KindPointer {
		nextOff, nextWidth = next.Offset, pointerWidth(next)
	}

	tc := s.Transcoder
	return func(base uint64, dst unsafe.Pointer) error {
		addr, err := offsetAddr(base, firstOff)
		if err != nil {
			return err
		}
		first, err := tc.readPointer(addr, width)
		if err != nil {
			return err
		}
		*(*listHeader)(dst) = listHeader{tc: tc, elem: elem, first: first, nextOff: nextOff, width: nextWidth}
		return nil
	}, nil
}
