package transcoder

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rna/errors"
	"github.com/wippyai/rna/schema"
	"github.com/wippyai/rna/transcoder/internal/abi"
	"github.com/wippyai/rna/transcoder/internal/types"
)

// hostPointerSize is the pointer width assumed when the schema gives none.
const hostPointerSize = int(unsafe.Sizeof(uintptr(0)))

func offsetAddr(base uint64, off int) (uint64, error) {
	addr, ok := abi.SafeAdd(base, uint64(off))
	if !ok {
		return 0, errors.Overflow(errors.PhaseDecode, nil, "field address overflows")
	}
	return addr, nil
}

// primitiveStep reads kind.Size() host-order bytes straight into the field.
func primitiveStep(tc *Transcoder, kind types.Kind, off int, goOff uintptr) types.Step {
	n := kind.Size()
	if kind == types.KindBool {
		return func(base uint64, dst unsafe.Pointer) error {
			addr, err := offsetAddr(base, off)
			if err != nil {
				return err
			}
			var b [1]byte
			if err := tc.mem.Read(addr, b[:]); err != nil {
				return err
			}
			*(*bool)(unsafe.Add(dst, goOff)) = b[0] != 0
			return nil
		}
	}
	return copyStep(tc, off, goOff, n)
}

// copyStep copies n raw bytes into the field.
func copyStep(tc *Transcoder, off int, goOff uintptr, n int) types.Step {
	return func(base uint64, dst unsafe.Pointer) error {
		if n <= 0 {
			return nil
		}
		addr, err := offsetAddr(base, off)
		if err != nil {
			return err
		}
		return tc.mem.Read(addr, unsafe.Slice((*byte)(unsafe.Add(dst, goOff)), n))
	}
}

// isPlain reports whether t holds only numbers, so raw bytes are a valid
// value. Bools are excluded: a byte other than 0 or 1 is not a valid bool.
func isPlain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return isPlain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !isPlain(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}

// pointerWidth is the stored width of a pointer schema field.
func pointerWidth(e *schema.Entity) int {
	if e != nil && e.Kind == schema.KindPointer && (e.Size == 4 || e.Size == 8) {
		return e.Size
	}
	return hostPointerSize
}

func (tc *Transcoder) readPointer(addr uint64, width int) (uint64, error) {
	var buf [8]byte
	if err := tc.mem.Read(addr, buf[:width]); err != nil {
		return 0, err
	}
	v, _ := abi.Uint(buf[:width])
	return v, nil
}

// readCount reads an integer field as an element count. Negative values
// count as zero.
func (tc *Transcoder) readCount(addr uint64, e *schema.Entity) (int, error) {
	var buf [8]byte
	b := buf[:e.Size]
	if err := tc.mem.Read(addr, b); err != nil {
		return 0, err
	}
	if e.IsSigned() {
		v, _ := abi.Int(b)
		if v < 0 {
			return 0, nil
		}
		return clampCount(uint64(v)), nil
	}
	v, _ := abi.Uint(b)
	return clampCount(v), nil
}

func clampCount(v uint64) int {
	const maxInt = int(^uint(0) >> 1)
	if v > uint64(maxInt) {
		return maxInt
	}
	return int(v)
}
