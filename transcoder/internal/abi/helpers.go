package abi

import (
	"math"
	"reflect"
)

func SafeMul(a, b uint64) (uint64, bool) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

func SafeAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// Element returns base + index*stride, failing on overflow.
func Element(base uint64, index, stride int) (uint64, bool) {
	if index < 0 || stride < 0 {
		return 0, false
	}
	off, ok := SafeMul(uint64(index), uint64(stride))
	if !ok {
		return 0, false
	}
	return SafeAdd(base, off)
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// MaxCollect caps the number of elements a view materializes into a slice.
const MaxCollect = 1 << 27
