package memory

import (
	"math"
	"unsafe"

	"github.com/wippyai/rna"
	"github.com/wippyai/rna/errors"
)

type native struct{}

// Native returns the address space of the current process. Reads of
// unmapped addresses crash the process; only null is rejected.
func Native() rna.Memory {
	return native{}
}

func (native) Read(addr uint64, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	if addr == 0 {
		return errors.NilPointer(errors.PhaseMemory, "native address")
	}
	if addr > math.MaxUint64-uint64(len(dst)) {
		return errors.OutOfBounds(addr, len(dst))
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), len(dst))
	copy(dst, src)
	return nil
}

// AddressOf returns the native address of p, for decoding Go-owned memory
// that mirrors a native layout. The caller keeps p alive while decoding.
func AddressOf[T any](p *T) uint64 {
	return uint64(uintptr(unsafe.Pointer(p)))
}

// AddressOfSlice returns the address of the first element of s, or 0 when s
// is empty.
func AddressOfSlice[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(unsafe.SliceData(s))))
}
