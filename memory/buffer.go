package memory

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/rna/errors"
)

// Buffer is a byte slice mapped at a base address. Addresses outside
// [base, base+len) fail with an out-of-bounds error. Buffer also acts as a
// bump allocator, which makes it convenient for building native layouts.
//
// A Buffer is not safe for concurrent writes; concurrent reads are fine.
type Buffer struct {
	data []byte
	base uint64
	next uint64
}

// NewBuffer returns a zeroed buffer of size bytes mapped at base. Use a
// non-zero base so that null pointers stay unreadable.
func NewBuffer(base uint64, size int) *Buffer {
	return &Buffer{data: make([]byte, size), base: base}
}

// FromBytes maps existing bytes, such as a memory dump, at base. The slice is
// used in place. Allocation starts after the mapped bytes and always fails.
func FromBytes(base uint64, data []byte) *Buffer {
	return &Buffer{data: data, base: base, next: uint64(len(data))}
}

func (b *Buffer) Base() uint64 { return b.base }

func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the backing slice.
func (b *Buffer) Bytes() []byte { return b.data }

// span maps [addr, addr+n) to an offset into data.
func (b *Buffer) span(addr uint64, n int) (int, bool) {
	if addr < b.base {
		return 0, false
	}
	off := addr - b.base
	size := uint64(len(b.data))
	if off > size || uint64(n) > size-off {
		return 0, false
	}
	return int(off), true
}

func (b *Buffer) Read(addr uint64, dst []byte) error {
	off, ok := b.span(addr, len(dst))
	if !ok {
		return errors.OutOfBounds(addr, len(dst))
	}
	copy(dst, b.data[off:])
	return nil
}

func (b *Buffer) Write(addr uint64, src []byte) error {
	off, ok := b.span(addr, len(src))
	if !ok {
		return errors.OutOfBounds(addr, len(src))
	}
	copy(b.data[off:], src)
	return nil
}

// Alloc reserves size bytes aligned to align and returns their address.
// Allocations are never reused.
func (b *Buffer) Alloc(size, align uint64) (uint64, error) {
	start := b.next
	if align > 1 {
		if r := (b.base + start) % align; r != 0 {
			start += align - r
		}
	}
	free := uint64(len(b.data)) - min(start, uint64(len(b.data)))
	if start > uint64(len(b.data)) || size > free {
		return 0, errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
			Detail("buffer exhausted: %d bytes requested, %d free", size, free).
			Build()
	}
	b.next = start + size
	return b.base + start, nil
}

func (b *Buffer) PutUint8(addr uint64, v uint8) error {
	return b.Write(addr, []byte{v})
}

func (b *Buffer) PutUint16(addr uint64, v uint16) error {
	return b.Write(addr, binary.NativeEndian.AppendUint16(nil, v))
}

func (b *Buffer) PutUint32(addr uint64, v uint32) error {
	return b.Write(addr, binary.NativeEndian.AppendUint32(nil, v))
}

func (b *Buffer) PutUint64(addr uint64, v uint64) error {
	return b.Write(addr, binary.NativeEndian.AppendUint64(nil, v))
}

func (b *Buffer) PutInt16(addr uint64, v int16) error {
	return b.PutUint16(addr, uint16(v))
}

func (b *Buffer) PutInt32(addr uint64, v int32) error {
	return b.PutUint32(addr, uint32(v))
}

func (b *Buffer) PutInt64(addr uint64, v int64) error {
	return b.PutUint64(addr, uint64(v))
}

func (b *Buffer) PutFloat32(addr uint64, v float32) error {
	return b.PutUint32(addr, math.Float32bits(v))
}

func (b *Buffer) PutFloat64(addr uint64, v float64) error {
	return b.PutUint64(addr, math.Float64bits(v))
}

// PutPointer writes a pointer value using the given pointer width (4 or 8).
func (b *Buffer) PutPointer(addr, target uint64, width int) error {
	switch width {
	case 4:
		if target > math.MaxUint32 {
			return errors.Overflow(errors.PhaseMemory, nil, "pointer does not fit in 4 bytes")
		}
		return b.PutUint32(addr, uint32(target))
	case 8:
		return b.PutUint64(addr, target)
	}
	return errors.InvalidInput(errors.PhaseMemory, "pointer width must be 4 or 8")
}

// PutCString writes s followed by a NUL byte.
func (b *Buffer) PutCString(addr uint64, s string) error {
	return b.Write(addr, append([]byte(s), 0))
}
