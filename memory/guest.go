package memory

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/rna/errors"
)

// Guest adapts a wazero guest's linear memory. Addresses are 32-bit offsets
// into the memory; wider addresses fail.
type Guest struct {
	Mem api.Memory
}

// WrapGuest returns nil for a nil memory.
func WrapGuest(mem api.Memory) *Guest {
	if mem == nil {
		return nil
	}
	return &Guest{Mem: mem}
}

func (g *Guest) Read(addr uint64, dst []byte) error {
	if addr > math.MaxUint32 || uint64(len(dst)) > math.MaxUint32 {
		return errors.OutOfBounds(addr, len(dst))
	}
	data, ok := g.Mem.Read(uint32(addr), uint32(len(dst)))
	if !ok {
		return errors.OutOfBounds(addr, len(dst))
	}
	copy(dst, data)
	return nil
}

func (g *Guest) Write(addr uint64, src []byte) error {
	if addr > math.MaxUint32 || uint64(len(src)) > math.MaxUint32 {
		return errors.OutOfBounds(addr, len(src))
	}
	if !g.Mem.Write(uint32(addr), src) {
		return errors.OutOfBounds(addr, len(src))
	}
	return nil
}

// GuestAllocator allocates guest memory through an exported
// cabi_realloc-style function (old_ptr, old_size, align, new_size) -> ptr.
// It is a fixture helper: it places native layouts inside a guest so they
// can be written with Guest.Write and then decoded.
type GuestAllocator struct {
	Ctx context.Context
	Fn  api.Function
}

// WrapAllocator returns nil for a nil function.
func WrapAllocator(ctx context.Context, fn api.Function) *GuestAllocator {
	if fn == nil {
		return nil
	}
	return &GuestAllocator{Ctx: ctx, Fn: fn}
}

func (a *GuestAllocator) Alloc(size, align uint64) (uint64, error) {
	if size > math.MaxUint32 || align > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseMemory, nil, "guest allocation exceeds 32-bit address space")
	}
	results, err := a.Fn.Call(a.Ctx, 0, 0, align, size)
	if err != nil {
		return 0, errors.New(errors.PhaseMemory, errors.KindInvalidInput).
			Detail("guest allocation of %d bytes", size).
			Cause(err).
			Build()
	}
	if len(results) == 0 {
		return 0, errors.InvalidInput(errors.PhaseMemory, "guest allocator returned no result")
	}
	return uint64(uint32(results[0])), nil
}
