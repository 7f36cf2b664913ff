package memory

import (
	"context"
	"math"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/rna"
	"github.com/wippyai/rna/errors"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

func instantiate(t *testing.T) (context.Context, wazero.Runtime, api.Module) {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	return ctx, rt, mod
}

func TestWrapGuest_Nil(t *testing.T) {
	if g := WrapGuest(nil); g != nil {
		t.Error("expected nil for nil memory")
	}
	if a := WrapAllocator(context.Background(), nil); a != nil {
		t.Error("expected nil for nil function")
	}
}

func TestGuest_ReadWrite(t *testing.T) {
	_, _, mod := instantiate(t)

	mem := WrapGuest(mod.ExportedMemory("memory"))
	if mem == nil {
		t.Fatal("expected non-nil guest memory")
	}

	data := []byte{1, 2, 3, 4}
	if err := mem.Write(100, data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	read := make([]byte, 4)
	if err := mem.Read(100, read); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, b := range read {
		if b != data[i] {
			t.Errorf("byte %d: expected %d, got %d", i, data[i], b)
		}
	}

	// The read copies; later guest writes do not alter it.
	_ = mem.Write(100, []byte{9})
	if read[0] != 1 {
		t.Errorf("read buffer aliased guest memory")
	}
}

func TestGuest_OutOfBounds(t *testing.T) {
	_, _, mod := instantiate(t)
	mem := WrapGuest(mod.ExportedMemory("memory"))

	tests := []struct {
		name string
		addr uint64
		n    int
	}{
		{"past one page", 65536, 1},
		{"straddles end", 65534, 4},
		{"beyond 32 bits", math.MaxUint32 + 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mem.Read(tt.addr, make([]byte, tt.n))
			if !errors.Is(err, errors.ErrOutOfBounds) {
				t.Errorf("Read error = %v, want out of bounds", err)
			}
			err = mem.Write(tt.addr, make([]byte, tt.n))
			if !errors.Is(err, errors.ErrOutOfBounds) {
				t.Errorf("Write error = %v, want out of bounds", err)
			}
		})
	}
}

func TestGuestAllocator(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	next := uint32(1024)
	var gotAlign uint32
	host, err := rt.NewHostModuleBuilder("alloc").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, _, _, align, size uint32) uint32 {
			gotAlign = align
			p := (next + align - 1) &^ (align - 1)
			next = p + size
			return p
		}).
		Export("cabi_realloc").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("failed to instantiate host module: %v", err)
	}

	alloc := WrapAllocator(ctx, host.ExportedFunction("cabi_realloc"))
	p1, err := alloc.Alloc(10, 8)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if p1 != 1024 || gotAlign != 8 {
		t.Errorf("first alloc = %d (align %d), want 1024 (align 8)", p1, gotAlign)
	}

	p2, err := alloc.Alloc(4, 4)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if p2 != 1036 {
		t.Errorf("second alloc = %d, want 1036", p2)
	}

	if _, err := alloc.Alloc(math.MaxUint32+1, 1); !errors.Is(err, errors.ErrOverflow) {
		t.Errorf("oversized alloc error = %v, want overflow", err)
	}
}

func TestGuestAllocator_StagesFixture(t *testing.T) {
	ctx, rt, mod := instantiate(t)

	next := uint32(256)
	host, err := rt.NewHostModuleBuilder("stage").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, _, _, align, size uint32) uint32 {
			p := (next + align - 1) &^ (align - 1)
			next = p + size
			return p
		}).
		Export("cabi_realloc").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("failed to instantiate host module: %v", err)
	}

	var alloc rna.Allocator = WrapAllocator(ctx, host.ExportedFunction("cabi_realloc"))
	mem := WrapGuest(mod.ExportedMemory("memory"))

	addr, err := alloc.Alloc(8, 8)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	want := []byte{0x2a, 0, 0, 0, 0x07, 0, 0, 0}
	if err := mem.Write(addr, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got := make([]byte, len(want))
	if err := mem.Read(addr, got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("staged bytes = %v, want %v", got, want)
	}
}
