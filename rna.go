package rna

// Memory is an address space that native structures are read from.
// Addresses are absolute within the space; implementations decide how
// they map onto storage (process memory, a byte buffer, guest linear memory).
type Memory interface {
	// Read fills dst with len(dst) bytes starting at addr.
	Read(addr uint64, dst []byte) error
}

// Allocator reserves regions inside a Memory. Decoding never allocates;
// allocators stage native layouts for tests and tools that write them.
type Allocator interface {
	Alloc(size, align uint64) (uint64, error)
}
