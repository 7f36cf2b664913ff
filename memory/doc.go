// Package memory provides address spaces for the transcoder.
//
//   - Native reads the current process's memory through unsafe pointers.
//     Addresses are not validated.
//   - Buffer maps a byte slice at a chosen base address. Reads are bounds
//     checked, which makes it suitable for fixtures and memory dumps.
//   - Guest adapts a wazero api.Memory, so layouts inside a WebAssembly
//     guest's linear memory can be decoded from the host.
//
// Buffer and GuestAllocator also implement rna.Allocator. Decoding never
// allocates; the allocators exist to stage layouts for tests and tools.
//
// All implementations copy bytes in host order; no endianness conversion is
// performed.
package memory
