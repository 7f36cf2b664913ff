// Package transcoder decodes native memory into Go values through a schema
// snapshot.
//
// A Transcoder pairs one snapshot with one address space:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ Native memory ──[ Snapshot + Bindings → Plan ]──→ Go value   │
//	└──────────────────────────────────────────────────────────────┘
//
// # Plans
//
// The first decode of a (Go type, entity) pair builds a Plan: a list of
// steps, one per bound field, each reading at a fixed offset and writing
// into a fixed Go field offset. Plans are cached per transcoder and reused
// for every later decode. A failed build is cached too and returns the
// same error each time.
//
// Fields are dispatched in order, first match wins:
//
//	primitive   bool, int8..int64, uint8..uint64, float32, float64
//	converter   user converters, then fixed_array, indirect_array,
//	            pointer, list, string
//	nested      the Go field type is itself bound to an entity
//	copy        pointer-free aggregate, raw bytes
//
// Anything else fails with an unsupported_field_type error.
//
// # Views
//
// Array, Pointer and List fields are lazy. Decoding the owning struct only
// records addresses; elements are decoded when accessed, on every access.
//
//	Array[T]    At(i), All(), Values(), Reinterpret
//	Pointer[T]  Value(), AsArray(n)
//	List[T]     All(), Collect(), Limit(n)
//
// Array stride is the element entity's size, not the Go size of T, so a Go
// element narrower than its native counterpart still indexes correctly.
//
// # Widths
//
// A primitive field reads as many bytes as its Go type holds. When that
// differs from the schema field the mismatch is logged at warn level;
// WithStrictWidths turns it into a construction error.
//
// # Thread Safety
//
// Transcoder, Compiler and Plan are safe for concurrent use. Views are
// values and may be copied freely. The memory they refer to is borrowed and
// must stay valid while they are used.
package transcoder
