// Package binding describes how Go structs map onto schema entities.
//
// A binding is plain data: the entity name for a Go type and, per Go field,
// the schema field it reads plus optional sizing information for arrays.
// Bindings come from two sources and are consumed through a Table:
//
//   - derived: the struct implements Bound and tags its fields
//     `dna:"mvert,size=totvert"`
//   - declared: For[T]("Mesh").Field("Vertices", "mvert", SizeField("totvert"))
//
// Declared bindings registered in a Table win over derived ones.
package binding
