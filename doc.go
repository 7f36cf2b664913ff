// Package rna decodes native memory described by a versioned structural
// schema into typed Go values.
//
// A native producer (a long-lived host application, a WebAssembly guest, a
// memory dump) lays its structs out in ways that change between releases.
// A schema snapshot ("DNA") records one layout: the byte offset, size, and
// shape of every struct field. The transcoder reads memory through that
// snapshot, so Go code never has to be compiled against the native headers.
//
// # Architecture Overview
//
//	rna/                 Root package with the Memory and Allocator interfaces
//	├── schema/          Snapshot model, version resolver, YAML/JSON load and encode
//	├── binding/         Binding descriptors: struct tags, type bindings, builder
//	├── transcoder/      Decoder engine, converters, lazy Array/Pointer/List views
//	├── memory/          Address spaces: process memory, byte buffers, wazero guests
//	├── errors/          Structured error types for debugging
//	└── cmd/rna/         Schema inspection, validation and merge tool
//
// # Quick Start
//
//	bundle, err := schema.LoadFile("blender.dna.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tc, err := transcoder.FromBundle(bundle, "2.80", memory.Native())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mesh, err := transcoder.Decode[Mesh](tc, meshAddr)
//
// Host types bind to schema entities through a method and struct tags:
//
//	type Mesh struct {
//	    Vertices transcoder.Array[Vertex] `dna:"mvert,size=totvert"`
//	    TotVert  int32                    `dna:"totvert"`
//	}
//
//	func (Mesh) SchemaEntity() string { return "Mesh" }
//
// # Memory Safety
//
// The transcoder trusts the addresses it is given. memory.Native reads raw
// process memory with no page-fault protection; use memory.Buffer or
// memory.Guest when the source is untrusted.
package rna
