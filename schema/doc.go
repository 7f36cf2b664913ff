// Package schema models versioned native layout descriptions.
//
// A Snapshot maps entity names to Entity trees carrying byte offsets, sizes
// and shapes (primitive, pointer, array, struct). A Bundle holds snapshots for
// several producer versions; Find selects the one whose inclusive [min, max]
// semantic-version range covers a requested version.
//
// # Document Format
//
//	version: 2.80.0
//	min: 2.80.0          # optional, defaults to version
//	max: 2.83.0          # optional, defaults to version
//	entities:
//	  Mesh:
//	    type: struct
//	    ctype: Mesh
//	    size: 274
//	    fields:
//	      mvert: {type: pointer, ctype: MVert, size: 8, offset: 98}
//	      totvert: {type: primitive, ctype: int, size: 4, offset: 106}
//
// A bundle wraps documents in a versions list. JSON with the same keys is
// accepted wherever YAML is.
//
// # Identity
//
// Every entity reachable from a snapshot receives a process-unique ID when
// the snapshot is built. Decoders are cached by ID, so lookups never
// re-resolve names.
//
// Snapshots are immutable after construction and safe for concurrent use.
package schema
