// Package errors provides structured error types for the rna module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/schema type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
//		Path("Mesh", "totverts").
//		GoType("int64").
//		SchemaType("int").
//		Detail("host width 8, schema size 4").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownField(path, "Mesh", "mverts")
//	err := errors.IndexOutOfRange(10, 5)
//
// Sentinels such as ErrUnknownField match any error of the same Kind:
//
//	if errors.Is(err, rnaerrors.ErrUnknownField) { ... }
package errors
