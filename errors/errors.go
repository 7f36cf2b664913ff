package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // schema document loading
	PhaseValidate Phase = "validate" // schema invariant checks
	PhaseResolve  Phase = "resolve"  // version and entity resolution
	PhaseBind     Phase = "bind"     // binding descriptor discovery
	PhaseCompile  Phase = "compile"  // decode plan construction
	PhaseDecode   Phase = "decode"   // native memory to Go
	PhaseAccess   Phase = "access"   // lazy view element access
	PhaseMemory   Phase = "memory"   // address space reads
)

// Kind categorizes the error
type Kind string

const (
	KindVersionNotFound      Kind = "version_not_found"
	KindMissingBinding       Kind = "missing_binding"
	KindUnknownField         Kind = "unknown_field"
	KindUnsupportedFieldType Kind = "unsupported_field_type"
	KindSizeFieldType        Kind = "size_field_type"
	KindIndexOutOfRange      Kind = "index_out_of_range"
	KindTypeMismatch         Kind = "type_mismatch"
	KindInvalidSchema        Kind = "invalid_schema"
	KindOutOfBounds          Kind = "out_of_bounds"
	KindOverflow             Kind = "overflow"
	KindNotFound             Kind = "not_found"
	KindInvalidInput         Kind = "invalid_input"
	KindNilPointer           Kind = "nil_pointer"
)

// Sentinels for errors.Is. They match any *Error of the same kind regardless of phase.
var (
	ErrVersionNotFound      = &Error{Kind: KindVersionNotFound}
	ErrMissingBinding       = &Error{Kind: KindMissingBinding}
	ErrUnknownField         = &Error{Kind: KindUnknownField}
	ErrUnsupportedFieldType = &Error{Kind: KindUnsupportedFieldType}
	ErrSizeFieldType        = &Error{Kind: KindSizeFieldType}
	ErrIndexOutOfRange      = &Error{Kind: KindIndexOutOfRange}
	ErrTypeMismatch         = &Error{Kind: KindTypeMismatch}
	ErrInvalidSchema        = &Error{Kind: KindInvalidSchema}
	ErrOutOfBounds          = &Error{Kind: KindOutOfBounds}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrNilPointer           = &Error{Kind: KindNilPointer}
	ErrOverflow             = &Error{Kind: KindOverflow}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	GoType     string
	SchemaType string
	Detail     string
	Path       []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.SchemaType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.SchemaType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", schema type ")
			b.WriteString(e.SchemaType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("schema type ")
			b.WriteString(e.SchemaType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.SchemaType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// An empty Phase on the target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Phase == "" || t.Phase == e.Phase
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// SchemaType sets the schema type name
func (b *Builder) SchemaType(t string) *Builder {
	b.err.SchemaType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// VersionNotFound reports that no snapshot covers version. available lists
// the ranges that were checked, formatted as "[min, max]".
func VersionNotFound(version string, available []string) *Error {
	detail := fmt.Sprintf("no schema covers version %s", version)
	if len(available) > 0 {
		detail += "; available: " + strings.Join(available, ", ")
	} else {
		detail += "; bundle is empty"
	}
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindVersionNotFound,
		Detail: detail,
		Value:  version,
	}
}

// MissingBinding creates an error for a Go type without a type-level binding
func MissingBinding(goType string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindMissingBinding,
		GoType: goType,
		Detail: "type has no schema binding",
	}
}

// UnknownField creates an error for a field binding naming an absent schema field
func UnknownField(path []string, entity, fieldName string) *Error {
	return &Error{
		Phase:      PhaseCompile,
		Kind:       KindUnknownField,
		Path:       path,
		SchemaType: entity,
		Detail:     fmt.Sprintf("schema field %q not found", fieldName),
	}
}

// UnsupportedFieldType creates an error for a Go field no dispatch rule handles
func UnsupportedFieldType(path []string, goType, detail string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUnsupportedFieldType,
		Path:   path,
		GoType: goType,
		Detail: detail,
	}
}

// SizeFieldType creates an error for a size source field that is not an integer
func SizeFieldType(path []string, sizeField, schemaType string) *Error {
	return &Error{
		Phase:      PhaseCompile,
		Kind:       KindSizeFieldType,
		Path:       path,
		SchemaType: schemaType,
		Detail:     fmt.Sprintf("size field %q is not integer-kinded", sizeField),
	}
}

// IndexOutOfRange creates an error for view access beyond known bounds
func IndexOutOfRange(index, length int) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindIndexOutOfRange,
		Detail: fmt.Sprintf("index %d outside [0, %d)", index, length),
		Value:  index,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, schemaType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindTypeMismatch,
		Path:       path,
		GoType:     goType,
		SchemaType: schemaType,
	}
}

// InvalidSchema creates a schema shape error
func InvalidSchema(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidSchema,
		Path:   path,
		Detail: detail,
	}
}

// OutOfBounds creates an address space read error
func OutOfBounds(addr uint64, length int) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("read of %d bytes at 0x%x is outside the address space", length, addr),
		Value:  addr,
	}
}

// Overflow creates an address arithmetic overflow error
func Overflow(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Load wraps a schema loading failure
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidSchema,
		Detail: detail,
		Cause:  cause,
	}
}
