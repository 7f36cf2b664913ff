package transcoder

import (
	"reflect"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/rna"
	"github.com/wippyai/rna/binding"
	"github.com/wippyai/rna/errors"
	"github.com/wippyai/rna/schema"
	"github.com/wippyai/rna/transcoder/internal/abi"
)

// Transcoder decodes native memory described by one schema snapshot.
// It is safe for concurrent use.
type Transcoder struct {
	snap       *schema.Snapshot
	mem        rna.Memory
	bindings   *binding.Table
	log        *zap.Logger
	compiler   *Compiler
	converters []Converter
	strict     bool
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithBindings sets the binding table. By default each transcoder has its
// own table holding only derived bindings.
func WithBindings(t *binding.Table) Option {
	return func(tc *Transcoder) {
		if t != nil {
			tc.bindings = t
		}
	}
}

// WithConverters registers converters consulted before the built-in ones,
// in the order given.
func WithConverters(cs ...Converter) Option {
	return func(tc *Transcoder) {
		tc.converters = append(tc.converters, cs...)
	}
}

// WithLogger sets the logger used while building plans.
func WithLogger(l *zap.Logger) Option {
	return func(tc *Transcoder) {
		if l != nil {
			tc.log = l
		}
	}
}

// WithStrictWidths makes a primitive field whose Go width or numeric class
// differs from its schema field a construction error. By default the
// mismatch is logged at warn level and the Go width is read.
func WithStrictWidths(strict bool) Option {
	return func(tc *Transcoder) {
		tc.strict = strict
	}
}

// New returns a transcoder reading mem with the layouts of snap.
func New(snap *schema.Snapshot, mem rna.Memory, opts ...Option) *Transcoder {
	tc := &Transcoder{
		snap: snap,
		mem:  mem,
	}
	for _, opt := range opts {
		opt(tc)
	}
	if tc.bindings == nil {
		tc.bindings = binding.NewTable()
	}
	if tc.log == nil {
		tc.log = Logger()
	}
	if tc.log == nil {
		tc.log = zap.NewNop()
	}
	tc.converters = append(tc.converters, builtinConverters...)
	tc.compiler = newCompiler(tc)
	return tc
}

// FromBundle resolves the snapshot covering version and returns a
// transcoder for it.
func FromBundle(b *schema.Bundle, version string, mem rna.Memory, opts ...Option) (*Transcoder, error) {
	snap, err := b.Find(version)
	if err != nil {
		return nil, err
	}
	return New(snap, mem, opts...), nil
}

func (tc *Transcoder) Snapshot() *schema.Snapshot { return tc.snap }

func (tc *Transcoder) Memory() rna.Memory { return tc.mem }

func (tc *Transcoder) Bindings() *binding.Table { return tc.bindings }

func (tc *Transcoder) Compiler() *Compiler { return tc.compiler }

// Decode reads a T at addr. T must be bound to a schema entity.
func Decode[T any](tc *Transcoder, addr uint64) (T, error) {
	var v T
	err := tc.DecodeInto(addr, &v)
	return v, err
}

// DecodeEntity reads a T at addr using the named entity, whatever T's own
// binding says. Unbound T are accepted when they are primitives or
// pointer-free aggregates.
func DecodeEntity[T any](tc *Transcoder, name string, addr uint64) (T, error) {
	var v T
	err := tc.DecodeEntityInto(name, addr, &v)
	return v, err
}

// DecodeAs reads a T at addr using entity, which may be a nested field of
// a top-level entity.
func DecodeAs[T any](tc *Transcoder, entity *schema.Entity, addr uint64) (T, error) {
	var v T
	if entity == nil {
		return v, errors.NilPointer(errors.PhaseResolve, "schema.Entity")
	}
	err := tc.decode(reflect.TypeFor[T](), entity, addr, unsafe.Pointer(&v))
	return v, err
}

// DecodeInto decodes into dst, which must be a non-nil pointer to a bound
// struct.
func (tc *Transcoder) DecodeInto(addr uint64, dst any) error {
	goType, ptr, err := target(dst)
	if err != nil {
		return err
	}

	b, err := tc.bindings.Resolve(goType)
	if err != nil {
		return err
	}
	if b == nil {
		return errors.MissingBinding(goType.String())
	}
	entity, err := tc.entity(b.Entity)
	if err != nil {
		return err
	}
	return tc.decode(goType, entity, addr, ptr)
}

// DecodeEntityInto decodes the named entity into dst, a non-nil pointer.
func (tc *Transcoder) DecodeEntityInto(name string, addr uint64, dst any) error {
	goType, ptr, err := target(dst)
	if err != nil {
		return err
	}
	entity, err := tc.entity(name)
	if err != nil {
		return err
	}
	return tc.decode(goType, entity, addr, ptr)
}

func (tc *Transcoder) decode(goType reflect.Type, entity *schema.Entity, addr uint64, ptr unsafe.Pointer) error {
	plan, err := tc.compiler.Plan(goType, entity)
	if err != nil {
		return err
	}
	return plan.Run(addr, ptr)
}

func (tc *Transcoder) entity(name string) (*schema.Entity, error) {
	e := tc.snap.Entity(name)
	if e == nil {
		return nil, errors.NotFound(errors.PhaseResolve, "entity", name)
	}
	return e, nil
}

func target(dst any) (reflect.Type, unsafe.Pointer, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer {
		return nil, nil, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Detail("destination must be a pointer, got %s", abi.TypeName(dst)).
			Build()
	}
	if rv.IsNil() {
		return nil, nil, errors.NilPointer(errors.PhaseDecode, rv.Type().String())
	}
	return rv.Type().Elem(), rv.UnsafePointer(), nil
}
