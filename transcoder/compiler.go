package transcoder

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/rna/binding"
	"github.com/wippyai/rna/errors"
	"github.com/wippyai/rna/schema"
	"github.com/wippyai/rna/transcoder/internal/types"
)

// Compiler builds and caches decode plans for one transcoder.
type Compiler struct {
	tc     *Transcoder
	cache  sync.Map // planKey -> *planEntry
	builds atomic.Uint64
}

type planKey struct {
	goType reflect.Type
	entity uint64
}

// planEntry keeps the construction error too; a failed pair is never rebuilt.
type planEntry struct {
	plan *types.Plan
	err  error
}

func newCompiler(tc *Transcoder) *Compiler {
	return &Compiler{tc: tc}
}

// Plan returns the decode plan for goType against entity, building it on
// first use. Racing builders may both build; only one result is kept and
// returned to everyone.
func (c *Compiler) Plan(goType reflect.Type, entity *schema.Entity) (*types.Plan, error) {
	if goType == nil {
		return nil, errors.NilPointer(errors.PhaseCompile, "reflect.Type")
	}
	if entity == nil {
		return c.CopyPlan(goType)
	}
	return c.plan(goType, entity, []string{entity.Name})
}

// CopyPlan returns the plan that copies sizeof(goType) raw bytes. It is used
// for elements no entity describes and fails for types holding Go pointers.
// A Pointer view element reads a host-width pointer instead.
func (c *Compiler) CopyPlan(goType reflect.Type) (*types.Plan, error) {
	key := planKey{goType: goType}
	if e, ok := c.cache.Load(key); ok {
		entry := e.(*planEntry)
		return entry.plan, entry.err
	}

	c.builds.Add(1)
	var entry planEntry
	if kind := types.KindOf(goType); kind != types.KindInvalid {
		entry.plan = &types.Plan{
			GoType: goType,
			GoSize: goType.Size(),
			Steps:  []types.Step{primitiveStep(c.tc, kind, 0, 0)},
			Copy:   true,
		}
	} else if isPlain(goType) {
		entry.plan = &types.Plan{
			GoType: goType,
			GoSize: goType.Size(),
			Steps:  []types.Step{copyStep(c.tc, 0, 0, int(goType.Size()))},
			Copy:   true,
		}
	} else if isPointerView(goType) {
		entry.plan = &types.Plan{
			GoType: goType,
			GoSize: goType.Size(),
			Steps:  []types.Step{pointerElementStep(c.tc, goType, nil)},
		}
	} else {
		entry.err = errors.UnsupportedFieldType(nil, goType.String(),
			"no schema entity describes the element and the type is not plain data")
	}

	stored, _ := c.cache.LoadOrStore(key, &entry)
	got := stored.(*planEntry)
	return got.plan, got.err
}

// Builds reports how many plans were constructed, cached or not.
func (c *Compiler) Builds() uint64 {
	return c.builds.Load()
}

func (c *Compiler) plan(goType reflect.Type, entity *schema.Entity, path []string) (*types.Plan, error) {
	key := planKey{goType: goType, entity: entity.ID}
	if e, ok := c.cache.Load(key); ok {
		entry := e.(*planEntry)
		return entry.plan, entry.err
	}

	c.builds.Add(1)
	plan, err := c.build(goType, entity, path)
	if err != nil {
		c.tc.log.Debug("decode plan failed",
			zap.String("type", goType.String()),
			zap.String("entity", entity.Name),
			zap.Error(err))
	} else {
		c.tc.log.Debug("built decode plan",
			zap.String("type", goType.String()),
			zap.String("entity", entity.Name),
			zap.Uint64("entity_id", entity.ID),
			zap.Int("fields", len(plan.Fields)),
			zap.Bool("pure", plan.IsPure()))
	}

	stored, _ := c.cache.LoadOrStore(key, &planEntry{plan: plan, err: err})
	got := stored.(*planEntry)
	return got.plan, got.err
}

func (c *Compiler) build(goType reflect.Type, entity *schema.Entity, path []string) (*types.Plan, error) {
	if kind := types.KindOf(goType); kind != types.KindInvalid {
		if err := c.checkWidth(goType, kind, entity, path); err != nil {
			return nil, err
		}
		return &types.Plan{
			GoType:     goType,
			Entity:     entity.Name,
			EntityID:   entity.ID,
			SchemaSize: entity.Storage(),
			GoSize:     goType.Size(),
			Steps:      []types.Step{primitiveStep(c.tc, kind, 0, 0)},
		}, nil
	}

	if isPointerView(goType) {
		return &types.Plan{
			GoType:     goType,
			Entity:     entity.Name,
			EntityID:   entity.ID,
			SchemaSize: entity.Storage(),
			GoSize:     goType.Size(),
			Steps:      []types.Step{pointerElementStep(c.tc, goType, entity)},
		}, nil
	}

	b, err := c.tc.bindings.Resolve(goType)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return c.buildStruct(b, c.structEntity(entity), path)
	}

	if isPlain(goType) {
		n := min(entity.Storage(), int(goType.Size()))
		return &types.Plan{
			GoType:     goType,
			Entity:     entity.Name,
			EntityID:   entity.ID,
			SchemaSize: entity.Storage(),
			GoSize:     goType.Size(),
			Steps:      []types.Step{copyStep(c.tc, 0, 0, n)},
			Copy:       true,
		}, nil
	}
	return nil, errors.MissingBinding(goType.String())
}

func (c *Compiler) buildStruct(b *binding.Type, entity *schema.Entity, path []string) (*types.Plan, error) {
	plan := &types.Plan{
		GoType:     b.GoType,
		Entity:     entity.Name,
		EntityID:   entity.ID,
		SchemaSize: entity.Size,
		GoSize:     b.GoType.Size(),
		Fields:     make([]types.Field, 0, len(b.Fields)),
		Steps:      make([]types.Step, 0, len(b.Fields)),
	}

	for i := range b.Fields {
		fb := &b.Fields[i]
		sf := b.StructField(fb)
		fieldPath := append(append([]string{}, path...), fb.SchemaName)

		child := entity.Field(fb.SchemaName)
		if child == nil {
			return nil, errors.UnknownField(fieldPath, entity.Name, fb.SchemaName)
		}

		state := &State{
			Transcoder: c.tc,
			Parent:     entity,
			Child:      child,
			Binding:    fb,
			Field:      sf,
			Plan:       plan,
			Path:       fieldPath,
		}
		step, field, err := c.fieldStep(state)
		if err != nil {
			return nil, err
		}
		plan.Steps = append(plan.Steps, step)
		plan.Fields = append(plan.Fields, field)
	}
	return plan, nil
}

// fieldStep applies the dispatch rules in order: primitive, converter,
// nested binding, raw copy.
func (c *Compiler) fieldStep(s *State) (types.Step, types.Field, error) {
	goType := s.Field.Type
	goOff := s.Field.Offset
	off := s.Child.Offset
	field := types.Field{
		Name:         s.Field.Name,
		SchemaName:   s.Binding.SchemaName,
		GoOffset:     goOff,
		SchemaOffset: off,
	}

	if kind := types.KindOf(goType); kind != types.KindInvalid {
		if err := c.checkWidth(goType, kind, s.Child, s.Path); err != nil {
			return nil, field, err
		}
		field.Rule = types.RulePrimitive
		return primitiveStep(c.tc, kind, off, goOff), field, nil
	}

	for _, conv := range c.tc.converters {
		if !conv.CanConvert(s.Child, goType) {
			continue
		}
		step, err := conv.Emit(s)
		if err != nil {
			return nil, field, err
		}
		field.Rule = types.RuleConverter
		field.Converter = converterName(conv)
		return func(base uint64, dst unsafe.Pointer) error {
			return step(base, unsafe.Add(dst, goOff))
		}, field, nil
	}

	b, err := c.tc.bindings.Resolve(goType)
	if err != nil {
		return nil, field, err
	}
	if b != nil {
		nested := c.structEntity(s.Child)
		if nested.Kind != schema.KindStruct {
			return nil, field, errors.UnsupportedFieldType(s.Path, goType.String(),
				fmt.Sprintf("schema field is a %s; bound structs decode only from struct fields", s.Child.Kind))
		}
		plan, err := c.plan(goType, nested, s.Path)
		if err != nil {
			return nil, field, err
		}
		field.Rule = types.RuleNested
		return func(base uint64, dst unsafe.Pointer) error {
			addr, err := offsetAddr(base, off)
			if err != nil {
				return err
			}
			return plan.Run(addr, unsafe.Add(dst, goOff))
		}, field, nil
	}

	if isPlain(goType) {
		field.Rule = types.RuleCopy
		n := min(s.Child.Storage(), int(goType.Size()))
		return copyStep(c.tc, off, goOff, n), field, nil
	}

	return nil, field, errors.UnsupportedFieldType(s.Path, goType.String(), "no rule decodes this field type")
}

// structEntity returns the entity holding the fields of a struct-typed
// schema field. Fields may be inlined or only named through CType.
func (c *Compiler) structEntity(e *schema.Entity) *schema.Entity {
	if len(e.Fields) > 0 || e.CType == "" {
		return e
	}
	if top := c.tc.snap.Entity(e.CType); top != nil && top != e {
		return top
	}
	return e
}

// checkWidth compares a primitive Go field with its schema field.
func (c *Compiler) checkWidth(goType reflect.Type, kind types.Kind, e *schema.Entity, path []string) error {
	sizeOK := kind.Size() == e.Storage()
	classOK := e.Kind != schema.KindPrimitive || kind == types.KindBool || kind.IsFloat() == e.IsFloat()
	if sizeOK && classOK {
		return nil
	}

	schemaType := fmt.Sprintf("%s (%d bytes)", e.CType, e.Storage())
	if c.tc.strict {
		return errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), schemaType)
	}
	c.tc.log.Warn("primitive field differs from schema",
		zap.Strings("path", path),
		zap.String("go_type", goType.String()),
		zap.Int("go_size", kind.Size()),
		zap.String("schema_type", schemaType))
	return nil
}

func converterName(conv Converter) string {
	if n, ok := conv.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", conv)
}
