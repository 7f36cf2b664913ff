package binding

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/rna/errors"
)

// TagName is the struct tag key read by Derive.
const TagName = "dna"

var boundType = reflect.TypeFor[Bound]()

// Derive builds a binding from a struct type's Bound implementation and its
// field tags. It reports false when the type does not implement Bound.
//
// Tag grammar: `dna:"name[,size=field][,count=N]"`. An empty name uses the Go
// field name. A "-" tag or an absent tag leaves the field unbound.
func Derive(goType reflect.Type) (*Type, bool, error) {
	if goType == nil || goType.Kind() != reflect.Struct || !goType.Implements(boundType) {
		return nil, false, nil
	}

	entity := reflect.Zero(goType).Interface().(Bound).SchemaEntity()
	if entity == "" {
		return nil, false, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			GoType(goType.String()).
			Detail("SchemaEntity returned an empty name").
			Build()
	}

	t := &Type{GoType: goType, Entity: entity}
	for i := 0; i < goType.NumField(); i++ {
		sf := goType.Field(i)
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" || !sf.IsExported() {
			continue
		}

		f, err := parseTag(tag)
		if err != nil {
			return nil, false, errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Path(sf.Name).
				GoType(goType.String()).
				Detail("%s tag %q", TagName, tag).
				Cause(err).
				Build()
		}
		if f.SchemaName == "" {
			f.SchemaName = sf.Name
		}
		f.GoName = sf.Name
		f.Index = sf.Index
		t.Fields = append(t.Fields, f)
	}
	return t, true, nil
}

func parseTag(tag string) (Field, error) {
	parts := strings.Split(tag, ",")
	f := Field{SchemaName: strings.TrimSpace(parts[0])}

	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "size":
			if value == "" {
				return f, errors.InvalidInput(errors.PhaseBind, "size option needs a field name")
			}
			f.SizeField = value
		case "count":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return f, errors.InvalidInput(errors.PhaseBind, "count option needs a non-negative integer")
			}
			f.SizeConst = n
		case "":
		default:
			return f, errors.InvalidInput(errors.PhaseBind, "unknown option "+strconv.Quote(key))
		}
	}
	return f, nil
}
