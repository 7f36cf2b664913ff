package types

import "reflect"

// Kind is a host primitive kind a plan can read directly.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindInvalid
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindInt8:    "int8",
	KindUint8:   "uint8",
	KindInt16:   "int16",
	KindUint16:  "uint16",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindInvalid: "invalid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Size is the host width in bytes.
func (k Kind) Size() int {
	switch k {
	case KindBool, KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	}
	return 0
}

func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// KindOf maps a Go type to its primitive kind. int, uint and uintptr use the
// host word size. Named types map through their underlying kind.
func KindOf(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int8:
		return KindInt8
	case reflect.Uint8:
		return KindUint8
	case reflect.Int16:
		return KindInt16
	case reflect.Uint16:
		return KindUint16
	case reflect.Int32:
		return KindInt32
	case reflect.Uint32:
		return KindUint32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Int:
		if t.Size() == 8 {
			return KindInt64
		}
		return KindInt32
	case reflect.Uint, reflect.Uintptr:
		if t.Size() == 8 {
			return KindUint64
		}
		return KindUint32
	}
	return KindInvalid
}

// Rule records which construction rule produced a field step.
type Rule uint8

const (
	RulePrimitive Rule = iota
	RuleConverter
	RuleNested
	RuleCopy
)

var ruleNames = [...]string{
	RulePrimitive: "primitive",
	RuleConverter: "converter",
	RuleNested:    "nested",
	RuleCopy:      "copy",
}

func (r Rule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "unknown"
}
