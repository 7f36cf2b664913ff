package types //nolint:revive // package name is used by internal consumers

import (
	"reflect"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{"bool", KindBool},
		{"int8", KindInt8},
		{"uint8", KindUint8},
		{"int16", KindInt16},
		{"uint16", KindUint16},
		{"int32", KindInt32},
		{"uint32", KindUint32},
		{"int64", KindInt64},
		{"uint64", KindUint64},
		{"float32", KindFloat32},
		{"float64", KindFloat64},
		{"invalid", KindInvalid},
		{"unknown", Kind(255)},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

type celsius float32

func TestKindOf(t *testing.T) {
	word := KindInt64
	uword := KindUint64
	if reflect.TypeFor[int]().Size() == 4 {
		word, uword = KindInt32, KindUint32
	}

	tests := []struct {
		typ  reflect.Type
		want Kind
		size int
	}{
		{reflect.TypeFor[bool](), KindBool, 1},
		{reflect.TypeFor[int8](), KindInt8, 1},
		{reflect.TypeFor[byte](), KindUint8, 1},
		{reflect.TypeFor[int16](), KindInt16, 2},
		{reflect.TypeFor[uint16](), KindUint16, 2},
		{reflect.TypeFor[int32](), KindInt32, 4},
		{reflect.TypeFor[uint32](), KindUint32, 4},
		{reflect.TypeFor[int64](), KindInt64, 8},
		{reflect.TypeFor[uint64](), KindUint64, 8},
		{reflect.TypeFor[float32](), KindFloat32, 4},
		{reflect.TypeFor[celsius](), KindFloat32, 4},
		{reflect.TypeFor[float64](), KindFloat64, 8},
		{reflect.TypeFor[int](), word, int(reflect.TypeFor[int]().Size())},
		{reflect.TypeFor[uintptr](), uword, int(reflect.TypeFor[uintptr]().Size())},
		{reflect.TypeFor[string](), KindInvalid, 0},
		{reflect.TypeFor[struct{}](), KindInvalid, 0},
		{reflect.TypeFor[*int](), KindInvalid, 0},
	}

	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			got := KindOf(tc.typ)
			if got != tc.want {
				t.Errorf("KindOf(%s) = %s, want %s", tc.typ, got, tc.want)
			}
			if got.Size() != tc.size {
				t.Errorf("%s.Size() = %d, want %d", got, got.Size(), tc.size)
			}
		})
	}
}

func TestKindIsFloat(t *testing.T) {
	for k := KindBool; k <= KindInvalid; k++ {
		want := k == KindFloat32 || k == KindFloat64
		if got := k.IsFloat(); got != want {
			t.Errorf("%s.IsFloat() = %v, want %v", k, got, want)
		}
	}
}

func TestRuleString(t *testing.T) {
	for rule, want := range map[Rule]string{
		RulePrimitive: "primitive",
		RuleConverter: "converter",
		RuleNested:    "nested",
		RuleCopy:      "copy",
		Rule(99):      "unknown",
	} {
		if got := rule.String(); got != want {
			t.Errorf("Rule(%d).String() = %q, want %q", rule, got, want)
		}
	}
}
