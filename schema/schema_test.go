package schema

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rna/errors"
)

const meshYAML = `
version: "2.80"
max: "2.83"
entities:
  ID:
    type: struct
    ctype: ID
    size: 66
    fields:
      name: {type: array, ctype: char, size: 1, count: 66}
  Mesh:
    type: struct
    ctype: Mesh
    size: 120
    fields:
      id: {type: struct, ctype: ID, size: 66}
      mvert: {type: pointer, ctype: MVert, size: 8, offset: 98}
      totvert: {type: primitive, ctype: int, size: 4, offset: 106}
  MVert:
    type: struct
    ctype: MVert
    size: 12
    fields:
      co: {type: array, ctype: float, size: 4, count: 3}
`

const meshJSON = `{
  "version": "2.80",
  "max": "2.83",
  "entities": {
    "ID": {"type": "struct", "ctype": "ID", "size": 66,
      "fields": {"name": {"type": "array", "ctype": "char", "size": 1, "count": 66}}},
    "Mesh": {"type": "struct", "ctype": "Mesh", "size": 120,
      "fields": {
        "id": {"type": "struct", "ctype": "ID", "size": 66},
        "mvert": {"type": "pointer", "ctype": "MVert", "size": 8, "offset": 98},
        "totvert": {"type": "primitive", "ctype": "int", "size": 4, "offset": 106}}},
    "MVert": {"type": "struct", "ctype": "MVert", "size": 12,
      "fields": {"co": {"type": "array", "ctype": "float", "size": 4, "count": 3}}}
  }
}`

func snapshot(t *testing.T, version, min, max string) *Snapshot {
	t.Helper()
	s, err := NewSnapshot(version, min, max, map[string]*Entity{
		"Point": {
			Kind: KindStruct, CType: "Point", Size: 8,
			Fields: map[string]*Entity{
				"x": {Kind: KindPrimitive, CType: "int", Size: 4},
				"y": {Kind: KindPrimitive, CType: "int", Size: 4, Offset: 4},
			},
		},
	})
	require.NoError(t, err)
	return s
}

func TestLoad_YAMLAndJSONAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(meshYAML))
	require.NoError(t, err)
	fromJSON, err := Parse([]byte(meshJSON))
	require.NoError(t, err)

	require.Equal(t, 1, fromYAML.Len())
	require.Equal(t, 1, fromJSON.Len())

	a, b := fromYAML.Snapshots()[0], fromJSON.Snapshots()[0]
	assert.Equal(t, a.Names(), b.Names())
	assert.Equal(t, a.Range().String(), b.Range().String())
	assert.Equal(t, a.Len(), b.Len())

	for _, name := range a.Names() {
		ea, eb := a.Entity(name), b.Entity(name)
		assert.Equal(t, ea.Kind, eb.Kind, name)
		assert.Equal(t, ea.Size, eb.Size, name)
		assert.Equal(t, ea.FieldNames(), eb.FieldNames(), name)
		for _, f := range ea.FieldNames() {
			fa, fb := ea.Field(f), eb.Field(f)
			assert.Equal(t, fa.Offset, fb.Offset, name+"."+f)
			assert.Equal(t, fa.CType, fb.CType, name+"."+f)
			assert.Equal(t, fa.Count, fb.Count, name+"."+f)
		}
	}
}

func TestLoad_EntityShape(t *testing.T) {
	b, err := Load(strings.NewReader(meshYAML))
	require.NoError(t, err)
	s := b.Snapshots()[0]

	mesh := s.Entity("Mesh")
	require.NotNil(t, mesh)
	assert.Equal(t, "Mesh", mesh.Name)
	assert.Equal(t, []string{"id", "mvert", "totvert"}, mesh.FieldNames())

	mvert := mesh.Field("mvert")
	assert.Equal(t, KindPointer, mvert.Kind)
	assert.Equal(t, "mvert", mvert.Name)
	assert.Equal(t, 98, mvert.Offset)

	name := s.Entity("ID").Field("name")
	assert.Equal(t, KindArray, name.Kind)
	assert.Equal(t, 66, name.Storage())

	assert.True(t, mesh.Field("totvert").IsInteger())
	assert.True(t, mesh.Field("totvert").IsSigned())
	assert.Nil(t, mesh.Field("missing"))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"bad yaml", "version: [unterminated"},
		{"bad json", `{"version": `},
		{"bad kind", "version: 1.0\nentities:\n  A: {type: union, size: 4}\n"},
		{"bad version", "version: not-a-version\n"},
		{"max below min", "version: 2.0\nmin: 2.0\nmax: 1.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestLoadSnapshot_RequiresSingle(t *testing.T) {
	doc := "versions:\n  - version: 1.0\n  - version: 2.0\n"
	_, err := LoadSnapshot(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}))

	s, err := LoadSnapshot(strings.NewReader("version: 1.0\n"))
	require.NoError(t, err)
	assert.Equal(t, "1.0", s.Version)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat([]byte("  \n{}")))
	assert.Equal(t, FormatJSON, DetectFormat([]byte("[]")))
	assert.Equal(t, FormatYAML, DetectFormat([]byte("version: 1")))
	assert.Equal(t, FormatYAML, DetectFormat(nil))
}

func TestBundle_Find(t *testing.T) {
	b, err := Merge(
		snapshot(t, "2.80", "2.80", "2.83"),
		snapshot(t, "2.90", "2.90", "2.93.4"),
	)
	require.NoError(t, err)

	tests := []struct {
		version string
		want    string
	}{
		{"2.80", "2.80"},
		{"2.81.7", "2.80"},
		{"2.83", "2.80"},
		{"2.90.0", "2.90"},
		{"2.93.4", "2.90"},
		{"v2.92", "2.90"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			s, err := b.Find(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Version)
		})
	}

	for _, v := range []string{"2.79.9", "2.84", "2.93.5", "3.0"} {
		t.Run("miss "+v, func(t *testing.T) {
			_, err := b.Find(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrVersionNotFound)

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, v, e.Value)
			assert.Contains(t, e.Detail, "[2.80.0, 2.83.0]")
			assert.Contains(t, e.Detail, "[2.90.0, 2.93.4]")
		})
	}

	_, err = b.Find("garbage")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrVersionNotFound)
}

func TestBundle_FindFirstMatchWins(t *testing.T) {
	first := snapshot(t, "1.0", "1.0", "2.0")
	second := snapshot(t, "1.5", "1.5", "3.0")
	b := NewBundle(first, second)

	s, err := b.Find("1.7")
	require.NoError(t, err)
	assert.Same(t, first, s)

	s, err = b.Find("2.5")
	require.NoError(t, err)
	assert.Same(t, second, s)
}

func TestBundle_EmptyFind(t *testing.T) {
	_, err := NewBundle().Find("1.0")
	require.ErrorIs(t, err, errors.ErrVersionNotFound)
	assert.Contains(t, err.Error(), "bundle is empty")
}

func TestMerge(t *testing.T) {
	newer := snapshot(t, "3.0", "", "")
	older := snapshot(t, "1.0", "1.0", "1.9")

	b, err := Merge(newer, older)
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	assert.Same(t, older, b.Snapshots()[0])
	assert.Same(t, newer, b.Snapshots()[1])

	_, err = Merge(older, snapshot(t, "1.5", "1.5", "2.0"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidSchema)
	assert.Contains(t, err.Error(), "overlaps")
}

func TestEncode_RoundTrip(t *testing.T) {
	b, err := Parse([]byte(meshYAML))
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, b, format))
			assert.Equal(t, format, DetectFormat(buf.Bytes()))

			again, err := Parse(buf.Bytes())
			require.NoError(t, err)
			require.Equal(t, 1, again.Len())

			want, got := b.Snapshots()[0], again.Snapshots()[0]
			assert.Equal(t, want.Version, got.Version)
			assert.Equal(t, want.Range(), got.Range())
			assert.Equal(t, want.Names(), got.Names())
			assert.Equal(t, want.Entity("Mesh").Field("mvert").Offset, got.Entity("Mesh").Field("mvert").Offset)
			assert.Equal(t, want.Entity("ID").Field("name").Count, got.Entity("ID").Field("name").Count)
		})
	}
}

func TestEncodeSnapshot_OmitsDefaults(t *testing.T) {
	s := snapshot(t, "1.0", "", "")

	var buf bytes.Buffer
	require.NoError(t, EncodeSnapshot(&buf, s, FormatYAML))
	out := buf.String()

	assert.Contains(t, out, "version:")
	assert.Contains(t, out, "1.0")
	assert.NotContains(t, out, "min:")
	assert.NotContains(t, out, "max:")
	assert.NotContains(t, out, "count:")
	// x sits at offset 0 and keeps only its non-zero attributes
	assert.NotContains(t, out, "offset: 0")
}

func TestSnapshot_Identity(t *testing.T) {
	a, err := Parse([]byte(meshYAML))
	require.NoError(t, err)
	b, err := Parse([]byte(meshYAML))
	require.NoError(t, err)

	seen := make(map[uint64]bool)
	for _, bundle := range []*Bundle{a, b} {
		s := bundle.Snapshots()[0]
		for _, name := range s.Names() {
			s.Entity(name).walk(func(e *Entity) {
				require.NotZero(t, e.ID)
				require.False(t, seen[e.ID], "identity %d reused", e.ID)
				seen[e.ID] = true
				assert.Same(t, e, s.ByID(e.ID))
			})
		}
	}

	// Parents are numbered before their children.
	s := a.Snapshots()[0]
	mesh := s.Entity("Mesh")
	for _, f := range mesh.Fields {
		assert.Greater(t, f.ID, mesh.ID)
	}
	assert.Nil(t, s.ByID(0))
}

func TestValidate_Violations(t *testing.T) {
	_, err := NewSnapshot("1.0", "", "", map[string]*Entity{
		"Broken": {
			Kind: KindStruct, Size: 8,
			Fields: map[string]*Entity{
				"overflow": {Kind: KindPrimitive, Size: 4, Offset: 6},
				"negative": {Kind: KindPrimitive, Size: 4, Offset: -1},
				"array":    {Kind: KindArray, Size: 4, Count: 3},
			},
		},
		"Leaf": {
			Kind: KindPrimitive, Size: 4,
			Fields: map[string]*Entity{"x": {Kind: KindPrimitive, Size: 1}},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidSchema)

	msg := err.Error()
	assert.Contains(t, msg, "Broken.overflow")
	assert.Contains(t, msg, "negative offset -1")
	assert.Contains(t, msg, "Broken.array")
	assert.Contains(t, msg, "primitive entity cannot declare fields")
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindPrimitive, KindPointer, KindArray, KindStruct} {
		parsed, err := ParseKind(strings.ToUpper(k.String()))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("union")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestEntity_IntegerClassification(t *testing.T) {
	tests := []struct {
		entity  Entity
		integer bool
		signed  bool
	}{
		{Entity{Kind: KindPrimitive, CType: "int", Size: 4}, true, true},
		{Entity{Kind: KindPrimitive, CType: "short", Size: 2}, true, true},
		{Entity{Kind: KindPrimitive, CType: "unsigned int", Size: 4}, true, false},
		{Entity{Kind: KindPrimitive, CType: "uint64_t", Size: 8}, true, false},
		{Entity{Kind: KindPrimitive, CType: "char", Size: 1}, true, true},
		{Entity{Kind: KindPrimitive, CType: "float", Size: 4}, false, true},
		{Entity{Kind: KindPrimitive, CType: "double", Size: 8}, false, true},
		{Entity{Kind: KindPrimitive, CType: "int24", Size: 3}, false, true},
		{Entity{Kind: KindPointer, CType: "int", Size: 8}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.entity.CType, func(t *testing.T) {
			assert.Equal(t, tt.integer, tt.entity.IsInteger())
			assert.Equal(t, tt.signed, tt.entity.IsSigned())
		})
	}
}
