package denorm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsOrderAndLiterals(t *testing.T) {
	src := `{"b":1,"a":[true,null,"x",1.50,{"z":{},"y":[]}],"c":-3e2}`

	v, err := Parse([]byte(src))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, src, string(raw))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ``},
		{"truncated", `{"a": [1, 2`},
		{"trailing value", `{"a": 1} {"b": 2}`},
		{"bad literal", `{"a": tru}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestParseDocument_RequiresObject(t *testing.T) {
	_, err := ParseDocument([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrNotObject)

	doc, err := ParseDocument([]byte(`{"composition": [], "assets": {"not": "array"}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"composition", "assets"}, doc.Names())

	_, ok := doc.Collection("assets")
	assert.False(t, ok, "non-array entries are not collections")
	coll, ok := doc.Collection("composition")
	assert.True(t, ok)
	assert.Empty(t, coll)
}

func TestObject_SetReplacesInPlace(t *testing.T) {
	o := ObjectOf(
		Member{Key: "a", Value: Number("1")},
		Member{Key: "b", Value: Number("2")},
	)
	o.Set("a", String("x"))
	o.Set("c", Bool(true))

	assert.Equal(t, []string{"a", "b", "c"}, o.Keys())
	v, ok := o.Get("a")
	require.True(t, ok)
	assert.Equal(t, String("x"), v)
	assert.Equal(t, 3, o.Len())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"numbers by value", `1`, `1.0`, true},
		{"exponent", `100`, `1e2`, true},
		{"different numbers", `1`, `2`, false},
		{"string vs number", `"1"`, `1`, false},
		{"object order ignored", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"object extra key", `{"a":1}`, `{"a":1,"b":2}`, false},
		{"array order matters", `[1,2]`, `[2,1]`, false},
		{"nulls", `null`, `null`, true},
		{"null vs false", `null`, `false`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustValue(t, tt.a)
			b := mustValue(t, tt.b)
			assert.Equal(t, tt.want, Equal(a, b))
		})
	}
}

func TestFromGoToGo(t *testing.T) {
	in := map[string]any{
		"b":    []any{1.0, "x", nil, true},
		"a":    map[string]any{"n": 2.5},
		"int":  7,
		"none": nil,
	}

	v := FromGo(in)
	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "int", "none"}, obj.Keys())

	out := ToGo(v)
	assert.Equal(t, map[string]any{
		"b":    []any{1.0, "x", nil, true},
		"a":    map[string]any{"n": 2.5},
		"int":  7.0,
		"none": nil,
	}, out)
}

func TestClone_IsDeep(t *testing.T) {
	orig := mustValue(t, `{"a": [{"b": 1}]}`)
	cp := Clone(orig)

	cp.(*Object).Set("a", String("changed"))
	assert.JSONEq(t, `{"a": [{"b": 1}]}`, toJSON(t, orig))
}
