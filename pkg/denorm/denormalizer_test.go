package denorm

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseDocument([]byte(src))
	require.NoError(t, err)
	return doc
}

func mustValue(t *testing.T, src string) Value {
	t.Helper()
	v, err := Parse([]byte(src))
	require.NoError(t, err)
	return v
}

func toJSON(t *testing.T, v Value) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestToTree_PassThroughWithoutLinks(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [
			{"label": "About", "url": "/about", "nested": {"n": [1, 2.5, true, null]}},
			"plain",
			42
		]
	}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)

	root, _ := doc.Get(DefaultRoot)
	assert.True(t, Equal(root, got))
	assert.Equal(t, toJSON(t, root), toJSON(t, got))
}

func TestToTree_NonLinkMappingPreserved(t *testing.T) {
	doc := mustDoc(t, `{"composition": [{"links": [{"label": "About", "url": "/about"}]}]}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"links": [{"label": "About", "url": "/about"}]}]`, toJSON(t, got))
}

func TestToTree_DefaultResolverLookup(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"image": {"type": "assets", "id": "img1"}}],
		"assets": [{"id": "img0", "src": "other.jpg"}, {"id": "img1", "src": "hero.jpg"}]
	}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"image": {"id": "img1", "src": "hero.jpg"}}]`, toJSON(t, got))
}

func TestToTree_NumericIDs(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"category": {"type": "categories", "id": 123}}],
		"categories": [{"id": 123.0, "name": "bikes"}]
	}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.Equal(t, `[{"category":{"id":123.0,"name":"bikes"}}]`, toJSON(t, got))
}

func TestToTree_TransitiveResolution(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"section": {"type": "sections", "id": "hero"}}],
		"sections": [{"id": "hero", "background": {"type": "assets", "id": "bg"}}],
		"assets": [{"id": "bg", "src": "hero.jpg"}]
	}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"section": {"id": "hero", "background": {"id": "bg", "src": "hero.jpg"}}}]`,
		toJSON(t, got))
}

func TestToTree_CustomResolverOverride(t *testing.T) {
	doc := mustDoc(t, `{"composition": [{"signup": {"type": "path", "id": "signup_path"}}]}`)

	var calls []string
	paths := ResolverFunc(func(linkType string, id Value, d *Document) (Value, error) {
		calls = append(calls, linkType+":"+string(id.(String)))
		assert.Same(t, doc, d)
		return String("/signup"), nil
	})

	got, err := New(WithResolver("path", paths)).ToTree(doc)
	require.NoError(t, err)
	assert.Equal(t, `[{"signup":"/signup"}]`, toJSON(t, got))
	assert.Equal(t, []string{"path:signup_path"}, calls)
}

func TestToTree_CustomResolverResultIsResolvedFurther(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"x": {"type": "alias", "id": "a"}}],
		"assets": [{"id": "img", "src": "a.png"}]
	}`)

	alias := ResolverFunc(func(string, Value, *Document) (Value, error) {
		return ObjectOf(Member{Key: "image", Value: ObjectOf(
			Member{Key: "type", Value: String("assets")},
			Member{Key: "id", Value: String("img")},
		)}), nil
	})

	got, err := New(WithResolvers(map[string]Resolver{"alias": alias})).ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x": {"image": {"id": "img", "src": "a.png"}}}]`, toJSON(t, got))
}

func TestToTree_SequenceOrderPreserved(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [
			{"type": "sections", "id": "b"},
			{"kind": "inline"},
			{"type": "sections", "id": "a"}
		],
		"sections": [{"id": "a", "n": 1}, {"id": "b", "n": 2}]
	}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)

	arr, ok := got.(Array)
	require.True(t, ok)
	require.Len(t, arr, 3)
	assert.JSONEq(t, `[{"id": "b", "n": 2}, {"kind": "inline"}, {"id": "a", "n": 1}]`, toJSON(t, got))
}

func TestToTree_KeyOrderPreserved(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"zeta": 1, "alpha": {"type": "s", "id": "x"}, "mid": 3}],
		"s": [{"id": "x", "z": 1, "a": 2}]
	}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.Equal(t, `[{"zeta":1,"alpha":{"id":"x","z":1,"a":2},"mid":3}]`, toJSON(t, got))
}

func TestToTree_InvalidLink(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing id", `{"composition": [{"image": {"type": "assets"}}]}`},
		{"null id", `{"composition": [{"image": {"type": "assets", "id": null}}]}`},
		{"deeply nested", `{"composition": [{"a": [{"b": {"c": {"type": "assets"}}}]}]}`},
		{"array element", `{"composition": [{"type": "assets"}]}`},
		{"non-string type", `{"composition": [{"image": {"type": 7, "id": "x"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().ToTree(mustDoc(t, tt.src))
			assert.Nil(t, got)
			require.Error(t, err)

			var invalid *InvalidLinkError
			require.ErrorAs(t, err, &invalid)
			assert.ErrorIs(t, err, ErrInvalidLink)
			typ, ok := invalid.Value.Get("type")
			assert.True(t, ok)
			assert.False(t, IsNull(typ))
		})
	}
}

func TestToTree_NullTypeIsNotALink(t *testing.T) {
	doc := mustDoc(t, `{"composition": [{"meta": {"type": null, "label": "x"}}]}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"meta": {"type": null, "label": "x"}}]`, toJSON(t, got))
}

func TestToTree_LinkNotFound(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no such entity", `{"composition": [{"img": {"type": "assets", "id": "nope"}}], "assets": [{"id": "a"}]}`},
		{"no such collection", `{"composition": [{"img": {"type": "assets", "id": "a"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().ToTree(mustDoc(t, tt.src))
			require.Error(t, err)

			var notFound *LinkNotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, "assets", notFound.Type)
			assert.ErrorIs(t, err, ErrLinkNotFound)
		})
	}
}

func TestToTree_MissingLinksNullPolicy(t *testing.T) {
	doc := mustDoc(t, `{"composition": [{"img": {"type": "assets", "id": "nope"}, "keep": 1}]}`)

	got, err := New(WithMissingLinks(MissingLinksNull)).ToTree(doc)
	require.NoError(t, err)
	assert.Equal(t, `[{"img":null,"keep":1}]`, toJSON(t, got))
}

func TestToTree_ResolverErrorPropagatedVerbatim(t *testing.T) {
	errNoPath := errors.New("couldn't find path 'nope'")
	doc := mustDoc(t, `{"composition": [{"ok": "x"}, {"p": {"type": "path", "id": "nope"}}]}`)

	failing := ResolverFunc(func(string, Value, *Document) (Value, error) {
		return nil, errNoPath
	})

	got, err := New(WithResolver("path", failing)).ToTree(doc)
	assert.Nil(t, got)
	assert.True(t, err == errNoPath, "resolver error must not be wrapped, got %v", err)
}

func TestToTree_RootAbsent(t *testing.T) {
	doc := mustDoc(t, `{"sections": [{"id": "a"}]}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.True(t, IsNull(got))
}

func TestToTree_CustomRoot(t *testing.T) {
	doc := mustDoc(t, `{"layout": [{"s": {"type": "sections", "id": "a"}}], "sections": [{"id": "a"}]}`)

	d := New(WithRoot("layout"))
	assert.Equal(t, "layout", d.Root())

	got, err := d.ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"s": {"id": "a"}}]`, toJSON(t, got))
}

func TestToTree_DoesNotMutateInput(t *testing.T) {
	src := `{
		"composition": [{"section": {"type": "sections", "id": "hero"}}],
		"sections": [{"id": "hero", "bg": {"type": "assets", "id": "bg"}}],
		"assets": [{"id": "bg", "src": "hero.jpg"}]
	}`
	doc := mustDoc(t, src)
	before := toJSON(t, doc.collections)

	got, err := New().ToTree(doc)
	require.NoError(t, err)

	// Mutating the output must not leak into the input either.
	got.(Array)[0].(*Object).Set("section", String("gone"))

	assert.Equal(t, before, toJSON(t, doc.collections))
}

func TestToTree_Deterministic(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"a": {"type": "s", "id": 1}}, {"b": {"type": "s", "id": 2}}],
		"s": [{"id": 1, "v": "one"}, {"id": 2, "v": {"type": "s", "id": 1}}]
	}`)
	d := New()

	first, err := d.ToTree(doc)
	require.NoError(t, err)
	second, err := d.ToTree(doc)
	require.NoError(t, err)

	assert.True(t, Equal(first, second))
	assert.Equal(t, toJSON(t, first), toJSON(t, second))
}

func TestToTree_CyclicLink(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"a": {"type": "s", "id": "a"}}],
		"s": [{"id": "a", "next": {"type": "s", "id": "b"}}, {"id": "b", "next": {"type": "s", "id": "a"}}]
	}`)

	_, err := New().ToTree(doc)
	require.Error(t, err)

	var cyclic *CyclicLinkError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, "s", cyclic.Type)
	assert.ErrorIs(t, err, ErrCyclicLink)
}

func TestToTree_RepeatedLinkIsNotACycle(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [
			{"section": {"type": "sections", "id": "hero"}},
			{"section": {"type": "sections", "id": "hero"}}
		],
		"sections": [{"id": "hero", "title": "Hi"}]
	}`)

	got, err := New().ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"section": {"id": "hero", "title": "Hi"}}, {"section": {"id": "hero", "title": "Hi"}}]`, toJSON(t, got))
}

func TestToTree_Concurrent(t *testing.T) {
	doc := mustDoc(t, `{
		"composition": [{"section": {"type": "sections", "id": "hero"}}],
		"sections": [{"id": "hero", "path": {"type": "path", "id": "signup_path"}}]
	}`)
	d := New(WithResolver("path", ResolverFunc(func(string, Value, *Document) (Value, error) {
		return String("/signup"), nil
	})))

	want := `[{"section":{"id":"hero","path":"/signup"}}]`
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := d.ToTree(doc)
			if assert.NoError(t, err) {
				raw, _ := json.Marshal(got)
				assert.Equal(t, want, string(raw))
			}
		}()
	}
	wg.Wait()
}

func TestRegistry_Lookup(t *testing.T) {
	custom := ResolverFunc(func(string, Value, *Document) (Value, error) { return String("c"), nil })
	var nilFunc ResolverFunc

	r := NewRegistry(map[string]Resolver{"path": custom, "assets": nil, "colors": nilFunc}, nil)

	assert.True(t, r.Has("path"))
	assert.False(t, r.Has("assets"))
	assert.False(t, r.Has("colors"))
	assert.Equal(t, DefaultResolver{}, r.Lookup("assets"))
	assert.Equal(t, DefaultResolver{}, r.Lookup("colors"))

	v, err := r.Lookup("path").Resolve("path", String("x"), NewDocument(nil))
	require.NoError(t, err)
	assert.Equal(t, String("c"), v)
}

func TestFindLink(t *testing.T) {
	doc := mustDoc(t, `{"assets": [{"src": "no-id"}, "scalar", {"id": "a", "n": 1}, {"id": "a", "n": 2}]}`)

	v, ok := FindLink("assets", String("a"), doc)
	require.True(t, ok)
	assert.JSONEq(t, `{"id": "a", "n": 1}`, toJSON(t, v))

	_, ok = FindLink("assets", String("b"), doc)
	assert.False(t, ok)

	_, ok = FindLink("missing", String("a"), doc)
	assert.False(t, ok)
}
