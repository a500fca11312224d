package landing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/landing/pkg/denorm"
)

func toJSON(t *testing.T, v denorm.Value) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func render(t *testing.T, src string) (denorm.Value, error) {
	t.Helper()
	doc, err := denorm.ParseDocument([]byte(src))
	require.NoError(t, err)
	return NewDenormalizer(DefaultSettings()).ToTree(doc)
}

func TestResolvers_SampleContent(t *testing.T) {
	tree, err := render(t, sampleContent)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"section": {
			"id": "private_hero", "kind": "hero", "variation": "private",
			"background_image": {"id": "myheroimage", "src": "landing_page/hero.jpg"},
			"signup_path": "/signup"},
		 "disabled": false},
		{"section": {
			"id": "footer", "kind": "footer",
			"social_media_icon_color": {"id": "primary_color", "value": "#347F9D"}},
		 "disabled": false},
		{"section": {
			"id": "myhero1", "kind": "hero", "variation": "location_search",
			"background_image": {"id": "myheroimage", "src": "landing_page/hero.jpg"},
			"search_path": "/search/"},
		 "disabled": true}
	]`, toJSON(t, tree))
}

func TestPathResolver(t *testing.T) {
	_, err := render(t, `{"composition": [{"href": {"type": "path", "id": "about_path"}}]}`)

	var pathErr *PathNotFoundError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, denorm.String("about_path"), pathErr.ID)
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.Equal(t, "couldn't find path 'about_path'", err.Error())

	_, err = render(t, `{"composition": [{"href": {"type": "path", "id": 7}}]}`)
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestColorResolver(t *testing.T) {
	_, err := render(t, `{"composition": [{"c": {"type": "marketplace_color", "id": "secondary_color"}}]}`)
	assert.ErrorIs(t, err, ErrColorNotFound)

	s := DefaultSettings()
	s.Colors["secondary_color"] = "#000000"
	doc, err := denorm.ParseDocument([]byte(`{"composition": [{"type": "marketplace_color", "id": "secondary_color"}]}`))
	require.NoError(t, err)
	tree, err := NewDenormalizer(s).ToTree(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "secondary_color", "value": "#000000"}]`, toJSON(t, tree))
}

func TestAssetResolver(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "prefixes src and keeps other keys",
			src:  `{"composition": [{"type": "assets", "id": "a"}], "assets": [{"id": "a", "src": "x.png", "alt": "X"}]}`,
			want: `[{"id": "a", "src": "landing_page/x.png", "alt": "X"}]`,
		},
		{
			name: "missing src",
			src:  `{"composition": [{"type": "assets", "id": "a"}], "assets": [{"id": "a"}]}`,
			want: `[{"id": "a", "src": "landing_page/"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := render(t, tt.src)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, toJSON(t, tree))
		})
	}

	t.Run("does not modify the document", func(t *testing.T) {
		doc, err := denorm.ParseDocument([]byte(`{"composition": [{"type": "assets", "id": "a"}], "assets": [{"id": "a", "src": "x.png"}]}`))
		require.NoError(t, err)
		_, err = NewDenormalizer(DefaultSettings()).ToTree(doc)
		require.NoError(t, err)

		assets, _ := doc.Get("assets")
		assert.JSONEq(t, `[{"id": "a", "src": "x.png"}]`, toJSON(t, assets))
	})

	t.Run("missing asset", func(t *testing.T) {
		_, err := render(t, `{"composition": [{"type": "assets", "id": "nope"}], "assets": []}`)
		var notFound *denorm.LinkNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "assets", notFound.Type)
	})
}

func TestNewDenormalizer_ExtraOptions(t *testing.T) {
	d := NewDenormalizer(DefaultSettings(), denorm.WithRoot("sections"))
	assert.Equal(t, "sections", d.Root())
	assert.True(t, d.Registry().Has(LinkPath))
	assert.True(t, d.Registry().Has(LinkAssets))
	assert.False(t, d.Registry().Has("sections"))
}
