package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/internal/marketplace"
	"github.com/mesh-intelligence/landing/internal/sqlite"
	"github.com/mesh-intelligence/landing/pkg/denorm"
	"github.com/mesh-intelligence/landing/pkg/types"
)

type renderFunc func(ctx context.Context, communityID int64, version *int64) (*landing.Page, error)

func (f renderFunc) Render(ctx context.Context, communityID int64, version *int64) (*landing.Page, error) {
	return f(ctx, communityID, version)
}

func newTestServer(t *testing.T, r Renderer, cfg Config) http.Handler {
	t.Helper()
	resolver := marketplace.NewResolver("example.com", map[string]int64{"aalto": 501, "oin": 11})
	return New(r, resolver, cfg, log.New(io.Discard)).Handler()
}

func get(t *testing.T, h http.Handler, url string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, renderFunc(nil), Config{})
	rec := get(t, h, "http://unknown.host/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownMarketplace(t *testing.T) {
	h := newTestServer(t, renderFunc(nil), Config{})
	rec := get(t, h, "http://nope.example.com/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndex_PassesCommunityAndNoVersion(t *testing.T) {
	var gotID int64
	var gotVersion *int64
	r := renderFunc(func(_ context.Context, id int64, v *int64) (*landing.Page, error) {
		gotID, gotVersion = id, v
		return &landing.Page{CommunityID: id, Version: 4, Sections: denorm.Array{}}, nil
	})
	h := newTestServer(t, r, Config{})

	rec := get(t, h, "http://oin.example.com/?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(11), gotID)
	assert.Nil(t, gotVersion)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"community_id":11,"version":4,"sections":[]}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Robots-Tag"))
}

func TestPreview(t *testing.T) {
	var gotVersion *int64
	r := renderFunc(func(_ context.Context, id int64, v *int64) (*landing.Page, error) {
		gotVersion = v
		return &landing.Page{CommunityID: id, Version: *v, Sections: denorm.Array{}}, nil
	})
	h := newTestServer(t, r, Config{})

	rec := get(t, h, "http://aalto.example.com/_lp_preview?preview_version=3", map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotVersion)
	assert.Equal(t, int64(3), *gotVersion)
	assert.Equal(t, "none", rec.Header().Get("X-Robots-Tag"))

	for _, q := range []string{"", "?preview_version=abc", "?preview_version=0"} {
		t.Run("invalid "+q, func(t *testing.T) {
			rec := get(t, h, "http://aalto.example.com/_lp_preview"+q, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Not found\n", rec.Body.String())
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"content not found", fmt.Errorf("%w. community_id: 501", types.ErrContentNotFound), http.StatusNotFound},
		{"not enabled", fmt.Errorf("%w. community_id: 501", types.ErrNotEnabled), http.StatusInternalServerError},
		{"version unset", types.ErrVersionUnset, http.StatusInternalServerError},
		{"transform", &denorm.InvalidLinkError{Value: denorm.NewObject(0), Reason: "has a 'type' key but no 'id'"}, http.StatusInternalServerError},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := renderFunc(func(context.Context, int64, *int64) (*landing.Page, error) { return nil, tt.err })
			rec := get(t, newTestServer(t, r, Config{}), "http://aalto.example.com/", nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRenderTimeoutIsApplied(t *testing.T) {
	var deadline time.Time
	r := renderFunc(func(ctx context.Context, id int64, _ *int64) (*landing.Page, error) {
		deadline, _ = ctx.Deadline()
		return &landing.Page{CommunityID: id, Sections: denorm.Array{}}, nil
	})
	rec := get(t, newTestServer(t, r, Config{RenderTimeout: time.Minute}), "http://aalto.example.com/?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, deadline.IsZero())
}

func TestEndToEnd_HTML(t *testing.T) {
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer store.Detach()

	_, err := store.Publish(501, `{
		"sections": [
			{"id": "hero", "kind": "hero", "title": "Bikes <for> rent",
			 "background_image": {"type": "assets", "id": "img"}},
			{"id": "hidden", "kind": "hero", "title": "Do not show"}
		],
		"composition": [
			{"section": {"type": "sections", "id": "hero"}, "disabled": false},
			{"section": {"type": "sections", "id": "hidden"}, "disabled": true}
		],
		"assets": [{"id": "img", "src": "hero.jpg"}]
	}`)
	require.NoError(t, err)
	require.NoError(t, store.Release(501, 1))

	svc := landing.NewService(store, landing.DefaultSettings())
	h := newTestServer(t, svc, Config{})

	rec := get(t, h, "http://aalto.example.com/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `id="hero"`)
	assert.Contains(t, body, "Bikes &lt;for&gt; rent")
	assert.Contains(t, body, "landing_page/hero.jpg")
	assert.Contains(t, body, "/landing_page/fonts/")
	assert.NotContains(t, body, "Do not show")

	rec = get(t, h, "http://aalto.example.com/?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, float64(1), decoded["version"])

	rec = get(t, h, "http://oin.example.com/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "community without a landing page")
}
