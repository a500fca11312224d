// This file implements the landing page handlers and response encoding.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/internal/marketplace"
	"github.com/mesh-intelligence/landing/pkg/types"
)

const notFoundBody = "Not found"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, nil)
}

// handlePreview serves an unreleased version. Search engines are told to
// neither index nor follow it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.ParseInt(r.URL.Query().Get("preview_version"), 10, 64)
	if err != nil || version <= 0 {
		http.Error(w, notFoundBody, http.StatusNotFound)
		return
	}
	w.Header().Set("X-Robots-Tag", "none")
	s.serve(w, r, &version)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, version *int64) {
	m, ok := marketplace.FromContext(r.Context())
	if !ok {
		http.Error(w, notFoundBody, http.StatusNotFound)
		return
	}

	ctx := r.Context()
	if s.config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RenderTimeout)
		defer cancel()
	}

	page, err := s.renderer.Render(ctx, m.CommunityID, version)
	if err != nil {
		s.writeError(w, r, m, err)
		return
	}

	if wantsJSON(r) {
		s.writeJSON(w, page)
		return
	}
	s.writeHTML(w, page)
}

// writeError maps render failures to responses. Missing content is a 404;
// everything else is a server-side problem and gets logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, m marketplace.Marketplace, err error) {
	if errors.Is(err, types.ErrContentNotFound) {
		http.Error(w, notFoundBody, http.StatusNotFound)
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	kind := "render failed"
	if errors.Is(err, types.ErrConfiguration) {
		kind = "landing page misconfigured"
	}
	s.logger.Error(kind,
		"community_id", m.CommunityID,
		"marketplace", m.Ident,
		"path", r.URL.Path,
		"err", err,
	)
	http.Error(w, http.StatusText(status), status)
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *Server) writeJSON(w http.ResponseWriter, page *landing.Page) {
	data, err := json.Marshal(page)
	if err != nil {
		s.logger.Error("encoding page", "community_id", page.CommunityID, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
