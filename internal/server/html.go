// This file renders pages as HTML.
package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/pkg/denorm"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("landing_page.html.tmpl").Funcs(template.FuncMap{
		"isObject": func(v denorm.Value) bool { _, ok := v.(*denorm.Object); return ok },
		"isArray":  func(v denorm.Value) bool { _, ok := v.(denorm.Array); return ok },
		"members":  func(v denorm.Value) []denorm.Member { return v.(*denorm.Object).Members() },
		"elems":    func(v denorm.Value) denorm.Array { return v.(denorm.Array) },
		"scalar":   scalar,
	}).ParseFS(templateFS, "templates/landing_page.html.tmpl"),
)

// htmlSection is one visible entry of the composition.
type htmlSection struct {
	ID        string
	Kind      string
	Variation string
	Value     denorm.Value
}

type htmlPage struct {
	Title        string
	FontPath     string
	PrimaryColor string
	CommunityID  int64
	Version      int64
	Sections     []htmlSection
}

func (s *Server) writeHTML(w http.ResponseWriter, page *landing.Page) {
	data := htmlPage{
		Title:        "Landing page",
		FontPath:     s.config.FontPath,
		PrimaryColor: s.config.PrimaryColor,
		CommunityID:  page.CommunityID,
		Version:      page.Version,
		Sections:     visibleSections(page.Sections),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("rendering html", "community_id", page.CommunityID, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// visibleSections flattens composition entries of the form
// {"section": {...}, "disabled": bool}, dropping disabled ones. Entries
// without a "section" object are rendered as they are.
func visibleSections(tree denorm.Value) []htmlSection {
	entries, ok := tree.(denorm.Array)
	if !ok {
		return nil
	}

	out := make([]htmlSection, 0, len(entries))
	for _, e := range entries {
		entry, ok := e.(*denorm.Object)
		if !ok {
			continue
		}
		if disabled, ok := entry.Get("disabled"); ok && disabled == denorm.Bool(true) {
			continue
		}
		section := entry
		if inner, ok := entry.Get("section"); ok {
			if obj, ok := inner.(*denorm.Object); ok {
				section = obj
			}
		}
		out = append(out, htmlSection{
			ID:        stringField(section, "id"),
			Kind:      stringField(section, "kind"),
			Variation: stringField(section, "variation"),
			Value:     section,
		})
	}
	return out
}

func stringField(o *denorm.Object, key string) string {
	v, ok := o.Get(key)
	if !ok {
		return ""
	}
	return scalar(v)
}

func scalar(v denorm.Value) string {
	switch t := v.(type) {
	case denorm.String:
		return string(t)
	case denorm.Number:
		return string(t)
	case denorm.Bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
