package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts g to Graphviz DOT. Dangling links are drawn dashed red and
// resolver-backed links as grey ellipses.
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	// Node ids may hold any bytes, so DOT gets positional names.
	names := make(map[string]string, len(g.Nodes()))
	for i, n := range g.Nodes() {
		names[n.ID] = fmt.Sprintf("n%d", i)
		fmt.Fprintf(&buf, "  %s [%s];\n", names[n.ID], strings.Join(nodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Key == "" {
			fmt.Fprintf(&buf, "  %s -> %s;\n", names[e.From], names[e.To])
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", names[e.From], names[e.To], e.Key)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Label)}
	switch n.Kind {
	case KindRoot:
		attrs = append(attrs, "penwidth=2")
	case KindResolved:
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightgrey")
	case KindMissing:
		attrs = append(attrs, "style=\"rounded,dashed\"", "color=red", "fontcolor=red")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
