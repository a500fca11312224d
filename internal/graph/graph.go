// Package graph maps the links of a normalized content document so editors
// can see which entities a landing page pulls in and which links dangle.
package graph

import (
	"fmt"

	"github.com/mesh-intelligence/landing/pkg/denorm"
)

// Kind classifies a node of the link graph.
type Kind int

const (
	// KindRoot is an entry of the root collection.
	KindRoot Kind = iota
	// KindEntity is an entity found in the document.
	KindEntity
	// KindResolved is a link handled by a dedicated resolver. Its target is
	// computed at render time, so the graph stops there.
	KindResolved
	// KindMissing is a link whose entity is not in the document.
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindEntity:
		return "entity"
	case KindResolved:
		return "resolved"
	case KindMissing:
		return "missing"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is an entity or root entry. ID is unique within a graph; Label is
// the readable type/id form and may repeat across different ids.
type Node struct {
	ID    string
	Label string
	Kind  Kind
}

// Edge records that node From contains a link to node To under member Key.
type Edge struct {
	From string
	To   string
	Key  string
}

// Graph is the link graph of one document. Nodes and edges are kept in the
// order the traversal meets them.
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

// Nodes returns the nodes in traversal order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edges in traversal order.
func (g *Graph) Edges() []Edge { return g.edges }

// Node looks a node up by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Missing returns the targets of dangling links.
func (g *Graph) Missing() []Node {
	var out []Node
	for _, n := range g.nodes {
		if n.Kind == KindMissing {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) add(n Node) bool {
	if _, ok := g.index[n.ID]; ok {
		return false
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return true
}

// Build walks doc from the root collection of d and records every link it
// can reach. Links to types with a dedicated resolver in d's registry are
// leaves. Cycles are fine here since each entity is visited once. A
// malformed link fails the build with the same error ToTree would return.
func Build(doc *denorm.Document, d *denorm.Denormalizer) (*Graph, error) {
	g := &Graph{index: make(map[string]int)}
	b := &builder{g: g, doc: doc, registry: d.Registry()}

	root, ok := doc.Get(d.Root())
	if !ok {
		return g, nil
	}

	entries, ok := root.(denorm.Array)
	if !ok {
		g.add(Node{ID: d.Root(), Label: d.Root(), Kind: KindRoot})
		if err := b.scan(d.Root(), "", root); err != nil {
			return nil, err
		}
		return g, b.drain()
	}

	for i, e := range entries {
		id := fmt.Sprintf("%s[%d]", d.Root(), i)
		g.add(Node{ID: id, Label: id, Kind: KindRoot})
		if err := b.scan(id, "", e); err != nil {
			return nil, err
		}
	}
	return g, b.drain()
}

type pending struct {
	id    string
	value denorm.Value
}

type builder struct {
	g        *Graph
	doc      *denorm.Document
	registry *denorm.Registry
	queue    []pending
}

// drain scans queued entities breadth first.
func (b *builder) drain() error {
	for len(b.queue) > 0 {
		p := b.queue[0]
		b.queue = b.queue[1:]
		if err := b.scan(p.id, "", p.value); err != nil {
			return err
		}
	}
	return nil
}

// scan records the links inside v, which belongs to node from. key is the
// nearest member name above v.
func (b *builder) scan(from, key string, v denorm.Value) error {
	link, isLink, err := denorm.ParseLink(v)
	if err != nil {
		return err
	}
	if isLink {
		b.link(from, key, link)
		return nil
	}

	switch t := v.(type) {
	case *denorm.Object:
		for _, m := range t.Members() {
			if err := b.scan(from, m.Key, m.Value); err != nil {
				return err
			}
		}
	case denorm.Array:
		for _, e := range t {
			if err := b.scan(from, key, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) link(from, key string, l denorm.Link) {
	// Link keys carry a NUL separator, so they never clash with root ids.
	to := l.Key()
	b.g.edges = append(b.g.edges, Edge{From: from, To: to, Key: key})

	if _, seen := b.g.index[to]; seen {
		return
	}
	n := Node{ID: to, Label: l.String()}
	if b.registry.Has(l.Type) {
		n.Kind = KindResolved
		b.g.add(n)
		return
	}
	entity, ok := denorm.FindLink(l.Type, l.ID, b.doc)
	if !ok {
		n.Kind = KindMissing
		b.g.add(n)
		return
	}
	n.Kind = KindEntity
	b.g.add(n)
	b.queue = append(b.queue, pending{id: to, value: entity})
}
