// This file implements the recursive rewrite from normalized content to a
// denormalized tree.
package denorm

import (
	"math/big"
)

// DefaultRoot is the collection the traversal starts from unless WithRoot
// says otherwise.
const DefaultRoot = "composition"

// MissingLinkPolicy decides what the default resolver does when a link names
// an entity that is not in the document.
type MissingLinkPolicy int

const (
	// MissingLinksError fails the whole transform with a LinkNotFoundError.
	MissingLinksError MissingLinkPolicy = iota
	// MissingLinksNull replaces the link with null and carries on. Content
	// rendered this way may have holes.
	MissingLinksNull
)

// Option configures a Denormalizer.
type Option func(*Denormalizer)

// WithRoot sets the name of the collection the traversal starts from.
func WithRoot(root string) Option {
	return func(d *Denormalizer) { d.root = root }
}

// WithResolvers registers custom resolvers keyed by link type.
func WithResolvers(resolvers map[string]Resolver) Option {
	return func(d *Denormalizer) {
		for linkType, r := range resolvers {
			d.custom[linkType] = r
		}
	}
}

// WithResolver registers a single custom resolver.
func WithResolver(linkType string, r Resolver) Option {
	return func(d *Denormalizer) { d.custom[linkType] = r }
}

// WithMissingLinks sets the policy for default-resolver misses.
func WithMissingLinks(p MissingLinkPolicy) Option {
	return func(d *Denormalizer) { d.missing = p }
}

// Denormalizer rewrites normalized documents into trees. It holds no state
// besides its configuration and is safe for concurrent use.
type Denormalizer struct {
	root     string
	missing  MissingLinkPolicy
	custom   map[string]Resolver
	registry *Registry
}

// New returns a Denormalizer rooted at DefaultRoot that resolves every link
// type with the default lookup unless options register something else.
func New(opts ...Option) *Denormalizer {
	d := &Denormalizer{
		root:   DefaultRoot,
		custom: make(map[string]Resolver),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.registry = NewRegistry(d.custom, DefaultResolver{AllowMissing: d.missing == MissingLinksNull})
	d.custom = nil
	return d
}

// Root returns the configured root collection name.
func (d *Denormalizer) Root() string { return d.root }

// Registry returns the resolver registry built at construction.
func (d *Denormalizer) Registry() *Registry { return d.registry }

// ToTree returns the root collection of doc with every link replaced by the
// entity it resolves to. Resolved entities are rewritten the same way, so
// chains of links are followed to the end. A document without the root
// collection yields Null. The input is not modified.
//
// The first failing link aborts the transform; no partial tree is returned.
func (d *Denormalizer) ToTree(doc *Document) (Value, error) {
	root, ok := doc.Get(d.root)
	if !ok {
		return Null{}, nil
	}

	w := &walker{
		registry: d.registry,
		doc:      doc,
		active:   make(map[string]struct{}),
	}
	return w.descend(root)
}

// walker carries the state of a single ToTree call.
type walker struct {
	registry *Registry
	doc      *Document

	// active holds the links whose expansion is in progress on the current
	// path from the root.
	active map[string]struct{}
}

// descend copies v, passing each member value or element through visit.
func (w *walker) descend(v Value) (Value, error) {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return Null{}, nil
		}
		out := NewObject(t.Len())
		for _, m := range t.members {
			nv, err := w.visit(m.Value)
			if err != nil {
				return nil, err
			}
			out.Set(m.Key, nv)
		}
		return out, nil
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			nv, err := w.visit(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case nil:
		return Null{}, nil
	default:
		return v, nil
	}
}

// visit replaces v with its resolution when v is a link, then descends into
// the result.
func (w *walker) visit(v Value) (Value, error) {
	link, isLink, err := ParseLink(v)
	if err != nil {
		return nil, err
	}
	if !isLink {
		return w.descend(v)
	}

	key := link.Key()
	if _, busy := w.active[key]; busy {
		return nil, &CyclicLinkError{Type: link.Type, ID: link.ID}
	}

	resolved, err := w.registry.Lookup(link.Type).Resolve(link.Type, link.ID, w.doc)
	if err != nil {
		return nil, err
	}

	w.active[key] = struct{}{}
	out, err := w.descend(resolved)
	delete(w.active, key)
	return out, err
}

// Link is a parsed reference to an entity.
type Link struct {
	Type string
	ID   Value
}

// ParseLink classifies v. An object is a link when its "type" is not null;
// such an object must also carry a non-null "id" and a string type. Values
// that are not links report false with a nil error.
func ParseLink(v Value) (Link, bool, error) {
	obj, ok := v.(*Object)
	if !ok || obj == nil {
		return Link{}, false, nil
	}

	rawType, ok := obj.Get("type")
	if !ok || IsNull(rawType) {
		return Link{}, false, nil
	}

	id, ok := obj.Get("id")
	if !ok || IsNull(id) {
		return Link{}, false, &InvalidLinkError{Value: obj, Reason: "has a 'type' key but no 'id'"}
	}

	linkType, ok := rawType.(String)
	if !ok {
		return Link{}, false, &InvalidLinkError{Value: obj, Reason: "has a 'type' that is not a string"}
	}
	return Link{Type: string(linkType), ID: id}, true, nil
}

// Key identifies the entity l points at. Numeric ids are normalized so 1
// and 1.0 give the same key.
func (l Link) Key() string {
	switch t := l.ID.(type) {
	case String:
		return l.Type + "\x00s" + string(t)
	case Number:
		if r, ok := new(big.Rat).SetString(string(t)); ok {
			return l.Type + "\x00n" + r.RatString()
		}
		return l.Type + "\x00n" + string(t)
	}
	return l.Type + "\x00v" + formatID(l.ID)
}

// String formats l as type/id.
func (l Link) String() string {
	if s, ok := l.ID.(String); ok {
		return l.Type + "/" + string(s)
	}
	return l.Type + "/" + formatID(l.ID)
}
