// This file implements link resolution: the Resolver contract, the default
// lookup strategy and the registry that picks one per link type.
package denorm

// Resolver turns a link into the value that replaces it. The returned value
// may itself contain links; the Denormalizer keeps resolving inside it.
// Errors are handed back to the ToTree caller unchanged.
type Resolver interface {
	Resolve(linkType string, id Value, doc *Document) (Value, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(linkType string, id Value, doc *Document) (Value, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(linkType string, id Value, doc *Document) (Value, error) {
	return f(linkType, id, doc)
}

// FindLink scans the collection named linkType for the first entity whose
// "id" equals id. It reports false when the collection is missing or has no
// such entity.
func FindLink(linkType string, id Value, doc *Document) (Value, bool) {
	coll, ok := doc.Collection(linkType)
	if !ok {
		return nil, false
	}
	for _, item := range coll {
		obj, ok := item.(*Object)
		if !ok {
			continue
		}
		if itemID, ok := obj.Get("id"); ok && Equal(itemID, id) {
			return obj, true
		}
	}
	return nil, false
}

// DefaultResolver looks links up in the document itself with FindLink.
type DefaultResolver struct {
	// AllowMissing makes a miss resolve to null instead of failing with a
	// LinkNotFoundError.
	AllowMissing bool
}

// Resolve implements Resolver.
func (r DefaultResolver) Resolve(linkType string, id Value, doc *Document) (Value, error) {
	v, ok := FindLink(linkType, id, doc)
	if ok {
		return v, nil
	}
	if r.AllowMissing {
		return Null{}, nil
	}
	return nil, &LinkNotFoundError{Type: linkType, ID: id}
}

// Registry maps link types to resolvers. Types without an entry use the
// fallback. A Registry is immutable once built.
type Registry struct {
	resolvers map[string]Resolver
	fallback  Resolver
}

// NewRegistry builds a registry from resolvers. Nil entries are dropped so
// those types fall back to the default lookup. A nil fallback means
// DefaultResolver{}.
func NewRegistry(resolvers map[string]Resolver, fallback Resolver) *Registry {
	if fallback == nil {
		fallback = DefaultResolver{}
	}
	r := &Registry{
		resolvers: make(map[string]Resolver, len(resolvers)),
		fallback:  fallback,
	}
	for linkType, res := range resolvers {
		if res == nil {
			continue
		}
		if fn, ok := res.(ResolverFunc); ok && fn == nil {
			continue
		}
		r.resolvers[linkType] = res
	}
	return r
}

// Lookup returns the resolver for linkType.
func (r *Registry) Lookup(linkType string) Resolver {
	if res, ok := r.resolvers[linkType]; ok {
		return res
	}
	return r.fallback
}

// Has reports whether linkType has a dedicated resolver.
func (r *Registry) Has(linkType string) bool {
	_, ok := r.resolvers[linkType]
	return ok
}
