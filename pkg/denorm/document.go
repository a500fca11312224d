package denorm

// Document is normalized content: a JSON object mapping collection names to
// arrays of entities.
type Document struct {
	collections *Object
}

// NewDocument wraps an already decoded top-level object. A nil object yields
// an empty document.
func NewDocument(o *Object) *Document {
	if o == nil {
		o = NewObject(0)
	}
	return &Document{collections: o}
}

// ParseDocument decodes normalized content. The top level must be an object.
func ParseDocument(data []byte) (*Document, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	o, ok := v.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return NewDocument(o), nil
}

// Get returns the raw value stored under name.
func (d *Document) Get(name string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	return d.collections.Get(name)
}

// Collection returns the entities stored under name. It reports false when
// the entry is missing or is not an array.
func (d *Document) Collection(name string) (Array, bool) {
	v, ok := d.Get(name)
	if !ok {
		return nil, false
	}
	arr, ok := v.(Array)
	return arr, ok
}

// Names returns the collection names in document order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	return d.collections.Keys()
}
