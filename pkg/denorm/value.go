// Package denorm rewrites normalized landing page content into a fully
// inlined tree. Content is stored as a set of named collections whose entities
// point at each other through link objects ({"type": ..., "id": ...}); the
// Denormalizer walks the root collection and replaces every link with the
// entity it names.
package denorm

import (
	"math/big"
	"sort"
	"strconv"
)

// Value is a JSON value. The set of implementations is closed: Null, Bool,
// Number, String, Array and *Object.
type Value interface {
	isValue()
}

// Null is the JSON null value.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number kept in its literal form so identifiers such as
// 123 are reproduced exactly.
type Number string

// String is a JSON string.
type String string

// Array is an ordered JSON array.
type Array []Value

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object that remembers insertion order. Setting an existing
// key replaces its value in place.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty object with room for n members.
func NewObject(n int) *Object {
	return &Object{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
}

// ObjectOf builds an object from members in the given order.
func ObjectOf(members ...Member) *Object {
	o := NewObject(len(members))
	for _, m := range members {
		o.Set(m.Key, m.Value)
	}
	return o
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Set stores v under key.
func (o *Object) Set(key string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Members returns a copy of the members in insertion order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	out := make([]Member, len(o.members))
	copy(out, o.members)
	return out
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// IsNull reports whether v is absent or JSON null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case *Object:
		out := NewObject(t.Len())
		for _, m := range t.Members() {
			out.Set(m.Key, Clone(m.Value))
		}
		return out
	case nil:
		return Null{}
	default:
		return v
	}
}

// Equal reports whether a and b are structurally equal. Object member order
// is ignored and numbers compare by value, so 1 and 1.0 are equal.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch x := a.(type) {
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		return ok && numbersEqual(x, y)
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, m := range x.members {
			other, ok := y.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b Number) bool {
	if a == b {
		return true
	}
	x, ok := new(big.Rat).SetString(string(a))
	if !ok {
		return false
	}
	y, ok := new(big.Rat).SetString(string(b))
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
}

// FromGo converts a tree of Go values as produced by encoding/json
// (map[string]any, []any, string, float64, bool, nil) into a Value. Map keys
// are sorted because Go maps carry no order.
func FromGo(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case float64:
		return Number(strconv.FormatFloat(t, 'g', -1, 64))
	case int:
		return Number(strconv.Itoa(t))
	case int64:
		return Number(strconv.FormatInt(t, 10))
	case []any:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = FromGo(e)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := NewObject(len(keys))
		for _, k := range keys {
			o.Set(k, FromGo(t[k]))
		}
		return o
	}
	return Null{}
}

// ToGo converts v into plain Go values (map[string]any, []any, string,
// float64, bool, nil). Object order is lost.
func ToGo(v Value) any {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case String:
		return string(t)
	case Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return string(t)
		}
		return f
	case Array:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToGo(e)
		}
		return out
	case *Object:
		out := make(map[string]any, t.Len())
		for _, m := range t.members {
			out[m.Key] = ToGo(m.Value)
		}
		return out
	}
	return nil
}
