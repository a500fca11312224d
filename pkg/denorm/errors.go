package denorm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrInvalidLink  = errors.New("invalid link")
	ErrLinkNotFound = errors.New("link not found")
	ErrCyclicLink   = errors.New("cyclic link")
	ErrNotObject    = errors.New("document must be a JSON object")
)

// InvalidLinkError reports an object that looks like a link but cannot be
// followed, typically one with a "type" and no "id".
type InvalidLinkError struct {
	// Value is the offending object as it appeared in the input.
	Value  *Object
	Reason string
}

func (e *InvalidLinkError) Error() string {
	raw, err := json.Marshal(e.Value)
	if err != nil {
		raw = []byte("<unprintable>")
	}
	return fmt.Sprintf("invalid link: %s %s", raw, e.Reason)
}

// Is matches ErrInvalidLink.
func (e *InvalidLinkError) Is(target error) bool { return target == ErrInvalidLink }

// LinkNotFoundError is returned by the default resolver when the named
// collection is absent or holds no entity with the requested id.
type LinkNotFoundError struct {
	Type string
	ID   Value
}

func (e *LinkNotFoundError) Error() string {
	return fmt.Sprintf("link not found: no %q entity with id %s", e.Type, formatID(e.ID))
}

// Is matches ErrLinkNotFound.
func (e *LinkNotFoundError) Is(target error) bool { return target == ErrLinkNotFound }

// CyclicLinkError is returned when resolving a link leads back to the same
// link before its expansion has finished.
type CyclicLinkError struct {
	Type string
	ID   Value
}

func (e *CyclicLinkError) Error() string {
	return fmt.Sprintf("cyclic link: %q entity %s links back to itself", e.Type, formatID(e.ID))
}

// Is matches ErrCyclicLink.
func (e *CyclicLinkError) Is(target error) bool { return target == ErrCyclicLink }

func formatID(id Value) string {
	raw, err := json.Marshal(id)
	if err != nil || id == nil {
		return "null"
	}
	return string(raw)
}
