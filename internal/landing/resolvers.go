// This file implements the link resolvers for application paths, marketplace
// colors and assets.
package landing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/landing/pkg/denorm"
)

// Link types with dedicated resolvers.
const (
	LinkPath             = "path"
	LinkMarketplaceColor = "marketplace_color"
	LinkAssets           = "assets"
)

// Resolver errors.
var (
	ErrPathNotFound  = errors.New("path not found")
	ErrColorNotFound = errors.New("marketplace color not found")
	ErrInvalidAsset  = errors.New("invalid asset")
)

// PathNotFoundError is returned when content links to an unknown path id.
type PathNotFoundError struct {
	ID denorm.Value
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("couldn't find path %s", quoteID(e.ID))
}

// Is matches ErrPathNotFound.
func (e *PathNotFoundError) Is(target error) bool { return target == ErrPathNotFound }

// ColorNotFoundError is returned when content links to an unknown color id.
type ColorNotFoundError struct {
	ID denorm.Value
}

func (e *ColorNotFoundError) Error() string {
	return fmt.Sprintf("couldn't find marketplace color %s", quoteID(e.ID))
}

// Is matches ErrColorNotFound.
func (e *ColorNotFoundError) Is(target error) bool { return target == ErrColorNotFound }

func quoteID(id denorm.Value) string {
	if s, ok := id.(denorm.String); ok {
		return "'" + string(s) + "'"
	}
	raw, err := json.Marshal(id)
	if err != nil || id == nil {
		return "null"
	}
	return string(raw)
}

// NewResolvers returns the resolvers keyed by link type.
func NewResolvers(s Settings) map[string]denorm.Resolver {
	return map[string]denorm.Resolver{
		LinkPath:             pathResolver(s.Paths),
		LinkMarketplaceColor: colorResolver(s.Colors),
		LinkAssets:           assetResolver(s.AssetPrefix),
	}
}

// NewDenormalizer returns a denormalizer wired with the resolvers for s.
// Extra options are applied after the resolvers.
func NewDenormalizer(s Settings, opts ...denorm.Option) *denorm.Denormalizer {
	all := append([]denorm.Option{denorm.WithResolvers(NewResolvers(s))}, opts...)
	return denorm.New(all...)
}

func pathResolver(paths map[string]string) denorm.ResolverFunc {
	return func(_ string, id denorm.Value, _ *denorm.Document) (denorm.Value, error) {
		key, ok := id.(denorm.String)
		if !ok {
			return nil, &PathNotFoundError{ID: id}
		}
		p, ok := paths[string(key)]
		if !ok {
			return nil, &PathNotFoundError{ID: id}
		}
		return denorm.String(p), nil
	}
}

func colorResolver(colors map[string]string) denorm.ResolverFunc {
	return func(_ string, id denorm.Value, _ *denorm.Document) (denorm.Value, error) {
		key, ok := id.(denorm.String)
		if !ok {
			return nil, &ColorNotFoundError{ID: id}
		}
		c, ok := colors[string(key)]
		if !ok {
			return nil, &ColorNotFoundError{ID: id}
		}
		return denorm.ObjectOf(
			denorm.Member{Key: "id", Value: key},
			denorm.Member{Key: "value", Value: denorm.String(c)},
		), nil
	}
}

// assetResolver looks the asset up in the document and returns a copy with
// src rewritten to live under prefix.
func assetResolver(prefix string) denorm.ResolverFunc {
	return func(linkType string, id denorm.Value, doc *denorm.Document) (denorm.Value, error) {
		found, ok := denorm.FindLink(linkType, id, doc)
		if !ok {
			return nil, &denorm.LinkNotFoundError{Type: linkType, ID: id}
		}
		asset, ok := denorm.Clone(found).(*denorm.Object)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an object", ErrInvalidAsset, quoteID(id))
		}

		var src string
		switch v, _ := asset.Get("src"); t := v.(type) {
		case nil, denorm.Null:
		case denorm.String:
			src = string(t)
		default:
			raw, err := json.Marshal(t)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidAsset, err)
			}
			src = string(raw)
		}
		asset.Set("src", denorm.String(prefix+"/"+src))
		return asset, nil
	}
}
