package landing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/landing/internal/cache"
	"github.com/mesh-intelligence/landing/pkg/denorm"
	"github.com/mesh-intelligence/landing/pkg/types"
)

// Page is a rendered landing page version.
type Page struct {
	CommunityID int64
	Version     int64

	// Sections is the denormalized root collection.
	Sections denorm.Value
}

type pageJSON struct {
	CommunityID int64           `json:"community_id"`
	Version     int64           `json:"version"`
	Sections    json.RawMessage `json:"sections"`
}

// MarshalJSON encodes the page with its sections in document order.
func (p *Page) MarshalJSON() ([]byte, error) {
	sections := p.Sections
	if sections == nil {
		sections = denorm.Null{}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	return json.Marshal(pageJSON{CommunityID: p.CommunityID, Version: p.Version, Sections: raw})
}

// UnmarshalJSON decodes a page written by MarshalJSON.
func (p *Page) UnmarshalJSON(data []byte) error {
	var rec pageJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	sections, err := denorm.Parse(rec.Sections)
	if err != nil {
		return err
	}
	*p = Page{CommunityID: rec.CommunityID, Version: rec.Version, Sections: sections}
	return nil
}

// Service renders landing pages from a Store.
type Service struct {
	store    types.Store
	denorm   *denorm.Denormalizer
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *log.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache caches rendered pages in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLogger sets the logger for cache failures.
func WithLogger(l *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service reading from store and resolving links with
// the resolvers for settings. Caching is off unless WithCache is given.
func NewService(store types.Store, settings Settings, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		denorm: NewDenormalizer(settings),
		cache:  cache.NewNullCache(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render returns the denormalized page of a community. A nil version renders
// the released version; otherwise the given version is rendered whether or
// not it is released or the page is enabled.
//
// Errors from the store keep their sentinels (types.ErrNotEnabled,
// types.ErrVersionUnset, types.ErrContentNotFound). Transform errors are
// returned as produced by the denormalizer, wrapped with the community and
// version.
func (s *Service) Render(ctx context.Context, communityID int64, version *int64) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var v int64
	if version != nil {
		v = *version
	} else {
		released, err := s.store.ReleasedVersion(communityID)
		if err != nil {
			return nil, err
		}
		v = released
	}

	key := cache.Key(communityID, v)
	if data, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
	} else if hit {
		var page Page
		if err := json.Unmarshal(data, &page); err == nil {
			return &page, nil
		}
		s.logger.Warn("dropping unreadable cache entry", "key", key)
		_ = s.cache.Delete(ctx, key)
	}

	content, err := s.store.LoadContent(communityID, v)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sections, err := s.Denormalize([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("rendering community %d version %d: %w", communityID, v, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := &Page{CommunityID: communityID, Version: v, Sections: sections}
	if data, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return page, nil
}

// Denormalize parses normalized content and returns its tree.
func (s *Service) Denormalize(content []byte) (denorm.Value, error) {
	doc, err := denorm.ParseDocument(content)
	if err != nil {
		return nil, err
	}
	return s.denorm.ToTree(doc)
}

// Invalidate drops the cached render of a community version.
func (s *Service) Invalidate(ctx context.Context, communityID, version int64) error {
	return s.cache.Delete(ctx, cache.Key(communityID, version))
}
