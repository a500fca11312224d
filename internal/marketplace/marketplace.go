// Package marketplace maps request hosts to the community whose landing
// page should be served.
package marketplace

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// ErrMarketplaceNotFound is returned when a host names no known marketplace.
var ErrMarketplaceNotFound = errors.New("marketplace not found")

// Marketplace identifies the community a request belongs to.
type Marketplace struct {
	Ident       string
	CommunityID int64
}

// Resolver resolves hosts against a fixed ident table.
type Resolver struct {
	appDomain string
	idents    map[string]int64
}

// NewResolver returns a resolver for hosts under appDomain. An empty
// appDomain accepts any host and uses its first label as the ident.
func NewResolver(appDomain string, idents map[string]int64) *Resolver {
	table := make(map[string]int64, len(idents))
	for ident, id := range idents {
		table[strings.ToLower(ident)] = id
	}
	return &Resolver{
		appDomain: strings.ToLower(StripPort(appDomain)),
		idents:    table,
	}
}

// StripPort removes a trailing ":port" from host.
func StripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// Resolve returns the marketplace for host.
func (r *Resolver) Resolve(host string) (Marketplace, error) {
	host = strings.ToLower(strings.TrimSuffix(StripPort(host), "."))
	if host == "" {
		return Marketplace{}, ErrMarketplaceNotFound
	}

	var ident string
	if r.appDomain == "" {
		ident, _, _ = strings.Cut(host, ".")
	} else {
		sub, ok := strings.CutSuffix(host, "."+r.appDomain)
		if !ok || sub == "" {
			return Marketplace{}, ErrMarketplaceNotFound
		}
		ident, _, _ = strings.Cut(sub, ".")
	}

	id, ok := r.idents[ident]
	if !ok {
		return Marketplace{}, ErrMarketplaceNotFound
	}
	return Marketplace{Ident: ident, CommunityID: id}, nil
}

type ctxKey int

const marketplaceKey ctxKey = 0

// WithMarketplace returns a context carrying m.
func WithMarketplace(ctx context.Context, m Marketplace) context.Context {
	return context.WithValue(ctx, marketplaceKey, m)
}

// FromContext returns the marketplace stored by Middleware.
func FromContext(ctx context.Context) (Marketplace, bool) {
	m, ok := ctx.Value(marketplaceKey).(Marketplace)
	return m, ok
}

// Middleware resolves the request host and stores the marketplace in the
// request context. Requests for unknown hosts get 404.
func Middleware(r *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m, err := r.Resolve(req.Host)
			if err != nil {
				http.Error(w, "Not found", http.StatusNotFound)
				return
			}
			next.ServeHTTP(w, req.WithContext(WithMarketplace(req.Context(), m)))
		})
	}
}
