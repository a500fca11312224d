// Shared helpers for commands that use the store.
package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/landing/internal/mongostore"
	"github.com/mesh-intelligence/landing/internal/sqlite"
	"github.com/mesh-intelligence/landing/pkg/types"
)

// attachBackend creates the configured backend and attaches it. The caller
// must defer backend.Detach().
func attachBackend(e *env) (types.Store, error) {
	cfg := types.Config{
		Backend:       e.config.Backend,
		DataDir:       e.dataDir,
		MongoURI:      e.config.Mongo.URI,
		MongoDatabase: e.config.Mongo.Database,
	}
	if err := cfg.Validate(); err != nil {
		return nil, userError(fmt.Errorf("config backend %q: %w", cfg.Backend, err))
	}

	var backend types.Store
	switch cfg.Backend {
	case types.BackendMongo:
		backend = mongostore.NewBackend()
	default:
		backend = sqlite.NewBackend()
	}
	if err := backend.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach backend: %w", err))
	}
	return backend, nil
}

// storeError classifies a store failure: bad or missing input is the
// user's problem, anything else is a system error.
func storeError(action string, err error) error {
	wrapped := fmt.Errorf("%s: %w", action, err)
	switch {
	case errors.Is(err, types.ErrInvalidCommunity),
		errors.Is(err, types.ErrInvalidVersion),
		errors.Is(err, types.ErrInvalidContent),
		errors.Is(err, types.ErrContentNotFound),
		errors.Is(err, types.ErrLandingPageNotFound),
		errors.Is(err, types.ErrConfiguration):
		return userError(wrapped)
	default:
		return sysError(wrapped)
	}
}

func formatVersion(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
