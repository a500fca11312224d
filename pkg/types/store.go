package types

import (
	"errors"
	"fmt"
)

// Store defines backend-agnostic access to landing pages and their versioned
// content. Callers attach to a backend, use it, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// GetLandingPage returns the landing page of a community.
	// Returns ErrLandingPageNotFound if the community has none.
	GetLandingPage(communityID int64) (*LandingPage, error)

	// SetLandingPage creates or replaces a landing page.
	SetLandingPage(page *LandingPage) error

	// ReleasedVersion returns the version visitors should see. Returns an
	// error wrapping ErrConfiguration when the page is disabled, missing or
	// has no released version.
	ReleasedVersion(communityID int64) (int64, error)

	// Publish stores content as the next version of the community's page.
	// Content must be a JSON object. Publishing does not release.
	Publish(communityID int64, content string) (*LandingPageVersion, error)

	// Release makes version the released version and enables the page.
	// Returns ErrContentNotFound if the version does not exist.
	Release(communityID int64, version int64) error

	// LoadContent returns the content of a version. Returns
	// ErrContentNotFound if the version is missing or its content is blank.
	LoadContent(communityID int64, version int64) (string, error)

	// ListVersions returns all versions of a community, newest first.
	ListVersions(communityID int64) ([]*LandingPageVersion, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Landing page errors.
var (
	// ErrConfiguration is wrapped by every error that means the landing page
	// is not set up to be served.
	ErrConfiguration = errors.New("landing page configuration error")

	ErrNotEnabled          = fmt.Errorf("%w: landing page not enabled", ErrConfiguration)
	ErrVersionUnset        = fmt.Errorf("%w: landing page version not specified", ErrConfiguration)
	ErrLandingPageNotFound = errors.New("landing page not found")
	ErrContentNotFound     = errors.New("landing page content not found")
	ErrInvalidCommunity    = errors.New("invalid community ID")
	ErrInvalidVersion      = errors.New("invalid version")
	ErrInvalidContent      = errors.New("invalid landing page content")
)
