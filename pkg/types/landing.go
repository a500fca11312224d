package types

import "time"

// LandingPage is the per-community landing page switch. A community serves
// its landing page only when Enabled is set and ReleasedVersion points at a
// published version.
type LandingPage struct {
	// CommunityID identifies the marketplace the page belongs to.
	CommunityID int64 `json:"community_id"`

	// Enabled turns the landing page on for the community.
	Enabled bool `json:"enabled"`

	// ReleasedVersion is the version served to visitors; nil until the first
	// release.
	ReleasedVersion *int64 `json:"released_version"`

	// UpdatedAt is the timestamp of the last change.
	UpdatedAt time.Time `json:"updated_at"`
}

// LandingPageVersion is one published revision of a community's normalized
// landing page content.
type LandingPageVersion struct {
	// VersionID is a UUID v7, generated on publish.
	VersionID string `json:"version_id"`

	CommunityID int64 `json:"community_id"`

	// Version increases by one with every publish, starting at 1.
	Version int64 `json:"version"`

	// Content is the normalized document as JSON text.
	Content string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// Release points the page at version and enables it.
func (p *LandingPage) Release(version int64) {
	v := version
	p.ReleasedVersion = &v
	p.Enabled = true
	p.UpdatedAt = time.Now().UTC()
}

// SetEnabled toggles the page.
func (p *LandingPage) SetEnabled(enabled bool) {
	p.Enabled = enabled
	p.UpdatedAt = time.Now().UTC()
}
