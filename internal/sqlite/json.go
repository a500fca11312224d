// JSON record structures for SQLite backend persistence.
// These structures define the JSONL record format for data files.
package sqlite

import (
	"time"

	"github.com/mesh-intelligence/landing/pkg/types"
)

// pageJSON represents a landing page in landing_pages.jsonl.
type pageJSON struct {
	CommunityID     int64  `json:"community_id"`
	Enabled         bool   `json:"enabled"`
	ReleasedVersion *int64 `json:"released_version"`
	UpdatedAt       string `json:"updated_at"`
}

// versionJSON represents a content version in landing_page_versions.jsonl.
// Content is the normalized document kept as a JSON string.
type versionJSON struct {
	VersionID   string `json:"version_id"`
	CommunityID int64  `json:"community_id"`
	Version     int64  `json:"version"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

func (r pageJSON) toEntity() *types.LandingPage {
	return &types.LandingPage{
		CommunityID:     r.CommunityID,
		Enabled:         r.Enabled,
		ReleasedVersion: r.ReleasedVersion,
		UpdatedAt:       parseTime(r.UpdatedAt),
	}
}

func (r versionJSON) toEntity() *types.LandingPageVersion {
	return &types.LandingPageVersion{
		VersionID:   r.VersionID,
		CommunityID: r.CommunityID,
		Version:     r.Version,
		Content:     r.Content,
		CreatedAt:   parseTime(r.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses an RFC 3339 timestamp; unparseable values yield the zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
