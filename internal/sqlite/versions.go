// This file implements publishing, releasing and loading content versions.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/landing/pkg/denorm"
	"github.com/mesh-intelligence/landing/pkg/types"
)

const selectVersion = "SELECT version_id, community_id, version, content, created_at FROM landing_page_versions"

// Publish stores content as the next version of the community's page. The
// content must decode as a JSON object; it is stored verbatim.
func (b *Backend) Publish(communityID int64, content string) (*types.LandingPageVersion, error) {
	if communityID <= 0 {
		return nil, types.ErrInvalidCommunity
	}
	if strings.TrimSpace(content) == "" {
		return nil, types.ErrInvalidContent
	}
	if _, err := denorm.ParseDocument([]byte(content)); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidContent, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var latest int64
	if err := tx.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM landing_page_versions WHERE community_id = ?",
		communityID,
	).Scan(&latest); err != nil {
		return nil, fmt.Errorf("reading latest version: %w", err)
	}

	rec := versionJSON{
		VersionID:   generateUUID(),
		CommunityID: communityID,
		Version:     latest + 1,
		Content:     content,
		CreatedAt:   formatTime(time.Now()),
	}
	if _, err := tx.Exec(
		"INSERT INTO landing_page_versions (version_id, community_id, version, content, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.VersionID, rec.CommunityID, rec.Version, rec.Content, rec.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("inserting version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing version: %w", err)
	}

	if err := b.persistVersionsLocked(); err != nil {
		return nil, fmt.Errorf("persisting %s: %w", versionsFile, err)
	}
	return rec.toEntity(), nil
}

// Release makes version the released version and enables the page,
// creating the page record when the community has none yet.
func (b *Backend) Release(communityID int64, version int64) error {
	if communityID <= 0 {
		return types.ErrInvalidCommunity
	}
	if version <= 0 {
		return types.ErrInvalidVersion
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	if _, err := b.getVersionLocked(communityID, version); err != nil {
		return err
	}

	page, err := b.getPageLocked(communityID)
	if errors.Is(err, types.ErrLandingPageNotFound) {
		page = &types.LandingPage{CommunityID: communityID}
	} else if err != nil {
		return err
	}

	page.Release(version)
	return b.setPageLocked(page)
}

// LoadContent returns the content of a version.
func (b *Backend) LoadContent(communityID int64, version int64) (string, error) {
	if communityID <= 0 {
		return "", types.ErrInvalidCommunity
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}

	v, err := b.getVersionLocked(communityID, version)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v.Content) == "" {
		return "", fmt.Errorf("%w. community_id: %d, version: %d", types.ErrContentNotFound, communityID, version)
	}
	return v.Content, nil
}

// ListVersions returns all versions of a community, newest first.
func (b *Backend) ListVersions(communityID int64) ([]*types.LandingPageVersion, error) {
	if communityID <= 0 {
		return nil, types.ErrInvalidCommunity
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(selectVersion+" WHERE community_id = ? ORDER BY version DESC", communityID)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var out []*types.LandingPageVersion
	for rows.Next() {
		rec, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		out = append(out, rec.toEntity())
	}
	return out, rows.Err()
}

func (b *Backend) getVersionLocked(communityID, version int64) (*types.LandingPageVersion, error) {
	row := b.db.QueryRow(selectVersion+" WHERE community_id = ? AND version = ?", communityID, version)
	rec, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w. community_id: %d, version: %d", types.ErrContentNotFound, communityID, version)
	}
	if err != nil {
		return nil, fmt.Errorf("getting version %d: %w", version, err)
	}
	return rec.toEntity(), nil
}

// persistVersionsLocked rewrites landing_page_versions.jsonl from the
// database. The caller must hold b.mu.
func (b *Backend) persistVersionsLocked() error {
	rows, err := b.db.Query(selectVersion + " ORDER BY community_id, version")
	if err != nil {
		return fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var recs []versionJSON
	for rows.Next() {
		rec, err := scanVersion(rows)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	lines, err := marshalRecords(recs)
	if err != nil {
		return err
	}
	return writeJSONL(b.jsonlPath(versionsFile), lines)
}

func scanVersion(row rowScanner) (versionJSON, error) {
	var rec versionJSON
	err := row.Scan(&rec.VersionID, &rec.CommunityID, &rec.Version, &rec.Content, &rec.CreatedAt)
	return rec, err
}
