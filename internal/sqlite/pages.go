// This file implements landing page reads and writes.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/landing/pkg/types"
)

const selectPage = "SELECT community_id, enabled, released_version, updated_at FROM landing_pages"

// GetLandingPage returns the landing page of a community.
func (b *Backend) GetLandingPage(communityID int64) (*types.LandingPage, error) {
	if communityID <= 0 {
		return nil, types.ErrInvalidCommunity
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.getPageLocked(communityID)
}

func (b *Backend) getPageLocked(communityID int64) (*types.LandingPage, error) {
	row := b.db.QueryRow(selectPage+" WHERE community_id = ?", communityID)
	rec, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrLandingPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting landing page %d: %w", communityID, err)
	}
	return rec.toEntity(), nil
}

// SetLandingPage creates or replaces a landing page and persists
// landing_pages.jsonl.
func (b *Backend) SetLandingPage(page *types.LandingPage) error {
	if page == nil || page.CommunityID <= 0 {
		return types.ErrInvalidCommunity
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.setPageLocked(page)
}

func (b *Backend) setPageLocked(page *types.LandingPage) error {
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = time.Now().UTC()
	}

	var released sql.NullInt64
	if page.ReleasedVersion != nil {
		released = sql.NullInt64{Int64: *page.ReleasedVersion, Valid: true}
	}

	_, err := b.db.Exec(
		`INSERT INTO landing_pages (community_id, enabled, released_version, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(community_id) DO UPDATE SET
		   enabled = excluded.enabled,
		   released_version = excluded.released_version,
		   updated_at = excluded.updated_at`,
		page.CommunityID, page.Enabled, released, formatTime(page.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("persisting landing page: %w", err)
	}

	if err := b.persistPagesLocked(); err != nil {
		return fmt.Errorf("persisting %s: %w", pagesFile, err)
	}
	return nil
}

// ReleasedVersion returns the version visitors should see.
func (b *Backend) ReleasedVersion(communityID int64) (int64, error) {
	page, err := b.GetLandingPage(communityID)
	if errors.Is(err, types.ErrLandingPageNotFound) {
		return 0, fmt.Errorf("%w. community_id: %d", types.ErrNotEnabled, communityID)
	}
	if err != nil {
		return 0, err
	}
	if !page.Enabled {
		return 0, fmt.Errorf("%w. community_id: %d", types.ErrNotEnabled, communityID)
	}
	if page.ReleasedVersion == nil {
		return 0, fmt.Errorf("%w. community_id: %d", types.ErrVersionUnset, communityID)
	}
	return *page.ReleasedVersion, nil
}

// persistPagesLocked rewrites landing_pages.jsonl from the database.
// The caller must hold b.mu.
func (b *Backend) persistPagesLocked() error {
	rows, err := b.db.Query(selectPage + " ORDER BY community_id")
	if err != nil {
		return fmt.Errorf("querying landing pages: %w", err)
	}
	defer rows.Close()

	var recs []pageJSON
	for rows.Next() {
		rec, err := scanPage(rows)
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
	return writeJSONL(b.jsonlPath(pagesFile), lines)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (pageJSON, error) {
	var (
		rec      pageJSON
		released sql.NullInt64
	)
	if err := row.Scan(&rec.CommunityID, &rec.Enabled, &released, &rec.UpdatedAt); err != nil {
		return pageJSON{}, err
	}
	if released.Valid {
		v := released.Int64
		rec.ReleasedVersion = &v
	}
	return rec, nil
}
