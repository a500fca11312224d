// Package sqlite implements the SQLite storage backend for landing pages.
// This file holds the schema DDL.
package sqlite

// Schema DDL for all tables.
const (
	createLandingPages = `CREATE TABLE landing_pages (
    community_id INTEGER PRIMARY KEY,
    enabled INTEGER NOT NULL DEFAULT 0,
    released_version INTEGER,
    updated_at TEXT NOT NULL
);`

	createLandingPageVersions = `CREATE TABLE landing_page_versions (
    version_id TEXT PRIMARY KEY,
    community_id INTEGER NOT NULL,
    version INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxVersionsCommunityVersion = `CREATE UNIQUE INDEX idx_versions_community_version ON landing_page_versions(community_id, version);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createLandingPages,
	createLandingPageVersions,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxVersionsCommunityVersion,
}
