// Package sqlite implements the structured-database storage backend for
// shelf using SQLite as the durable tier. Schema setup is idempotent and
// migrations are forward-only and additive: structure is introspected and
// only what is missing gets created, never destructively.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Schema DDL for all tables. Dependent child records (tag assignments,
// attachments, versions) cascade when their owning item is hard-deleted.
const (
	createItems = `CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    parent_id TEXT,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted_at TEXT
);`

	createTags = `CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);`

	createItemTags = `CREATE TABLE IF NOT EXISTS item_tags (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    tag_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
    FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);`

	createAttachments = `CREATE TABLE IF NOT EXISTS attachments (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    name TEXT NOT NULL,
    media_type TEXT NOT NULL DEFAULT '',
    path TEXT NOT NULL DEFAULT '',
    size INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
);`

	createVersions = `CREATE TABLE IF NOT EXISTS versions (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
);`

	createSettings = `CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries. Indexes are created after migrations since
// they may reference migrated columns.
const (
	idxItemsParent     = `CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_id);`
	idxItemsType       = `CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);`
	idxItemsSortOrder  = `CREATE INDEX IF NOT EXISTS idx_items_sort_order ON items(parent_id, sort_order);`
	idxItemTagsItem    = `CREATE INDEX IF NOT EXISTS idx_item_tags_item ON item_tags(item_id);`
	idxItemTagsTag     = `CREATE INDEX IF NOT EXISTS idx_item_tags_tag ON item_tags(tag_id);`
	idxItemTagsUnique  = `CREATE UNIQUE INDEX IF NOT EXISTS idx_item_tags_unique ON item_tags(item_id, tag_id);`
	idxAttachmentsItem = `CREATE INDEX IF NOT EXISTS idx_attachments_item ON attachments(item_id);`
	idxVersionsItem    = `CREATE INDEX IF NOT EXISTS idx_versions_item ON versions(item_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createItems,
	createTags,
	createItemTags,
	createAttachments,
	createVersions,
	createSettings,
}

// indexDDL lists all CREATE INDEX statements. idxItemsSortOrder depends on
// the sort_order migration and is skipped in degraded mode.
var indexDDL = []string{
	idxItemsParent,
	idxItemsType,
	idxItemsSortOrder,
	idxItemTagsItem,
	idxItemTagsTag,
	idxItemTagsUnique,
	idxAttachmentsItem,
	idxVersionsItem,
}

// ensureSchema idempotently brings the database to the current structure:
// base tables, then additive migrations, then indexes, then conditional
// seeding. Returns whether manual ordering is available (the sort_order
// migration may degrade, see migrate.go).
func ensureSchema(db *sql.DB, log zerolog.Logger) (sortOrdered bool, err error) {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return false, fmt.Errorf("creating tables: %w", err)
		}
	}

	sortOrdered, err = migrate(db, log)
	if err != nil {
		return false, err
	}

	for _, ddl := range indexDDL {
		if ddl == idxItemsSortOrder && !sortOrdered {
			continue
		}
		if _, err := db.Exec(ddl); err != nil {
			return false, fmt.Errorf("creating indexes: %w", err)
		}
	}

	if err := seedBuiltInTags(db); err != nil {
		return false, err
	}
	return sortOrdered, nil
}
