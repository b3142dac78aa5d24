package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// columnMigration describes one additive column introduced after the table's
// initial release. Migrations detect drift by introspecting the existing
// structure; applying one that is already applied is a no-op.
type columnMigration struct {
	table  string
	column string
	ddl    string
	// critical migrations abort schema setup on failure. Non-critical ones
	// log and continue; the dependent feature degrades.
	critical bool
}

// columnMigrations lists columns added since the base schema, in order.
var columnMigrations = []columnMigration{
	{
		table:    "items",
		column:   "content_plain",
		ddl:      `ALTER TABLE items ADD COLUMN content_plain TEXT NOT NULL DEFAULT ''`,
		critical: true,
	},
	{
		// Manual sibling ordering. On failure the backend serves items in
		// insertion order instead of aborting attach.
		table:    "items",
		column:   "sort_order",
		ddl:      `ALTER TABLE items ADD COLUMN sort_order INTEGER NOT NULL DEFAULT 0`,
		critical: false,
	},
}

// migrate applies the additive column migrations that introspection shows
// are missing. Returns whether the sort_order column is usable.
func migrate(db *sql.DB, log zerolog.Logger) (sortOrdered bool, err error) {
	sortOrdered = true
	for _, m := range columnMigrations {
		has, err := hasColumn(db, m.table, m.column)
		if err != nil {
			return false, err
		}
		if has {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			if m.critical {
				return false, fmt.Errorf("migrating %s.%s: %w", m.table, m.column, err)
			}
			log.Warn().Err(err).
				Str("table", m.table).
				Str("column", m.column).
				Msg("additive migration failed, feature degraded")
			if m.column == "sort_order" {
				sortOrdered = false
			}
		}
	}
	return sortOrdered, nil
}

// hasColumn reports whether the table already has the named column.
func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("introspecting %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &primaryKey); err != nil {
			return false, fmt.Errorf("scanning table_info for %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
