package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/shelf/internal/record"
)

// seedBuiltInTags inserts the built-in tags if the tags table is empty.
// Seeding only into an empty table keeps user-deleted defaults from
// resurrecting on restart. Runs after migrations so seeded rows always
// match the final structure.
func seedBuiltInTags(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count); err != nil {
		return fmt.Errorf("counting tags: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tg := range record.DefaultTags(time.Now().UTC()) {
		_, err = tx.Exec(
			"INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)",
			tg.ID, tg.Name, tg.Color, tg.CreatedAt.Format(timeFormat))
		if err != nil {
			return fmt.Errorf("seeding tag %s: %w", tg.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	return nil
}
