package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Setting values are stored as JSON text, so round-tripped values carry
// encoding/json's generic types (numbers come back as float64).

// GetSetting returns the stored value for key, or def when no value is
// stored.
func (b *Backend) GetSetting(key string, def any) (any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	var valueJSON string
	err := b.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&valueJSON)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading setting %s: %w", key, err)
	}

	var value any
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		return nil, fmt.Errorf("parsing setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores the value for key, overwriting any previous value.
func (b *Backend) SetSetting(key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}
	return upsertSetting(b.db, key, value)
}

// GetSettings returns the stored values for every key in defaults in a
// single query, falling back to the default for absent keys.
func (b *Backend) GetSettings(defaults map[string]any) (map[string]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	result := make(map[string]any, len(defaults))
	if len(defaults) == 0 {
		return result, nil
	}

	placeholders := make([]string, 0, len(defaults))
	args := make([]any, 0, len(defaults))
	for key, def := range defaults {
		result[key] = def
		placeholders = append(placeholders, "?")
		args = append(args, key)
	}

	rows, err := b.db.Query(
		"SELECT key, value FROM settings WHERE key IN ("+strings.Join(placeholders, ",")+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, valueJSON string
		if err := rows.Scan(&key, &valueJSON); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
			return nil, fmt.Errorf("parsing setting %s: %w", key, err)
		}
		result[key] = value
	}
	return result, rows.Err()
}

// SetSettings stores all pairs in a single transaction: either every key is
// durable or none is.
func (b *Backend) SetSettings(values map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning settings transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		if err := upsertSetting(tx, key, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings transaction: %w", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertSetting(db execer, key string, value any) error {
	if key == "" {
		return types.ErrInvalidID
	}
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling setting %s: %w", key, err)
	}

	now := time.Now().UTC().Format(timeFormat)
	_, err = db.Exec(`
		INSERT INTO settings (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, string(valueJSON), now, now)
	if err != nil {
		return fmt.Errorf("upserting setting %s: %w", key, err)
	}
	return nil
}
