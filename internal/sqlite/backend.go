package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// dbFileName is the database file created inside DataDir.
const dbFileName = "shelf.db"

// dsnOptions apply to every pooled connection. Foreign keys must ride the
// DSN: a plain Exec of the pragma would configure only the one connection
// it happens to run on, and fresh pool connections default to OFF.
const dsnOptions = "?_pragma=foreign_keys(1)"

// Backend implements types.Shelf with SQLite as the durable tier.
// All conflicting writes are serialized by the backend's write lock;
// concurrent reads are safe.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      zerolog.Logger

	// sortOrdered is false when the sort_order migration failed; item
	// listing then falls back to insertion order.
	sortOrdered bool
}

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{log: log.With().Str("backend", types.BackendSQLite).Logger()}
}

// Attach opens (or creates) the database under config.DataDir and brings
// the schema to the current structure: tables, additive migrations,
// indexes, then conditional seeding, in that order.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.Join(dataDir, dbFileName)+dsnOptions)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	sortOrdered, err := ensureSchema(db, b.log)
	if err != nil {
		db.Close()
		return err
	}
	if !sortOrdered {
		b.log.Warn().Msg("manual ordering unavailable, items served in insertion order")
	}

	b.db = db
	b.config = config
	b.sortOrdered = sortOrdered
	b.attached = true
	b.log.Debug().Str("data_dir", dataDir).Msg("attached")
	return nil
}

// Detach closes the database. Idempotent. After Detach, all operations
// return ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	b.attached = false
	b.log.Debug().Msg("detached")
	return nil
}

// checkAttached must be called with at least a read lock held.
func (b *Backend) checkAttached() error {
	if !b.attached {
		return types.ErrDetached
	}
	return nil
}

// newUUID generates a UUID v7 string for record IDs.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
