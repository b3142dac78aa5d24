// Package filetree implements the per-file storage backend: each record is
// its own JSON file under a collection directory, with settings gathered in
// a single settings.json. The layout is friendly to sync tools and plain
// text diffing, at the cost of one file operation per record.
package filetree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/internal/atomicfile"
	"github.com/mesh-intelligence/shelf/internal/record"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const settingsFileName = "settings.json"

// Backend implements types.Shelf over a directory tree of JSON files.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	root     string
	log      zerolog.Logger
}

// NewBackend creates a new file-tree backend instance. The backend is not
// attached; call Attach with a Config to initialize.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{log: log.With().Str("backend", types.BackendFiles).Logger()}
}

// Attach creates the collection directories under config.DataDir and seeds
// the built-in tags when the tag directory is empty.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	root := config.DataDir
	if root == "" {
		root = "."
	}
	for _, collection := range types.StandardCollections {
		if err := os.MkdirAll(filepath.Join(root, collection), 0o755); err != nil {
			return fmt.Errorf("creating collection dir: %w", err)
		}
	}
	b.root = root

	if err := b.seedTags(); err != nil {
		return err
	}
	b.attached = true
	b.log.Debug().Str("root", root).Msg("attached")
	return nil
}

// Detach marks the backend detached. Idempotent; files stay on disk.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.log.Debug().Msg("detached")
	return nil
}

// seedTags writes the default tags when no tag file exists yet.
func (b *Backend) seedTags() error {
	entries, err := os.ReadDir(filepath.Join(b.root, types.CollectionTags))
	if err != nil {
		return fmt.Errorf("scanning tags: %w", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			return nil
		}
	}
	for _, tg := range record.DefaultTags(time.Now().UTC()) {
		if err := b.writeRecord(types.CollectionTags, tg.ID, tg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) recordPath(collection, id string) string {
	return filepath.Join(b.root, collection, id+".json")
}

func (b *Backend) writeRecord(collection, id string, rec any) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if err := atomicfile.WriteFile(b.recordPath(collection, id), data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// emptyRecord returns a zero record of the collection's type for decoding.
func emptyRecord(collection string) (any, bool) {
	switch collection {
	case types.CollectionItems:
		return &types.Item{}, true
	case types.CollectionTags:
		return &types.Tag{}, true
	case types.CollectionItemTags:
		return &types.TagAssignment{}, true
	case types.CollectionAttachments:
		return &types.Attachment{}, true
	case types.CollectionVersions:
		return &types.Version{}, true
	default:
		return nil, false
	}
}

func (b *Backend) readRecord(collection, id string) (any, error) {
	rec, ok := emptyRecord(collection)
	if !ok {
		return nil, types.ErrCollectionUnknown
	}
	data, err := os.ReadFile(b.recordPath(collection, id))
	if os.IsNotExist(err) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return rec, nil
}

// GetRecord retrieves a record by ID from the named collection.
func (b *Backend) GetRecord(collection, id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.readRecord(collection, id)
}

// PutRecord creates or updates a record as a single JSON file.
func (b *Backend) PutRecord(collection, id string, rec any) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrDetached
	}

	recID, err := record.Prepare(collection, id, rec, time.Now().UTC())
	if err != nil {
		return "", err
	}
	if err := b.writeRecord(collection, recID, rec); err != nil {
		return "", err
	}
	return recID, nil
}

// DeleteRecord removes a record file. Items soft-delete by rewriting the
// file with a deletion timestamp; hard deletion also removes the item's tag
// assignments, attachments, and versions. Deleting a tag removes the
// assignments that reference it.
func (b *Backend) DeleteRecord(collection, id string, hard bool) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	if collection == types.CollectionItems {
		rec, err := b.readRecord(collection, id)
		if err != nil {
			return err
		}
		if !hard {
			it := rec.(*types.Item)
			now := time.Now().UTC()
			it.DeletedAt = &now
			it.UpdatedAt = now
			return b.writeRecord(collection, id, it)
		}
		if err := os.Remove(b.recordPath(collection, id)); err != nil {
			return fmt.Errorf("removing record: %w", err)
		}
		return b.removeDependents(id)
	}

	if _, ok := emptyRecord(collection); !ok {
		return types.ErrCollectionUnknown
	}
	err := os.Remove(b.recordPath(collection, id))
	if os.IsNotExist(err) {
		return types.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("removing record: %w", err)
	}
	if collection == types.CollectionTags {
		return b.removeAssignmentsForTag(id)
	}
	return nil
}

// removeDependents deletes every record in the dependent collections that
// references itemID.
func (b *Backend) removeDependents(itemID string) error {
	for _, collection := range []string{
		types.CollectionItemTags,
		types.CollectionAttachments,
		types.CollectionVersions,
	} {
		records, err := b.scan(collection)
		if err != nil {
			return err
		}
		for id, rec := range records {
			var owner string
			switch v := rec.(type) {
			case *types.TagAssignment:
				owner = v.ItemID
			case *types.Attachment:
				owner = v.ItemID
			case *types.Version:
				owner = v.ItemID
			}
			if owner != itemID {
				continue
			}
			if err := os.Remove(b.recordPath(collection, id)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing dependent record: %w", err)
			}
		}
	}
	return nil
}

// removeAssignmentsForTag deletes every tag assignment referencing tagID.
func (b *Backend) removeAssignmentsForTag(tagID string) error {
	records, err := b.scan(types.CollectionItemTags)
	if err != nil {
		return err
	}
	for id, rec := range records {
		a, ok := rec.(*types.TagAssignment)
		if !ok || a.TagID != tagID {
			continue
		}
		if err := os.Remove(b.recordPath(types.CollectionItemTags, id)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing tag assignment: %w", err)
		}
	}
	return nil
}

// scan loads every record file in the collection directory as id -> record.
func (b *Backend) scan(collection string) (map[string]any, error) {
	if _, ok := emptyRecord(collection); !ok {
		return nil, types.ErrCollectionUnknown
	}
	entries, err := os.ReadDir(filepath.Join(b.root, collection))
	if err != nil {
		return nil, fmt.Errorf("scanning collection: %w", err)
	}

	records := make(map[string]any, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		rec, err := b.readRecord(collection, id)
		if err != nil {
			return nil, err
		}
		records[id] = rec
	}
	return records, nil
}

// ListRecords returns records matching the filter. Order is unspecified;
// callers impose their own comparator.
func (b *Backend) ListRecords(collection string, filter map[string]any) ([]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	records, err := b.scan(collection)
	if err != nil {
		return nil, err
	}
	results := []any{}
	for _, rec := range records {
		match, err := record.Match(collection, rec, filter)
		if err != nil {
			return nil, err
		}
		if match {
			results = append(results, rec)
		}
	}
	return results, nil
}
