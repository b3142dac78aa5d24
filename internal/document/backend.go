// Package document implements the single-file-document storage backend:
// the entire store lives in one JSON document that is loaded wholesale on
// attach and rewritten atomically on every mutation. Suited to small
// collections where human-inspectable storage matters more than write
// amplification.
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/internal/atomicfile"
	"github.com/mesh-intelligence/shelf/internal/record"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// docFileName is the document file created inside DataDir.
const docFileName = "shelf.json"

// document is the serialized store layout.
type document struct {
	Items       map[string]*types.Item          `json:"items"`
	Tags        map[string]*types.Tag           `json:"tags"`
	ItemTags    map[string]*types.TagAssignment `json:"item_tags"`
	Attachments map[string]*types.Attachment    `json:"attachments"`
	Versions    map[string]*types.Version       `json:"versions"`
	Settings    map[string]any                  `json:"settings"`
}

func newDocument() *document {
	return &document{
		Items:       make(map[string]*types.Item),
		Tags:        make(map[string]*types.Tag),
		ItemTags:    make(map[string]*types.TagAssignment),
		Attachments: make(map[string]*types.Attachment),
		Versions:    make(map[string]*types.Version),
		Settings:    make(map[string]any),
	}
}

// Backend implements types.Shelf over a single JSON document file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	path     string
	doc      *document
	log      zerolog.Logger
}

// NewBackend creates a new document backend instance. The backend is not
// attached; call Attach with a Config to initialize.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{log: log.With().Str("backend", types.BackendDocument).Logger()}
}

// Attach loads the document from config.DataDir, creating a fresh seeded
// store when none exists. Returns ErrAlreadyAttached if already attached.
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
	b.path = filepath.Join(dataDir, docFileName)

	data, err := os.ReadFile(b.path)
	switch {
	case os.IsNotExist(err):
		b.doc = newDocument()
	case err != nil:
		return fmt.Errorf("reading document: %w", err)
	default:
		doc := newDocument()
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("parsing document: %w", err)
		}
		b.doc = doc
	}

	if len(b.doc.Tags) == 0 {
		for _, tg := range record.DefaultTags(time.Now().UTC()) {
			b.doc.Tags[tg.ID] = tg
		}
	}

	if err := b.persist(); err != nil {
		return err
	}
	b.attached = true
	b.log.Debug().Str("path", b.path).Msg("attached")
	return nil
}

// Detach drops the in-memory document. Idempotent. The file keeps the last
// persisted state.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.doc = nil
	b.attached = false
	b.log.Debug().Msg("detached")
	return nil
}

// persist rewrites the whole document atomically. Callers hold the write
// lock.
func (b *Backend) persist() error {
	data, err := json.MarshalIndent(b.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	if err := atomicfile.WriteFile(b.path, data); err != nil {
		return fmt.Errorf("persisting document: %w", err)
	}
	return nil
}

// collection returns the map holding the named collection as id -> record.
func (b *Backend) collection(name string) (map[string]any, bool) {
	out := make(map[string]any)
	switch name {
	case types.CollectionItems:
		for id, r := range b.doc.Items {
			out[id] = r
		}
	case types.CollectionTags:
		for id, r := range b.doc.Tags {
			out[id] = r
		}
	case types.CollectionItemTags:
		for id, r := range b.doc.ItemTags {
			out[id] = r
		}
	case types.CollectionAttachments:
		for id, r := range b.doc.Attachments {
			out[id] = r
		}
	case types.CollectionVersions:
		for id, r := range b.doc.Versions {
			out[id] = r
		}
	default:
		return nil, false
	}
	return out, true
}

// store places rec into the named collection. The collection name has been
// checked by the caller.
func (b *Backend) store(name, id string, rec any) {
	switch name {
	case types.CollectionItems:
		b.doc.Items[id] = rec.(*types.Item)
	case types.CollectionTags:
		b.doc.Tags[id] = rec.(*types.Tag)
	case types.CollectionItemTags:
		b.doc.ItemTags[id] = rec.(*types.TagAssignment)
	case types.CollectionAttachments:
		b.doc.Attachments[id] = rec.(*types.Attachment)
	case types.CollectionVersions:
		b.doc.Versions[id] = rec.(*types.Version)
	}
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

	records, ok := b.collection(collection)
	if !ok {
		return nil, types.ErrCollectionUnknown
	}
	rec, ok := records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return record.Clone(rec), nil
}

// PutRecord creates or updates a record and rewrites the document.
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
	b.store(collection, recID, record.Clone(rec))

	if err := b.persist(); err != nil {
		return "", err
	}
	return recID, nil
}

// DeleteRecord removes a record. Items soft-delete by default; hard
// deletion of an item also removes its tag assignments, attachments, and
// versions. Deleting a tag removes the assignments that reference it.
func (b *Backend) DeleteRecord(collection, id string, hard bool) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}

	switch collection {
	case types.CollectionItems:
		it, ok := b.doc.Items[id]
		if !ok {
			return types.ErrNotFound
		}
		if !hard {
			now := time.Now().UTC()
			it.DeletedAt = &now
			it.UpdatedAt = now
			return b.persist()
		}
		delete(b.doc.Items, id)
		for aid, a := range b.doc.ItemTags {
			if a.ItemID == id {
				delete(b.doc.ItemTags, aid)
			}
		}
		for aid, a := range b.doc.Attachments {
			if a.ItemID == id {
				delete(b.doc.Attachments, aid)
			}
		}
		for vid, v := range b.doc.Versions {
			if v.ItemID == id {
				delete(b.doc.Versions, vid)
			}
		}
		return b.persist()

	case types.CollectionTags:
		if _, ok := b.doc.Tags[id]; !ok {
			return types.ErrNotFound
		}
		delete(b.doc.Tags, id)
		for aid, a := range b.doc.ItemTags {
			if a.TagID == id {
				delete(b.doc.ItemTags, aid)
			}
		}
	case types.CollectionItemTags:
		if _, ok := b.doc.ItemTags[id]; !ok {
			return types.ErrNotFound
		}
		delete(b.doc.ItemTags, id)
	case types.CollectionAttachments:
		if _, ok := b.doc.Attachments[id]; !ok {
			return types.ErrNotFound
		}
		delete(b.doc.Attachments, id)
	case types.CollectionVersions:
		if _, ok := b.doc.Versions[id]; !ok {
			return types.ErrNotFound
		}
		delete(b.doc.Versions, id)
	default:
		return types.ErrCollectionUnknown
	}
	return b.persist()
}

// ListRecords returns records matching the filter. Order is unspecified;
// callers impose their own comparator.
func (b *Backend) ListRecords(collection string, filter map[string]any) ([]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	records, ok := b.collection(collection)
	if !ok {
		return nil, types.ErrCollectionUnknown
	}

	results := []any{}
	for _, rec := range records {
		match, err := record.Match(collection, rec, filter)
		if err != nil {
			return nil, err
		}
		if match {
			results = append(results, record.Clone(rec))
		}
	}
	return results, nil
}
