package types

import (
	"errors"
	"time"
)

// Item types. Books are top-level containers, sections nest inside books
// (and other sections), notes are leaves.
const (
	ItemTypeNote    = "note"
	ItemTypeSection = "section"
	ItemTypeBook    = "book"
)

// validItemTypes is the set of recognized item type values.
var validItemTypes = map[string]bool{
	ItemTypeNote:    true,
	ItemTypeSection: true,
	ItemTypeBook:    true,
}

// Item-specific errors.
var (
	ErrInvalidItemType = errors.New("invalid item type")
	ErrTitleEmpty      = errors.New("item title must not be empty")
)

// Item represents a node of the content tree: a note, section, or book.
type Item struct {
	ID           string     `json:"id"`                      // UUID v7, generated on creation.
	ParentID     *string    `json:"parent_id"`               // Containing item; nil for top-level items.
	Type         string     `json:"type"`                    // One of the ItemType constants.
	Title        string     `json:"title"`                   // Display title (required, non-empty).
	Content      string     `json:"content"`                 // Raw content, may carry markdown.
	ContentPlain string     `json:"content_plain,omitempty"` // Precomputed plaintext, if available.
	SortOrder    int        `json:"sort_order"`              // Position among siblings; unique only per sibling set.
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"` // Soft-delete marker; nil for live items.
}

// Deleted reports whether the item is soft-deleted.
func (i *Item) Deleted() bool {
	return i.DeletedAt != nil
}

// Container reports whether the item can hold children.
func (i *Item) Container() bool {
	return i.Type == ItemTypeBook || i.Type == ItemTypeSection
}

// Validate checks the item for structural validity before it reaches a
// backend. Parent-chain invariants are checked against the live collection
// by the tree engine, not here.
func (i *Item) Validate() error {
	if !validItemTypes[i.Type] {
		return ErrInvalidItemType
	}
	if i.Title == "" {
		return ErrTitleEmpty
	}
	if i.ParentID != nil && *i.ParentID == "" {
		return ErrInvalidData
	}
	return nil
}
