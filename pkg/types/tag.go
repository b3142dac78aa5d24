package types

import (
	"errors"
	"time"
)

// ErrNameEmpty is returned when a tag is written without a name.
var ErrNameEmpty = errors.New("tag name must not be empty")

// Tag is a reusable label. Assignment to items lives in the item_tags
// relation and is cascade-removed when the owning item is hard-deleted.
type Tag struct {
	ID        string    `json:"id"`    // UUID v7, generated on creation.
	Name      string    `json:"name"`  // Display name (required, non-empty).
	Color     string    `json:"color"` // Optional display color.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the tag for structural validity.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return ErrNameEmpty
	}
	return nil
}

// TagAssignment associates a tag with an item.
type TagAssignment struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the assignment for structural validity.
func (a *TagAssignment) Validate() error {
	if a.ItemID == "" || a.TagID == "" {
		return ErrInvalidData
	}
	return nil
}
