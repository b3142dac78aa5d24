package types

import "time"

// Attachment is a binary asset owned by an item. The payload lives on disk
// at Path; the record only carries metadata. Cascades on item hard delete.
type Attachment struct {
	ID        string    `json:"id"`      // UUID v7, generated on creation.
	ItemID    string    `json:"item_id"` // Owning item (required).
	Name      string    `json:"name"`    // Original filename.
	MediaType string    `json:"media_type"`
	Path      string    `json:"path"` // Storage location of the payload.
	Size      int64     `json:"size"` // Payload size in bytes.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the attachment for structural validity.
func (a *Attachment) Validate() error {
	if a.ItemID == "" || a.Name == "" {
		return ErrInvalidData
	}
	return nil
}

// Version is a content snapshot of an item, written before destructive
// edits to support history and undo. Cascades on item hard delete.
type Version struct {
	ID        string    `json:"id"`      // UUID v7, generated on creation.
	ItemID    string    `json:"item_id"` // Owning item (required).
	Title     string    `json:"title"`   // Title at snapshot time.
	Content   string    `json:"content"` // Content at snapshot time.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the version for structural validity.
func (v *Version) Validate() error {
	if v.ItemID == "" {
		return ErrInvalidData
	}
	return nil
}
