// Package record centralizes the backend-independent record semantics:
// validation, ID generation, timestamp stamping, filter matching, and the
// built-in seed data. Backends share it so the same operation sequence is
// observably identical regardless of the durable tier behind it.
package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// NewID generates a UUID v7 string for record IDs.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Prepare validates rec against its collection, generates an ID when both id
// and the record's own ID are empty, and stamps timestamps. Returns the
// effective record ID. The record is mutated in place, matching the
// write-through behavior callers expect from PutRecord.
func Prepare(collection, id string, rec any, now time.Time) (string, error) {
	switch collection {
	case types.CollectionItems:
		it, ok := rec.(*types.Item)
		if !ok {
			return "", types.ErrInvalidData
		}
		if err := it.Validate(); err != nil {
			return "", err
		}
		if id == "" && it.ID == "" {
			it.ID = NewID()
			it.CreatedAt = now
		} else if id != "" {
			it.ID = id
		}
		it.UpdatedAt = now
		return it.ID, nil

	case types.CollectionTags:
		tg, ok := rec.(*types.Tag)
		if !ok {
			return "", types.ErrInvalidData
		}
		if err := tg.Validate(); err != nil {
			return "", err
		}
		if id == "" && tg.ID == "" {
			tg.ID = NewID()
			tg.CreatedAt = now
		} else if id != "" {
			tg.ID = id
		}
		return tg.ID, nil

	case types.CollectionItemTags:
		a, ok := rec.(*types.TagAssignment)
		if !ok {
			return "", types.ErrInvalidData
		}
		if err := a.Validate(); err != nil {
			return "", err
		}
		if id == "" && a.ID == "" {
			a.ID = NewID()
			a.CreatedAt = now
		} else if id != "" {
			a.ID = id
		}
		return a.ID, nil

	case types.CollectionAttachments:
		at, ok := rec.(*types.Attachment)
		if !ok {
			return "", types.ErrInvalidData
		}
		if err := at.Validate(); err != nil {
			return "", err
		}
		if id == "" && at.ID == "" {
			at.ID = NewID()
			at.CreatedAt = now
		} else if id != "" {
			at.ID = id
		}
		return at.ID, nil

	case types.CollectionVersions:
		v, ok := rec.(*types.Version)
		if !ok {
			return "", types.ErrInvalidData
		}
		if err := v.Validate(); err != nil {
			return "", err
		}
		if id == "" && v.ID == "" {
			v.ID = NewID()
			v.CreatedAt = now
		} else if id != "" {
			v.ID = id
		}
		return v.ID, nil

	default:
		return "", types.ErrCollectionUnknown
	}
}

// Clone returns an independent copy of rec so backends holding records in
// memory never hand out aliases of their internal state.
func Clone(rec any) any {
	switch v := rec.(type) {
	case *types.Item:
		cp := *v
		if v.ParentID != nil {
			p := *v.ParentID
			cp.ParentID = &p
		}
		if v.DeletedAt != nil {
			d := *v.DeletedAt
			cp.DeletedAt = &d
		}
		return &cp
	case *types.Tag:
		cp := *v
		return &cp
	case *types.TagAssignment:
		cp := *v
		return &cp
	case *types.Attachment:
		cp := *v
		return &cp
	case *types.Version:
		cp := *v
		return &cp
	default:
		return rec
	}
}

// Match reports whether rec passes the list filter for its collection.
// Unknown filter keys are ignored, mirroring the SQL backend's behavior of
// only binding the conditions it knows.
func Match(collection string, rec any, filter map[string]any) (bool, error) {
	switch collection {
	case types.CollectionItems:
		return matchItem(rec.(*types.Item), filter)
	case types.CollectionTags:
		if v, ok := filter["name"]; ok {
			name, ok := v.(string)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			return rec.(*types.Tag).Name == name, nil
		}
		return true, nil
	case types.CollectionItemTags:
		a := rec.(*types.TagAssignment)
		if v, ok := filter["item_id"]; ok {
			s, ok := v.(string)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			if a.ItemID != s {
				return false, nil
			}
		}
		if v, ok := filter["tag_id"]; ok {
			s, ok := v.(string)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			if a.TagID != s {
				return false, nil
			}
		}
		return true, nil
	case types.CollectionAttachments:
		if v, ok := filter["item_id"]; ok {
			s, ok := v.(string)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			return rec.(*types.Attachment).ItemID == s, nil
		}
		return true, nil
	case types.CollectionVersions:
		if v, ok := filter["item_id"]; ok {
			s, ok := v.(string)
			if !ok {
				return false, types.ErrInvalidFilter
			}
			return rec.(*types.Version).ItemID == s, nil
		}
		return true, nil
	default:
		return false, types.ErrCollectionUnknown
	}
}

func matchItem(it *types.Item, filter map[string]any) (bool, error) {
	includeDeleted := false
	if v, ok := filter["include_deleted"]; ok {
		flag, ok := v.(bool)
		if !ok {
			return false, types.ErrInvalidFilter
		}
		includeDeleted = flag
	}
	if it.Deleted() && !includeDeleted {
		return false, nil
	}

	if v, ok := filter["parent_id"]; ok {
		pid, ok := v.(string)
		if !ok {
			return false, types.ErrInvalidFilter
		}
		if pid == "" {
			if it.ParentID != nil {
				return false, nil
			}
		} else if it.ParentID == nil || *it.ParentID != pid {
			return false, nil
		}
	}

	if v, ok := filter["type"]; ok {
		typ, ok := v.(string)
		if !ok {
			return false, types.ErrInvalidFilter
		}
		if it.Type != typ {
			return false, nil
		}
	}
	return true, nil
}
