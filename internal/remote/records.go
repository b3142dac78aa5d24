package remote

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// decodeRecord unmarshals a wire record into the collection's concrete type.
func decodeRecord(collection string, data json.RawMessage) (any, error) {
	var rec any
	switch collection {
	case types.CollectionItems:
		rec = &types.Item{}
	case types.CollectionTags:
		rec = &types.Tag{}
	case types.CollectionItemTags:
		rec = &types.TagAssignment{}
	case types.CollectionAttachments:
		rec = &types.Attachment{}
	case types.CollectionVersions:
		rec = &types.Version{}
	default:
		return nil, types.ErrCollectionUnknown
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return rec, nil
}

// GetRecord retrieves a record by ID from the remote server.
func (b *Backend) GetRecord(collection, id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if !types.KnownCollection(collection) {
		return nil, types.ErrCollectionUnknown
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	result, err := b.call("record.get", recordParams{Collection: collection, ID: id})
	if err != nil {
		return nil, err
	}
	return decodeRecord(collection, result)
}

// PutRecord creates or updates a record on the remote server and returns
// the effective record ID.
func (b *Backend) PutRecord(collection, id string, rec any) (string, error) {
	if !types.KnownCollection(collection) {
		return "", types.ErrCollectionUnknown
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return "", err
	}

	result, err := b.call("record.put", recordParams{
		Collection: collection,
		ID:         id,
		Record:     rec,
	})
	if err != nil {
		return "", err
	}
	var recID string
	if err := json.Unmarshal(result, &recID); err != nil {
		return "", fmt.Errorf("decoding record id: %w", err)
	}
	return recID, nil
}

// DeleteRecord removes a record on the remote server.
func (b *Backend) DeleteRecord(collection, id string, hard bool) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if !types.KnownCollection(collection) {
		return types.ErrCollectionUnknown
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	_, err := b.call("record.delete", recordParams{
		Collection: collection,
		ID:         id,
		Hard:       hard,
	})
	return err
}

// ListRecords returns the remote records matching the filter.
func (b *Backend) ListRecords(collection string, filter map[string]any) ([]any, error) {
	if !types.KnownCollection(collection) {
		return nil, types.ErrCollectionUnknown
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	result, err := b.call("record.list", recordParams{
		Collection: collection,
		Filter:     filter,
	})
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("decoding record list: %w", err)
	}
	records := make([]any, 0, len(raw))
	for _, data := range raw {
		rec, err := decodeRecord(collection, data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
