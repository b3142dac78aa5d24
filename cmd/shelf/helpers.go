// Shared helpers for the shelf CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// loadItems fetches every item, including soft-deleted ones. Tree
// operations need the full set to walk parent chains.
func loadItems() ([]*types.Item, error) {
	records, err := shelf.ListRecords(types.CollectionItems, map[string]any{"include_deleted": true})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]*types.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.(*types.Item))
	}
	return items, nil
}

// fetchItem retrieves one item with a friendlier not-found message.
func fetchItem(id string) (*types.Item, error) {
	rec, err := shelf.GetRecord(types.CollectionItems, id)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("item %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return rec.(*types.Item), nil
}
