// Package tree derives ordered hierarchical views from a flat item
// collection. All functions are pure: they never mutate the input slice and
// hold no state between calls. Callers pass an immutable snapshot of the
// collection they own.
package tree

import (
	"errors"
	"sort"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Traversal and mutation-validation errors.
var (
	ErrCycleDetected      = errors.New("cycle detected in item parent chain")
	ErrParentNotFound     = errors.New("parent item not found")
	ErrParentDeleted      = errors.New("parent item is deleted")
	ErrParentNotContainer = errors.New("parent item cannot hold children")
)

// Less is the sibling sort-order comparator: SortOrder ascending, then
// CreatedAt, then ID. SortOrder is unique only within a sibling set, so the
// tiebreaks keep output deterministic for equal values.
func Less(a, b *types.Item) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortSiblings sorts items in place by the sort-order comparator.
func SortSiblings(items []*types.Item) {
	sort.Slice(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
}

// DirectChildren returns the non-deleted items whose parent is containerID,
// sorted by the sort-order comparator. An empty containerID selects
// top-level items.
func DirectChildren(items []*types.Item, containerID string) []*types.Item {
	var children []*types.Item
	for _, item := range items {
		if item.Deleted() {
			continue
		}
		if containerID == "" {
			if item.ParentID == nil {
				children = append(children, item)
			}
			continue
		}
		if item.ParentID != nil && *item.ParentID == containerID {
			children = append(children, item)
		}
	}
	SortSiblings(children)
	return children
}

// Descendants returns every descendant of containerID in pre-order: each
// section appears before its contents, notes are leaves. Soft-deleted items
// and their subtrees are excluded. If the parent chain contains a cycle the
// traversal aborts with ErrCycleDetected instead of looping.
func Descendants(items []*types.Item, containerID string) ([]*types.Item, error) {
	visited := map[string]bool{containerID: true}
	return descend(items, containerID, visited)
}

func descend(items []*types.Item, containerID string, visited map[string]bool) ([]*types.Item, error) {
	var result []*types.Item
	for _, child := range DirectChildren(items, containerID) {
		if visited[child.ID] {
			return nil, ErrCycleDetected
		}
		visited[child.ID] = true
		result = append(result, child)
		if child.Container() {
			sub, err := descend(items, child.ID, visited)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		}
	}
	return result, nil
}

// Grouped partitions the direct children of a container for sectioned
// display. Root holds the non-section children; Sections maps each section
// child's ID to that section's own direct children. Root is nil when the
// container has no non-section children.
type Grouped struct {
	Root     []*types.Item
	Sections map[string][]*types.Item
	// Order lists section IDs in sibling sort order, since map iteration
	// order is unspecified.
	Order []string
}

// GroupBySection partitions the direct children of containerID into the
// root bucket and one bucket per section, each independently sorted.
func GroupBySection(items []*types.Item, containerID string) (*Grouped, error) {
	g := &Grouped{Sections: make(map[string][]*types.Item)}
	for _, child := range DirectChildren(items, containerID) {
		if child.Type == types.ItemTypeSection {
			g.Sections[child.ID] = DirectChildren(items, child.ID)
			g.Order = append(g.Order, child.ID)
			continue
		}
		g.Root = append(g.Root, child)
	}
	return g, nil
}

// ValidateParent checks the parent-chain invariants for a pending mutation
// of item: the parent must exist, be live, be a container, and linking must
// not close a cycle. The collection is the full flat set including item's
// current record, if any.
func ValidateParent(items []*types.Item, item *types.Item) error {
	if item.ParentID == nil {
		return nil
	}
	byID := make(map[string]*types.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	parent, ok := byID[*item.ParentID]
	if !ok {
		return ErrParentNotFound
	}
	if parent.Deleted() {
		return ErrParentDeleted
	}
	if !parent.Container() {
		return ErrParentNotContainer
	}

	// Walk up from the proposed parent; reaching item means a cycle.
	visited := map[string]bool{item.ID: true}
	for cur := parent; cur != nil; {
		if visited[cur.ID] {
			return ErrCycleDetected
		}
		visited[cur.ID] = true
		if cur.ParentID == nil {
			break
		}
		cur = byID[*cur.ParentID]
	}
	return nil
}
