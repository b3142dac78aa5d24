package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func strptr(s string) *string { return &s }

// item builds a test item with a deterministic creation time derived from
// the ID so tiebreaks are stable.
func item(id string, parent string, itemType string, sort int) *types.Item {
	it := &types.Item{
		ID:        id,
		Type:      itemType,
		Title:     id,
		SortOrder: sort,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if parent != "" {
		it.ParentID = strptr(parent)
	}
	return it
}

func ids(items []*types.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestDirectChildren(t *testing.T) {
	items := []*types.Item{
		item("b1", "", types.ItemTypeBook, 0),
		item("n2", "b1", types.ItemTypeNote, 1),
		item("n1", "b1", types.ItemTypeNote, 0),
		item("n3", "b1", types.ItemTypeNote, 2),
		item("other", "", types.ItemTypeBook, 1),
	}

	assert.Equal(t, []string{"n1", "n2", "n3"}, ids(DirectChildren(items, "b1")))
	assert.Equal(t, []string{"b1", "other"}, ids(DirectChildren(items, "")))
	assert.Empty(t, DirectChildren(items, "n1"))
}

func TestDirectChildrenExcludesSoftDeleted(t *testing.T) {
	now := time.Now()
	deleted := item("n2", "b1", types.ItemTypeNote, 1)
	deleted.DeletedAt = &now

	items := []*types.Item{
		item("b1", "", types.ItemTypeBook, 0),
		item("n1", "b1", types.ItemTypeNote, 0),
		deleted,
	}
	assert.Equal(t, []string{"n1"}, ids(DirectChildren(items, "b1")))
}

func TestSortSiblingsTiebreak(t *testing.T) {
	// Equal sort orders fall back to creation time, then ID.
	a := item("a", "b1", types.ItemTypeNote, 0)
	b := item("b", "b1", types.ItemTypeNote, 0)
	c := item("c", "b1", types.ItemTypeNote, 0)
	b.CreatedAt = a.CreatedAt.Add(-time.Hour)

	items := []*types.Item{c, a, b}
	SortSiblings(items)
	assert.Equal(t, []string{"b", "a", "c"}, ids(items))
}

func TestDescendantsPreOrder(t *testing.T) {
	items := []*types.Item{
		item("b1", "", types.ItemTypeBook, 0),
		item("s1", "b1", types.ItemTypeSection, 0),
		item("n1", "s1", types.ItemTypeNote, 0),
		item("n2", "s1", types.ItemTypeNote, 1),
		item("n3", "b1", types.ItemTypeNote, 1),
	}

	got, err := Descendants(items, "b1")
	require.NoError(t, err)
	// Sections appear before their contents.
	assert.Equal(t, []string{"s1", "n1", "n2", "n3"}, ids(got))
}

func TestDescendantsEachExactlyOnce(t *testing.T) {
	items := []*types.Item{
		item("b1", "", types.ItemTypeBook, 0),
		item("s1", "b1", types.ItemTypeSection, 0),
		item("s2", "s1", types.ItemTypeSection, 0),
		item("n1", "s2", types.ItemTypeNote, 0),
	}

	got, err := Descendants(items, "b1")
	require.NoError(t, err)

	seen := map[string]int{}
	for _, it := range got {
		seen[it.ID]++
	}
	assert.Equal(t, map[string]int{"s1": 1, "s2": 1, "n1": 1}, seen)
}

func TestDescendantsCycleDetected(t *testing.T) {
	// s1 -> s2 -> s1 violates the acyclic invariant; traversal must abort
	// rather than loop.
	s1 := item("s1", "s2", types.ItemTypeSection, 0)
	s2 := item("s2", "s1", types.ItemTypeSection, 0)

	_, err := Descendants([]*types.Item{s1, s2}, "s1")
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestGroupBySection(t *testing.T) {
	// Scenario: a book with one section holding a note, plus a loose note.
	items := []*types.Item{
		item("b1", "", types.ItemTypeBook, 0),
		item("s1", "b1", types.ItemTypeSection, 0),
		item("n1", "s1", types.ItemTypeNote, 0),
		item("n2", "b1", types.ItemTypeNote, 1),
	}

	g, err := GroupBySection(items, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, ids(g.Root))
	assert.Equal(t, []string{"s1"}, g.Order)
	assert.Equal(t, []string{"n1"}, ids(g.Sections["s1"]))
}

func TestGroupBySectionEmptyRoot(t *testing.T) {
	items := []*types.Item{
		item("b1", "", types.ItemTypeBook, 0),
		item("s1", "b1", types.ItemTypeSection, 0),
	}

	g, err := GroupBySection(items, "b1")
	require.NoError(t, err)
	// Root bucket is absent when there are no non-section children.
	assert.Nil(t, g.Root)
	assert.Contains(t, g.Sections, "s1")
}

func TestValidateParent(t *testing.T) {
	now := time.Now()
	deletedSection := item("sdel", "b1", types.ItemTypeSection, 1)
	deletedSection.DeletedAt = &now

	items := []*types.Item{
		item("b1", "", types.ItemTypeBook, 0),
		item("s1", "b1", types.ItemTypeSection, 0),
		item("n1", "s1", types.ItemTypeNote, 0),
		deletedSection,
	}

	tests := []struct {
		name    string
		item    *types.Item
		wantErr error
	}{
		{
			name: "top-level item needs no parent",
			item: item("new", "", types.ItemTypeBook, 0),
		},
		{
			name: "live container parent accepted",
			item: item("new", "s1", types.ItemTypeNote, 0),
		},
		{
			name:    "missing parent rejected",
			item:    item("new", "ghost", types.ItemTypeNote, 0),
			wantErr: ErrParentNotFound,
		},
		{
			name:    "deleted parent rejected",
			item:    item("new", "sdel", types.ItemTypeNote, 0),
			wantErr: ErrParentDeleted,
		},
		{
			name:    "note parent rejected",
			item:    item("new", "n1", types.ItemTypeNote, 0),
			wantErr: ErrParentNotContainer,
		},
		{
			name:    "reparenting under own descendant rejected",
			item:    item("b1", "s1", types.ItemTypeBook, 0),
			wantErr: ErrCycleDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParent(items, tt.item)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
