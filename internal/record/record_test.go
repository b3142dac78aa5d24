package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestPrepareGeneratesIDAndStamps(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	item := &types.Item{Type: types.ItemTypeNote, Title: "fresh"}

	id, err := Prepare(types.CollectionItems, "", item, now)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, item.ID)
	assert.Equal(t, now, item.CreatedAt)
	assert.Equal(t, now, item.UpdatedAt)
}

func TestPrepareKeepsExplicitID(t *testing.T) {
	now := time.Now().UTC()
	item := &types.Item{Type: types.ItemTypeNote, Title: "update", CreatedAt: now.Add(-time.Hour)}

	id, err := Prepare(types.CollectionItems, "existing-id", item, now)
	require.NoError(t, err)
	assert.Equal(t, "existing-id", id)
	assert.Equal(t, now, item.UpdatedAt)
}

func TestPrepareValidates(t *testing.T) {
	now := time.Now().UTC()

	_, err := Prepare(types.CollectionItems, "", &types.Item{Type: "poem", Title: "x"}, now)
	assert.ErrorIs(t, err, types.ErrInvalidItemType)
	_, err = Prepare(types.CollectionTags, "", &types.Tag{}, now)
	assert.ErrorIs(t, err, types.ErrNameEmpty)
	_, err = Prepare(types.CollectionItems, "", &types.Tag{Name: "wrong type"}, now)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	_, err = Prepare("bogus", "", &types.Item{}, now)
	assert.ErrorIs(t, err, types.ErrCollectionUnknown)
}

func TestCloneIsIndependent(t *testing.T) {
	parent := "p1"
	deleted := time.Now().UTC()
	orig := &types.Item{ID: "i1", ParentID: &parent, Type: types.ItemTypeNote, Title: "orig", DeletedAt: &deleted}

	cp := Clone(orig).(*types.Item)
	cp.Title = "changed"
	*cp.ParentID = "p2"

	assert.Equal(t, "orig", orig.Title)
	assert.Equal(t, "p1", *orig.ParentID)
}

func TestMatchItemFilters(t *testing.T) {
	parent := "p1"
	deleted := time.Now().UTC()
	live := &types.Item{ID: "a", ParentID: &parent, Type: types.ItemTypeNote}
	gone := &types.Item{ID: "b", Type: types.ItemTypeNote, DeletedAt: &deleted}
	top := &types.Item{ID: "c", Type: types.ItemTypeSection}

	tests := []struct {
		name   string
		rec    *types.Item
		filter map[string]any
		want   bool
	}{
		{"nil filter matches live", live, nil, true},
		{"nil filter hides deleted", gone, nil, false},
		{"include_deleted reveals", gone, map[string]any{"include_deleted": true}, true},
		{"parent match", live, map[string]any{"parent_id": "p1"}, true},
		{"parent mismatch", live, map[string]any{"parent_id": "p2"}, false},
		{"empty parent means top level", top, map[string]any{"parent_id": ""}, true},
		{"empty parent excludes children", live, map[string]any{"parent_id": ""}, false},
		{"type match", top, map[string]any{"type": types.ItemTypeSection}, true},
		{"type mismatch", live, map[string]any{"type": types.ItemTypeSection}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(types.CollectionItems, tt.rec, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchRejectsBadFilterValues(t *testing.T) {
	live := &types.Item{ID: "a", Type: types.ItemTypeNote}

	_, err := Match(types.CollectionItems, live, map[string]any{"include_deleted": "yes"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	_, err = Match(types.CollectionItems, live, map[string]any{"parent_id": 7})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestDefaultTags(t *testing.T) {
	now := time.Now().UTC()
	tags := DefaultTags(now)
	require.Len(t, tags, DefaultTagCount())

	seen := map[string]bool{}
	for _, tg := range tags {
		require.NoError(t, tg.Validate())
		assert.Equal(t, now, tg.CreatedAt)
		assert.False(t, seen[tg.Name])
		seen[tg.Name] = true
	}
}
