package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/internal/record"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func testConfig(t *testing.T) types.Config {
	t.Helper()
	return types.Config{
		Backend: types.BackendDocument,
		DataDir: t.TempDir(),
	}
}

func newAttached(t *testing.T) (*Backend, types.Config) {
	t.Helper()
	b := NewBackend(zerolog.Nop())
	config := testConfig(t)
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { _ = b.Detach() })
	return b, config
}

func TestAttachCreatesDocument(t *testing.T) {
	b, config := newAttached(t)

	_, err := os.Stat(filepath.Join(config.DataDir, docFileName))
	require.NoError(t, err)

	tags, err := b.ListRecords(types.CollectionTags, nil)
	require.NoError(t, err)
	assert.Len(t, tags, record.DefaultTagCount())
}

func TestAttachTwiceFails(t *testing.T) {
	b, config := newAttached(t)
	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
}

func TestDetachIdempotent(t *testing.T) {
	b, _ := newAttached(t)
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	_, err := b.GetRecord(types.CollectionItems, "any")
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestItemRoundTrip(t *testing.T) {
	b, _ := newAttached(t)

	id, err := b.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "groceries",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := b.GetRecord(types.CollectionItems, id)
	require.NoError(t, err)
	item := rec.(*types.Item)
	assert.Equal(t, "groceries", item.Title)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestGetReturnsClone(t *testing.T) {
	b, _ := newAttached(t)

	id, err := b.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "original",
	})
	require.NoError(t, err)

	rec, err := b.GetRecord(types.CollectionItems, id)
	require.NoError(t, err)
	rec.(*types.Item).Title = "mutated"

	again, err := b.GetRecord(types.CollectionItems, id)
	require.NoError(t, err)
	assert.Equal(t, "original", again.(*types.Item).Title)
}

func TestPersistAcrossReattach(t *testing.T) {
	b := NewBackend(zerolog.Nop())
	config := testConfig(t)
	require.NoError(t, b.Attach(config))

	id, err := b.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeSection,
		Title: "chapter one",
	})
	require.NoError(t, err)
	require.NoError(t, b.SetSetting("theme", "dark"))
	require.NoError(t, b.Detach())

	b2 := NewBackend(zerolog.Nop())
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()

	rec, err := b2.GetRecord(types.CollectionItems, id)
	require.NoError(t, err)
	assert.Equal(t, "chapter one", rec.(*types.Item).Title)

	v, err := b2.GetSetting("theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestSoftDeleteHidesFromDefaultList(t *testing.T) {
	b, _ := newAttached(t)

	id, err := b.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "ephemeral",
	})
	require.NoError(t, err)
	require.NoError(t, b.DeleteRecord(types.CollectionItems, id, false))

	visible, err := b.ListRecords(types.CollectionItems, nil)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := b.ListRecords(types.CollectionItems, map[string]any{"include_deleted": true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].(*types.Item).Deleted())
}

func TestHardDeleteCascades(t *testing.T) {
	b, _ := newAttached(t)

	itemID, err := b.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "doomed",
	})
	require.NoError(t, err)

	tagID, err := b.PutRecord(types.CollectionTags, "", &types.Tag{Name: "keep-me"})
	require.NoError(t, err)

	asgID, err := b.PutRecord(types.CollectionItemTags, "", &types.TagAssignment{
		ItemID: itemID,
		TagID:  tagID,
	})
	require.NoError(t, err)

	attID, err := b.PutRecord(types.CollectionAttachments, "", &types.Attachment{
		ItemID: itemID,
		Name:   "photo.png",
		Path:   "attachments/photo.png",
	})
	require.NoError(t, err)

	verID, err := b.PutRecord(types.CollectionVersions, "", &types.Version{
		ItemID:  itemID,
		Title:   "doomed",
		Content: "v1",
	})
	require.NoError(t, err)

	require.NoError(t, b.DeleteRecord(types.CollectionItems, itemID, true))

	_, err = b.GetRecord(types.CollectionItems, itemID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.GetRecord(types.CollectionItemTags, asgID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.GetRecord(types.CollectionAttachments, attID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.GetRecord(types.CollectionVersions, verID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = b.GetRecord(types.CollectionTags, tagID)
	assert.NoError(t, err)
}

func TestTagDeleteCascadesAssignments(t *testing.T) {
	b, _ := newAttached(t)

	itemID, err := b.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "tagged",
	})
	require.NoError(t, err)

	tagID, err := b.PutRecord(types.CollectionTags, "", &types.Tag{Name: "doomed"})
	require.NoError(t, err)
	keptTagID, err := b.PutRecord(types.CollectionTags, "", &types.Tag{Name: "kept"})
	require.NoError(t, err)

	asgID, err := b.PutRecord(types.CollectionItemTags, "", &types.TagAssignment{
		ItemID: itemID,
		TagID:  tagID,
	})
	require.NoError(t, err)
	keptAsgID, err := b.PutRecord(types.CollectionItemTags, "", &types.TagAssignment{
		ItemID: itemID,
		TagID:  keptTagID,
	})
	require.NoError(t, err)

	require.NoError(t, b.DeleteRecord(types.CollectionTags, tagID, true))

	_, err = b.GetRecord(types.CollectionItemTags, asgID)
	assert.ErrorIs(t, err, types.ErrNotFound, "assignment must not outlive its tag")
	_, err = b.GetRecord(types.CollectionItemTags, keptAsgID)
	assert.NoError(t, err)
	_, err = b.GetRecord(types.CollectionItems, itemID)
	assert.NoError(t, err)
}

func TestDeleteMissingRecord(t *testing.T) {
	b, _ := newAttached(t)
	err := b.DeleteRecord(types.CollectionTags, "no-such-id", false)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUnknownCollection(t *testing.T) {
	b, _ := newAttached(t)

	_, err := b.GetRecord("bogus", "id")
	assert.ErrorIs(t, err, types.ErrCollectionUnknown)
	_, err = b.PutRecord("bogus", "", &types.Item{})
	assert.ErrorIs(t, err, types.ErrCollectionUnknown)
}

func TestListFiltersByParent(t *testing.T) {
	b, _ := newAttached(t)

	parentID, err := b.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeSection,
		Title: "parent",
	})
	require.NoError(t, err)

	_, err = b.PutRecord(types.CollectionItems, "", &types.Item{
		ParentID: &parentID,
		Type:     types.ItemTypeNote,
		Title:    "child",
	})
	require.NoError(t, err)

	children, err := b.ListRecords(types.CollectionItems, map[string]any{"parent_id": parentID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "child", children[0].(*types.Item).Title)

	top, err := b.ListRecords(types.CollectionItems, map[string]any{"parent_id": ""})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "parent", top[0].(*types.Item).Title)
}

func TestSettingsBatch(t *testing.T) {
	b, _ := newAttached(t)

	require.NoError(t, b.SetSettings(map[string]any{
		"editor.font_size": 14,
		"sidebar.width":    260,
	}))

	got, err := b.GetSettings(map[string]any{
		"editor.font_size": 12,
		"sidebar.width":    200,
		"theme":            "light",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(14), got["editor.font_size"])
	assert.Equal(t, float64(260), got["sidebar.width"])
	assert.Equal(t, "light", got["theme"])
}

func TestSettingsStoredJSONShaped(t *testing.T) {
	b, _ := newAttached(t)

	// Numbers come back float64 in the same session, the shape a reattach
	// would load from disk.
	require.NoError(t, b.SetSetting("editor.font_size", 14))
	v, err := b.GetSetting("editor.font_size", 0)
	require.NoError(t, err)
	assert.Equal(t, float64(14), v)

	assert.ErrorIs(t, b.SetSetting("", "x"), types.ErrInvalidID)
	assert.ErrorIs(t, b.SetSettings(map[string]any{"": "x"}), types.ErrInvalidID)
}

func TestGetSettingReturnsCopy(t *testing.T) {
	b, _ := newAttached(t)

	require.NoError(t, b.SetSetting("window.layout", map[string]any{"panes": []any{"editor"}}))

	v, err := b.GetSetting("window.layout", nil)
	require.NoError(t, err)
	layout := v.(map[string]any)
	layout["panes"] = append(layout["panes"].([]any), "preview")

	again, err := b.GetSetting("window.layout", nil)
	require.NoError(t, err)
	assert.Len(t, again.(map[string]any)["panes"], 1, "caller mutation must not leak into stored state")

	batch, err := b.GetSettings(map[string]any{"window.layout": nil})
	require.NoError(t, err)
	batch["window.layout"].(map[string]any)["panes"] = nil
	again, err = b.GetSetting("window.layout", nil)
	require.NoError(t, err)
	assert.Len(t, again.(map[string]any)["panes"], 1)
}
