package backend

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func documentConfig(t *testing.T) types.Config {
	t.Helper()
	return types.Config{Backend: types.BackendDocument, DataDir: t.TempDir()}
}

func TestRouterUnattachedFailsFast(t *testing.T) {
	r := NewRouter(zerolog.Nop())

	_, err := r.GetRecord(types.CollectionItems, "any")
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = r.GetSetting("theme", nil)
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestRouterDelegates(t *testing.T) {
	r := NewRouter(zerolog.Nop())
	require.NoError(t, r.Attach(documentConfig(t)))
	defer r.Detach()

	id, err := r.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "routed",
	})
	require.NoError(t, err)

	rec, err := r.GetRecord(types.CollectionItems, id)
	require.NoError(t, err)
	assert.Equal(t, "routed", rec.(*types.Item).Title)

	require.NoError(t, r.SetSetting("theme", "dark"))
	v, err := r.GetSetting("theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestRouterAttachTwiceFails(t *testing.T) {
	r := NewRouter(zerolog.Nop())
	require.NoError(t, r.Attach(documentConfig(t)))
	defer r.Detach()

	assert.ErrorIs(t, r.Attach(documentConfig(t)), types.ErrAlreadyAttached)
}

func TestRouterSwitchMovesTraffic(t *testing.T) {
	r := NewRouter(zerolog.Nop())
	require.NoError(t, r.Attach(documentConfig(t)))
	defer r.Detach()

	_, err := r.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "before switch",
	})
	require.NoError(t, err)

	target := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}
	require.NoError(t, r.Switch(target))
	assert.Equal(t, target, r.Config())

	// The new backend starts from its own storage.
	items, err := r.ListRecords(types.CollectionItems, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRouterSwitchFailureKeepsOldBackend(t *testing.T) {
	r := NewRouter(zerolog.Nop())
	config := documentConfig(t)
	require.NoError(t, r.Attach(config))
	defer r.Detach()

	id, err := r.PutRecord(types.CollectionItems, "", &types.Item{
		Type:  types.ItemTypeNote,
		Title: "still here",
	})
	require.NoError(t, err)

	err = r.Switch(types.Config{Backend: "cloud"})
	require.Error(t, err)
	assert.Equal(t, config, r.Config())

	rec, err := r.GetRecord(types.CollectionItems, id)
	require.NoError(t, err)
	assert.Equal(t, "still here", rec.(*types.Item).Title)
}

func TestRouterRejectsCallsMidSwitch(t *testing.T) {
	r := NewRouter(zerolog.Nop())
	require.NoError(t, r.Attach(documentConfig(t)))
	defer r.Detach()

	r.mu.Lock()
	r.switching = true
	r.mu.Unlock()

	_, err := r.GetRecord(types.CollectionItems, "any")
	assert.ErrorIs(t, err, types.ErrNotReady)
	err = r.SetSetting("theme", "dark")
	assert.ErrorIs(t, err, types.ErrNotReady)

	r.mu.Lock()
	r.switching = false
	r.mu.Unlock()

	_, err = r.ListRecords(types.CollectionItems, nil)
	assert.NoError(t, err)
}

func TestRouterDetachIdempotent(t *testing.T) {
	r := NewRouter(zerolog.Nop())
	require.NoError(t, r.Attach(documentConfig(t)))
	require.NoError(t, r.Detach())
	require.NoError(t, r.Detach())
}
