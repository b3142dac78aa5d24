package backend

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestInstalledMatchesKnownBackends(t *testing.T) {
	assert.Equal(t, types.KnownBackends(), Installed())
}

func TestNewConstructsEachLocalBackend(t *testing.T) {
	for _, name := range []string{types.BackendSQLite, types.BackendDocument, types.BackendFiles} {
		t.Run(name, func(t *testing.T) {
			shelf, err := New(types.Config{Backend: name, DataDir: t.TempDir()}, zerolog.Nop())
			require.NoError(t, err)
			require.NotNil(t, shelf)
		})
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(types.Config{Backend: "cloud"}, zerolog.Nop())
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestOpenAttaches(t *testing.T) {
	shelf, err := Open(types.Config{
		Backend: types.BackendDocument,
		DataDir: t.TempDir(),
	}, zerolog.Nop())
	require.NoError(t, err)
	defer shelf.Detach()

	_, err = shelf.ListRecords(types.CollectionTags, nil)
	assert.NoError(t, err)
}
