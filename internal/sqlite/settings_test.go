package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRoundTrip(t *testing.T) {
	b := attachedBackend(t)

	got, err := b.GetSetting("theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark", got, "missing key yields the default")

	require.NoError(t, b.SetSetting("theme", "light"))
	got, err = b.GetSetting("theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "light", got)

	// Overwrite, never delete.
	require.NoError(t, b.SetSetting("theme", "solarized"))
	got, err = b.GetSetting("theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "solarized", got)
}

func TestSettingStructuredValue(t *testing.T) {
	b := attachedBackend(t)

	layout := map[string]any{"sidebar": true, "width": float64(240)}
	require.NoError(t, b.SetSetting("layout", layout))

	got, err := b.GetSetting("layout", nil)
	require.NoError(t, err)
	assert.Equal(t, layout, got)
}

func TestGetSettingsBatch(t *testing.T) {
	b := attachedBackend(t)
	require.NoError(t, b.SetSetting("theme", "light"))

	got, err := b.GetSettings(map[string]any{"theme": "dark", "font": "serif"})
	require.NoError(t, err)
	assert.Equal(t, "light", got["theme"])
	assert.Equal(t, "serif", got["font"], "absent key falls back to its default")
}

func TestSetSettingsTransactional(t *testing.T) {
	b := attachedBackend(t)

	require.NoError(t, b.SetSettings(map[string]any{
		"theme": "light",
		"font":  "mono",
	}))

	got, err := b.GetSettings(map[string]any{"theme": nil, "font": nil})
	require.NoError(t, err)
	assert.Equal(t, "light", got["theme"])
	assert.Equal(t, "mono", got["font"])
}

func TestSettingsPersistAcrossReattach(t *testing.T) {
	config := testConfig(t)
	b := newAttached(t, config)
	require.NoError(t, b.SetSetting("theme", "light"))
	require.NoError(t, b.Detach())

	b2 := newAttached(t, config)
	defer b2.Detach()
	got, err := b2.GetSetting("theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "light", got)
}
