package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlatformDirs pins the platform lookups to fixed directories so the
// defaults are deterministic regardless of the machine running the tests.
func stubPlatformDirs(t *testing.T, home, userConfig string) {
	t.Helper()
	saved := platformDir
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
	t.Cleanup(func() { platformDir = saved })
}

func TestPlatformDefaults(t *testing.T) {
	stubPlatformDirs(t, "/home/packrat", "/home/packrat/AppSupport")

	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("XDG_DATA_HOME", "")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/packrat", ".config", appDirName), got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/packrat", ".local", "share", appDirName), got)

		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		t.Setenv("XDG_DATA_HOME", "/xdg/data")

		got, err = DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/xdg/config", appDirName), got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/xdg/data", appDirName), got)
		return
	}

	// Elsewhere the user config dir covers both roots.
	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/packrat/AppSupport", appDirName), got)

	got, err = DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/packrat/AppSupport", appDirName), got)
}

func TestResolveConfigDirPrecedence(t *testing.T) {
	stubPlatformDirs(t, "/home/packrat", "/home/packrat/AppSupport")

	t.Setenv(EnvConfigDir, "/env/config")
	got, err := ResolveConfigDir("/flag/config")
	require.NoError(t, err)
	assert.Equal(t, "/flag/config", got, "flag beats env")

	got, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/config", got, "env beats the platform default")

	t.Setenv(EnvConfigDir, "")
	got, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Contains(t, got, appDirName, "platform default when nothing overrides")
}

func TestResolveDataDirPrecedence(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")

	got, err := ResolveDataDir("/flag/data", "/yaml/data")
	require.NoError(t, err)
	assert.Equal(t, "/flag/data", got, "flag beats everything")

	got, err = ResolveDataDir("", "/yaml/data")
	require.NoError(t, err)
	assert.Equal(t, "/yaml/data", got, "config value beats env")

	got, err = ResolveDataDir("", "")
	require.NoError(t, err)
	assert.Equal(t, "/env/data", got, "env beats the CWD default")

	t.Setenv(EnvDataDir, "")
	got, err = ResolveDataDir("", "")
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, DefaultDataDirName), got)
}

func TestResolveMakesOverridesAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")

	for _, resolve := range []func() (string, error){
		func() (string, error) { return ResolveConfigDir("rel/config") },
		func() (string, error) { return ResolveDataDir("rel/data", "") },
		func() (string, error) { return ResolveDataDir("", "rel/yaml") },
	} {
		got, err := resolve()
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "resolved %s should be absolute", got)
	}

	t.Setenv(EnvConfigDir, "rel/env")
	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
