package filetree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/shelf/internal/atomicfile"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func (b *Backend) settingsPath() string {
	return filepath.Join(b.root, settingsFileName)
}

// loadSettings reads settings.json, returning an empty map when the file
// does not exist yet.
func (b *Backend) loadSettings() (map[string]any, error) {
	data, err := os.ReadFile(b.settingsPath())
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	settings := map[string]any{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return settings, nil
}

func (b *Backend) saveSettings(settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := atomicfile.WriteFile(b.settingsPath(), data); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// GetSetting returns the stored value for key, or def when absent.
func (b *Backend) GetSetting(key string, def any) (any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	settings, err := b.loadSettings()
	if err != nil {
		return nil, err
	}
	if v, ok := settings[key]; ok {
		return v, nil
	}
	return def, nil
}

// SetSetting stores a single setting, rewriting settings.json atomically.
func (b *Backend) SetSetting(key string, value any) error {
	if key == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	settings, err := b.loadSettings()
	if err != nil {
		return err
	}
	settings[key] = value
	return b.saveSettings(settings)
}

// GetSettings resolves every key in defaults with a single file read.
func (b *Backend) GetSettings(defaults map[string]any) (map[string]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	settings, err := b.loadSettings()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(defaults))
	for key, def := range defaults {
		if v, ok := settings[key]; ok {
			out[key] = v
		} else {
			out[key] = def
		}
	}
	return out, nil
}

// SetSettings stores all values in a single rewrite of settings.json.
func (b *Backend) SetSettings(values map[string]any) error {
	for key := range values {
		if key == "" {
			return types.ErrInvalidID
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	settings, err := b.loadSettings()
	if err != nil {
		return err
	}
	for key, value := range values {
		settings[key] = value
	}
	return b.saveSettings(settings)
}
