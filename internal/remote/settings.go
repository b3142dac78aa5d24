package remote

import (
	"encoding/json"
	"fmt"
)

// GetSetting returns the remote value for key, or def when the server has
// no value stored.
func (b *Backend) GetSetting(key string, def any) (any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	result, err := b.call("setting.get", settingParams{Key: key, Default: def})
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(result, &value); err != nil {
		return nil, fmt.Errorf("decoding setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a single setting on the remote server.
func (b *Backend) SetSetting(key string, value any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	_, err := b.call("setting.set", settingParams{Key: key, Value: value})
	return err
}

// GetSettings resolves every key in defaults with one round trip.
func (b *Backend) GetSettings(defaults map[string]any) (map[string]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	result, err := b.call("setting.getmany", settingParams{Defaults: defaults})
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if err := json.Unmarshal(result, &values); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return values, nil
}

// SetSettings stores all values with one round trip.
func (b *Backend) SetSettings(values map[string]any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	_, err := b.call("setting.setmany", settingParams{Values: values})
	return err
}
