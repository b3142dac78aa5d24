package document

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// normalizeValue round-trips a value through JSON so stored settings match
// what a reattach would load: numbers become float64, structs become maps.
// The copy also detaches the stored value from anything the caller holds.
func normalizeValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding setting: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding setting: %w", err)
	}
	return out, nil
}

// GetSetting returns the stored value for key, or def when absent. The
// returned value is a copy; mutating it does not touch backend state.
func (b *Backend) GetSetting(key string, def any) (any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if v, ok := b.doc.Settings[key]; ok {
		return normalizeValue(v)
	}
	return def, nil
}

// SetSetting stores a single setting and rewrites the document.
func (b *Backend) SetSetting(key string, value any) error {
	if key == "" {
		return types.ErrInvalidID
	}
	v, err := normalizeValue(value)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	b.doc.Settings[key] = v
	return b.persist()
}

// GetSettings resolves every key in defaults in one pass. Stored values are
// returned as copies.
func (b *Backend) GetSettings(defaults map[string]any) (map[string]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	out := make(map[string]any, len(defaults))
	for key, def := range defaults {
		if v, ok := b.doc.Settings[key]; ok {
			copied, err := normalizeValue(v)
			if err != nil {
				return nil, err
			}
			out[key] = copied
		} else {
			out[key] = def
		}
	}
	return out, nil
}

// SetSettings stores all values in a single document rewrite.
func (b *Backend) SetSettings(values map[string]any) error {
	normalized := make(map[string]any, len(values))
	for key, value := range values {
		if key == "" {
			return types.ErrInvalidID
		}
		v, err := normalizeValue(value)
		if err != nil {
			return err
		}
		normalized[key] = v
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	for key, value := range normalized {
		b.doc.Settings[key] = value
	}
	return b.persist()
}
