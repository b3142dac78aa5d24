package backend

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Router is a types.Shelf that delegates to the currently attached backend
// and supports switching backends at runtime. During a switch the new
// backend is attached before the old one is released; calls arriving while
// the switch is in progress fail fast with ErrNotReady rather than queue.
type Router struct {
	mu        sync.RWMutex
	current   types.Shelf
	config    types.Config
	switching bool
	log       zerolog.Logger
}

// NewRouter creates a router with no backend attached.
func NewRouter(log zerolog.Logger) *Router {
	return &Router{log: log.With().Str("component", "router").Logger()}
}

// Attach constructs and attaches the configured backend. Returns
// ErrAlreadyAttached when a backend is already live.
func (r *Router) Attach(config types.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return types.ErrAlreadyAttached
	}
	shelf, err := Open(config, r.log)
	if err != nil {
		return err
	}
	r.current = shelf
	r.config = config
	r.log.Info().Str("backend", config.Backend).Msg("backend attached")
	return nil
}

// Detach releases the current backend. Idempotent.
func (r *Router) Detach() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return nil
	}
	err := r.current.Detach()
	r.current = nil
	return err
}

// Config returns the configuration of the attached backend.
func (r *Router) Config() types.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// Switch attaches the backend described by config and only then releases
// the previous one. When attaching the new backend fails, the previous
// backend stays live and keeps serving.
func (r *Router) Switch(config types.Config) error {
	r.mu.Lock()
	if r.switching {
		r.mu.Unlock()
		return types.ErrNotReady
	}
	r.switching = true
	old := r.current
	r.mu.Unlock()

	shelf, err := Open(config, r.log)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.switching = false
	if err != nil {
		r.log.Warn().Err(err).Str("backend", config.Backend).Msg("backend switch failed")
		return err
	}
	r.current = shelf
	r.config = config
	r.log.Info().Str("backend", config.Backend).Msg("backend switched")

	if old != nil {
		if derr := old.Detach(); derr != nil {
			r.log.Warn().Err(derr).Msg("detaching previous backend")
		}
	}
	return nil
}

// shelf returns the live backend, or the reason none is serving.
func (r *Router) shelf() (types.Shelf, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.switching {
		return nil, types.ErrNotReady
	}
	if r.current == nil {
		return nil, types.ErrDetached
	}
	return r.current, nil
}

func (r *Router) GetRecord(collection, id string) (any, error) {
	shelf, err := r.shelf()
	if err != nil {
		return nil, err
	}
	return shelf.GetRecord(collection, id)
}

func (r *Router) PutRecord(collection, id string, rec any) (string, error) {
	shelf, err := r.shelf()
	if err != nil {
		return "", err
	}
	return shelf.PutRecord(collection, id, rec)
}

func (r *Router) DeleteRecord(collection, id string, hard bool) error {
	shelf, err := r.shelf()
	if err != nil {
		return err
	}
	return shelf.DeleteRecord(collection, id, hard)
}

func (r *Router) ListRecords(collection string, filter map[string]any) ([]any, error) {
	shelf, err := r.shelf()
	if err != nil {
		return nil, err
	}
	return shelf.ListRecords(collection, filter)
}

func (r *Router) GetSetting(key string, def any) (any, error) {
	shelf, err := r.shelf()
	if err != nil {
		return nil, err
	}
	return shelf.GetSetting(key, def)
}

func (r *Router) SetSetting(key string, value any) error {
	shelf, err := r.shelf()
	if err != nil {
		return err
	}
	return shelf.SetSetting(key, value)
}

func (r *Router) GetSettings(defaults map[string]any) (map[string]any, error) {
	shelf, err := r.shelf()
	if err != nil {
		return nil, err
	}
	return shelf.GetSettings(defaults)
}

func (r *Router) SetSettings(values map[string]any) error {
	shelf, err := r.shelf()
	if err != nil {
		return err
	}
	return shelf.SetSettings(values)
}
