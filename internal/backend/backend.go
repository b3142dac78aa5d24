// Package backend constructs storage backends from configuration and routes
// calls to whichever backend is currently attached.
package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/internal/document"
	"github.com/mesh-intelligence/shelf/internal/filetree"
	"github.com/mesh-intelligence/shelf/internal/remote"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Installed returns the backend identifiers this build can construct.
func Installed() []string {
	return types.KnownBackends()
}

// New constructs an unattached backend for the configured identifier.
func New(config types.Config, log zerolog.Logger) (types.Shelf, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(log), nil
	case types.BackendDocument:
		return document.NewBackend(log), nil
	case types.BackendFiles:
		return filetree.NewBackend(log), nil
	case types.BackendRemote:
		return remote.NewBackend(log), nil
	default:
		return nil, fmt.Errorf("backend %q: %w", config.Backend, types.ErrBackendUnknown)
	}
}

// Open constructs a backend and attaches it in one step.
func Open(config types.Config, log zerolog.Logger) (types.Shelf, error) {
	shelf, err := New(config, log)
	if err != nil {
		return nil, err
	}
	if err := shelf.Attach(config); err != nil {
		return nil, err
	}
	return shelf, nil
}
