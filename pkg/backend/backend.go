// Package backend provides the public API for constructing shelf storage
// backends. It exposes the factory and the switching router while keeping
// the backend implementations internal.
package backend

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/internal/backend"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Installed returns the backend identifiers this build can construct.
func Installed() []string {
	return backend.Installed()
}

// New constructs an unattached backend for the configured identifier.
// Call Attach with the same Config to initialize.
//
// Example:
//
//	shelf, err := backend.New(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".shelf-db",
//	}, log)
//	err = shelf.Attach(cfg)
//	defer shelf.Detach()
func New(config types.Config, log zerolog.Logger) (types.Shelf, error) {
	return backend.New(config, log)
}

// Open constructs a backend and attaches it in one step.
func Open(config types.Config, log zerolog.Logger) (types.Shelf, error) {
	return backend.Open(config, log)
}

// Router is a types.Shelf that can switch backends at runtime. See the
// Switch method for the handover semantics.
type Router = backend.Router

// NewRouter creates a router with no backend attached.
func NewRouter(log zerolog.Logger) *Router {
	return backend.NewRouter(log)
}
