package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Shelf.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// RemoteURL is the WebSocket endpoint for the remote backend.
	// Ignored by local backends.
	RemoteURL string `json:"remote_url" yaml:"remote_url"`

	// RemoteTimeout bounds each remote call. Zero means the default.
	RemoteTimeout time.Duration `json:"remote_timeout" yaml:"remote_timeout"`
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"   // structured database
	BackendDocument = "document" // single-file JSON document
	BackendFiles    = "files"    // one file per record
	BackendRemote   = "remote"   // WebSocket RPC
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrRemoteURLMissing = errors.New("remote backend requires remote_url")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendDocument: true,
	BackendFiles:    true,
	BackendRemote:   true,
}

// KnownBackends returns the closed set of installed backend names.
func KnownBackends() []string {
	return []string{BackendSQLite, BackendDocument, BackendFiles, BackendRemote}
}

// Validate checks that the Config is well-formed. Unknown backend names are
// rejected here, at configuration time, not at first use.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendRemote && c.RemoteURL == "" {
		return ErrRemoteURLMissing
	}
	return nil
}
