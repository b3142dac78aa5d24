// Package remote implements the remote storage backend: a JSON-RPC style
// protocol over a WebSocket connection to a shelf server. Requests carry a
// unique id and responses are correlated back to the waiting caller, so
// multiple operations can be in flight on one connection.
package remote

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/internal/record"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// defaultTimeout bounds each call when the config does not set one.
const defaultTimeout = 10 * time.Second

// Backend implements types.Shelf against a remote shelf server.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	timeout  time.Duration
	log      zerolog.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan rpcResponse

	done chan struct{}
}

// NewBackend creates a new remote backend instance. The backend is not
// attached; call Attach with a Config carrying RemoteURL.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{
		log:     log.With().Str("backend", types.BackendRemote).Logger(),
		pending: make(map[string]chan rpcResponse),
	}
}

// Attach dials the remote server and verifies it responds to a ping.
// Returns ErrNotReady when the server cannot be reached or does not answer
// within the configured timeout.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendRemote || config.RemoteURL == "" {
		return types.ErrRemoteURLMissing
	}

	b.timeout = config.RemoteTimeout
	if b.timeout <= 0 {
		b.timeout = defaultTimeout
	}

	conn, resp, err := websocket.DefaultDialer.Dial(config.RemoteURL, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", config.RemoteURL, types.ErrNotReady)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	b.conn = conn
	b.done = make(chan struct{})
	go b.readLoop()

	if _, err := b.call("ping", nil); err != nil {
		b.teardown()
		return fmt.Errorf("pinging server: %w", types.ErrNotReady)
	}

	b.attached = true
	b.log.Debug().Str("url", config.RemoteURL).Msg("attached")
	return nil
}

// Detach closes the connection. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.teardown()
	b.attached = false
	b.log.Debug().Msg("detached")
	return nil
}

// teardown closes the socket and fails every pending call. Callers hold the
// write lock.
func (b *Backend) teardown() {
	close(b.done)
	_ = b.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	_ = b.conn.Close()

	b.pendingMu.Lock()
	for id, ch := range b.pending {
		close(ch)
		delete(b.pending, id)
	}
	b.pendingMu.Unlock()
}

// readLoop reads responses off the socket and routes each to the caller
// waiting on its id. Runs until the connection closes.
func (b *Backend) readLoop() {
	for {
		var resp rpcResponse
		if err := b.conn.ReadJSON(&resp); err != nil {
			select {
			case <-b.done:
			default:
				b.log.Warn().Err(err).Msg("connection read failed")
			}
			return
		}

		b.pendingMu.Lock()
		ch, ok := b.pending[resp.ID]
		if ok {
			delete(b.pending, resp.ID)
		}
		b.pendingMu.Unlock()

		if !ok {
			b.log.Warn().Str("id", resp.ID).Msg("response for unknown request")
			continue
		}
		ch <- resp
	}
}

// call sends one request and waits for its response or the timeout.
func (b *Backend) call(method string, params any) (json.RawMessage, error) {
	req := rpcRequest{
		ID:     record.NewID(),
		Method: method,
		Params: params,
	}

	ch := make(chan rpcResponse, 1)
	b.pendingMu.Lock()
	b.pending[req.ID] = ch
	b.pendingMu.Unlock()

	b.writeMu.Lock()
	err := b.conn.WriteJSON(req)
	b.writeMu.Unlock()
	if err != nil {
		b.pendingMu.Lock()
		delete(b.pending, req.ID)
		b.pendingMu.Unlock()
		return nil, fmt.Errorf("sending %s: %w", method, err)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, types.ErrDetached
		}
		if resp.Error != nil {
			return nil, resp.Error.sentinel()
		}
		return resp.Result, nil
	case <-timer.C:
		b.pendingMu.Lock()
		delete(b.pending, req.ID)
		b.pendingMu.Unlock()
		return nil, fmt.Errorf("%s: %w", method, types.ErrTimeout)
	case <-b.done:
		return nil, types.ErrDetached
	}
}

// checkAttached returns ErrDetached unless attached. Callers hold at least
// the read lock.
func (b *Backend) checkAttached() error {
	if !b.attached {
		return types.ErrDetached
	}
	return nil
}
