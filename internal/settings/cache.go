// Package settings implements the dual-tier persistence protocol for
// application settings: a synchronous in-memory fast tier backed by
// asynchronous durable writes to a Shelf backend, with a one-shot hydration
// per key at first read.
//
// The fast tier is the source of truth for the running process; the durable
// tier is best-effort persistence for the next launch. Durable failures are
// reported on the error channel and never surface on the caller's path.
package settings

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Store is the durable-tier contract the cache writes through. Satisfied by
// types.Shelf.
type Store interface {
	GetSettings(defaults map[string]any) (map[string]any, error)
	SetSetting(key string, value any) error
}

// Per-key cell states. A cell moves uninitialized -> hydrating -> synced and
// never leaves synced for the process lifetime, even when hydration failed.
const (
	stateUninitialized = iota
	stateHydrating
	stateSynced
)

// cell holds the fast-tier state for one settings key.
type cell struct {
	mu      sync.Mutex
	key     string
	value   any
	state   int
	written bool  // an explicit write happened; stale hydration is discarded
	pending []any // durable writes awaiting the writer goroutine, in order
	wake    chan struct{}
}

// Cache is the dual-tier settings cache over a durable Store.
type Cache struct {
	store Store
	log   zerolog.Logger

	mu    sync.Mutex
	cells map[string]*cell

	errs   chan error
	stop   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// New creates a Cache over the given durable store.
func New(store Store, log zerolog.Logger) *Cache {
	return &Cache{
		store: store,
		log:   log,
		cells: make(map[string]*cell),
		errs:  make(chan error, 64),
		stop:  make(chan struct{}),
	}
}

// Errors returns the channel carrying durable-tier failures: failed
// hydrations and failed async writes. The channel is buffered; when no one
// drains it, further failures are logged and dropped rather than blocking
// the write path.
func (c *Cache) Errors() <-chan error {
	return c.errs
}

// Get returns the fast-tier value for key, or def when nothing has been
// written or hydrated yet. The first Get on a key issues the one-shot
// asynchronous hydration; reads during hydration see the pre-hydration
// value without blocking.
func (c *Cache) Get(key string, def any) any {
	cl := c.cell(key, def)

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.state == stateUninitialized {
		cl.state = stateHydrating
		c.hydrate(map[string]*cell{key: cl}, map[string]any{key: def})
	}
	return cl.value
}

// Set applies value to the fast tier synchronously and unconditionally, then
// queues an asynchronous durable write. The caller observes the new value
// immediately regardless of durable-tier health.
func (c *Cache) Set(key string, value any) {
	cl := c.cell(key, value)

	cl.mu.Lock()
	cl.value = value
	cl.written = true
	cl.pending = append(cl.pending, value)
	cl.mu.Unlock()

	select {
	case cl.wake <- struct{}{}:
	default:
	}
}

// GetMany returns the fast-tier values for every key in defaults. Keys not
// yet hydrated are hydrated together in a single durable round trip.
func (c *Cache) GetMany(defaults map[string]any) map[string]any {
	result := make(map[string]any, len(defaults))
	toHydrate := make(map[string]*cell)
	hydrateDefaults := make(map[string]any)

	for key, def := range defaults {
		cl := c.cell(key, def)
		cl.mu.Lock()
		if cl.state == stateUninitialized {
			cl.state = stateHydrating
			toHydrate[key] = cl
			hydrateDefaults[key] = def
		}
		result[key] = cl.value
		cl.mu.Unlock()
	}

	if len(toHydrate) > 0 {
		c.hydrate(toHydrate, hydrateDefaults)
	}
	return result
}

// SetMany applies every pair to the fast tier synchronously and queues the
// durable writes on each key's serialized writer.
func (c *Cache) SetMany(values map[string]any) {
	for key, value := range values {
		c.Set(key, value)
	}
}

// Close flushes pending durable writes and stops the writer goroutines.
// Further Set calls after Close still update the fast tier but their
// durable writes are not picked up.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	c.wg.Wait()
}

// cell returns the cell for key, creating it (seeded with def) on first use.
// Creating a cell starts its writer goroutine.
func (c *Cache) cell(key string, def any) *cell {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl, ok := c.cells[key]
	if ok {
		return cl
	}
	cl = &cell{
		key:   key,
		value: def,
		wake:  make(chan struct{}, 1),
	}
	c.cells[key] = cl

	c.wg.Add(1)
	go c.writer(cl)
	return cl
}

// hydrate performs the one-shot durable load for the given cells in a
// single round trip. The result overwrites the fast tier unless an explicit
// write landed first; either way each cell ends synced. Hydration is never
// retried, even on failure: repeated retries against a failing backend cost
// more than the short-term staleness they would fix.
func (c *Cache) hydrate(cells map[string]*cell, defaults map[string]any) {
	go func() {
		values, err := c.store.GetSettings(defaults)
		if err != nil {
			for _, cl := range cells {
				cl.mu.Lock()
				cl.state = stateSynced
				cl.mu.Unlock()
			}
			c.report(fmt.Errorf("hydrating settings: %w", err))
			return
		}
		for key, cl := range cells {
			cl.mu.Lock()
			if !cl.written {
				if v, ok := values[key]; ok {
					cl.value = v
				}
			}
			cl.state = stateSynced
			cl.mu.Unlock()
		}
	}()
}

// writer drains one cell's pending durable writes in issuance order. One
// writer per key serializes that key's durable channel; across keys no
// ordering is guaranteed.
func (c *Cache) writer(cl *cell) {
	defer c.wg.Done()
	for {
		select {
		case <-cl.wake:
			c.drain(cl)
		case <-c.stop:
			c.drain(cl)
			return
		}
	}
}

func (c *Cache) drain(cl *cell) {
	cl.mu.Lock()
	pending := cl.pending
	cl.pending = nil
	cl.mu.Unlock()

	for _, value := range pending {
		if err := c.store.SetSetting(cl.key, value); err != nil {
			c.report(fmt.Errorf("persisting setting %s: %w", cl.key, err))
		}
	}
}

// report delivers a durable-tier failure to the error channel without ever
// blocking the caller.
func (c *Cache) report(err error) {
	select {
	case c.errs <- err:
	default:
		c.log.Warn().Err(err).Msg("settings error channel full, dropping")
	}
}
