// Package entitycommon implements the per-entity state every TCP
// acceptor and TCP connector shares: the started flag, the set of live
// handlers, and the two user callbacks installed at Start and released
// at Stop. It is generic over the concrete handler type so both entity
// kinds can embed the same implementation, adapted from the handler-set
// and callback bookkeeping in the teacher's internal/trans/trans_handler.go
// (svrTransHandler's sync.Map of channels, atomic channel count, and
// serving/closed state).
package entitycommon

import (
	"sync"

	"github.com/kesh/netio"
	"github.com/kesh/netio/internal/atomicx"
)

// Common holds the state shared by every net entity variant that owns a
// set of handlers (TCP acceptor, TCP connector). H is the concrete
// handler type; it must be comparable (handlers live in a map) and
// support StopIO, used to fan a Stop out to every live handler.
type Common[H interface {
	comparable
	StopIO() bool
}] struct {
	mu       sync.Mutex
	started  bool
	alive    bool
	handlers map[H]struct{}
	count    atomicx.Int64
	ioCb     netio.IOStateChangeFunc
	errCb    netio.ErrorFunc
}

// New returns a Common ready for its first Start; Alive is true until
// SetAlive(false) is called. The TCP acceptor and connector never call
// it, so they stay Alive across Stop.
func New[H interface {
	comparable
	StopIO() bool
}]() *Common[H] {
	return &Common[H]{handlers: make(map[H]struct{}), alive: true}
}

// Start installs the two callbacks and marks the entity started.
// Returns false if it was already started.
func (c *Common[H]) Start(io netio.IOStateChangeFunc, err netio.ErrorFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return false
	}
	c.started = true
	c.ioCb = io
	c.errCb = err
	return true
}

// Stop clears the started flag and releases the callbacks. Returns
// false if it was already stopped.
func (c *Common[H]) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return false
	}
	c.started = false
	c.ioCb = nil
	c.errCb = nil
	return true
}

// ErrorCallback returns the currently installed error callback, or nil.
// Callers that need to fire a terminal report only after finishing their
// own teardown steps (closing a listener, stopping every handler) should
// capture it here before calling Stop, since Stop releases it — CallError
// afterward would silently do nothing.
func (c *Common[H]) ErrorCallback() netio.ErrorFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errCb
}

// StopWithError is Stop plus an immediate final error-callback invocation
// fired with the about-to-be-released callback. Use this when the
// terminal report has no teardown to wait for (a failed Start); when
// teardown steps must run first, capture ErrorCallback before calling
// Stop instead. Returns false if it was already stopped, in which case
// the callback is not invoked.
func (c *Common[H]) StopWithError(io netio.IOInterface, err error, count uint) bool {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return false
	}
	c.started = false
	cb := c.errCb
	c.ioCb = nil
	c.errCb = nil
	c.mu.Unlock()
	if cb != nil {
		cb(io, err, count)
	}
	return true
}

// IsStarted reports the current started flag.
func (c *Common[H]) IsStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// SetAlive marks whether the owning entity object itself is still
// usable, independent of started/stopped.
func (c *Common[H]) SetAlive(v bool) {
	c.mu.Lock()
	c.alive = v
	c.mu.Unlock()
}

// Alive reports whether the owning entity object is still usable.
func (c *Common[H]) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

// AddHandler inserts h into the live-handler set.
func (c *Common[H]) AddHandler(h H) {
	c.mu.Lock()
	c.handlers[h] = struct{}{}
	c.mu.Unlock()
	c.count.Inc()
}

// RemoveHandler removes h from the live-handler set. Returns whether h
// was present.
func (c *Common[H]) RemoveHandler(h H) bool {
	c.mu.Lock()
	_, ok := c.handlers[h]
	if ok {
		delete(c.handlers, h)
	}
	c.mu.Unlock()
	if ok {
		c.count.Dec()
	}
	return ok
}

// ClearHandlers empties the live-handler set without stopping any of
// them; callers stop handlers first via StopIOAll.
func (c *Common[H]) ClearHandlers() {
	c.mu.Lock()
	c.handlers = make(map[H]struct{})
	c.mu.Unlock()
	c.count.Store(0)
}

// Handlers returns a snapshot of the currently live handlers.
func (c *Common[H]) Handlers() []H {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]H, 0, len(c.handlers))
	for h := range c.handlers {
		out = append(out, h)
	}
	return out
}

// HandlerCount reports the current live-handler count: the value the
// io-state-change and error callbacks report for an acceptor. Backed by
// an atomic counter kept in step with the handler set rather than a
// locked len(), since callers (acceptors under load) read this far more
// often than they mutate the set.
func (c *Common[H]) HandlerCount() int {
	return int(c.count.Value())
}

// StopIOAll calls StopIO on every currently live handler.
func (c *Common[H]) StopIOAll() {
	for _, h := range c.Handlers() {
		h.StopIO()
	}
}

// CallIOStateChange invokes the installed io-state-change callback, if
// any is currently installed.
func (c *Common[H]) CallIOStateChange(io netio.IOInterface, count uint, starting bool) {
	c.mu.Lock()
	cb := c.ioCb
	c.mu.Unlock()
	if cb != nil {
		cb(io, count, starting)
	}
}

// CallError invokes the installed error callback, if any is currently
// installed.
func (c *Common[H]) CallError(io netio.IOInterface, err error, count uint) {
	c.mu.Lock()
	cb := c.errCb
	c.mu.Unlock()
	if cb != nil {
		cb(io, err, count)
	}
}
