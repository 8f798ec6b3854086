// Package iocommon implements the per-handler concurrency-guarded state
// shared by every I/O handler variant: the io-started flag, the
// write-in-flight flag, and the pending-write queue. It is grounded on the
// atomic state bitmask in the teacher's internal/channel.Channel and
// generalizes chops_net_ip's io_common<IOH> to Go.
package iocommon

import (
	"net"
	"sync"

	"github.com/kesh/netio/internal/queue"
)

// Common guards the state that must never be touched by more than one
// goroutine at a time: whether reads/writes are active, and whether a write
// is currently outstanding on the socket.
type Common struct {
	mu            sync.Mutex
	started       bool
	writeInFlight bool
	q             queue.Queue
}

// SetIOStarted transitions false->true. Returns false if already started.
func (c *Common) SetIOStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return false
	}
	c.started = true
	return true
}

// Stop transitions true->false. Returns false if already stopped.
func (c *Common) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return false
	}
	c.started = false
	return true
}

// IsStarted reports the current io-started flag.
func (c *Common) IsStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// SetMaxQueueDepth caps the pending-write queue at n elements; n <= 0
// means unbounded.
func (c *Common) SetMaxQueueDepth(n int) {
	c.mu.Lock()
	c.q.SetMaxDepth(n)
	c.mu.Unlock()
}

// StartWriteSetup is the single ticket to issue a write. issue reports
// whether the caller must issue the write itself right away (no write was
// already outstanding). ok reports whether buf was accepted at all: it is
// false if io has not been started, or if a write was already in flight
// and the pending-write queue is at its depth cap — the caller must then
// treat buf as rejected, not queued.
func (c *Common) StartWriteSetup(buf []byte, endpoint net.Addr) (issue, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return false, false
	}
	if c.writeInFlight {
		return false, c.q.Push(buf, endpoint)
	}
	c.writeInFlight = true
	return true, true
}

// GetNextElement is called from a write-completion handler. If the queue is
// empty it clears write-in-flight and returns false; otherwise it returns
// the next element to write (write-in-flight remains set).
func (c *Common) GetNextElement() (queue.Element, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.q.Pop()
	if !ok {
		c.writeInFlight = false
		return queue.Element{}, false
	}
	return e, true
}

// Stats returns the queued element count and total queued byte size.
func (c *Common) Stats() (count int, totalBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Stats()
}
