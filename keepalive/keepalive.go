// Package keepalive implements an idle-ping/timeout watchdog that can be
// layered over any handler exposing Send and Close: if no read activity
// arrives within Params.Time, a ping is sent and a Params.Timeout clock
// starts; if a matching pong has not arrived by then, the target is
// closed. Generalized from the teacher's keepalive.KeepaliveParameters and
// internal/transport's keeper, from a Less-message ping/pong interceptor
// pair down to a raw byte-equality ping/pong the application supplies.
package keepalive

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kesh/netio/internal/timer"
	"github.com/kesh/netio/log"
)

// Params configures a health-check watchdog for one connection.
type Params struct {
	// Time is the idle duration, since the most recent read, after which a
	// ping is sent. Zero disables the watchdog entirely.
	Time time.Duration
	// Timeout is how long to wait for a pong after a ping before closing.
	Timeout time.Duration
	// Ping is sent when the idle deadline elapses. If empty, the target is
	// closed directly instead of pinged, mirroring the teacher's
	// "GoAway not specified" fallback to forcible closure.
	Ping []byte
	// Pong is compared byte-for-byte against incoming messages; a match is
	// reported to the watcher via NotePong instead of being handed to the
	// application's message handler.
	Pong []byte
}

// Target is what a Watcher pings and, on timeout, tears down.
type Target interface {
	Send(buf []byte) error
	Close() error
}

// Watcher drives one connection's idle-ping/timeout cycle on top of
// internal/timer. The owner must call NoteRead on every successful read
// and NotePong whenever a message matching Params.Pong arrives.
type Watcher struct {
	params Params
	target Target

	mu         sync.Mutex
	lastRead   int64
	pingSentAt int64
	node       timer.TimeNoder

	stopped int32
}

// NewWatcher returns a Watcher for target, idle-clocked from now.
func NewWatcher(params Params, target Target) *Watcher {
	return &Watcher{params: params, target: target, lastRead: time.Now().UnixNano()}
}

// Start arms the idle timer. No-op if Params.Time is zero.
func (w *Watcher) Start() {
	if w.params.Time <= 0 {
		return
	}
	w.arm(w.params.Time)
}

// NoteRead records read activity, pushing the idle deadline out.
func (w *Watcher) NoteRead() {
	w.mu.Lock()
	w.lastRead = time.Now().UnixNano()
	w.mu.Unlock()
}

// NotePong records that a pong arrived, clearing any outstanding ping.
func (w *Watcher) NotePong() {
	w.mu.Lock()
	w.pingSentAt = 0
	w.lastRead = time.Now().UnixNano()
	w.mu.Unlock()
}

// Stop disarms the watchdog and prevents any further close. Safe to call
// more than once.
func (w *Watcher) Stop() {
	if !atomic.CompareAndSwapInt32(&w.stopped, 0, 1) {
		return
	}
	w.mu.Lock()
	node := w.node
	w.mu.Unlock()
	if node != nil {
		node.Stop()
	}
}

func (w *Watcher) arm(d time.Duration) {
	node := timer.AfterFunc(d, w.tick)
	w.mu.Lock()
	w.node = node
	w.mu.Unlock()
}

func (w *Watcher) tick() {
	if atomic.LoadInt32(&w.stopped) == 1 {
		return
	}

	w.mu.Lock()
	lastRead := w.lastRead
	pingSentAt := w.pingSentAt
	w.mu.Unlock()

	now := time.Now().UnixNano()

	if pingSentAt == 0 {
		idle := time.Duration(now - lastRead)
		if idle < w.params.Time {
			w.arm(w.params.Time - idle)
			return
		}
		if len(w.params.Ping) == 0 {
			log.Debugf("keepalive: no ping message configured, closing idle target")
			w.closeTarget()
			return
		}
		if err := w.target.Send(w.params.Ping); err != nil {
			log.Debugf("keepalive: ping send failed: %v", err)
			w.closeTarget()
			return
		}
		w.mu.Lock()
		w.pingSentAt = now
		w.mu.Unlock()
		w.arm(w.params.Timeout)
		return
	}

	elapsed := time.Duration(now - pingSentAt)
	if elapsed >= w.params.Timeout {
		log.Debugf("keepalive: ping timeout, closing target")
		w.closeTarget()
		return
	}
	w.arm(w.params.Timeout - elapsed)
}

func (w *Watcher) closeTarget() {
	if !atomic.CompareAndSwapInt32(&w.stopped, 0, 1) {
		return
	}
	_ = w.target.Close()
}
