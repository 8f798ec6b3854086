// Package tcpio implements the per-connection TCP I/O handler: a framed
// read loop plus a serialized write loop over one already-connected
// socket. The read loop's one-goroutine-per-connection shape and its
// panic-to-notifier recovery are grounded on the teacher's
// transport/tcp/trans_std.go readLoop; the write discipline is internal/
// iocommon's single-ticket StartWriteSetup/GetNextElement protocol.
package tcpio

import (
	"bytes"
	"net"
	"sync"
	"sync/atomic"

	"github.com/kesh/netio"
	"github.com/kesh/netio/internal/gopool"
	"github.com/kesh/netio/internal/iocommon"
	"github.com/kesh/netio/internal/recovery"
	"github.com/kesh/netio/keepalive"
	"github.com/kesh/netio/log"
)

// Notifier is the handler's one-way back-reference to its owning entity
// (acceptor or connector), invoked exactly once when the handler
// terminates for any reason: a read error, a write error, the message
// handler returning false, or an explicit StopIO call.
type Notifier func(h *Handler, err error)

var _ netio.IOInterface = (*Handler)(nil)

// Handler owns one connected TCP socket. It is constructed by an
// acceptor or connector immediately after accept/connect, before any
// StartIO* call activates its read loop.
type Handler struct {
	conn     net.Conn
	remote   net.Addr
	io       iocommon.Common
	notifier Notifier

	alive    int32 // atomic: 1 while the socket is open, 0 once Close has run
	failOnce sync.Once

	kaWatcher *keepalive.Watcher
	kaPong    []byte
}

// NewHandler wraps conn. notifier is called exactly once on termination;
// it may be nil for a handler with no owning entity (not expected in
// normal use, but kept nil-safe for tests).
func NewHandler(conn net.Conn, notifier Notifier) *Handler {
	return &Handler{
		conn:     conn,
		remote:   conn.RemoteAddr(),
		notifier: notifier,
		alive:    1,
	}
}

// Conn returns the underlying net.Conn, the Go analogue of get_socket.
func (h *Handler) Conn() net.Conn {
	return h.conn
}

// EnableKeepalive arms an idle-ping/timeout watchdog over this handler.
// Must be called before a StartIO* variant; the watchdog itself starts
// ticking once the read loop does. Pongs matching params.Pong are
// recognized and swallowed before reaching the application's message
// handler; everything else is read activity that resets the idle clock.
func (h *Handler) EnableKeepalive(params keepalive.Params) {
	h.kaWatcher = keepalive.NewWatcher(params, h)
	h.kaPong = params.Pong
}

func (h *Handler) noteRead() {
	if h.kaWatcher != nil {
		h.kaWatcher.NoteRead()
	}
}

// consumeAsPong reports whether buf is a configured keepalive pong; if so
// it updates the watchdog and the caller must not forward buf to the
// application's message handler.
func (h *Handler) consumeAsPong(buf []byte) bool {
	if h.kaWatcher == nil || len(h.kaPong) == 0 || !bytes.Equal(buf, h.kaPong) {
		return false
	}
	h.kaWatcher.NotePong()
	return true
}

// IsIOStarted reports whether a read loop is currently active.
func (h *Handler) IsIOStarted() bool {
	return h.io.IsStarted()
}

// QueueStats reports the pending-write queue depth and byte size.
func (h *Handler) QueueStats() (count int, totalBytes int64) {
	return h.io.Stats()
}

// RemoteAddr returns the connection's peer address.
func (h *Handler) RemoteAddr() net.Addr {
	return h.remote
}

// Alive reports whether the handler's socket is still open. It becomes
// false once Close runs, independent of IsIOStarted — a handler whose
// read loop has stopped but whose socket is not yet torn down is still
// Alive.
func (h *Handler) Alive() bool {
	return atomic.LoadInt32(&h.alive) == 1
}

// SetMaxQueueDepth caps the pending-write queue at n elements; n <= 0
// means unbounded. Intended to be called once, before StartIO*.
func (h *Handler) SetMaxQueueDepth(n int) {
	h.io.SetMaxQueueDepth(n)
}

// Send enqueues buf for writing. If no write is currently outstanding,
// it is issued immediately on the shared goroutine pool so Send never
// blocks the caller; otherwise it joins the pending-write queue and will
// be written when the in-flight write completes. Returns ErrQueueFull if
// the queue is already at its configured depth cap.
func (h *Handler) Send(buf []byte) error {
	if !h.io.IsStarted() {
		return netio.ErrIOHandlerStopped
	}
	issue, ok := h.io.StartWriteSetup(buf, nil)
	if !ok {
		return netio.ErrQueueFull
	}
	if issue {
		gopool.Submit(func() { h.issueWrite(buf) })
	}
	return nil
}

func (h *Handler) issueWrite(buf []byte) {
	defer recovery.Recover(func(err error) { h.fail(err) })
	for {
		if _, err := h.conn.Write(buf); err != nil {
			h.fail(err)
			return
		}
		elem, ok := h.io.GetNextElement()
		if !ok {
			return
		}
		buf = elem.Buf
	}
}

// StopIO tears the handler down as if its read loop had failed, using
// ErrIOHandlerStopped as the terminating code. Returns false if the
// handler was not started.
func (h *Handler) StopIO() bool {
	if !h.io.IsStarted() {
		return false
	}
	h.fail(netio.ErrIOHandlerStopped)
	return true
}

// fail stops the io-started flag and notifies the owning entity exactly
// once, regardless of how many termination paths race to call it.
func (h *Handler) fail(err error) {
	h.failOnce.Do(func() {
		h.io.Stop()
		if h.kaWatcher != nil {
			h.kaWatcher.Stop()
		}
		log.Debugw("remote", h.remote, "err", err, "event", "tcp handler terminated")
		if h.notifier != nil {
			h.notifier(h, err)
		}
	})
}

// Close attempts a graceful TCP half-close in both directions, then
// closes the socket. All errors are swallowed — by the time Close runs,
// the terminating error has already reached the notifier. Close is
// idempotent.
func (h *Handler) Close() error {
	if !atomic.CompareAndSwapInt32(&h.alive, 1, 0) {
		return nil
	}
	if tc, ok := h.conn.(*net.TCPConn); ok {
		_ = tc.CloseRead()
		_ = tc.CloseWrite()
	}
	_ = h.conn.Close()
	return nil
}
