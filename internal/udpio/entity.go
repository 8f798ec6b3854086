// Package udpio implements the combined UDP entity and I/O handler: unlike
// TCP, a UDP endpoint is both the thing you Start (bind a socket) and the
// thing you Send through and read from, so one type satisfies both
// netio.Entity and netio.IOInterface. Grounded on
// original_source/include/net_ip/detail/udp_entity_io.hpp, with the
// datagram read/write idiom (net.ListenUDP/ReadFromUDP/WriteTo) taken from
// the pack's heartbeat.Detector.
package udpio

import (
	"bytes"
	"net"
	"sync"

	"github.com/kesh/netio"
	"github.com/kesh/netio/internal/gopool"
	"github.com/kesh/netio/internal/iocommon"
	"github.com/kesh/netio/internal/recovery"
	"github.com/kesh/netio/keepalive"
	"github.com/kesh/netio/log"
)

var (
	_ netio.Entity        = (*Entity)(nil)
	_ netio.IOInterface   = (*Entity)(nil)
	_ keepalive.Target    = (*Entity)(nil)
)

// Options configures an Entity at construction time. Mirrors the
// functional-options shape tcpaccept.Options and tcpconnect's Option use.
type Options struct {
	MaxQueueDepth   int
	KeepaliveParams keepalive.Params
	GoroutinePool   int
}

// Option mutates an Options in place.
type Option func(*Options)

// WithMaxQueueDepth caps the pending-write queue at n elements; n <= 0
// means unbounded, the default.
func WithMaxQueueDepth(n int) Option {
	return func(o *Options) { o.MaxQueueDepth = n }
}

// WithKeepaliveParams arms an idle-ping/timeout watchdog over the
// entity's socket when a receive loop starts (StartIO or StartIOTo); the
// send-only variants do not arm it. A zero Params.Time leaves the
// watchdog disabled, the default.
func WithKeepaliveParams(p keepalive.Params) Option {
	return func(o *Options) { o.KeepaliveParams = p }
}

// WithGoroutinePool sizes the shared write-dispatch pool (see
// internal/gopool) used by this entity's writes. Initializes the pool
// immediately; later entities sharing the process reuse it.
func WithGoroutinePool(size int) Option {
	return func(o *Options) { o.GoroutinePool = size }
}

// Entity owns one UDP socket: net_entity_common's started/stopped state for
// the socket-open lifecycle, and io_common's io-started state for the
// read/write lifecycle layered on top of it. A fresh local port is bound if
// localAddr is nil, mirroring the original's default-constructed endpoint.
type Entity struct {
	mu      sync.Mutex
	started bool
	alive   bool
	ioCb    netio.IOStateChangeFunc
	errCb   netio.ErrorFunc

	localAddr   *net.UDPAddr
	conn        *net.UDPConn
	defaultDest net.Addr
	maxSize     int

	io iocommon.Common

	kaWatcher *keepalive.Watcher
	kaParams  keepalive.Params

	ioFailOnce sync.Once
}

// NewEntity returns an Entity that will bind localAddr on Start. A nil
// localAddr binds an ephemeral IPv4 port.
func NewEntity(localAddr *net.UDPAddr, opts ...Option) *Entity {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	e := &Entity{localAddr: localAddr, alive: true, kaParams: o.KeepaliveParams}
	e.io.SetMaxQueueDepth(o.MaxQueueDepth)
	if o.GoroutinePool > 0 {
		gopool.Init(o.GoroutinePool)
	}
	return e
}

// Start opens the UDP socket and marks the entity started. Returns false if
// already started.
func (e *Entity) Start(ioCb netio.IOStateChangeFunc, errCb netio.ErrorFunc) bool {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return false
	}
	network := "udp"
	if e.localAddr == nil {
		network = "udp4"
	}
	conn, err := net.ListenUDP(network, e.localAddr)
	if err != nil {
		e.mu.Unlock()
		if errCb != nil {
			errCb(e, err, 0)
		}
		return false
	}
	e.conn = conn
	e.started = true
	e.ioCb = ioCb
	e.errCb = errCb
	e.mu.Unlock()

	e.callIOStateChange(1, true)
	return true
}

// IsStarted reports whether the socket is currently open.
func (e *Entity) IsStarted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Socket returns the underlying *net.UDPConn.
func (e *Entity) Socket() interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn
}

// Alive reports whether this Entity is still usable; it becomes false once
// Stop has fully torn the entity down, the Go stand-in for the original's
// weak_ptr expiration.
func (e *Entity) Alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive
}

// StartIO activates a read loop that delivers each datagram, up to maxSize
// bytes, to msgHandler. It sets no default destination: a Send with no
// explicit endpoint and no default destination is accepted, but its write
// fails and stops io with the resulting error.
func (e *Entity) StartIO(maxSize int, msgHandler netio.MessageHandler) bool {
	return e.startIO(nil, maxSize, msgHandler)
}

// StartIOTo is StartIO plus a default destination endpoint used by Send.
func (e *Entity) StartIOTo(endp net.Addr, maxSize int, msgHandler netio.MessageHandler) bool {
	return e.startIO(endp, maxSize, msgHandler)
}

// StartIOSendOnly activates write-only io state without a read loop.
func (e *Entity) StartIOSendOnly() bool {
	return e.io.SetIOStarted()
}

// StartIOSendOnlyTo is StartIOSendOnly plus a default destination.
func (e *Entity) StartIOSendOnlyTo(endp net.Addr) bool {
	if !e.io.SetIOStarted() {
		return false
	}
	e.mu.Lock()
	e.defaultDest = endp
	e.mu.Unlock()
	return true
}

func (e *Entity) startIO(endp net.Addr, maxSize int, msgHandler netio.MessageHandler) bool {
	if !e.io.SetIOStarted() {
		return false
	}
	e.mu.Lock()
	e.maxSize = maxSize
	if endp != nil {
		e.defaultDest = endp
	}
	conn := e.conn
	e.mu.Unlock()
	if e.kaParams.Time > 0 {
		e.kaWatcher = keepalive.NewWatcher(e.kaParams, e)
		e.kaWatcher.Start()
	}
	go e.readLoop(conn, maxSize, msgHandler)
	return true
}

// IsIOStarted reports whether a read/write cycle is currently active.
func (e *Entity) IsIOStarted() bool {
	return e.io.IsStarted()
}

// QueueStats reports the pending-write queue depth and byte size.
func (e *Entity) QueueStats() (count int, totalBytes int64) {
	return e.io.Stats()
}

// RemoteAddr returns the default destination endpoint, if one has been set
// via StartIOTo; UDP has no single persistent peer the way TCP does.
func (e *Entity) RemoteAddr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultDest
}

// Send enqueues buf for delivery to the default destination endpoint.
func (e *Entity) Send(buf []byte) error {
	return e.sendTo(buf, nil)
}

// SendTo enqueues buf for delivery to endp, regardless of any default
// destination configured at StartIO time.
func (e *Entity) SendTo(buf []byte, endp net.Addr) error {
	return e.sendTo(buf, endp)
}

func (e *Entity) sendTo(buf []byte, endp net.Addr) error {
	if !e.io.IsStarted() {
		return netio.ErrUDPIOHandlerStopped
	}
	issue, ok := e.io.StartWriteSetup(buf, endp)
	if !ok {
		return netio.ErrQueueFull
	}
	if issue {
		gopool.Submit(func() { e.issueWrite(buf, endp) })
	}
	return nil
}

func (e *Entity) issueWrite(buf []byte, endp net.Addr) {
	defer recovery.Recover(func(err error) { e.failIO(err) })
	for {
		dest := endp
		if dest == nil {
			e.mu.Lock()
			dest = e.defaultDest
			e.mu.Unlock()
		}
		var err error
		if dest != nil {
			_, err = e.conn.WriteTo(buf, dest)
		} else {
			_, err = e.conn.Write(buf)
		}
		if err != nil {
			e.failIO(err)
			return
		}
		elem, ok := e.io.GetNextElement()
		if !ok {
			return
		}
		buf = elem.Buf
		endp = elem.Endpoint
	}
}

func (e *Entity) readLoop(conn *net.UDPConn, maxSize int, msgHandler netio.MessageHandler) {
	defer recovery.Recover(func(err error) { e.failIO(err) })
	buf := make([]byte, maxSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			e.failIO(err)
			return
		}
		if e.kaWatcher != nil {
			e.kaWatcher.NoteRead()
			if e.consumeAsPong(buf[:n]) {
				continue
			}
		}
		if !msgHandler(buf[:n], e, addr) {
			e.failIO(netio.ErrMessageHandlerTerminated)
			return
		}
		if !e.io.IsStarted() {
			return
		}
	}
}

// consumeAsPong reports whether buf is a configured keepalive pong; if
// so it updates the watchdog and the caller must not forward buf to the
// application's message handler.
func (e *Entity) consumeAsPong(buf []byte) bool {
	if len(e.kaParams.Pong) == 0 || !bytes.Equal(buf, e.kaParams.Pong) {
		return false
	}
	e.kaWatcher.NotePong()
	return true
}

// StopIO tears down the read/write cycle and closes the socket, as if a
// read or write error had occurred. Returns false if io was not started.
func (e *Entity) StopIO() bool {
	if !e.io.IsStarted() {
		return false
	}
	e.failIO(netio.ErrUDPIOHandlerStopped)
	return true
}

func (e *Entity) failIO(err error) {
	e.ioFailOnce.Do(func() {
		e.io.Stop()
		if e.kaWatcher != nil {
			e.kaWatcher.Stop()
		}
		e.mu.Lock()
		conn := e.conn
		e.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		log.Debugw("err", err, "event", "udp io stopped")
		e.callError(err, 0)
		e.callIOStateChange(0, false)
	})
}

// Close tears down the read/write cycle, satisfying keepalive.Target so
// a Watcher can close this entity on ping timeout. Equivalent to StopIO.
func (e *Entity) Close() error {
	e.StopIO()
	return nil
}

// Stop tears the entity down entirely: stops io (if started), closes the
// socket, and marks the entity no longer Alive. Returns false if the entity
// was not started.
func (e *Entity) Stop() bool {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return false
	}
	e.started = false
	e.mu.Unlock()

	if !e.StopIO() {
		e.mu.Lock()
		conn := e.conn
		e.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
	}
	e.callError(netio.ErrUDPEntityStopped, 0)

	e.mu.Lock()
	e.alive = false
	e.mu.Unlock()
	return true
}

func (e *Entity) callIOStateChange(count uint, starting bool) {
	e.mu.Lock()
	cb := e.ioCb
	e.mu.Unlock()
	if cb != nil {
		cb(e, count, starting)
	}
}

func (e *Entity) callError(err error, count uint) {
	e.mu.Lock()
	cb := e.errCb
	e.mu.Unlock()
	if cb != nil {
		cb(e, err, count)
	}
}
