// Package tcpaccept implements the TCP acceptor entity: bind, listen,
// accept connections in a loop, wrap each in a tcpio.Handler, and fan
// io-state-change/error notifications through internal/entitycommon.
// Grounded on the teacher's transport/tcp/trans_std.go Listen/applyOptions
// and options.go's functional-options shape.
package tcpaccept

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/kesh/netio"
	"github.com/kesh/netio/internal/entitycommon"
	"github.com/kesh/netio/internal/gopool"
	"github.com/kesh/netio/internal/tcpio"
	"github.com/kesh/netio/keepalive"
	"github.com/kesh/netio/log"
)

var _ netio.Entity = (*Acceptor)(nil)

// Options configures socket-level behavior applied to the listener and to
// every accepted connection.
type Options struct {
	Network         string
	ReuseAddr       bool
	Keepalive       bool
	MaxQueueDepth   int
	KeepaliveParams keepalive.Params
	GoroutinePool   int
}

// Option mutates an Options in place, following the teacher's
// functional-options convention (transport/tcp.WithKeepalive and friends).
type Option func(*Options)

// DefaultOptions mirrors the teacher's transport/tcp.DefaultOptions values
// for the fields this package also exposes.
var DefaultOptions = Options{
	Network:   "tcp",
	ReuseAddr: true,
	Keepalive: true,
}

// WithNetwork selects "tcp", "tcp4", or "tcp6"; invalid values are ignored.
func WithNetwork(network string) Option {
	return func(o *Options) {
		switch network {
		case "tcp", "tcp4", "tcp6":
			o.Network = network
		}
	}
}

// WithReuseAddr controls SO_REUSEADDR-equivalent rebind behavior.
func WithReuseAddr(v bool) Option {
	return func(o *Options) { o.ReuseAddr = v }
}

// WithKeepalive toggles TCP keepalive on every accepted connection.
func WithKeepalive(v bool) Option {
	return func(o *Options) { o.Keepalive = v }
}

// WithMaxQueueDepth caps each accepted connection's pending-write queue
// at n elements; n <= 0 means unbounded, the default.
func WithMaxQueueDepth(n int) Option {
	return func(o *Options) { o.MaxQueueDepth = n }
}

// WithKeepaliveParams arms an application-level idle-ping/timeout
// watchdog (see the keepalive package) over every accepted connection,
// independent of the OS-level keepalive WithKeepalive toggles.
func WithKeepaliveParams(p keepalive.Params) Option {
	return func(o *Options) { o.KeepaliveParams = p }
}

// WithGoroutinePool sizes the shared write-dispatch pool (internal/
// gopool) used to issue writes for every handler this acceptor owns.
func WithGoroutinePool(size int) Option {
	return func(o *Options) { o.GoroutinePool = size }
}

// Acceptor listens on one local address and spawns a tcpio.Handler for
// every accepted connection. handlers tracks every live connection; a
// healthy acceptor may own arbitrarily many at once.
type Acceptor struct {
	addr string
	ops  Options

	common *entitycommon.Common[*tcpio.Handler]

	mu       sync.Mutex
	listener *net.TCPListener

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New returns an Acceptor that will listen on addr (host:port) once Start
// is called.
func New(addr string, opts ...Option) *Acceptor {
	ops := DefaultOptions
	for _, o := range opts {
		o(&ops)
	}
	if ops.GoroutinePool > 0 {
		gopool.Init(ops.GoroutinePool)
	}
	return &Acceptor{
		addr:   addr,
		ops:    ops,
		common: entitycommon.New[*tcpio.Handler](),
		stopCh: make(chan struct{}),
	}
}

// Start binds and listens, then begins the accept loop. Returns false if
// already started or if binding fails (in which case errCb, if non-nil,
// receives the bind error before Start returns).
func (a *Acceptor) Start(ioCb netio.IOStateChangeFunc, errCb netio.ErrorFunc) bool {
	if !a.common.Start(ioCb, errCb) {
		return false
	}

	tcpAddr, err := net.ResolveTCPAddr(a.ops.Network, a.addr)
	if err != nil {
		a.common.StopWithError(nil, err, 0)
		return false
	}
	listener, err := a.listen(tcpAddr)
	if err != nil {
		a.common.StopWithError(nil, err, 0)
		return false
	}

	a.mu.Lock()
	a.listener = listener
	a.mu.Unlock()

	log.Infof("tcp acceptor listening on %s", listener.Addr())

	go a.acceptLoop(listener)
	return true
}

// IsStarted reports whether the accept loop is currently active.
func (a *Acceptor) IsStarted() bool {
	return a.common.IsStarted()
}

// Alive reports whether this Acceptor is still usable.
func (a *Acceptor) Alive() bool {
	return a.common.Alive()
}

// Socket returns the underlying *net.TCPListener, or nil before Start.
func (a *Acceptor) Socket() interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listener
}

// listen binds tcpAddr, setting SO_REUSEADDR on the listening socket first
// when ops.ReuseAddr is set — net.ListenTCP alone has no portable knob for
// this, so it goes through net.ListenConfig.Control down to the raw fd.
func (a *Acceptor) listen(tcpAddr *net.TCPAddr) (*net.TCPListener, error) {
	lc := net.ListenConfig{}
	if a.ops.ReuseAddr {
		lc.Control = func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			}); err != nil {
				return err
			}
			return sockErr
		}
	}
	ln, err := lc.Listen(context.Background(), tcpAddr.Network(), tcpAddr.String())
	if err != nil {
		return nil, err
	}
	return ln.(*net.TCPListener), nil
}

func (a *Acceptor) acceptLoop(listener *net.TCPListener) {
	for {
		conn, err := listener.AcceptTCP()
		if err != nil {
			select {
			case <-a.stopCh:
				return
			default:
			}
			a.teardown(err)
			return
		}
		if err := applyOptions(conn, &a.ops); err != nil {
			log.Errorf("tcp acceptor: configuring accepted connection: %v", err)
			_ = conn.Close()
			continue
		}

		h := tcpio.NewHandler(conn, a.onHandlerDone)
		h.SetMaxQueueDepth(a.ops.MaxQueueDepth)
		if a.ops.KeepaliveParams.Time > 0 {
			h.EnableKeepalive(a.ops.KeepaliveParams)
		}
		a.common.AddHandler(h)
		a.common.CallIOStateChange(h, uint(a.common.HandlerCount()), true)
	}
}

func (a *Acceptor) onHandlerDone(h *tcpio.Handler, err error) {
	a.common.RemoveHandler(h)
	count := uint(a.common.HandlerCount())
	a.common.CallIOStateChange(h, count, false)
	a.common.CallError(h, err, count)
	_ = h.Close()
}

// Stop cancels the accept loop, stops every live handler, and reports
// ErrAcceptorStopped through the error callback exactly once. Returns
// false if the acceptor was not started.
func (a *Acceptor) Stop() bool {
	return a.teardown(netio.ErrAcceptorStopped)
}

// teardown is the shared path for an explicit Stop and for an
// unrecoverable accept-loop failure: it captures the installed error
// callback (Stop below would otherwise release it before it could fire),
// closes the listener, stops every live handler, and reports err exactly
// once. Returns false if the acceptor was already stopped.
func (a *Acceptor) teardown(err error) bool {
	cb := a.common.ErrorCallback()
	if !a.common.Stop() {
		return false
	}
	a.stopOnce.Do(func() { close(a.stopCh) })

	a.mu.Lock()
	l := a.listener
	a.mu.Unlock()
	if l != nil {
		_ = l.Close()
	}

	a.common.StopIOAll()
	a.common.ClearHandlers()
	if cb != nil {
		cb(nil, err, 0)
	}
	return true
}

func applyOptions(conn *net.TCPConn, ops *Options) error {
	if err := conn.SetKeepAlive(ops.Keepalive); err != nil {
		return fmt.Errorf("set keepalive: %w", err)
	}
	return nil
}
