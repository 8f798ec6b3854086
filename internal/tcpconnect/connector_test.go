package tcpconnect

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kesh/netio"
	"github.com/kesh/netio/internal/tcpio"
)

func TestConnector_ConnectsToListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	c := New(ln.Addr().String(), WithReconnectInterval(20*time.Millisecond))
	started := make(chan struct{}, 1)
	ok := c.Start(func(io netio.IOInterface, count uint, starting bool) {
		if starting {
			io.(*tcpio.Handler).StartIOSink()
			started <- struct{}{}
		}
	}, func(netio.IOInterface, error, uint) {})
	assert.True(t, ok)
	t.Cleanup(func() { c.Stop() })

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("connector never reported connected")
	}
	assert.Equal(t, "connected", c.State())

	select {
	case conn := <-accepted:
		conn.Close()
	case <-time.After(time.Second):
		t.Fatal("listener never accepted")
	}
}

func TestConnector_SchedulesReconnectOnFailure(t *testing.T) {
	c := New("127.0.0.1:1", WithReconnectInterval(20*time.Millisecond), WithDialTimeout(50*time.Millisecond))

	errs := make(chan error, 10)
	ok := c.Start(func(netio.IOInterface, uint, bool) {}, func(_ netio.IOInterface, err error, _ uint) {
		errs <- err
	})
	assert.True(t, ok)
	t.Cleanup(func() { c.Stop() })

	select {
	case <-errs:
	case <-time.After(2 * time.Second):
		t.Fatal("expected at least one connect-failure error")
	}
	assert.Eventually(t, func() bool { return c.State() == "waiting-reconnect" || c.State() == "connecting" }, time.Second, 5*time.Millisecond)
}

func TestConnector_ReconnectsAfterPeerDisconnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	c := New(ln.Addr().String(), WithReconnectInterval(20*time.Millisecond))
	starts := make(chan struct{}, 10)
	ok := c.Start(func(io netio.IOInterface, _ uint, starting bool) {
		if starting {
			io.(*tcpio.Handler).StartIOSink()
			starts <- struct{}{}
		}
	}, func(netio.IOInterface, error, uint) {})
	assert.True(t, ok)
	t.Cleanup(func() { c.Stop() })

	for i := 0; i < 2; i++ {
		select {
		case <-starts:
		case <-time.After(2 * time.Second):
			t.Fatal("connector never reconnected after peer closed")
		}
	}
}

func TestConnector_StopWhileWaitingReconnect(t *testing.T) {
	c := New("127.0.0.1:1", WithReconnectInterval(50*time.Millisecond), WithDialTimeout(20*time.Millisecond))

	errs := make(chan error, 10)
	ok := c.Start(func(netio.IOInterface, uint, bool) {}, func(_ netio.IOInterface, err error, _ uint) {
		errs <- err
	})
	assert.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	assert.True(t, c.Stop())
	assert.False(t, c.IsStarted())
	assert.Equal(t, "idle", c.State())

	found := false
	for {
		select {
		case err := <-errs:
			if err == netio.ErrConnectorStopped {
				found = true
			}
		default:
			assert.True(t, found, "expected ErrConnectorStopped among the error callbacks")
			assert.False(t, c.Stop(), "a second Stop must be a no-op")
			return
		}
	}
}

func TestConnector_StartStopIdempotent(t *testing.T) {
	c := New("127.0.0.1:1")
	ok := c.Start(func(netio.IOInterface, uint, bool) {}, func(netio.IOInterface, error, uint) {})
	assert.True(t, ok)
	assert.False(t, c.Start(nil, nil), "a second Start must fail")
	c.Stop()
}
