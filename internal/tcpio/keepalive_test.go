package tcpio

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kesh/netio"
	"github.com/kesh/netio/keepalive"
)

func TestEnableKeepalive_PingsIdlePeerThenTimesOutAndCloses(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	done := make(chan struct{})
	h := NewHandler(server, func(*Handler, error) {
		select {
		case <-done:
		default:
			close(done)
		}
	})
	h.EnableKeepalive(keepalive.Params{
		Time:    15 * time.Millisecond,
		Timeout: 15 * time.Millisecond,
		Ping:    []byte("PING"),
		Pong:    []byte("PONG"),
	})

	assert.True(t, h.StartIOFixed(4, func([]byte, netio.IOInterface, net.Addr) bool {
		return true
	}))

	// The ping is written on the server side of the pipe, so it surfaces
	// at the client end; the client never answers with a pong.
	received := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4)
		if _, err := io.ReadFull(client, buf); err == nil {
			received <- buf
		}
	}()

	select {
	case msg := <-received:
		assert.Equal(t, "PING", string(msg))
	case <-time.After(time.Second):
		t.Fatal("keepalive ping never arrived at the peer")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never closed after ping timeout")
	}
}

func TestEnableKeepalive_PongSuppressesDeliveryAndResetsClock(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	h := NewHandler(server, nil)
	t.Cleanup(func() { h.Close() })

	h.EnableKeepalive(keepalive.Params{
		Time:    10 * time.Second,
		Timeout: 10 * time.Second,
		Ping:    []byte("PING"),
		Pong:    []byte("PONG"),
	})

	delivered := make(chan []byte, 10)
	assert.True(t, h.StartIOFixed(4, func(msg []byte, _ netio.IOInterface, _ net.Addr) bool {
		delivered <- append([]byte(nil), msg...)
		return true
	}))

	go func() { _, _ = client.Write([]byte("PONG")) }()

	select {
	case <-delivered:
		t.Fatal("a recognized pong must not reach the application message handler")
	case <-time.After(100 * time.Millisecond):
	}
}
