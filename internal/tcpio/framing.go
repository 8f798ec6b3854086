package tcpio

import (
	"bytes"
	"io"
	"net"

	"github.com/kesh/netio"
	"github.com/kesh/netio/internal/recovery"
)

// StartIOHeaderFramed activates a read loop using the fixed-header +
// variable-body framing policy: read exactly headerSize bytes, then call
// frame on the bytes just read. A 0 return means the message in the
// accumulation buffer (from its start) is complete, and it is handed to
// msgHandler; the buffer then resets and the loop rereads a fresh
// header. A positive return of K appends K bytes of capacity, reads K
// more bytes into that tail, and calls frame again on just that tail —
// repeating until frame returns 0.
//
// Returns false if a read loop is already active.
func (h *Handler) StartIOHeaderFramed(headerSize int, frame netio.MessageFrame, msgHandler netio.MessageHandler) bool {
	if !h.io.SetIOStarted() {
		return false
	}
	if h.kaWatcher != nil {
		h.kaWatcher.Start()
	}
	go h.readLoopHeaderFramed(headerSize, frame, msgHandler)
	return true
}

// StartIOFixed activates a read loop that reads exactly readSize bytes
// per message and hands each chunk to msgHandler untouched — the
// fixed-header form with a framing function that always reports the
// message complete.
func (h *Handler) StartIOFixed(readSize int, msgHandler netio.MessageHandler) bool {
	return h.StartIOHeaderFramed(readSize, func([]byte) uint { return 0 }, msgHandler)
}

// StartIOSink activates a read loop that performs 1-byte reads and
// discards everything, keeping the connection open without delivering
// any data to the application.
func (h *Handler) StartIOSink() bool {
	return h.StartIOFixed(1, func([]byte, netio.IOInterface, net.Addr) bool { return true })
}

// StartIODelimited activates a read loop using delimiter framing: bytes
// accumulate until delim is found; msgHandler receives the prefix
// through the delimiter, inclusive, and those bytes are then erased from
// the front of the accumulation buffer before the next read.
func (h *Handler) StartIODelimited(delim []byte, msgHandler netio.MessageHandler) bool {
	if !h.io.SetIOStarted() {
		return false
	}
	if h.kaWatcher != nil {
		h.kaWatcher.Start()
	}
	go h.readLoopDelimited(delim, msgHandler)
	return true
}

func (h *Handler) readLoopHeaderFramed(headerSize int, frame netio.MessageFrame, msgHandler netio.MessageHandler) {
	defer recovery.Recover(func(err error) { h.fail(err) })
	for {
		buf := make([]byte, headerSize)
		if _, err := io.ReadFull(h.conn, buf); err != nil {
			h.fail(err)
			return
		}
		recent := buf
		for {
			next := frame(recent)
			if next == 0 {
				break
			}
			start := len(buf)
			buf = append(buf, make([]byte, next)...)
			if _, err := io.ReadFull(h.conn, buf[start:]); err != nil {
				h.fail(err)
				return
			}
			recent = buf[start:]
		}
		h.noteRead()
		if h.consumeAsPong(buf) {
			if !h.io.IsStarted() {
				return
			}
			continue
		}
		if !msgHandler(buf, h, h.remote) {
			h.fail(netio.ErrMessageHandlerTerminated)
			return
		}
		if !h.io.IsStarted() {
			return
		}
	}
}

func (h *Handler) readLoopDelimited(delim []byte, msgHandler netio.MessageHandler) {
	defer recovery.Recover(func(err error) { h.fail(err) })

	acc := make([]byte, 0, 256)
	chunk := make([]byte, 256)
	for {
		idx := bytes.Index(acc, delim)
		for idx < 0 {
			n, err := h.conn.Read(chunk)
			if err != nil {
				h.fail(err)
				return
			}
			acc = append(acc, chunk[:n]...)
			idx = bytes.Index(acc, delim)
		}

		end := idx + len(delim)
		msg := make([]byte, end)
		copy(msg, acc[:end])

		remaining := len(acc) - end
		copy(acc, acc[end:])
		acc = acc[:remaining]

		h.noteRead()
		if h.consumeAsPong(msg) {
			if !h.io.IsStarted() {
				return
			}
			continue
		}
		if !msgHandler(msg, h, h.remote) {
			h.fail(netio.ErrMessageHandlerTerminated)
			return
		}

		if !h.io.IsStarted() {
			return
		}
	}
}
