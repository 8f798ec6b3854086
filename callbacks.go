package netio

import "net"

// IOStateChangeFunc is invoked whenever an I/O handler for an entity
// becomes ready to have start_io called on it: once per accepted TCP
// connection, once for a TCP connector's successful connect, and once
// when a UDP entity finishes opening its socket. handlerCount is 1 for a
// connector or UDP entity, and the current live-handler count for an
// acceptor.
type IOStateChangeFunc func(io IOInterface, handlerCount uint, starting bool)

// ErrorFunc is invoked when an I/O handler or its owning entity
// terminates. io may be invalid (IsValid() == false) depending on the
// context of the failure; no method should be called on it once this
// fires. handlerCount follows the same convention as IOStateChangeFunc.
type ErrorFunc func(io IOInterface, err error, handlerCount uint)

// MessageHandler receives one framed message at a time. Returning false
// tears the handler down with ErrMessageHandlerTerminated and stops its
// read loop; returning true continues reading.
type MessageHandler func(msg []byte, io IOInterface, remote net.Addr) bool

// MessageFrame inspects the bytes most recently read and reports how
// many additional bytes are needed to complete the current message.
// Returning 0 means the message in the accumulation buffer is complete.
type MessageFrame func(mostRecentRead []byte) uint
