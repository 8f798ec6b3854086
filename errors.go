package netio

import (
	"errors"
	"fmt"
)

// Stable error sentinels surfaced through ErrorFunc and EntityHandle/
// IOInterface return values. Callers should compare with errors.Is;
// transport-level failures (connect refused, read EOF, broken pipe, DNS
// failure) are passed through verbatim as their underlying *net.OpError
// or os error.
var (
	// ErrWeakPtrExpired is returned when an EntityHandle or IOInterface is
	// used after the entity/handler it referred to has gone away.
	ErrWeakPtrExpired = errors.New("netio: handle no longer refers to a live entity")

	// ErrAcceptorStopped is the final error-callback code reported by a TCP
	// acceptor's stop.
	ErrAcceptorStopped = errors.New("netio: tcp acceptor stopped")

	// ErrConnectorStopped is the final error-callback code reported by a
	// TCP connector's stop.
	ErrConnectorStopped = errors.New("netio: tcp connector stopped")

	// ErrIOHandlerStopped is reported when a TCP I/O handler is torn down,
	// either through stop_io or because its owning entity stopped.
	ErrIOHandlerStopped = errors.New("netio: tcp io handler stopped")

	// ErrUDPEntityStopped is the final error-callback code reported by a
	// UDP entity's stop.
	ErrUDPEntityStopped = errors.New("netio: udp entity stopped")

	// ErrUDPIOHandlerStopped is reported when a UDP entity's receive loop
	// is torn down via stop_io, independent of entity-level stop.
	ErrUDPIOHandlerStopped = errors.New("netio: udp io handler stopped")

	// ErrMessageHandlerTerminated is reported when a MessageHandler returns
	// false, tearing down the handler's read side. The sizes a
	// MessageFrame returns are not checked.
	ErrMessageHandlerTerminated = errors.New("netio: message handler terminated the connection")

	// ErrQueueFull is returned by Send/SendTo when the handler's bounded
	// pending-write queue is already at its configured depth cap. It is
	// the local-backpressure signal: the caller's peer is not draining
	// fast enough and buf was not accepted.
	ErrQueueFull = errors.New("netio: pending-write queue full")
)

// wrapf formats a new error that wraps cause, for attaching context to an
// OS-level error before it reaches an ErrorFunc.
func wrapf(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return fmt.Errorf(format, args...)
	}
	return fmt.Errorf(format+": %w", append(args, cause)...)
}
