package netio

import "net"

// IOInterface is the handler-kind-agnostic surface delivered to
// IOStateChangeFunc and ErrorFunc: every concrete I/O handler (a TCP
// connection's handler, or a UDP entity acting as its own handler)
// implements it. Callers that need to start reading type-assert to the
// concrete type — *tcpio.Handler exposes the four StartIO* framing
// constructors, *udpio.Entity exposes its own StartIO(maxSize, handler).
//
// IOInterface values are comparable: two valid handles compare equal iff
// they wrap the same underlying handler. IsValidIO treats a nil interface
// value as invalid; it does not detect a non-nil interface holding a nil
// concrete pointer, on which the concrete Alive methods dereference nil.
type IOInterface interface {
	// Send enqueues buf for writing, respecting the single-write-in-flight
	// discipline; it never blocks the caller.
	Send(buf []byte) error

	// IsIOStarted reports whether a read loop is currently active.
	IsIOStarted() bool

	// StopIO tears the handler down, as if its read loop had failed.
	StopIO() bool

	// QueueStats reports the number of buffers and total bytes currently
	// queued for write.
	QueueStats() (count int, totalBytes int64)

	// Alive reports whether this handler is still usable. Once false, no
	// other method should be called.
	Alive() bool

	// RemoteAddr returns the handler's peer address, or the UDP socket's
	// default destination.
	RemoteAddr() net.Addr
}

// IsValidIO reports whether io is both non-nil and Alive, sparing callers
// the nil-interface check before calling Alive directly.
func IsValidIO(io IOInterface) bool {
	return io != nil && io.Alive()
}

// EqualIO implements the both-invalid/one-invalid/both-valid equality
// spec'd for I/O interface handles.
func EqualIO(a, b IOInterface) bool {
	av, bv := IsValidIO(a), IsValidIO(b)
	if !av && !bv {
		return true
	}
	if av != bv {
		return false
	}
	return a == b
}

// LessIO gives IOInterface values the same total order EntityHandle.Less
// gives entity handles: invalid handles sort before valid ones; among
// valid handles, order is by the identity of the underlying handler.
func LessIO(a, b IOInterface) bool {
	av, bv := IsValidIO(a), IsValidIO(b)
	if av != bv {
		return !av
	}
	if !av {
		return false
	}
	return identityOf(a) < identityOf(b)
}
