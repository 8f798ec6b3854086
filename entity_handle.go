package netio

import "reflect"

// Entity is the minimal surface a TCP acceptor, TCP connector, or UDP
// entity exposes to an EntityHandle built over it: every concrete entity
// type implements it.
type Entity interface {
	// Start begins network processing — binding/listening for an
	// acceptor, resolving and connecting for a connector, opening the
	// socket for a UDP entity — and installs the two callbacks that
	// report I/O handler readiness and termination. Returns false if the
	// entity was already started (idempotent-guarded).
	Start(io IOStateChangeFunc, err ErrorFunc) bool

	// IsStarted reports whether network processing is currently active.
	IsStarted() bool

	// Stop halts network processing. Returns whether this call produced
	// the transition; a second Stop on an already-stopped entity is a
	// no-op returning false.
	Stop() bool

	// Alive reports whether the entity object is still usable. A TCP
	// acceptor or connector stays Alive after Stop and can be Start-ed
	// again; a UDP entity reports false once Stop has torn it down.
	Alive() bool

	// Socket returns the entity's underlying socket handle: a
	// *net.TCPListener for an acceptor, a net.Conn for a connected
	// connector, or a net.PacketConn for a UDP entity. Callers
	// type-assert to the concrete type they expect.
	Socket() interface{}
}

// EntityHandle is a lightweight, comparable value referring to an Entity
// without owning it — the Go analogue of the original design's weak
// reference into a TCP acceptor, TCP connector, or UDP entity. Methods
// delegate to the referenced entity when Alive, otherwise they report
// ErrWeakPtrExpired.
//
// Go has no exact analogue of a C++ weak_ptr backed by the garbage
// collector prior to the experimental weak package: holding an
// EntityHandle keeps its Entity reachable. Liveness here is instead
// tracked by the explicit Alive flag each concrete entity reports (see
// Entity.Alive for when it turns false), which expresses the
// is_valid/weak_ptr_expired semantics without requiring a specific Go
// runtime version.
type EntityHandle struct {
	e Entity
}

// NewEntityHandle wraps e in an EntityHandle. The entity constructors
// (tcpaccept.New, tcpconnect.New, udpio.NewEntity) return concrete types;
// a handle is made by passing one of them to this function.
func NewEntityHandle(e Entity) EntityHandle {
	return EntityHandle{e: e}
}

// IsValid reports whether this handle still refers to a live entity.
func (h EntityHandle) IsValid() bool {
	return h.e != nil && h.e.Alive()
}

// Start begins network processing on the referenced entity.
func (h EntityHandle) Start(io IOStateChangeFunc, err ErrorFunc) (bool, error) {
	if !h.IsValid() {
		return false, ErrWeakPtrExpired
	}
	return h.e.Start(io, err), nil
}

// IsStarted reports whether the referenced entity is started.
func (h EntityHandle) IsStarted() (bool, error) {
	if !h.IsValid() {
		return false, ErrWeakPtrExpired
	}
	return h.e.IsStarted(), nil
}

// Stop stops the referenced entity.
func (h EntityHandle) Stop() (bool, error) {
	if !h.IsValid() {
		return false, ErrWeakPtrExpired
	}
	return h.e.Stop(), nil
}

// Socket returns the entity's underlying socket handle.
func (h EntityHandle) Socket() (interface{}, error) {
	if !h.IsValid() {
		return nil, ErrWeakPtrExpired
	}
	return h.e.Socket(), nil
}

// Equal reports the both-invalid/one-invalid/both-valid equality spec'd
// for entity handles.
func (h EntityHandle) Equal(o EntityHandle) bool {
	hv, ov := h.IsValid(), o.IsValid()
	if !hv && !ov {
		return true
	}
	if hv != ov {
		return false
	}
	return h.e == o.e
}

// Less reports whether h sorts before o: invalid handles sort before
// valid ones, and two valid handles sort by the identity of the entity
// they refer to. Gives EntityHandle a total order so it can key an
// ordered map/set, per spec.
func (h EntityHandle) Less(o EntityHandle) bool {
	hv, ov := h.IsValid(), o.IsValid()
	if hv != ov {
		return !hv
	}
	if !hv {
		return false
	}
	return identityOf(h.e) < identityOf(o.e)
}

// identityOf returns a stable ordering key for any non-nil interface
// value backed by a pointer, which every Entity/IOInterface
// implementation in this module is.
func identityOf(v interface{}) uintptr {
	return reflect.ValueOf(v).Pointer()
}
