// Package netio implements the entity and I/O handler runtime shared by
// TCP acceptors, TCP connectors, and UDP entities: connection
// establishment and teardown, message framing, a bounded per-handler
// send queue, and lifecycle notification through application-supplied
// callbacks.
//
// An application configures an entity in internal/tcpaccept,
// internal/tcpconnect, or internal/udpio and calls Start on its
// EntityHandle, providing an IOStateChangeFunc and an ErrorFunc. The
// entity arranges connectivity and invokes IOStateChangeFunc with an
// IOInterface each time a handler becomes ready; the application then
// calls one of the handler's StartIO variants to begin reading, with a
// MessageHandler and, for TCP, a framing policy. ErrorFunc fires on
// handler or entity termination with one of the stable error values
// declared in errors.go.
package netio
