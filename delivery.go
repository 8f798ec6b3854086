package netio

// IOStateChangeData is the payload delivered to a channel-based waiter:
// the I/O interface, the handler count at the time of the event, and
// whether it is a start (true) or stop (false) transition. It mirrors
// the original design's io_state_chg_data, substituting a channel for
// the wait_queue it used to carry the same tuple.
type IOStateChangeData struct {
	IO           IOInterface
	HandlerCount uint
	Starting     bool
}

func orEmptyErrorFunc(f ErrorFunc) ErrorFunc {
	if f != nil {
		return f
	}
	return func(IOInterface, error, uint) {}
}

// WaitForIO starts handle and returns a channel that receives the
// handler's IOInterface exactly once, as soon as it becomes ready.
// Appropriate for a TCP connector or a UDP entity, where io-state-change
// fires once per connect/open cycle; a TCP acceptor fires many times
// over its lifetime and should use IOStateChangeQueue instead.
//
// This is the channel-based analogue of the original design's
// make_tcp_io_interface_future / make_udp_io_interface_future, built on
// a buffered channel rather than a std::promise/std::future pair since
// Go's idiomatic one-shot handoff is a channel.
func WaitForIO(handle EntityHandle, errFunc ErrorFunc) (<-chan IOInterface, bool, error) {
	ch := make(chan IOInterface, 1)
	started, err := handle.Start(func(io IOInterface, _ uint, starting bool) {
		if starting {
			select {
			case ch <- io:
			default:
			}
		}
	}, orEmptyErrorFunc(errFunc))
	return ch, started, err
}

// WaitForIOPair is WaitForIO plus a second channel that receives the
// same IOInterface again when the handler stops, the analogue of
// make_tcp_io_interface_future_pair / make_udp_io_interface_future_pair.
func WaitForIOPair(handle EntityHandle, errFunc ErrorFunc) (start, stop <-chan IOInterface, started bool, err error) {
	startCh := make(chan IOInterface, 1)
	stopCh := make(chan IOInterface, 1)
	started, err = handle.Start(func(io IOInterface, _ uint, starting bool) {
		target := startCh
		if !starting {
			target = stopCh
		}
		select {
		case target <- io:
		default:
		}
	}, orEmptyErrorFunc(errFunc))
	return startCh, stopCh, started, err
}

// IOStateChangeQueue starts handle and returns a channel that receives
// every io-state-change event for its lifetime — both handler-ready and
// handler-stopped transitions. Use this for a TCP acceptor, whose
// io-state-change callback fires once per accepted connection and once
// per connection teardown, a sequence a single-shot channel cannot carry.
// The channel buffers 64 events; an event arriving while 64 are still
// unread is dropped.
// ioStart, if non-nil, still runs synchronously on each start transition
// before the event is queued, mirroring start_with_wait_queue's
// immediate call to the user's start_io function object.
func IOStateChangeQueue(handle EntityHandle, ioStart IOStateChangeFunc, errFunc ErrorFunc) (<-chan IOStateChangeData, bool, error) {
	ch := make(chan IOStateChangeData, 64)
	if ioStart == nil {
		ioStart = func(IOInterface, uint, bool) {}
	}
	started, err := handle.Start(func(io IOInterface, count uint, starting bool) {
		if starting {
			ioStart(io, count, starting)
		}
		select {
		case ch <- IOStateChangeData{IO: io, HandlerCount: count, Starting: starting}:
		default:
		}
	}, orEmptyErrorFunc(errFunc))
	return ch, started, err
}
