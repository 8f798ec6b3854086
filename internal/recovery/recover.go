// Package recovery protects read-loop and message-handler invocations from
// a panic escaping into a goroutine nothing else is watching, adapted from
// the teacher's internal/utils/recovery package.
package recovery

import (
	"runtime/debug"

	"github.com/kesh/netio/internal/errorsx"
)

// Do runs fn and converts any panic into an error return.
func Do(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errorsx.New("panic: %v\nstack: %s", p, string(debug.Stack()))
		}
	}()
	return fn()
}

// Recover must be deferred directly; if a panic is in flight it calls fn
// with the converted error instead of letting the panic propagate.
func Recover(fn func(err error)) {
	if p := recover(); p != nil {
		fn(errorsx.New("panic: %v\nstack: %s", p, string(debug.Stack())))
	}
}
