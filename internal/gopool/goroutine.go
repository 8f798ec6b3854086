// Package gopool wraps a non-blocking ants.Pool used to dispatch work off
// of arbitrary caller goroutines — the Go analogue of "posting onto the
// executor" in the original design. Adapted from the teacher's
// pkg/pool/go/goroutine.go.
package gopool

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kesh/netio/log"
)

// DefaultPoolSize is the worker-pool capacity used unless overridden.
var DefaultPoolSize = 1 << 16

const (
	// expiryDuration is the interval at which idle workers are reaped.
	expiryDuration = 10 * time.Second
	// nonblocking controls what Submit does when the pool is saturated:
	// returns an error immediately rather than blocking the caller.
	nonblocking = true
)

type antsLogger struct{}

func (antsLogger) Printf(format string, a ...interface{}) {
	log.Errorf(format, a...)
}

func init() {
	// release ants' package-level default pool; netio manages its own.
	ants.Release()
}

// Pool is the alias of ants.Pool. The shared instance is created by Init,
// or with DefaultPoolSize on the first Submit.
type Pool = ants.Pool

var (
	mu     sync.Mutex
	global *Pool
)

// Init (re)creates the shared pool with capacity size. Calling Init more
// than once releases the previous pool first. Safe for concurrent use
// with Submit and Release.
func Init(size int) {
	mu.Lock()
	defer mu.Unlock()
	initLocked(size)
}

func initLocked(size int) {
	if global != nil {
		global.Release()
	}
	options := ants.Options{
		ExpiryDuration: expiryDuration,
		Nonblocking:    nonblocking,
		PanicHandler: func(err interface{}) {
			log.Errorf("panic on netio worker: %v\n%s", err, string(debug.Stack()))
		},
		Logger: antsLogger{},
	}
	global, _ = ants.NewPool(size, ants.WithOptions(options))
}

// Submit runs task on the shared pool, creating it with DefaultPoolSize
// if it has not been initialized. If the pool rejects the task (for
// example when saturated), it falls back to a bare goroutine so a Send
// call never blocks the caller.
func Submit(task func()) {
	mu.Lock()
	if global == nil {
		initLocked(DefaultPoolSize)
	}
	p := global
	mu.Unlock()

	if err := p.Submit(task); err != nil {
		log.Warnf("netio goroutine pool rejected task, running unpooled: %v", err)
		go task()
	}
}

// Release returns all idle workers in the shared pool to the runtime,
// without preventing future Submit calls from reinitializing it.
func Release() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.Release()
		global = nil
	}
}
