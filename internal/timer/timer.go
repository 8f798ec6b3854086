package timer

import (
	"sync"
	"time"
)

// Default is the process-wide wheel used by reconnect backoff and
// keepalive watchdogs. It starts lazily on first use.
var Default Timer

var once sync.Once

func ensureDefault() {
	once.Do(func() {
		w := newTimeWheel()
		Default = w
		go w.Run()
	})
}

// AfterFunc schedules callback to run once after expire has elapsed.
func AfterFunc(expire time.Duration, callback func()) TimeNoder {
	ensureDefault()
	return Default.AfterFunc(expire, callback)
}

// ScheduleFunc schedules callback to run every expire interval.
func ScheduleFunc(expire time.Duration, callback func()) TimeNoder {
	ensureDefault()
	return Default.ScheduleFunc(expire, callback)
}
