// Package timer schedules one-shot and periodic callbacks (reconnect
// backoffs, keepalive watchdogs) without spawning a goroutine per pending
// timer. It completes the bucketed time wheel the teacher's
// internal/utils/timewheel package declared but never defined: that
// package's timer.go calls newTimeWheel() in an init() block, yet no such
// constructor exists anywhere in that package.
package timer

import (
	"container/list"
	"sync"
	"time"

	"github.com/kesh/netio/internal/recovery"
)

// TimeNoder cancels a single scheduled task. Stop is idempotent.
type TimeNoder interface {
	Stop()
}

// Timer schedules callbacks against a shared wheel.
type Timer interface {
	AfterFunc(expire time.Duration, callback func()) TimeNoder
	ScheduleFunc(expire time.Duration, callback func()) TimeNoder
	Run()
	Stop()
}

const (
	defaultSlotCount = 512
	defaultTick      = 10 * time.Millisecond
)

type wheelTask struct {
	callback func()
	interval time.Duration

	mu      sync.Mutex
	rounds  int
	removed bool
	w       *timeWheel
	slot    int
	elem    *list.Element
}

func (t *wheelTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.removed {
		return
	}
	t.removed = true
	t.w.remove(t)
}

type timeWheel struct {
	tick  time.Duration
	slots []*list.List

	mu  sync.Mutex
	cur int

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newTimeWheel() *timeWheel {
	return newTimeWheelWith(defaultSlotCount, defaultTick)
}

func newTimeWheelWith(slotCount int, tick time.Duration) *timeWheel {
	w := &timeWheel{
		tick:   tick,
		slots:  make([]*list.List, slotCount),
		stopCh: make(chan struct{}),
	}
	for i := range w.slots {
		w.slots[i] = list.New()
	}
	return w
}

func (w *timeWheel) schedule(expire time.Duration, callback func(), interval time.Duration) TimeNoder {
	if expire <= 0 {
		expire = w.tick
	}
	ticks := int(expire / w.tick)
	if ticks < 1 {
		ticks = 1
	}

	t := &wheelTask{callback: callback, interval: interval, w: w}

	w.mu.Lock()
	n := len(w.slots)
	slot := (w.cur + ticks) % n
	t.rounds = (ticks - 1) / n
	t.slot = slot
	t.elem = w.slots[slot].PushBack(t)
	w.mu.Unlock()

	return t
}

// AfterFunc runs callback once, after expire has elapsed.
func (w *timeWheel) AfterFunc(expire time.Duration, callback func()) TimeNoder {
	return w.schedule(expire, callback, 0)
}

// ScheduleFunc runs callback every expire interval until stopped.
func (w *timeWheel) ScheduleFunc(expire time.Duration, callback func()) TimeNoder {
	return w.schedule(expire, callback, expire)
}

func (w *timeWheel) remove(t *wheelTask) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t.elem != nil {
		w.slots[t.slot].Remove(t.elem)
		t.elem = nil
	}
}

// Run advances the wheel until Stop is called. Callers run it in its own
// goroutine.
func (w *timeWheel) Run() {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.advance()
		case <-w.stopCh:
			return
		}
	}
}

func (w *timeWheel) advance() {
	w.mu.Lock()
	slot := w.cur
	w.cur = (w.cur + 1) % len(w.slots)
	l := w.slots[slot]

	var ready []*wheelTask
	for e := l.Front(); e != nil; {
		next := e.Next()
		t := e.Value.(*wheelTask)

		t.mu.Lock()
		switch {
		case t.removed:
			t.mu.Unlock()
			l.Remove(e)
		case t.rounds > 0:
			t.rounds--
			t.mu.Unlock()
		default:
			t.mu.Unlock()
			ready = append(ready, t)
			l.Remove(e)
		}
		e = next
	}
	w.mu.Unlock()

	for _, t := range ready {
		go func(t *wheelTask) {
			defer recovery.Recover(func(error) {})
			t.callback()
		}(t)

		if t.interval <= 0 {
			continue
		}
		t.mu.Lock()
		removed := t.removed
		t.mu.Unlock()
		if !removed {
			// Re-arm the same task so the TimeNoder returned by
			// ScheduleFunc keeps controlling every later firing.
			ticks := int(t.interval / w.tick)
			if ticks < 1 {
				ticks = 1
			}
			w.mu.Lock()
			n := len(w.slots)
			t.slot = (w.cur + ticks) % n
			t.rounds = (ticks - 1) / n
			t.elem = w.slots[t.slot].PushBack(t)
			w.mu.Unlock()
		}
	}
}

// Stop halts the wheel's goroutine. Pending tasks are discarded.
func (w *timeWheel) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}
