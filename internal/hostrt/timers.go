package hostrt

import (
	"sync"
	"time"
)

// Timers implements host.TimerSystem on top of time.AfterFunc. A timer with
// repetitions == 0 re-arms until removed.
type Timers struct {
	mutex  sync.Mutex
	timers map[string]*runningTimer
}

type runningTimer struct {
	timer   *time.Timer
	stopped bool
}

// NewTimers creates an empty timer system.
func NewTimers() *Timers {
	return &Timers{timers: make(map[string]*runningTimer)}
}

// CreateTimer schedules fn every interval for the given number of
// repetitions. Re-creating a key replaces the existing timer.
func (t *Timers) CreateTimer(key string, interval time.Duration, repetitions int, fn func()) {
	t.RemoveTimer(key)

	rt := &runningTimer{}
	remaining := repetitions

	var fire func()
	fire = func() {
		fn()

		t.mutex.Lock()
		defer t.mutex.Unlock()
		if rt.stopped {
			return
		}
		if repetitions > 0 {
			remaining--
			if remaining <= 0 {
				rt.stopped = true
				delete(t.timers, key)
				return
			}
		}
		rt.timer = time.AfterFunc(interval, fire)
	}

	t.mutex.Lock()
	rt.timer = time.AfterFunc(interval, fire)
	t.timers[key] = rt
	t.mutex.Unlock()
}

// RemoveTimer cancels the timer registered under key, if any.
func (t *Timers) RemoveTimer(key string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if rt, ok := t.timers[key]; ok {
		rt.stopped = true
		rt.timer.Stop()
		delete(t.timers, key)
	}
}

// Active reports whether a timer is currently registered under key.
func (t *Timers) Active(key string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	_, ok := t.timers[key]
	return ok
}
