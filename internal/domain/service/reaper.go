package service

import (
	"sync"
	"time"
)

// stopper is the part of *time.Timer the reaper needs.
type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type reaperTask struct {
	id    uint64
	timer stopper
}

// TimeoutReaper owns one expiry timer per session key. A timer that fires
// after being disarmed or re-armed is ignored.
type TimeoutReaper struct {
	mu        sync.Mutex
	tasks     map[string]reaperTask
	seq       uint64
	afterFunc afterFunc
}

func NewTimeoutReaper() *TimeoutReaper {
	return &TimeoutReaper{
		tasks:     make(map[string]reaperTask),
		afterFunc: realAfterFunc,
	}
}

// Arm schedules fire to run once after window unless Disarm is called first.
// Re-arming a key replaces its previous timer.
func (r *TimeoutReaper) Arm(key string, window time.Duration, fire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.tasks[key]; ok {
		prev.timer.Stop()
	}
	r.seq++
	id := r.seq
	r.tasks[key] = reaperTask{
		id: id,
		timer: r.afterFunc(window, func() {
			if r.claim(key, id) {
				fire()
			}
		}),
	}
}

// claim removes the task if it is still the current one for key.
func (r *TimeoutReaper) claim(key string, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tasks[key]
	if !ok || current.id != id {
		return false
	}
	delete(r.tasks, key)
	return true
}

// Disarm cancels the timer for key and reports whether one was armed.
func (r *TimeoutReaper) Disarm(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(r.tasks, key)
	return true
}

func (r *TimeoutReaper) Armed(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[key]
	return ok
}

// StopAll disarms every timer and returns the keys that were armed.
func (r *TimeoutReaper) StopAll() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.tasks))
	for key, task := range r.tasks {
		task.timer.Stop()
		keys = append(keys, key)
	}
	clear(r.tasks)
	return keys
}
