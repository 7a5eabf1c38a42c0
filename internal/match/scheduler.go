package match

import (
	"sync"
	"time"
)

// Cancel stops a scheduled task. It is safe to call more than once and from
// inside the task itself.
type Cancel func()

// Scheduler runs callbacks later. Callbacks run on their own goroutine.
type Scheduler interface {
	Every(d time.Duration, fn func()) Cancel
	After(d time.Duration, fn func()) Cancel
}

// TimeScheduler is the wall-clock Scheduler.
type TimeScheduler struct{}

func (TimeScheduler) Every(d time.Duration, fn func()) Cancel {
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

func (TimeScheduler) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
