package session

import (
	"time"

	"github.com/dshills/modal/internal/input/dispatch"
)

// loopScheduler delivers timer callbacks onto the session loop instead of
// running them on the timer's goroutine.
type loopScheduler struct {
	posted chan<- func()
	done   <-chan struct{}
}

func (s loopScheduler) AfterFunc(d time.Duration, fn func()) dispatch.Timer {
	return time.AfterFunc(d, func() {
		select {
		case s.posted <- fn:
		case <-s.done:
		}
	})
}
