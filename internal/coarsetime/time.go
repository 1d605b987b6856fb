// Package coarsetime is a clock refreshed every 25ms, for timestamps taken on
// every checkout and every command where time.Now() shows in profiles.
package coarsetime

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is the maximum lag of Now behind the wall clock.
const Resolution = 25 * time.Millisecond

var (
	current atomic.Pointer[time.Time]
	start   sync.Once
)

func refresh() {
	t := time.Now()
	current.Store(&t)
}

// Now returns the time of the last refresh.
// The refresh ticker starts on the first call.
func Now() time.Time {
	start.Do(func() {
		refresh()
		go func() {
			for range time.Tick(Resolution) {
				refresh()
			}
		}()
	})
	return *current.Load()
}
