package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is the frequency at which the clock is updated. I/O deadlines are measured in
// seconds, so a coarse resolution is precise enough for them.
const Resolution = 100 * time.Millisecond

var (
	millis = new(atomic.Int64)
	start  sync.Once
)

// Now returns the current time rounded down to Resolution. The clock is started lazily on
// the first call, which itself returns the precise time.
func Now() time.Time {
	start.Do(func() {
		millis.Store(time.Now().UnixMilli())

		go func() {
			for {
				time.Sleep(Resolution)
				millis.Store(time.Now().UnixMilli())
			}
		}()
	})

	return time.UnixMilli(millis.Load())
}

// Deadline returns a point in time timeout away from Now. Zero timeout means no deadline.
func Deadline(timeout time.Duration) time.Time {
	if timeout == 0 {
		return time.Time{}
	}

	return Now().Add(timeout)
}
