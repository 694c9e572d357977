// Package tick drives the fixed-rate update loops of the servers.
package tick

import (
	"context"
	"time"
)

// Run calls update with the elapsed milliseconds once per period until the context is canceled.
// It sleeps at most a millisecond at a time so cancellation and overdue
// updates are noticed quickly without spinning.
func Run(ctx context.Context, period time.Duration, update func(deltaMS int64)) {
	last := time.Now()
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return
		default:
		}
		delta := time.Since(last)
		if delta >= period {
			last = time.Now()
			update(delta.Milliseconds())
		}
		pause := period - delta
		if pause > time.Millisecond {
			pause = time.Millisecond
		}
		if pause > 0 {
			time.Sleep(pause)
		}
	}
}
