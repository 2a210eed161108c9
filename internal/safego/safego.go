// Package safego provides panic-recovering goroutine launchers for background work.
package safego

import (
	"context"
	"log/slog"
	"time"
)

// Go launches fn in a new goroutine. A panic in fn is recovered and logged
// instead of crashing the process.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}

// Every runs fn once per interval until ctx is cancelled. Each tick is
// guarded separately, so a panicking tick is logged and the loop continues.
// Used for the DNS cache refresh and expired session sweeps.
func Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Debug("background loop stopped", "loop", name)
				return
			case <-ticker.C:
				runTick(ctx, name, fn)
			}
		}
	})
}

func runTick(ctx context.Context, name string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered panic in background loop", "loop", name, "panic", r)
		}
	}()
	fn(ctx)
}
