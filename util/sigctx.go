package util

import (
	"context"
	"os"
	"os/signal"
	"time"
)

// SignalContext returns a child context which is canceled when any of
// the given signals is received. The delay gives in-flight work a
// moment to notice the signal before cancellation, which matters when
// the scheduler sends SIGTERM shortly before killing the allocation.
func SignalContext(ctx context.Context, delay time.Duration, sigs ...os.Signal) context.Context {
	ch := make(chan os.Signal, 1)
	sub, cancel := context.WithCancel(ctx)
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case <-sub.Done():
		case <-ch:
			time.Sleep(delay)
			cancel()
		}
	}()

	return sub
}
