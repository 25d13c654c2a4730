package events

import (
	"context"

	"github.com/hpcops/slaunch/util"
)

// Retrier wraps a Writer with retries on failed writes.
type Retrier struct {
	*util.Retrier
	Writer Writer
}

func (r *Retrier) WriteEvent(ctx context.Context, e *Event) error {
	return r.Retry(ctx, func() error {
		return r.Writer.WriteEvent(ctx, e)
	})
}
