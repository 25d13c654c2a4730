package events

import "context"

// Writer provides write access to a run's events.
type Writer interface {
	WriteEvent(ctx context.Context, ev *Event) error
}

type multiwriter []Writer

// MultiWriter writes events to all the given writers.
func MultiWriter(ws ...Writer) Writer {
	return multiwriter(ws)
}

// WriteEvent writes an event to all the writers.
func (mw multiwriter) WriteEvent(ctx context.Context, ev *Event) error {
	for _, w := range mw {
		err := w.WriteEvent(ctx, ev)
		if err != nil {
			return err
		}
	}
	return nil
}

type discard struct{}

func (discard) WriteEvent(context.Context, *Event) error {
	return nil
}

// Discard is a writer which discards all events.
var Discard = discard{}
