package events

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/armon/circbuf"
)

// StreamLogTail returns stdout/stderr io.Writers which tail the step's
// output streams, writing the buffered tail as stdout/stderr events at
// the given rate. Only the last "size" bytes between flushes are kept.
// The returned writers are flushed one last time when ctx is canceled;
// the WaitGroup tracks that final flush.
func (ew *StepWriter) StreamLogTail(ctx context.Context, size int64, rate time.Duration, wg *sync.WaitGroup) (io.Writer, io.Writer) {
	stdout := newTailer(size, func(chunk string) {
		ew.Stdout(chunk)
	})
	stderr := newTailer(size, func(chunk string) {
		ew.Stderr(chunk)
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(rate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				stdout.Flush()
				stderr.Flush()
				return
			case <-ticker.C:
				stdout.Flush()
				stderr.Flush()
			}
		}
	}()
	return stdout, stderr
}

// LogTail returns stdout/stderr writers which buffer only the last
// "size" bytes, flushed once when ctx is canceled.
func (ew *StepWriter) LogTail(ctx context.Context, size int64, wg *sync.WaitGroup) (io.Writer, io.Writer) {
	stdout := newTailer(size, func(chunk string) {
		ew.Stdout(chunk)
	})
	stderr := newTailer(size, func(chunk string) {
		ew.Stderr(chunk)
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		stdout.Flush()
		stderr.Flush()
	}()
	return stdout, stderr
}

func newTailer(size int64, out func(string)) *tailer {
	// NewBuffer only errors on a non-positive size.
	if size <= 0 {
		size = 1024
	}
	buf, _ := circbuf.NewBuffer(size)
	return &tailer{buf: buf, out: out}
}

// tailer writes the tail of a stream to a flush function.
type tailer struct {
	out func(string)
	buf *circbuf.Buffer
	mtx sync.Mutex
}

func (t *tailer) Write(b []byte) (int, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.buf.Write(b)
}

func (t *tailer) Flush() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.buf.TotalWritten() > 0 {
		t.out(t.buf.String())
		t.buf.Reset()
	}
}
