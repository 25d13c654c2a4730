package worker

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
)

type stepWorker struct {
	Conf    config.Worker
	Command *Command
	Event   *events.StepWriter
}

func (s *stepWorker) Run(ctx context.Context) error {
	// WaitGroup blocks return until the final log tail flush is written.
	var wg sync.WaitGroup
	defer wg.Wait()
	s.Event.StartTime(time.Now())

	// subctx helps ensure the tail goroutines are cleaned up,
	// even when the run is canceled.
	subctx, cleanup := context.WithCancel(context.Background())
	defer cleanup()

	done := make(chan error, 1)
	var stdout io.Writer
	var stderr io.Writer

	// Tail the stdout/err log streams.
	if s.Conf.LogTailSize > 0 {
		if s.Conf.LogUpdateRate > 0 {
			stdout, stderr = s.Event.StreamLogTail(subctx, s.Conf.LogTailSize, time.Duration(s.Conf.LogUpdateRate), &wg)
		} else {
			stdout, stderr = s.Event.LogTail(subctx, s.Conf.LogTailSize, &wg)
		}
	}

	// Capture stdout/err to the run's log files.
	if s.Command.Stdout != nil && stdout != nil {
		s.Command.Stdout = io.MultiWriter(s.Command.Stdout, stdout)
	} else if stdout != nil {
		s.Command.Stdout = stdout
	}
	if s.Command.Stderr != nil && stderr != nil {
		s.Command.Stderr = io.MultiWriter(s.Command.Stderr, stderr)
	} else if stderr != nil {
		s.Command.Stderr = stderr
	}

	go func() {
		done <- s.Command.Run()
	}()

	for {
		select {
		case <-ctx.Done():
			// Likely the run was canceled.
			s.Command.Stop()
			<-done
			s.Event.EndTime(time.Now())
			return ctx.Err()

		case result := <-done:
			s.Event.EndTime(time.Now())
			s.Event.ExitCode(getExitCode(result))
			return result
		}
	}
}
