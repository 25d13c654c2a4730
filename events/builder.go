package events

import (
	"context"
	"sync"
	"time"

	"github.com/hpcops/slaunch/job"
)

// ResultBuilder aggregates events into an in-memory Result object.
// Writes are serialized, so foreground and background steps can report
// through the same builder.
type ResultBuilder struct {
	res *job.Result
	mtx sync.Mutex
}

// NewResultBuilder returns a ResultBuilder which updates the given
// Result object.
func NewResultBuilder(res *job.Result) *ResultBuilder {
	return &ResultBuilder{res: res}
}

// WriteEvent updates the Result object.
func (rb *ResultBuilder) WriteEvent(ctx context.Context, ev *Event) error {
	rb.mtx.Lock()
	defer rb.mtx.Unlock()

	r := rb.res
	r.RunID = ev.RunID

	switch ev.Type {
	case TypeCreated:
		if ev.Job != nil {
			r.JobName = ev.Job.Resources.JobName
		}
		r.State = job.Queued

	case TypeState:
		r.State = ev.State

	case TypeStartTime:
		r.StartTime = parseTime(ev.Time)

	case TypeEndTime:
		r.EndTime = parseTime(ev.Time)

	case TypeSchedulerID:
		r.SchedulerID = ev.SchedulerID

	case TypeStepStartTime:
		r.GetStep(ev.Index).StartTime = parseTime(ev.Time)

	case TypeStepEndTime:
		r.GetStep(ev.Index).EndTime = parseTime(ev.Time)

	case TypeStepExitCode:
		r.GetStep(ev.Index).ExitCode = ev.ExitCode

	case TypeStepStdout:
		r.GetStep(ev.Index).Stdout += ev.Stdout

	case TypeStepStderr:
		r.GetStep(ev.Index).Stderr += ev.Stderr

	case TypeSystemLog:
		r.SystemLogs = append(r.SystemLogs, ev.SysLogString())
	}

	return nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
