package job

import "time"

// State is the lifecycle state of a run.
type State string

// Run lifecycle states.
const (
	Unknown      State = "UNKNOWN"
	Queued       State = "QUEUED"
	Initializing State = "INITIALIZING"
	Running      State = "RUNNING"
	Complete     State = "COMPLETE"
	// ExecutorError means one or more steps exited non-zero.
	ExecutorError State = "EXECUTOR_ERROR"
	// SystemError means the run failed before or outside of step
	// execution, such as a failed module load.
	SystemError State = "SYSTEM_ERROR"
	Canceled    State = "CANCELED"
)

// Done returns true for terminal states.
func (s State) Done() bool {
	switch s {
	case Complete, ExecutorError, SystemError, Canceled:
		return true
	}
	return false
}

// Active returns true for non-terminal, non-unknown states.
func (s State) Active() bool {
	switch s {
	case Queued, Initializing, Running:
		return true
	}
	return false
}

// Result is the aggregated outcome of one run of a job.
// The run is OK only if every step succeeded; this intentionally
// replaces the shell convention of inheriting the last command's
// exit status.
type Result struct {
	RunID       string
	JobName     string
	State       State
	SchedulerID string
	StartTime   time.Time
	EndTime     time.Time
	Steps       []StepResult
	SystemLogs  []string
}

// StepResult records the outcome of a single step.
type StepResult struct {
	Index      int
	Name       string
	Cmd        string
	Background bool
	StartTime  time.Time
	EndTime    time.Time
	ExitCode   int
	Error      string
	// Stdout and Stderr hold the tail of the step's output streams.
	// The full streams are written to files in the run's work directory.
	Stdout string
	Stderr string
}

// GetStep returns the step result at the given index,
// growing the step list if needed.
func (r *Result) GetStep(i int) *StepResult {
	for len(r.Steps) <= i {
		r.Steps = append(r.Steps, StepResult{Index: len(r.Steps)})
	}
	return &r.Steps[i]
}

// OK returns true if the run completed and every step exited zero.
func (r *Result) OK() bool {
	if r.State != Complete {
		return false
	}
	for _, s := range r.Steps {
		if s.ExitCode != 0 || s.Error != "" {
			return false
		}
	}
	return true
}
