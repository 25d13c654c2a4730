package events

import (
	"time"

	"github.com/hpcops/slaunch/job"
)

// Type tags the kind of data an event carries.
type Type string

// Event types.
const (
	TypeCreated       Type = "RUN_CREATED"
	TypeState         Type = "RUN_STATE"
	TypeStartTime     Type = "RUN_START_TIME"
	TypeEndTime       Type = "RUN_END_TIME"
	TypeSchedulerID   Type = "SCHEDULER_ID"
	TypeStepStartTime Type = "STEP_START_TIME"
	TypeStepEndTime   Type = "STEP_END_TIME"
	TypeStepExitCode  Type = "STEP_EXIT_CODE"
	TypeStepStdout    Type = "STEP_STDOUT"
	TypeStepStderr    Type = "STEP_STDERR"
	TypeSystemLog     Type = "SYSTEM_LOG"
)

// Event describes a change to a run: state transitions, timing,
// step output, exit codes, and system logs.
type Event struct {
	RunID       string     `json:"runId"`
	Timestamp   string     `json:"timestamp"`
	Type        Type       `json:"type"`
	Index       int        `json:"index,omitempty"`
	Job         *job.Job   `json:"job,omitempty"`
	State       job.State  `json:"state,omitempty"`
	Time        string     `json:"time,omitempty"`
	ExitCode    int        `json:"exitCode,omitempty"`
	Stdout      string     `json:"stdout,omitempty"`
	Stderr      string     `json:"stderr,omitempty"`
	SchedulerID string     `json:"schedulerId,omitempty"`
	SystemLog   *SystemLog `json:"systemLog,omitempty"`
}

// SystemLog is a log message attached to a run.
type SystemLog struct {
	Msg    string            `json:"msg"`
	Level  string            `json:"level"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewRunCreated creates a run created event carrying the job document.
func NewRunCreated(runID string, j *job.Job) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeCreated,
		Job:       j,
	}
}

// NewState creates a state change event.
func NewState(runID string, s job.State) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeState,
		State:     s,
	}
}

// NewStartTime creates a run start time event.
func NewStartTime(runID string, t time.Time) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeStartTime,
		Time:      t.Format(time.RFC3339Nano),
	}
}

// NewEndTime creates a run end time event.
func NewEndTime(runID string, t time.Time) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeEndTime,
		Time:      t.Format(time.RFC3339Nano),
	}
}

// NewSchedulerID creates an event recording the scheduler's job ID.
func NewSchedulerID(runID, schedID string) *Event {
	return &Event{
		RunID:       runID,
		Timestamp:   time.Now().Format(time.RFC3339Nano),
		Type:        TypeSchedulerID,
		SchedulerID: schedID,
	}
}

// NewStepStartTime creates a step start time event
// for the step at the given index.
func NewStepStartTime(runID string, index int, t time.Time) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeStepStartTime,
		Index:     index,
		Time:      t.Format(time.RFC3339Nano),
	}
}

// NewStepEndTime creates a step end time event
// for the step at the given index.
func NewStepEndTime(runID string, index int, t time.Time) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeStepEndTime,
		Index:     index,
		Time:      t.Format(time.RFC3339Nano),
	}
}

// NewExitCode creates a step exit code event
// for the step at the given index.
func NewExitCode(runID string, index int, x int) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeStepExitCode,
		Index:     index,
		ExitCode:  x,
	}
}

// NewStdout creates a step stdout chunk event
// for the step at the given index.
func NewStdout(runID string, index int, s string) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeStepStdout,
		Index:     index,
		Stdout:    s,
	}
}

// NewStderr creates a step stderr chunk event
// for the step at the given index.
func NewStderr(runID string, index int, s string) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeStepStderr,
		Index:     index,
		Stderr:    s,
	}
}

// NewSystemLog creates a system log event.
func NewSystemLog(runID string, lvl string, msg string, fields map[string]string) *Event {
	return &Event{
		RunID:     runID,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      TypeSystemLog,
		SystemLog: &SystemLog{
			Msg:    msg,
			Level:  lvl,
			Fields: fields,
		},
	}
}
