package events

import (
	"context"
	"time"
)

// StepGenerator is a type that generates Events for a single step
// of a run.
type StepGenerator struct {
	runID string
	index int
	sys   *SystemLogGenerator
}

// NewStepGenerator returns a StepGenerator instance.
func NewStepGenerator(runID string, index int) *StepGenerator {
	return &StepGenerator{runID, index, &SystemLogGenerator{runID}}
}

// StartTime updates a step's start time log.
func (eg *StepGenerator) StartTime(t time.Time) *Event {
	return NewStepStartTime(eg.runID, eg.index, t)
}

// EndTime updates a step's end time log.
func (eg *StepGenerator) EndTime(t time.Time) *Event {
	return NewStepEndTime(eg.runID, eg.index, t)
}

// ExitCode updates a step's exit code log.
func (eg *StepGenerator) ExitCode(x int) *Event {
	return NewExitCode(eg.runID, eg.index, x)
}

// Stdout appends to a step's stdout log.
func (eg *StepGenerator) Stdout(s string) *Event {
	return NewStdout(eg.runID, eg.index, s)
}

// Stderr appends to a step's stderr log.
func (eg *StepGenerator) Stderr(s string) *Event {
	return NewStderr(eg.runID, eg.index, s)
}

// StepWriter is a type that generates and writes step events.
type StepWriter struct {
	gen *StepGenerator
	sys *SystemLogWriter
	out Writer
}

// NewStepWriter returns a StepWriter instance.
func NewStepWriter(runID string, index int, w Writer) *StepWriter {
	g := NewStepGenerator(runID, index)
	return &StepWriter{
		gen: g,
		out: w,
		sys: &SystemLogWriter{g.sys, w},
	}
}

// StartTime updates the step's start time log.
func (ew *StepWriter) StartTime(t time.Time) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.StartTime(t))
}

// EndTime updates the step's end time log.
func (ew *StepWriter) EndTime(t time.Time) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.EndTime(t))
}

// ExitCode updates the step's exit code log.
func (ew *StepWriter) ExitCode(x int) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.ExitCode(x))
}

// Stdout appends to the step's stdout log.
func (ew *StepWriter) Stdout(s string) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.Stdout(s))
}

// Stderr appends to the step's stderr log.
func (ew *StepWriter) Stderr(s string) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.Stderr(s))
}

// Info writes an info level system log message.
func (ew *StepWriter) Info(msg string, args ...interface{}) error {
	return ew.sys.Info(msg, args...)
}

// Error writes an error level system log message.
func (ew *StepWriter) Error(msg string, args ...interface{}) error {
	return ew.sys.Error(msg, args...)
}
