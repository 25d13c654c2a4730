package events

import (
	"context"
	"time"

	"github.com/hpcops/slaunch/job"
)

// RunGenerator is a type that generates Events for a given run.
type RunGenerator struct {
	runID string
	sys   *SystemLogGenerator
}

// NewRunGenerator creates a RunGenerator instance.
func NewRunGenerator(runID string) *RunGenerator {
	return &RunGenerator{runID, &SystemLogGenerator{runID}}
}

// State sets the state of the run.
func (eg *RunGenerator) State(s job.State) *Event {
	return NewState(eg.runID, s)
}

// StartTime updates the run's start time log.
func (eg *RunGenerator) StartTime(t time.Time) *Event {
	return NewStartTime(eg.runID, t)
}

// EndTime updates the run's end time log.
func (eg *RunGenerator) EndTime(t time.Time) *Event {
	return NewEndTime(eg.runID, t)
}

// SchedulerID records the scheduler's ID for the run's batch job.
func (eg *RunGenerator) SchedulerID(id string) *Event {
	return NewSchedulerID(eg.runID, id)
}

// Info creates an info level system log message.
func (eg *RunGenerator) Info(msg string, args ...interface{}) *Event {
	return eg.sys.Info(msg, args...)
}

// Debug creates a debug level system log message.
func (eg *RunGenerator) Debug(msg string, args ...interface{}) *Event {
	return eg.sys.Debug(msg, args...)
}

// Error creates an error level system log message.
func (eg *RunGenerator) Error(msg string, args ...interface{}) *Event {
	return eg.sys.Error(msg, args...)
}

// Warn creates a warning level system log message.
func (eg *RunGenerator) Warn(msg string, args ...interface{}) *Event {
	return eg.sys.Warn(msg, args...)
}

// RunWriter is a type that generates and writes run events.
type RunWriter struct {
	gen *RunGenerator
	sys *SystemLogWriter
	out Writer
}

// NewRunWriter returns a RunWriter instance.
func NewRunWriter(runID string, w Writer) *RunWriter {
	g := NewRunGenerator(runID)
	return &RunWriter{
		gen: g,
		out: w,
		sys: &SystemLogWriter{g.sys, w},
	}
}

// Created writes a run created event carrying the job document.
func (ew *RunWriter) Created(j *job.Job) error {
	return ew.out.WriteEvent(context.Background(), NewRunCreated(ew.gen.runID, j))
}

// State sets the state of the run.
func (ew *RunWriter) State(s job.State) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.State(s))
}

// StartTime updates the run's start time log.
func (ew *RunWriter) StartTime(t time.Time) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.StartTime(t))
}

// EndTime updates the run's end time log.
func (ew *RunWriter) EndTime(t time.Time) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.EndTime(t))
}

// SchedulerID records the scheduler's ID for the run's batch job.
func (ew *RunWriter) SchedulerID(id string) error {
	return ew.out.WriteEvent(context.Background(), ew.gen.SchedulerID(id))
}

// Info writes an info level system log message.
func (ew *RunWriter) Info(msg string, args ...interface{}) error {
	return ew.sys.Info(msg, args...)
}

// Debug writes a debug level system log message.
func (ew *RunWriter) Debug(msg string, args ...interface{}) error {
	return ew.sys.Debug(msg, args...)
}

// Error writes an error level system log message.
func (ew *RunWriter) Error(msg string, args ...interface{}) error {
	return ew.sys.Error(msg, args...)
}

// Warn writes a warning level system log message.
func (ew *RunWriter) Warn(msg string, args ...interface{}) error {
	return ew.sys.Warn(msg, args...)
}

// NewStepWriter returns a StepWriter for the step at the given index,
// writing to the same underlying writer.
func (ew *RunWriter) NewStepWriter(index int) *StepWriter {
	return NewStepWriter(ew.gen.runID, index, ew.out)
}
