package events

import (
	"context"

	"github.com/hpcops/slaunch/logger"
)

// EventLogger writes events to a slaunch logger.
type EventLogger struct {
	Log logger.Logger
}

// NewEventLogger creates an event logger with the given namespace.
func NewEventLogger(name string) *EventLogger {
	return &EventLogger{logger.New(name)}
}

// WriteEvent writes an event to the logger.
func (el *EventLogger) WriteEvent(ctx context.Context, ev *Event) error {
	ts := string(ev.Type)
	log := el.Log.WithFields("runID", ev.RunID, "timestamp", ev.Timestamp)

	switch ev.Type {
	case TypeState:
		log.Info(ts, "state", ev.State)
	case TypeStartTime, TypeEndTime:
		log.Info(ts, "time", ev.Time)
	case TypeSchedulerID:
		log.Info(ts, "schedulerID", ev.SchedulerID)
	case TypeStepStartTime, TypeStepEndTime:
		log.Info(ts, "index", ev.Index, "time", ev.Time)
	case TypeStepExitCode:
		log.Info(ts, "index", ev.Index, "exitCode", ev.ExitCode)
	case TypeStepStdout:
		log.Info(ts, "index", ev.Index, "stdout", ev.Stdout)
	case TypeStepStderr:
		log.Info(ts, "index", ev.Index, "stderr", ev.Stderr)
	case TypeSystemLog:
		var args []interface{}
		for k, v := range ev.SystemLog.Fields {
			args = append(args, k, v)
		}
		switch ev.SystemLog.Level {
		case "error":
			log.Error(ev.SystemLog.Msg, args...)
		case "debug":
			log.Debug(ev.SystemLog.Msg, args...)
		default:
			log.Info(ev.SystemLog.Msg, args...)
		}
	default:
		log.Info(ts, "event", ev)
	}
	return nil
}
