// Package config contains slaunch configuration structures and defaults.
package config

import (
	"github.com/hpcops/slaunch/logger"
)

// Config describes configuration for slaunch.
type Config struct {
	// Compute names the active submission backend: "slurm".
	Compute string
	Worker  Worker
	Modules Modules
	Slurm   Slurm
	// EventWriters lists the active event writers: "log", "boltdb".
	EventWriters EventWriters
	Database     Database
	Logger       logger.Config
}

// Worker configures the in-allocation step runner.
type Worker struct {
	// WorkDir is where run directories, rendered submit scripts and
	// the run database live.
	WorkDir string
	// Launcher is the argv prefix each step is launched under,
	// e.g. ["srun"]. Empty means steps are executed directly.
	Launcher []string
	// LogTailSize is the maximum number of bytes of step stdout/stderr
	// kept in memory and attached to step events.
	LogTailSize int64
	// LogUpdateRate is how often step log tails are flushed to the
	// event writers while a step runs.
	LogUpdateRate Duration
	Resources     Resources
}

// Resources describes the resources expected to be available to the
// runner. Zero values mean "detect from the host".
type Resources struct {
	Cpus  uint32
	RamGb float64
}

// Modules configures the environment module system used to prepare the
// step environment.
type Modules struct {
	// Command is the module system binary, e.g. "modulecmd".
	Command string
	// Shell is the shell dialect modulecmd emits, e.g. "sh".
	Shell string
	// BestEffort downgrades module load failures from run-fatal
	// errors to recorded warnings.
	BestEffort bool
}

// Slurm configures the SLURM submission backend.
type Slurm struct {
	SubmitCmd string
	CancelCmd string
	StatusCmd string
	// Template is the submit script template. See backend_templates.go
	// for the available fields.
	Template string
	// ReconcileRate is how often a submitted job's scheduler state
	// is polled while waiting for it.
	ReconcileRate Duration
}

// EventWriters configures which event writers are active.
type EventWriters struct {
	Active []string
}

// Database configures the embedded run database.
type Database struct {
	Path string
}
