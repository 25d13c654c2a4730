package slurm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/hpcops/slaunch/compute"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
)

// NewBackend returns a new Slurm HPCBackend instance.
func NewBackend(conf config.Config, writer events.Writer) *compute.HPCBackend {
	b := &compute.HPCBackend{
		Name:          "slurm",
		SubmitCmd:     conf.Slurm.SubmitCmd,
		CancelCmd:     conf.Slurm.CancelCmd,
		Conf:          conf,
		Template:      conf.Slurm.Template,
		Event:         writer,
		ExtractID:     extractID,
		MapState:      stateMapper(conf.Slurm.StatusCmd),
		ReconcileRate: time.Duration(conf.Slurm.ReconcileRate),
	}
	return b
}

// extractID extracts the job id from the response returned by the `sbatch` command.
// Example response:
// Submitted batch job 2
func extractID(in string) string {
	re := regexp.MustCompile(`Submitted batch job ([0-9]+)`)
	m := re.FindStringSubmatch(in)
	if m == nil {
		return ""
	}
	return m[1]
}

// stateMapper returns a state query function backed by the given
// status command, normally "sacct".
func stateMapper(statusCmd string) func(ctx context.Context, schedID string) (job.State, string, error) {
	return func(ctx context.Context, schedID string) (job.State, string, error) {
		var stdout bytes.Buffer
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, statusCmd,
			"-j", schedID, "--format=State", "--noheader", "--parsable2")
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		if err != nil {
			return job.Unknown, "", fmt.Errorf("%s failed: %v: %s", statusCmd, err, stderr.String())
		}

		raw := firstLine(stdout.String())
		return mapState(raw), raw, nil
	}
}

// mapState maps a slurm job state to a run state.
func mapState(raw string) job.State {
	// "CANCELLED by 1000" and similar carry a suffix.
	state := strings.Fields(raw)
	if len(state) == 0 {
		// sacct can lag behind sbatch; report the run as still queued.
		return job.Queued
	}

	switch state[0] {
	case "PENDING", "REQUEUED", "RESIZING", "SUSPENDED":
		return job.Queued
	case "RUNNING", "COMPLETING":
		return job.Running
	case "COMPLETED":
		return job.Complete
	case "FAILED":
		return job.ExecutorError
	case "TIMEOUT", "OUT_OF_MEMORY", "NODE_FAIL", "BOOT_FAIL", "DEADLINE", "PREEMPTED":
		return job.SystemError
	case "CANCELLED":
		return job.Canceled
	}
	return job.Unknown
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
