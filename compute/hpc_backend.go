package compute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"text/template"
	"time"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
	"github.com/hpcops/slaunch/util"
)

// HPCBackend submits runs to an HPC scheduler such as Slurm,
// HTCondor, Grid Engine, etc.
type HPCBackend struct {
	Name      string
	SubmitCmd string
	CancelCmd string
	Template  string
	Conf      config.Config
	Event     events.Writer
	// ExtractID extracts the scheduler's job ID from the submit
	// command's stdout.
	ExtractID func(string) string
	// MapState queries the scheduler for the state of a job,
	// returning the mapped run state and the scheduler's own state
	// string.
	MapState func(ctx context.Context, schedID string) (job.State, string, error)
	// ReconcileRate is how often the scheduler state is polled by Wait.
	ReconcileRate time.Duration
}

// Submit submits a run via "sbatch", "qsub", "condor_submit", etc.
// It returns the scheduler's job ID.
func (b *HPCBackend) Submit(ctx context.Context, runID, jobPath string, j *job.Job) (string, error) {
	ev := events.NewRunWriter(runID, b.Event)

	submitPath, err := b.setupTemplatedSubmit(runID, jobPath, j)
	if err != nil {
		return "", err
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.SubmitCmd, submitPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		ev.State(job.SystemError)
		ev.Error("error submitting run to "+b.Name,
			"error", err.Error(), "stderr", stderr.String(), "stdout", stdout.String())
		return "", fmt.Errorf("%s submit failed: %v: %s", b.Name, err, stderr.String())
	}

	schedID := b.ExtractID(stdout.String())
	if schedID == "" {
		ev.State(job.SystemError)
		return "", fmt.Errorf("failed to extract %s job ID from %q", b.Name, stdout.String())
	}

	ev.SchedulerID(schedID)
	ev.State(job.Queued)
	return schedID, nil
}

// Cancel cancels a run via "scancel", "qdel", "condor_rm", etc.
func (b *HPCBackend) Cancel(ctx context.Context, runID, schedID string) error {
	if schedID == "" {
		return fmt.Errorf("failed to get %s job ID for run %s", b.Name, runID)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.CancelCmd, schedID)
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s cancel failed: %v: %s", b.Name, err, stderr.String())
	}

	return events.NewRunWriter(runID, b.Event).State(job.Canceled)
}

// State queries the scheduler for a run's state. Transient scheduler
// errors are retried.
func (b *HPCBackend) State(ctx context.Context, schedID string) (job.State, string, error) {
	if b.MapState == nil {
		return job.Unknown, "", fmt.Errorf("%s backend doesn't support state queries", b.Name)
	}

	var state job.State
	var raw string
	retrier := util.NewRetrier()
	retrier.MaxTries = 3
	err := retrier.Retry(ctx, func() error {
		var err error
		state, raw, err = b.MapState(ctx, schedID)
		return err
	})
	return state, raw, err
}

// Wait polls the scheduler until the run reaches a terminal state.
func (b *HPCBackend) Wait(ctx context.Context, schedID string) (job.State, error) {
	ticker := time.NewTicker(b.ReconcileRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return job.Unknown, ctx.Err()

		case <-ticker.C:
			state, raw, err := b.State(ctx, schedID)
			if err != nil {
				return job.Unknown, err
			}
			log.Debug("Polled scheduler state", "schedID", schedID, "state", state, "raw", raw)
			if state.Done() {
				return state, nil
			}
		}
	}
}

// setupTemplatedSubmit sets up a run submission in an HPC environment
// with a shared file system. It generates a submission file based on a
// template for schedulers such as SLURM, HTCondor, SGE, PBS/Torque, etc.
func (b *HPCBackend) setupTemplatedSubmit(runID, jobPath string, j *job.Job) (string, error) {
	var err error

	// TODO document that these working dirs need manual cleanup
	workdir := path.Join(b.Conf.Worker.WorkDir, runID)
	workdir, _ = filepath.Abs(workdir)
	err = util.EnsureDir(workdir)
	if err != nil {
		return "", err
	}

	confPath := path.Join(workdir, "slaunch.conf.yml")
	err = config.ToYamlFile(b.Conf, confPath)
	if err != nil {
		return "", err
	}

	jobPath, err = filepath.Abs(jobPath)
	if err != nil {
		return "", err
	}

	binaryPath, err := DetectBinaryPath()
	if err != nil {
		return "", err
	}

	submitPath := path.Join(workdir, fmt.Sprintf("%s.submit", b.Name))
	f, err := os.Create(submitPath)
	if err != nil {
		return "", err
	}

	err = b.renderSubmit(f, runID, workdir, confPath, jobPath, binaryPath, j)
	if err != nil {
		return "", err
	}
	f.Close()

	return submitPath, nil
}

// RenderSubmit renders the submit script that a submission of the
// given job would hand to the scheduler, without writing to the work
// dir or contacting the scheduler. Used by dry runs.
func (b *HPCBackend) RenderSubmit(w io.Writer, runID, jobPath string, j *job.Job) error {
	workdir, _ := filepath.Abs(path.Join(b.Conf.Worker.WorkDir, runID))
	confPath := path.Join(workdir, "slaunch.conf.yml")

	jobPath, err := filepath.Abs(jobPath)
	if err != nil {
		return err
	}

	binaryPath, err := DetectBinaryPath()
	if err != nil {
		return err
	}

	return b.renderSubmit(w, runID, workdir, confPath, jobPath, binaryPath, j)
}

func (b *HPCBackend) renderSubmit(w io.Writer, runID, workdir, confPath, jobPath, binaryPath string, j *job.Job) error {
	submitTpl, err := template.New(b.Name + ".submit").Parse(b.Template)
	if err != nil {
		return err
	}

	return submitTpl.Execute(w, map[string]interface{}{
		"RunID":      runID,
		"Executable": binaryPath,
		"Config":     confPath,
		"JobFile":    jobPath,
		"WorkDir":    workdir,
		"JobName":    j.Resources.JobName,
		"Nodes":      j.Resources.Nodes,
		"NTasks":     j.Resources.NTasks,
		"Gres":       j.Resources.Gres,
		"Partition":  j.Resources.Partition,
		"Time":       j.Resources.Time,
		"Memory":     j.Resources.Memory,
		"Stdout":     j.Resources.StdoutPath,
		"Stderr":     j.Resources.StderrPath,
	})
}
