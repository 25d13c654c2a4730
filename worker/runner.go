package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
	"github.com/hpcops/slaunch/modules"
	"github.com/hpcops/slaunch/util"
)

// Runner executes a job's steps on the host it is started on,
// normally inside a scheduler allocation.
type Runner struct {
	Conf   config.Config
	Job    *job.Job
	RunID  string
	Event  events.Writer
	Loader *modules.Loader
}

// NewRunner returns a Runner for the given job, writing events to w.
func NewRunner(conf config.Config, j *job.Job, runID string, w events.Writer) *Runner {
	return &Runner{
		Conf:   conf,
		Job:    j,
		RunID:  runID,
		Event:  w,
		Loader: modules.NewLoader(conf.Modules, log),
	}
}

// Run runs the job and returns its aggregated result. The run succeeds
// only if the environment was prepared and every step exited zero; a
// failed step is recorded and the remaining steps still run.
func (r *Runner) Run(pctx context.Context) *job.Result {

	// The steps are:
	// - prepare the working directory
	// - load the requested environment modules
	// - open the stdout/stderr logs and print the banner
	// - run the steps, background steps concurrently
	// - wait for background steps and aggregate the result

	res := &job.Result{
		RunID:   r.RunID,
		JobName: r.Job.Resources.JobName,
		State:   job.Initializing,
	}
	out := events.MultiWriter(events.NewResultBuilder(res), r.Event)
	ev := events.NewRunWriter(r.RunID, out)
	rlog := log.WithFields("runID", r.RunID, "jobName", r.Job.Resources.JobName)

	var run helper
	var stepErrs *multierror.Error
	var mtx sync.Mutex

	ev.Created(r.Job)
	ev.StartTime(time.Now())

	// Run the final logging/state steps in a deferred function
	// to ensure they always run, even if there's a missed error.
	defer func() {
		ev.EndTime(time.Now())

		switch {
		case run.runCanceled:
			ev.State(job.Canceled)
		case run.execerr != nil:
			// One or more steps failed.
			ev.Error("Run failed", "error", run.execerr)
			ev.State(job.ExecutorError)
		case run.syserr != nil:
			// Something failed before or outside of step execution.
			ev.Error("Run failed", "error", run.syserr)
			ev.State(job.SystemError)
		default:
			ev.State(job.Complete)
		}
	}()

	// Recover from panics
	defer handlePanic(func(e error) {
		run.syserr = e
	})

	ctx, cancel := context.WithCancel(pctx)
	defer cancel()
	run.ctx = ctx

	// Seed the step results so the final result lists every step,
	// including steps that never got to run.
	for i, st := range r.Job.Steps {
		s := res.GetStep(i)
		s.Name = st.Name
		s.Cmd = st.Run
		s.Background = st.Background
	}

	// Create working dir
	var dir string
	if run.ok() {
		dir, run.syserr = filepath.Abs(r.Conf.Worker.WorkDir)
	}
	if run.ok() {
		run.syserr = util.EnsureDir(path.Join(dir, r.RunID))
	}

	if run.ok() {
		avail := detectResources(r.Conf.Worker)
		rlog.Info("Host resources", "cpus", avail.Cpus, "ramGb", avail.RamGb)
		checkResources(r.Job.Resources, avail, ev)
	}

	// Load environment modules. A failed load is a system error,
	// unless module loading is configured as best effort. The loaded
	// environment is scoped to the step commands.
	var stepEnv []string
	if run.ok() {
		run.syserr = r.Loader.LoadAll(ctx, r.Job.Modules)
	}
	if run.ok() {
		stepEnv = r.Loader.Environ()
	}

	// Open stdout/stderr logs. Under an allocation the scheduler
	// already redirects our stdout/stderr to the requested files.
	var stdout, stderr io.Writer
	if run.ok() {
		var closer func()
		stdout, stderr, closer, run.syserr = r.openLogs()
		if closer != nil {
			defer closer()
		}
	}

	if run.ok() && r.Job.Banner != "" {
		fmt.Fprintln(stdout, r.Job.Banner)
	}

	if run.ok() {
		ev.State(job.Running)
	}

	// Run steps. Background steps run concurrently and are waited on
	// after the sequential steps finish.
	launcher := r.stepLauncher()
	bg := &runSet{}
	for i, st := range r.Job.Steps {
		if !run.ok() {
			break
		}

		argv, err := st.Argv()
		if err != nil {
			run.syserr = err
			break
		}

		s := &stepWorker{
			Conf: r.Conf.Worker,
			Command: &Command{
				Argv:     argv,
				Launcher: launcher,
				Env:      stepEnv,
				Stdout:   stdout,
				Stderr:   stderr,
			},
			Event: ev.NewStepWriter(i),
		}
		rlog.Info("Running step", "step", i, "cmd", s.Command.String())

		record := func(i int, err error) {
			mtx.Lock()
			defer mtx.Unlock()
			res.GetStep(i).Error = err.Error()
			stepErrs = multierror.Append(stepErrs,
				fmt.Errorf("step %d (%s): %v", i, res.GetStep(i).Name, err))
		}

		if st.Background {
			i := i
			bg.Add(strconv.Itoa(i), func(context.Context, string) {
				err := s.Run(ctx)
				if err != nil && ctx.Err() == nil {
					record(i, err)
				}
			})
			continue
		}

		err = s.Run(ctx)
		if err != nil && ctx.Err() == nil {
			// A failed step doesn't stop the run; it is recorded
			// and the remaining steps still execute.
			record(i, err)
		}
	}

	// Wait for background steps to finish.
	bg.Wait()

	if err := stepErrs.ErrorOrNil(); err != nil {
		run.execerr = err
	}
	// Refresh cancellation state in case it happened during the
	// last step or the background wait.
	run.ok()

	return res
}

// stepLauncher returns the launcher argv prefix for steps. The prefix
// is only used inside a scheduler allocation; a standalone run executes
// steps directly.
func (r *Runner) stepLauncher() []string {
	if underAllocation() {
		return r.Conf.Worker.Launcher
	}
	return nil
}

// openLogs returns the stdout/stderr writers for the run's steps.
// Inside an allocation the scheduler already redirects process output
// to the files requested at submission, so the process streams are
// used as-is. A standalone run opens the requested files itself.
func (r *Runner) openLogs() (io.Writer, io.Writer, func(), error) {
	if underAllocation() {
		return os.Stdout, os.Stderr, nil, nil
	}

	stdout, err := openLogFile(r.Job.Resources.StdoutPath)
	if err != nil {
		return nil, nil, nil, err
	}
	stderr, err := openLogFile(r.Job.Resources.StderrPath)
	if err != nil {
		stdout.Close()
		return nil, nil, nil, err
	}
	closer := func() {
		stdout.Close()
		stderr.Close()
	}
	return stdout, stderr, closer, nil
}

func openLogFile(p string) (*os.File, error) {
	if err := util.EnsurePath(p); err != nil {
		return nil, err
	}
	return os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// underAllocation returns true when running inside a SLURM allocation.
func underAllocation() bool {
	return os.Getenv("SLURM_JOB_ID") != ""
}
