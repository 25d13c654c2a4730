package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
)

func testConf(t *testing.T) config.Config {
	t.Helper()
	// Ensure the runner doesn't think it's inside an allocation.
	t.Setenv("SLURM_JOB_ID", "")

	conf := config.DefaultConfig()
	conf.Worker.WorkDir = t.TempDir()
	conf.Worker.LogUpdateRate = config.Duration(time.Millisecond * 10)
	return conf
}

func testJob(t *testing.T, steps ...job.Step) *job.Job {
	t.Helper()
	dir := t.TempDir()
	return &job.Job{
		Banner: "Hello",
		Resources: job.Resources{
			Nodes:      1,
			JobName:    "test-job",
			StdoutPath: filepath.Join(dir, "stdout.txt"),
			StderrPath: filepath.Join(dir, "stderr.txt"),
		},
		Steps: steps,
	}
}

func TestRunnerSuccess(t *testing.T) {
	conf := testConf(t)
	j := testJob(t,
		job.Step{Name: "one", Run: "echo one"},
		job.Step{Name: "two", Run: "echo two"},
	)

	r := NewRunner(conf, j, "run-1", events.Discard)
	res := r.Run(context.Background())

	if res.State != job.Complete {
		t.Fatalf("unexpected state: %s", res.State)
	}
	if !res.OK() {
		t.Error("expected result to be OK")
	}
	if len(res.Steps) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(res.Steps))
	}
	for _, s := range res.Steps {
		if s.ExitCode != 0 {
			t.Errorf("unexpected exit code for step %d: %d", s.Index, s.ExitCode)
		}
		if s.StartTime.IsZero() || s.EndTime.IsZero() {
			t.Errorf("expected start/end times for step %d", s.Index)
		}
	}

	b, err := os.ReadFile(j.Resources.StdoutPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Hello\none\ntwo\n" {
		t.Errorf("unexpected stdout content: %q", string(b))
	}
}

func TestRunnerFailedStepKeepsGoing(t *testing.T) {
	conf := testConf(t)
	j := testJob(t,
		job.Step{Name: "fail", Run: `sh -c "exit 3"`},
		job.Step{Name: "after", Run: "echo after"},
	)

	r := NewRunner(conf, j, "run-1", events.Discard)
	res := r.Run(context.Background())

	if res.State != job.ExecutorError {
		t.Fatalf("unexpected state: %s", res.State)
	}
	if res.OK() {
		t.Error("expected result to not be OK")
	}
	if res.Steps[0].ExitCode != 3 {
		t.Errorf("unexpected exit code: %d", res.Steps[0].ExitCode)
	}
	if res.Steps[0].Error == "" {
		t.Error("expected step error to be recorded")
	}

	// The failed step doesn't stop the remaining steps.
	b, err := os.ReadFile(j.Resources.StdoutPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "after") {
		t.Error("expected the step after the failure to run")
	}
}

func TestRunnerBackgroundStep(t *testing.T) {
	conf := testConf(t)
	j := testJob(t,
		job.Step{Name: "bg", Run: `sh -c "sleep 0.2; echo bg"`, Background: true},
		job.Step{Name: "fg", Run: "echo fg"},
	)

	r := NewRunner(conf, j, "run-1", events.Discard)
	res := r.Run(context.Background())

	if res.State != job.Complete {
		t.Fatalf("unexpected state: %s", res.State)
	}

	// The run waits for background steps before finishing.
	b, err := os.ReadFile(j.Resources.StdoutPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "bg") {
		t.Error("expected background step output")
	}
	if !strings.Contains(string(b), "fg") {
		t.Error("expected foreground step output")
	}
}

func TestRunnerBackgroundStepFailure(t *testing.T) {
	conf := testConf(t)
	j := testJob(t,
		job.Step{Name: "bg", Run: `sh -c "exit 7"`, Background: true},
		job.Step{Name: "fg", Run: "echo fg"},
	)

	r := NewRunner(conf, j, "run-1", events.Discard)
	res := r.Run(context.Background())

	if res.State != job.ExecutorError {
		t.Fatalf("unexpected state: %s", res.State)
	}
	if res.Steps[0].ExitCode != 7 {
		t.Errorf("unexpected exit code: %d", res.Steps[0].ExitCode)
	}
}

func TestRunnerModuleFailure(t *testing.T) {
	conf := testConf(t)
	conf.Modules.Command = "/does/not/exist/modulecmd"
	j := testJob(t, job.Step{Name: "one", Run: "echo one"})
	j.Modules = []string{"cuda/11.1"}

	r := NewRunner(conf, j, "run-1", events.Discard)
	res := r.Run(context.Background())

	if res.State != job.SystemError {
		t.Fatalf("unexpected state: %s", res.State)
	}
	// Steps never ran.
	if _, err := os.Stat(j.Resources.StdoutPath); !os.IsNotExist(err) {
		t.Error("expected no stdout file")
	}
}

func TestRunnerCancel(t *testing.T) {
	conf := testConf(t)
	j := testJob(t, job.Step{Name: "slow", Run: "sleep 10"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond * 100)
		cancel()
	}()

	r := NewRunner(conf, j, "run-1", events.Discard)
	start := time.Now()
	res := r.Run(ctx)

	if res.State != job.Canceled {
		t.Fatalf("unexpected state: %s", res.State)
	}
	if time.Since(start) > time.Second*5 {
		t.Error("cancel should have killed the step")
	}
}

// Foreground and background steps report events concurrently through
// the shared result; run a chatty pair to exercise that path.
func TestRunnerConcurrentStepEvents(t *testing.T) {
	conf := testConf(t)
	conf.Worker.LogTailSize = 1000
	j := testJob(t,
		job.Step{Name: "bg", Run: `sh -c "i=0; while [ $i -lt 200 ]; do echo bg $i; i=$((i+1)); done"`, Background: true},
		job.Step{Name: "fg", Run: `sh -c "i=0; while [ $i -lt 200 ]; do echo fg $i; i=$((i+1)); done"`},
	)

	r := NewRunner(conf, j, "run-1", events.Discard)
	res := r.Run(context.Background())

	if res.State != job.Complete {
		t.Fatalf("unexpected state: %s", res.State)
	}
	if !res.OK() {
		t.Error("expected result to be OK")
	}
	if res.Steps[0].Stdout == "" || res.Steps[1].Stdout == "" {
		t.Error("expected stdout tails for both steps")
	}
}

// A request beyond what the host offers is recorded as a warning,
// not an error; the scheduler already enforced the allocation.
func TestRunnerResourceWarning(t *testing.T) {
	conf := testConf(t)
	j := testJob(t, job.Step{Name: "ok", Run: "echo ok"})
	j.Resources.NTasks = 1000000
	j.Resources.Memory = "999999999G"
	j.Resources.Gres = "gpu:1024"

	r := NewRunner(conf, j, "run-1", events.Discard)
	res := r.Run(context.Background())

	if res.State != job.Complete {
		t.Fatalf("unexpected state: %s", res.State)
	}
	if !res.OK() {
		t.Error("an oversized request should not fail the run")
	}

	logs := strings.Join(res.SystemLogs, "\n")
	for _, want := range []string{
		"exceed host cpus",
		"exceeds host memory",
		"exceed host gpus",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected a %q warning, got logs:\n%s", want, logs)
		}
	}
}
