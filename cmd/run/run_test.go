package run

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/history"
	"github.com/hpcops/slaunch/job"
)

func TestRunFlags(t *testing.T) {
	c, h := newCommandHooks()

	var gotConf config.Config
	var gotRunID, gotPath string
	h.Run = func(ctx context.Context, conf config.Config, runID, jobPath string) error {
		gotConf = conf
		gotRunID = runID
		gotPath = jobPath
		return nil
	}

	c.SetArgs([]string{
		"--run-id", "test-run",
		"--Worker.WorkDir", "/tmp/slaunch-flag-test",
		"--Modules.BestEffort",
		"job.yml",
	})
	if err := c.Execute(); err != nil {
		t.Fatal(err)
	}

	if gotRunID != "test-run" {
		t.Errorf("unexpected run ID: %s", gotRunID)
	}
	if gotPath != "job.yml" {
		t.Errorf("unexpected job path: %s", gotPath)
	}
	if gotConf.Worker.WorkDir != "/tmp/slaunch-flag-test" {
		t.Errorf("unexpected work dir: %s", gotConf.Worker.WorkDir)
	}
	if !gotConf.Modules.BestEffort {
		t.Error("expected best effort module loading")
	}
}

func TestRunRecordsHistory(t *testing.T) {
	t.Setenv("SLURM_JOB_ID", "")

	dir := t.TempDir()
	conf := config.DefaultConfig()
	conf.Worker.WorkDir = dir
	conf.Database.Path = filepath.Join(dir, "slaunch.db")
	conf.EventWriters.Active = []string{"boltdb"}
	conf.Logger.Level = "error"

	jobPath := filepath.Join(dir, "job.yml")
	raw := `
Resources:
  StdoutPath: ` + filepath.Join(dir, "stdout.txt") + `
  StderrPath: ` + filepath.Join(dir, "stderr.txt") + `
Steps:
  - Run: echo hello
`
	if err := os.WriteFile(jobPath, []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	err := Run(context.Background(), conf, "test-run", jobPath)
	if err != nil {
		t.Fatal(err)
	}

	db, err := history.NewBoltDB(conf.Database)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	res, err := db.GetRun(context.Background(), "test-run")
	if err != nil {
		t.Fatal(err)
	}
	if res.State != job.Complete {
		t.Errorf("unexpected state: %s", res.State)
	}
	if len(res.Steps) != 1 || res.Steps[0].ExitCode != 0 {
		t.Errorf("unexpected steps: %+v", res.Steps)
	}
}

func TestRunFailedStepReturnsError(t *testing.T) {
	t.Setenv("SLURM_JOB_ID", "")

	dir := t.TempDir()
	conf := config.DefaultConfig()
	conf.Worker.WorkDir = dir
	conf.Database.Path = filepath.Join(dir, "slaunch.db")
	conf.EventWriters.Active = nil
	conf.Logger.Level = "error"

	jobPath := filepath.Join(dir, "job.yml")
	raw := `
Resources:
  StdoutPath: ` + filepath.Join(dir, "stdout.txt") + `
  StderrPath: ` + filepath.Join(dir, "stderr.txt") + `
Steps:
  - Run: sh -c "exit 3"
`
	if err := os.WriteFile(jobPath, []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	err := Run(context.Background(), conf, "test-run", jobPath)
	if err == nil {
		t.Fatal("expected error for failed step")
	}
}
