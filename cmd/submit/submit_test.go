package submit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpcops/slaunch/config"
)

func TestDryRunRendersSubmitScript(t *testing.T) {
	dir := t.TempDir()
	conf := config.DefaultConfig()
	conf.Worker.WorkDir = dir

	jobPath := filepath.Join(dir, "gan-train.yml")
	raw := `
Resources:
  Nodes: 1
  NTasks: 1
  Gres: gpu:2
  Partition: gpu
  Time: "48:00:00"
  Memory: 64G
Steps:
  - Run: python train.py
`
	if err := os.WriteFile(jobPath, []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := dryRunJobs(conf, []string{jobPath}, &buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"#!/bin/bash",
		"#SBATCH --job-name gan-train",
		"#SBATCH --nodes 1",
		"#SBATCH --ntasks 1",
		"#SBATCH --gres gpu:2",
		"#SBATCH --partition gpu",
		"#SBATCH --time 48:00:00",
		"#SBATCH --mem 64G",
		"run --run-id ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered script missing %q:\n%s", want, out)
		}
	}

	// A dry run must not create the run's working directory.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			t.Errorf("dry run created %s in the work dir", e.Name())
		}
	}
}

func TestDryRunInvalidJob(t *testing.T) {
	dir := t.TempDir()
	conf := config.DefaultConfig()
	conf.Worker.WorkDir = dir

	jobPath := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(jobPath, []byte("Resources:\n  Time: nonsense\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := dryRunJobs(conf, []string{jobPath}, &buf); err == nil {
		t.Error("expected error for invalid job")
	}
}
