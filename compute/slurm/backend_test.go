package slurm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpcops/slaunch/job"
)

func TestExtractID(t *testing.T) {
	id := extractID("Submitted batch job 2\n")
	if id != "2" {
		t.Errorf("unexpected id: %q", id)
	}

	id = extractID("sbatch: Submitted batch job 1234567\n")
	if id != "1234567" {
		t.Errorf("unexpected id: %q", id)
	}

	id = extractID("sbatch: error: invalid partition\n")
	if id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}

func TestMapState(t *testing.T) {
	tests := map[string]job.State{
		"PENDING":           job.Queued,
		"RUNNING":           job.Running,
		"COMPLETING":        job.Running,
		"COMPLETED":         job.Complete,
		"FAILED":            job.ExecutorError,
		"TIMEOUT":           job.SystemError,
		"OUT_OF_MEMORY":     job.SystemError,
		"NODE_FAIL":         job.SystemError,
		"CANCELLED":         job.Canceled,
		"CANCELLED by 1000": job.Canceled,
		"":                  job.Queued,
		"SOMETHING_NEW":     job.Unknown,
	}
	for raw, want := range tests {
		if got := mapState(raw); got != want {
			t.Errorf("mapState(%q): expected %s, got %s", raw, want, got)
		}
	}
}

func TestStateMapper(t *testing.T) {
	dir := t.TempDir()
	sacct := filepath.Join(dir, "sacct")
	script := `#!/bin/sh
echo "COMPLETED"
echo "COMPLETED"
`
	if err := os.WriteFile(sacct, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	query := stateMapper(sacct)
	state, raw, err := query(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if state != job.Complete {
		t.Errorf("unexpected state: %s", state)
	}
	if raw != "COMPLETED" {
		t.Errorf("unexpected raw state: %q", raw)
	}
}
