package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *BoltDB {
	t.Helper()
	conf := config.Database{Path: filepath.Join(t.TempDir(), "slaunch.db")}
	db, err := NewBoltDB(conf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	w := events.NewRunWriter("run-1", db)

	j := &job.Job{
		Resources: job.Resources{JobName: "gan-train", Nodes: 1},
		Steps:     []job.Step{{Name: "train", Run: "python train.py"}},
	}

	if err := w.Created(j); err != nil {
		t.Fatal(err)
	}

	res, err := db.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.State != job.Queued {
		t.Errorf("unexpected state: %s", res.State)
	}

	w.SchedulerID("42")
	w.State(job.Running)
	w.StartTime(time.Now())

	sw := w.NewStepWriter(0)
	sw.ExitCode(3)
	w.State(job.ExecutorError)

	res, err = db.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.State != job.ExecutorError {
		t.Errorf("unexpected state: %s", res.State)
	}
	if res.SchedulerID != "42" {
		t.Errorf("unexpected scheduler ID: %s", res.SchedulerID)
	}
	if len(res.Steps) != 1 || res.Steps[0].ExitCode != 3 {
		t.Errorf("unexpected step results: %+v", res.Steps)
	}

	stored, err := db.GetJob(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Resources.JobName != "gan-train" {
		t.Errorf("unexpected job name: %s", stored.Resources.JobName)
	}
}

func TestTerminalStateGuard(t *testing.T) {
	db := testDB(t)
	w := events.NewRunWriter("run-1", db)

	w.Created(&job.Job{})
	w.State(job.Complete)

	// A terminal state can't transition to another terminal state.
	err := w.State(job.Canceled)
	if err == nil {
		t.Error("expected transition error")
	}

	// Writing the same state again is fine.
	if err := w.State(job.Complete); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestUnknownRun(t *testing.T) {
	db := testDB(t)

	if _, err := db.GetRun(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing run")
	}

	w := events.NewRunWriter("missing", db)
	if err := w.State(job.Running); err == nil {
		t.Error("expected error writing event for missing run")
	}
}

func TestListRuns(t *testing.T) {
	db := testDB(t)

	for _, id := range []string{"a", "b", "c"} {
		w := events.NewRunWriter(id, db)
		require.NoError(t, w.Created(&job.Job{}))
	}

	runs, err := db.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, "a", runs[0].RunID)
	require.Equal(t, "c", runs[2].RunID)
}
