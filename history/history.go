// Package history stores run history in an embedded BoltDB database.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
	"github.com/hpcops/slaunch/util"
)

// jobsBucket maps: run ID -> job.Job struct
var jobsBucket = []byte("jobs")

// resultsBucket maps: run ID -> job.Result struct
var resultsBucket = []byte("run-results")

// stateBucket maps: run ID -> state string
var stateBucket = []byte("run-state")

// BoltDB stores run history in an embedded key-value database.
// It implements events.Writer, so run state is kept up to date by
// subscribing it to run events.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB returns a new instance of BoltDB, accessing the database at
// the given path.
func NewBoltDB(conf config.Database) (*BoltDB, error) {
	err := util.EnsurePath(conf.Path)
	if err != nil {
		return nil, err
	}
	db, err := bolt.Open(conf.Path, 0600, &bolt.Options{
		Timeout: time.Second * 5,
	})
	if err != nil {
		return nil, err
	}
	b := &BoltDB{db: db}
	if err := b.init(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// init creates the required buckets.
func (h *BoltDB) init() error {
	return h.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{jobsBucket, resultsBucket, stateBucket} {
			if tx.Bucket(name) == nil {
				_, err := tx.CreateBucket(name)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Close closes the database.
func (h *BoltDB) Close() {
	h.db.Close()
}

// WriteEvent updates the stored run with the given event.
func (h *BoltDB) WriteEvent(ctx context.Context, ev *events.Event) error {
	idBytes := []byte(ev.RunID)

	if ev.Type == events.TypeCreated {
		jobBytes, err := json.Marshal(ev.Job)
		if err != nil {
			return err
		}
		res := &job.Result{}
		events.NewResultBuilder(res).WriteEvent(ctx, ev)
		resBytes, err := json.Marshal(res)
		if err != nil {
			return err
		}
		err = h.db.Update(func(tx *bolt.Tx) error {
			tx.Bucket(jobsBucket).Put(idBytes, jobBytes)
			// A run recorded at submission keeps its result when
			// its scheduled execution writes another created event.
			if tx.Bucket(resultsBucket).Get(idBytes) == nil {
				tx.Bucket(resultsBucket).Put(idBytes, resBytes)
				tx.Bucket(stateBucket).Put(idBytes, []byte(job.Queued))
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error storing run in database: %s", err)
		}
		return nil
	}

	return h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket).Get(idBytes)
		if b == nil {
			return fmt.Errorf("run %s not found", ev.RunID)
		}

		res := &job.Result{}
		if err := json.Unmarshal(b, res); err != nil {
			return err
		}

		if ev.Type == events.TypeState {
			if err := validateTransition(res.State, ev.State); err != nil {
				return err
			}
		}

		if err := events.NewResultBuilder(res).WriteEvent(ctx, ev); err != nil {
			return err
		}

		resBytes, err := json.Marshal(res)
		if err != nil {
			return err
		}
		tx.Bucket(resultsBucket).Put(idBytes, resBytes)
		tx.Bucket(stateBucket).Put(idBytes, []byte(res.State))
		return nil
	})
}

// validateTransition guards run state changes stored in the database.
func validateTransition(current, target job.State) error {
	switch {
	case target == current:
		return nil
	case current.Done() && target.Done():
		// Avoid switching between two terminal states.
		return fmt.Errorf("won't switch between two terminal states: %s -> %s",
			current, target)
	case current.Done() && !target.Done():
		return fmt.Errorf("unexpected transition from %s to %s", current, target)
	}
	return nil
}

// GetRun returns the stored result for the given run ID.
func (h *BoltDB) GetRun(ctx context.Context, runID string) (*job.Result, error) {
	res := &job.Result{}
	err := h.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket).Get([]byte(runID))
		if b == nil {
			return fmt.Errorf("run %s not found", runID)
		}
		return json.Unmarshal(b, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetJob returns the stored job document for the given run ID.
func (h *BoltDB) GetJob(ctx context.Context, runID string) (*job.Job, error) {
	j := &job.Job{}
	err := h.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(jobsBucket).Get([]byte(runID))
		if b == nil {
			return fmt.Errorf("run %s not found", runID)
		}
		return json.Unmarshal(b, j)
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// ListRuns returns results for all stored runs, ordered by run ID.
// xid run IDs sort by creation time.
func (h *BoltDB) ListRuns(ctx context.Context) ([]*job.Result, error) {
	var runs []*job.Result
	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(resultsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			res := &job.Result{}
			if err := json.Unmarshal(v, res); err != nil {
				return err
			}
			runs = append(runs, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}
