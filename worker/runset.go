package worker

import (
	"context"
	"sync"
)

// runSet tracks a set of concurrent goroutines by ID.
// Used to track background steps by step index.
type runSet struct {
	wg      sync.WaitGroup
	mtx     sync.Mutex
	runners map[string]context.CancelFunc
}

// Add calls the "run" function in a goroutine and increments the
// waitgroup count. Ensures "run" is only called once per ID.
func (r *runSet) Add(id string, run func(context.Context, string)) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.runners == nil {
		r.runners = make(map[string]context.CancelFunc)
	}

	// If there's already a runner for the given ID, do nothing.
	if _, ok := r.runners[id]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.runners[id] = cancel

	r.wg.Add(1)
	go func() {
		run(ctx, id)
		r.wg.Done()

		// When the runner is finished, remove the ID from the set.
		r.mtx.Lock()
		defer r.mtx.Unlock()
		delete(r.runners, id)
	}()
}

// Stop cancels all runners and waits for them to exit.
func (r *runSet) Stop() {
	r.mtx.Lock()
	for _, cancel := range r.runners {
		cancel()
	}
	r.runners = nil
	r.mtx.Unlock()
	r.wg.Wait()
}

// Wait waits for all runners to exit.
func (r *runSet) Wait() {
	r.wg.Wait()
}

// Count returns the number of runners currently running.
func (r *runSet) Count() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.runners)
}
