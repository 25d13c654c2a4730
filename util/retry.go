package util

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
)

// Retrier retries an operation with exponential backoff. It wraps
// "github.com/cenkalti/backoff".ExponentialBackOff with a bounded
// number of tries and an optional retryability check, which is useful
// for flaky scheduler commands like sacct.
type Retrier struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
	MaxElapsedTime      time.Duration
	MaxTries            int
	ShouldRetry         func(err error) bool
	Notify              func(err error, d time.Duration)
}

// NewRetrier returns a Retrier with sane defaults.
func NewRetrier() *Retrier {
	return &Retrier{
		InitialInterval:     time.Millisecond * 500,
		MaxInterval:         time.Second * 60,
		Multiplier:          1.5,
		RandomizationFactor: 0.5,
		MaxElapsedTime:      time.Minute * 15,
		MaxTries:            10,
	}
}

// Retry calls f until it succeeds, the backoff policy gives up, or the
// context is canceled.
func (r *Retrier) Retry(ctx context.Context, f func() error) error {
	b := backoff.WithContext(r.policy(), ctx)
	return backoff.RetryNotify(func() error { return r.checkErr(f()) }, b, r.notify)
}

func (r *Retrier) notify(err error, d time.Duration) {
	if r.Notify != nil {
		r.Notify(err, d)
	}
}

// checkErr marks errors which ShouldRetry rejects as permanent, which
// stops the backoff loop.
func (r *Retrier) checkErr(err error) error {
	if err != nil && r.ShouldRetry != nil && !r.ShouldRetry(err) {
		return &backoff.PermanentError{Err: err}
	}
	return err
}

func (r *Retrier) policy() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     r.InitialInterval,
		MaxInterval:         r.MaxInterval,
		Multiplier:          r.Multiplier,
		RandomizationFactor: r.RandomizationFactor,
		MaxElapsedTime:      r.MaxElapsedTime,
		Clock:               backoff.SystemClock,
	}

	retries := r.MaxTries - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(b, uint64(retries))
}
