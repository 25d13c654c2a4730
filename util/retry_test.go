package util

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetrierMaxTries(t *testing.T) {
	r := NewRetrier()
	r.InitialInterval = time.Millisecond
	r.MaxTries = 3
	bg := context.Background()

	i := 0
	err := r.Retry(bg, func() error {
		i++
		return fmt.Errorf("always error")
	})
	if err == nil {
		t.Error("expected error")
	}
	if i != 3 {
		t.Error("unexpected number of tries", i)
	}
}

func TestRetrierShouldRetry(t *testing.T) {
	perm := errors.New("permanent")
	r := NewRetrier()
	r.InitialInterval = time.Millisecond
	r.ShouldRetry = func(err error) bool {
		return !errors.Is(err, perm)
	}

	i := 0
	r.Retry(context.Background(), func() error {
		i++
		return perm
	})
	if i != 1 {
		t.Error("expected a permanent error to stop retries", i)
	}
}

func TestRetrierSuccess(t *testing.T) {
	r := NewRetrier()
	r.InitialInterval = time.Millisecond

	i := 0
	err := r.Retry(context.Background(), func() error {
		i++
		if i < 2 {
			return fmt.Errorf("transient")
		}
		return nil
	})
	if err != nil {
		t.Error("unexpected error", err)
	}
	if i != 2 {
		t.Error("unexpected number of tries", i)
	}
}
