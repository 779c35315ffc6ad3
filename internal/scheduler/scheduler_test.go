package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"jobmate/board-client/internal/scheduler"
)

type countingRefresher struct {
	n   atomic.Int32
	err error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.n.Add(1)
	return c.err
}

func TestStart_RunsImmediately(t *testing.T) {
	r := &countingRefresher{}
	s := scheduler.New(r, time.Hour)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()

	if got := r.n.Load(); got != 1 {
		t.Errorf("refresh count = %d, want 1", got)
	}
}

func TestStart_ErrorsAreNotFatal(t *testing.T) {
	r := &countingRefresher{err: errors.New("authority down")}
	s := scheduler.New(r, time.Hour)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	if r.n.Load() != 1 {
		t.Error("refresh should have run once")
	}
}

func TestStart_InvalidInterval(t *testing.T) {
	s := scheduler.New(&countingRefresher{}, 0)
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error for zero interval")
	}
}
