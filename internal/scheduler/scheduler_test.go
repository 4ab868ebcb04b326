package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewRejectsZeroInterval(t *testing.T) {
	if _, err := New(Options{}, zerolog.Nop()); err == nil {
		t.Fatal("zero interval should be rejected")
	}
}

func TestNextTickAligned(t *testing.T) {
	s, err := New(Options{Interval: time.Hour, AlignToBucket: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	now := time.Date(2026, 2, 2, 10, 17, 0, 0, time.UTC)
	if got, want := s.nextTick(now), time.Date(2026, 2, 2, 11, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextTick = %s, want %s", got, want)
	}
	if got, want := s.bucketStart(now), time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("bucketStart = %s, want %s", got, want)
	}

	onBoundary := time.Date(2026, 2, 2, 11, 0, 0, 0, time.UTC)
	if got, want := s.nextTick(onBoundary), time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextTick on boundary = %s, want %s", got, want)
	}
}

func TestNextTickUnaligned(t *testing.T) {
	s, err := New(Options{Interval: 15 * time.Minute}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	now := time.Date(2026, 2, 2, 10, 17, 0, 0, time.UTC)
	if got := s.nextTick(now); !got.Equal(now.Add(15 * time.Minute)) {
		t.Errorf("nextTick = %s", got)
	}
	if got := s.bucketStart(now); !got.Equal(now) {
		t.Errorf("bucketStart = %s", got)
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	s, err := New(Options{Interval: 10 * time.Millisecond, RunImmediately: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context, time.Time) error {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return errors.New("tick errors are logged, not fatal")
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	if n := ticks.Load(); n < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", n)
	}
}
