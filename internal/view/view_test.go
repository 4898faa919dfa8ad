package view

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGatherWaitsForAll(t *testing.T) {
	var done atomic.Int32
	slow := func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		done.Add(1)
		return nil
	}
	fast := func(ctx context.Context) error {
		done.Add(1)
		return nil
	}

	if err := Gather(context.Background(), slow, fast, slow); err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if done.Load() != 3 {
		t.Fatalf("expected 3 completed fetches, got %d", done.Load())
	}
}

func TestGatherFailsWholeBatch(t *testing.T) {
	boom := errors.New("boom")
	err := Gather(context.Background(),
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestGatherEmpty(t *testing.T) {
	if err := Gather(context.Background()); err != nil {
		t.Fatalf("Gather with no fetches: %v", err)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Loading: "loading", Ready: "ready", Failed: "error", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
