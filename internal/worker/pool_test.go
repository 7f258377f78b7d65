package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWorkerPoolBackpressure(t *testing.T) {
	pool := NewWorkerPool(1)
	ctx := context.Background()
	pool.Start(ctx)

	gate := make(chan struct{})
	var mu sync.Mutex
	ran := 0
	job := func(context.Context) error {
		<-gate
		mu.Lock()
		ran++
		mu.Unlock()
		return nil
	}

	// More jobs than the pool's buffer holds; Submit must block, not drop.
	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for i := 0; i < 5; i++ {
			if err := pool.Submit(ctx, job); err != nil {
				t.Errorf("Submit() error: %v", err)
				return
			}
		}
	}()

	select {
	case <-submitted:
		t.Fatal("Submit() did not block on a full pool")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	<-submitted
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	if ran != 5 {
		t.Errorf("jobs run = %d, want 5 (none dropped)", ran)
	}
}

func TestWorkerPoolSubmitCancelled(t *testing.T) {
	pool := NewWorkerPool(1) // never started, so the buffer fills and stays full
	ctx, cancel := context.WithCancel(context.Background())

	noop := func(context.Context) error { return nil }
	if err := pool.Submit(ctx, noop); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if err := pool.Submit(ctx, noop); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	cancel()
	err := pool.Submit(ctx, noop)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Submit() on full pool with ended context = %v, want context.Canceled", err)
	}
}
