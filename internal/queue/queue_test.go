package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestFIFOOrder tests that items are processed in enqueue order.
func TestFIFOOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	q := New(func(ctx context.Context, req Request) error {
		mu.Lock()
		seen = append(seen, req.SourceURL)
		mu.Unlock()
		return nil
	})

	for _, url := range []string{"a", "b", "c", "d"} {
		q.Enqueue(Request{SourceURL: url})
	}
	q.Drain()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 4 {
		t.Fatalf("expected 4 processed items, got %d", len(seen))
	}
	for i, url := range []string{"a", "b", "c", "d"} {
		if seen[i] != url {
			t.Fatalf("order broken at %d: got %q", i, seen[i])
		}
	}
}

// TestWorkerSurvivesFailure tests that a failing item does not stop
// the worker from processing the next one.
func TestWorkerSurvivesFailure(t *testing.T) {
	var mu sync.Mutex
	var delivered []string

	q := New(func(ctx context.Context, req Request) error {
		if req.SourceURL == "broken" {
			return errors.New("boom")
		}
		mu.Lock()
		delivered = append(delivered, req.SourceURL)
		mu.Unlock()
		return nil
	})

	q.Enqueue(Request{SourceURL: "broken"})
	q.Enqueue(Request{SourceURL: "fine"})
	q.Drain()

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 || delivered[0] != "fine" {
		t.Fatalf("expected the second item delivered, got %v", delivered)
	}
}

// TestWorkerSurvivesPanic tests isolation of panicking items.
func TestWorkerSurvivesPanic(t *testing.T) {
	var mu sync.Mutex
	var delivered []string

	q := New(func(ctx context.Context, req Request) error {
		if req.SourceURL == "panic" {
			panic("kaboom")
		}
		mu.Lock()
		delivered = append(delivered, req.SourceURL)
		mu.Unlock()
		return nil
	})

	q.Enqueue(Request{SourceURL: "panic"})
	q.Enqueue(Request{SourceURL: "fine"})
	q.Drain()

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 || delivered[0] != "fine" {
		t.Fatalf("expected the second item delivered, got %v", delivered)
	}
}

// TestWorkerRestartsAfterIdle tests the lazy worker lifecycle: the
// worker exits on an empty queue and a later enqueue starts a new one.
func TestWorkerRestartsAfterIdle(t *testing.T) {
	var mu sync.Mutex
	var count int

	q := New(func(ctx context.Context, req Request) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	q.Enqueue(Request{SourceURL: "first"})
	q.Drain()

	q.Enqueue(Request{SourceURL: "second"})
	q.Drain()

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Fatalf("expected 2 processed items, got %d", count)
	}
}

// TestEnqueueDoesNotBlock tests that submission is independent of a
// slow worker.
func TestEnqueueDoesNotBlock(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	q := New(func(ctx context.Context, req Request) error {
		if req.SourceURL == "slow" {
			close(started)
			<-release
		}
		return nil
	})

	q.Enqueue(Request{SourceURL: "slow"})
	<-started

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			q.Enqueue(Request{SourceURL: "queued"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a busy worker")
	}
	if q.Len() != 100 {
		t.Fatalf("expected 100 waiting items, got %d", q.Len())
	}

	close(release)
	q.Drain()
}
