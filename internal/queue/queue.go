// Package queue serializes all fetch work through one FIFO queue
// consumed by a single lazily started worker goroutine.
package queue

import (
	"context"
	"log"
	"sync"
)

// Request is one submitted link together with the requester context
// needed to deliver the result.
type Request struct {
	ChatID     int64
	TelegramID int64
	FullName   string
	UserName   string
	SourceURL  string
}

// Processor handles one request end to end. A returned error marks the
// item as failed; it never stops the worker loop.
type Processor func(ctx context.Context, req Request) error

// Queue is an unbounded FIFO of pending requests. Enqueue never blocks
// the caller; at most one worker goroutine consumes items at any time.
// The worker exits when the queue runs empty and is restarted by a
// later enqueue.
type Queue struct {
	mu      sync.Mutex
	idle    *sync.Cond
	items   []Request
	running bool
	process Processor
}

// New builds a queue draining into the given processor.
func New(process Processor) *Queue {
	q := &Queue{process: process}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a request and ensures a worker is running.
func (q *Queue) Enqueue(req Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, req)
	if !q.running {
		q.running = true
		go q.run()
	}
}

// Len returns the number of requests waiting to be processed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain blocks until every queued item has been processed and the
// worker has gone idle.
func (q *Queue) Drain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) > 0 || q.running {
		q.idle.Wait()
	}
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.running = false
			q.idle.Broadcast()
			q.mu.Unlock()
			return
		}
		req := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		q.processOne(req)
	}
}

// processOne isolates one item's failure so the loop survives both
// returned errors and panics.
func (q *Queue) processOne(req Request) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("queue: panic while processing %s: %v", req.SourceURL, r)
		}
	}()
	if err := q.process(context.Background(), req); err != nil {
		log.Printf("queue: processing %s failed: %v", req.SourceURL, err)
	}
}
