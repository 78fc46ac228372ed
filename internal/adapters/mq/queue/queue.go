// Package queue defines the contract for enqueuing and consuming broadcast
// envelopes.
//
// The engine treats fan-out as fire-and-forget: a full queue means the
// envelope is dropped, and viewers recover by re-fetching the event list.
package queue

import (
	"context"
	"sync"

	"dugout/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
	defaultBufferSize    = 10000
)

// Envelope is one confirmed event or tombstone addressed to a game's viewers.
type Envelope struct {
	AccountID string
	GameID    string
	Payload   map[string]any
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an envelope to the queue.
	// Returns false if the queue is full or closed and the envelope was dropped.
	Enqueue(ctx context.Context, e Envelope) bool

	// Dequeue returns a channel that will receive envelopes as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Envelope

	// Len returns the current number of queued envelopes.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	envelopes  chan Envelope
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.envelopes = make(chan Envelope, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an envelope to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Envelope) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	if len(q.envelopes) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.envelopes <- e:
		metrics.RecordQueueEnqueue()
		size := len(q.envelopes)
		metrics.UpdateQueueSize(size)
		metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns a channel that will receive envelopes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Envelope {
	out := make(chan Envelope)
	go func() {
		defer close(out)
		for e := range q.envelopes {
			select {
			case out <- e:
				metrics.RecordQueueDequeue()
				size := len(q.envelopes)
				metrics.UpdateQueueSize(size)
				metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued envelopes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.envelopes)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.envelopes)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
