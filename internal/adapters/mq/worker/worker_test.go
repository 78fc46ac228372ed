package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dugout/internal/adapters/mq/queue"
	"dugout/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// captureSink records delivered envelopes.
type captureSink struct {
	mu        sync.Mutex
	delivered []queue.Envelope
}

func (s *captureSink) Deliver(_ context.Context, accountID, gameID string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, queue.Envelope{AccountID: accountID, GameID: gameID, Payload: payload})
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatcher_DeliversEnvelopes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(16))
	sink := &captureSink{}
	d := NewDispatcher(q, sink, WithName("test-dispatcher"))
	go d.Run(ctx)

	q.Enqueue(ctx, queue.Envelope{
		AccountID: "acct",
		GameID:    "game",
		Payload:   map[string]any{"server_id": "s1"},
	})

	waitFor(t, time.Second, func() bool { return sink.count() == 1 })

	sink.mu.Lock()
	e := sink.delivered[0]
	sink.mu.Unlock()
	if e.AccountID != "acct" || e.GameID != "game" {
		t.Errorf("unexpected addressing: %s/%s", e.AccountID, e.GameID)
	}

	if err := d.Shutdown(ctx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestDispatcher_StopsWhenQueueCloses(t *testing.T) {
	ctx := context.Background()

	q := queue.NewInMemoryQueue(queue.WithCapacity(4))
	sink := &captureSink{}
	d := NewDispatcher(q, sink)
	go d.Run(ctx)

	q.Enqueue(ctx, queue.Envelope{AccountID: "a", GameID: "g", Payload: map[string]any{"server_id": "s1"}})
	_ = q.Close()

	// The dispatcher drains the queue and exits on its own
	waitFor(t, time.Second, func() bool {
		select {
		case <-d.done:
			return true
		default:
			return false
		}
	})

	if sink.count() != 1 {
		t.Errorf("expected 1 delivered envelope, got %d", sink.count())
	}
}

func TestPool_DrainsQueueAcrossDispatchers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(256), queue.WithBufferSize(256))
	sink := &captureSink{}
	p := NewPool(4, q, sink)
	p.Start(ctx)

	const total = 100
	for i := 0; i < total; i++ {
		q.Enqueue(ctx, queue.Envelope{
			AccountID: "acct",
			GameID:    "game",
			Payload:   map[string]any{"server_id": fmt.Sprintf("s%d", i)},
		})
	}

	waitFor(t, 2*time.Second, func() bool { return sink.count() == total })

	p.Stop()
}

func TestPool_DefaultsDispatcherCount(t *testing.T) {
	q := queue.NewInMemoryQueue()
	p := NewPool(0, q, &captureSink{})
	if len(p.dispatchers) != defaultDispatcherCount {
		t.Errorf("expected %d dispatchers, got %d", defaultDispatcherCount, len(p.dispatchers))
	}
}
