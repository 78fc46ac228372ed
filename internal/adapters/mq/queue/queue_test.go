package queue

import (
	"context"
	"fmt"
	"testing"
)

func envelope(id string) Envelope {
	return Envelope{
		AccountID: "acct",
		GameID:    "game",
		Payload:   map[string]any{"server_id": id},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, envelope("s1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	e := <-out
	if e.Payload["server_id"] != "s1" {
		t.Errorf("expected s1, got %v", e.Payload["server_id"])
	}
	if e.AccountID != "acct" || e.GameID != "game" {
		t.Errorf("unexpected addressing: %s/%s", e.AccountID, e.GameID)
	}
}

func TestInMemoryQueue_DropsWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, envelope("s1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, envelope("s2")) {
		t.Error("expected enqueue to succeed")
	}

	// Fire-and-forget: a full queue drops, it never blocks
	if q.Enqueue(ctx, envelope("s3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if !q.Enqueue(ctx, envelope("s1")) {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, envelope("s2")) {
		t.Error("expected enqueue to fail after close")
	}
	// Close is idempotent
	if err := q.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	// Remaining envelopes drain, then the channel closes
	out := q.Dequeue(ctx)
	if e, ok := <-out; !ok || e.Payload["server_id"] != "s1" {
		t.Errorf("expected drained envelope s1, got %v ok=%v", e, ok)
	}
	if _, ok := <-out; ok {
		t.Error("expected dequeue channel to close after drain")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000), WithBufferSize(1000))
	ctx := context.Background()

	const producers = 8
	const perProducer = 50

	done := make(chan bool, producers)
	for i := 0; i < producers; i++ {
		go func(n int) {
			for j := 0; j < perProducer; j++ {
				q.Enqueue(ctx, envelope(fmt.Sprintf("s%d-%d", n, j)))
			}
			done <- true
		}(i)
	}
	for i := 0; i < producers; i++ {
		<-done
	}

	if l := q.Len(ctx); l != producers*perProducer {
		t.Errorf("expected %d queued envelopes, got %d", producers*perProducer, l)
	}
}
