// Package worker defines the dispatchers that drain the broadcast queue and
// deliver confirmed events to viewer rooms.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"dugout/internal/adapters/mq/queue"
	"dugout/pkg/logger"
	"dugout/pkg/metrics"
)

// Default dispatcher configuration constants.
const (
	defaultDispatcherCount = 4
	poolShutdownTimeout    = 30 * time.Second
)

// Sink receives envelopes drained from the queue. Delivery is best-effort;
// the sink never reports failures back to the dispatcher.
type Sink interface {
	Deliver(ctx context.Context, accountID, gameID string, payload map[string]any)
}

// Queue defines how dispatchers receive envelopes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Envelope
}

// Dispatcher drains the broadcast queue and hands envelopes to the sink.
type Dispatcher struct {
	queue Queue
	sink  Sink
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewDispatcher creates a new dispatcher with configuration options.
func NewDispatcher(q Queue, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:    q,
		sink:     sink,
		name:     "dispatcher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("dispatcher"),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.name != "dispatcher" {
		d.logger = d.logger.Named(d.name)
	}

	return d
}

// Run starts the dispatcher loop until ctx is canceled or the queue closes.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	envelopes := d.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case e, ok := <-envelopes:
			if !ok {
				return
			}
			d.deliver(ctx, e)
		}
	}
}

// Shutdown gracefully stops the dispatcher.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	close(d.shutdown)

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// deliver hands one envelope to the sink and records dispatch metrics.
func (d *Dispatcher) deliver(ctx context.Context, e queue.Envelope) {
	start := time.Now()
	d.sink.Deliver(ctx, e.AccountID, e.GameID, e.Payload)
	metrics.RecordDispatchLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordBroadcastDelivered()
}

// Pool manages multiple dispatchers draining the same queue.
type Pool struct {
	dispatchers []*Dispatcher
	logger      logger.Logger
}

// NewPool creates a new dispatcher pool.
func NewPool(count int, q Queue, sink Sink) *Pool {
	if count < 1 {
		count = defaultDispatcherCount
	}

	p := &Pool{
		dispatchers: make([]*Dispatcher, count),
		logger:      logger.Get().Named("dispatcher-pool"),
	}

	for i := 0; i < count; i++ {
		p.dispatchers[i] = NewDispatcher(q, sink, WithName("dispatcher-"+strconv.Itoa(i)))
	}

	metrics.UpdateDispatcherCount(count)

	return p
}

// Start starts all dispatchers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, d := range p.dispatchers {
		go d.Run(ctx)
	}
	p.logger.Info(ctx, "dispatcher pool started", logger.Int("dispatchers", len(p.dispatchers)))
}

// Stop gracefully stops all dispatchers.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, d := range p.dispatchers {
		if err := d.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "dispatcher did not stop cleanly",
				logger.String("name", d.name),
				logger.Error(err),
			)
		}
	}
	metrics.UpdateDispatcherCount(0)
}
