// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"

	eventqueue "dugout/internal/adapters/mq/queue"
	workerpool "dugout/internal/adapters/mq/worker"
	repository "dugout/internal/adapters/repository"
	"dugout/internal/adapters/ws"
	"dugout/internal/domain/engine"
	"dugout/internal/domain/model"
	"dugout/pkg/logger"
	"dugout/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize       = 10000
	defaultDispatcherCount = 4
	defaultClientBuffer    = 64
)

// broadcastGateway implements engine.Broadcaster by enqueueing confirmed
// payloads for asynchronous fan-out to viewer rooms.
type broadcastGateway struct {
	queue  eventqueue.Queue
	logger logger.Logger
}

func (g *broadcastGateway) Broadcast(ctx context.Context, accountID, gameID string, payload map[string]any) {
	ok := g.queue.Enqueue(ctx, eventqueue.Envelope{
		AccountID: accountID,
		GameID:    gameID,
		Payload:   payload,
	})
	if !ok {
		metrics.RecordBroadcastDropped()
		g.logger.Warn(ctx, "broadcast queue full, envelope dropped",
			logger.String("accountID", accountID),
			logger.String("gameID", gameID),
		)
		return
	}
	metrics.RecordBroadcastEnqueued()
	metrics.UpdateQueueSize(g.queue.Len(ctx))
}

// Service wires the store, engine, broadcast queue, dispatcher pool
// and viewer hub into one lifecycle.
type Service struct {
	mu sync.RWMutex

	// Core components
	store          repository.Store
	engine         *engine.Engine
	broadcastQueue eventqueue.Queue
	dispatcherPool *workerpool.Pool
	hub            *ws.Hub

	// Configuration
	queueSize       int
	dispatcherCount int
	clientBuffer    int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the capacity of the broadcast queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDispatcherCount sets the number of broadcast dispatchers.
func WithDispatcherCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.dispatcherCount = count
		}
	}
}

// WithClientBuffer sets the per-viewer outbound message buffer.
func WithClientBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.clientBuffer = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:       defaultQueueSize,
		dispatcherCount: defaultDispatcherCount,
		clientBuffer:    defaultClientBuffer,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting sync service...")

	s.store = repository.NewMemStore()
	s.broadcastQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.hub = ws.NewHub(ws.WithClientBuffer(s.clientBuffer))

	gateway := &broadcastGateway{
		queue:  s.broadcastQueue,
		logger: s.logger.Named("broadcast"),
	}
	s.engine = engine.New(s.store, gateway)

	s.dispatcherPool = workerpool.NewPool(s.dispatcherCount, s.broadcastQueue, s.hub)
	s.dispatcherPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "sync service started",
		logger.Int("dispatchers", s.dispatcherCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("clientBuffer", s.clientBuffer),
	)

	return nil
}

// Stop gracefully shuts down the service. The queue is closed first so
// the dispatchers drain remaining envelopes before the pool stops.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping sync service...")

	if s.broadcastQueue != nil {
		_ = s.broadcastQueue.Close()
	}
	if s.dispatcherPool != nil {
		s.dispatcherPool.Stop()
	}
	if s.hub != nil {
		s.hub.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "sync service stopped")
}

// Ingest applies one mutation to a game's live event list.
func (s *Service) Ingest(ctx context.Context, accountID, gameID string, m model.Mutation) (model.Result, error) {
	return s.engine.Ingest(ctx, accountID, gameID, m)
}

// List returns a game's live events in ascending sequence order.
func (s *Service) List(ctx context.Context, accountID, gameID string) []model.ScoreEvent {
	return s.engine.List(ctx, accountID, gameID)
}

// Hub exposes the viewer hub for the streaming endpoint.
func (s *Service) Hub() *ws.Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hub
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"dispatcherCount": s.dispatcherCount,
		"queueCapacity":   s.queueSize,
	}

	if s.started {
		queueLen := s.broadcastQueue.Len(ctx)
		games := s.store.Games(ctx)
		events := s.store.Events(ctx)
		viewers := s.hub.ViewerCount()

		stats["queueLength"] = queueLen
		stats["gamesTracked"] = games
		stats["liveEvents"] = events
		stats["viewersConnected"] = viewers

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateGamesTracked(games)
		metrics.UpdateLiveEvents(events)
		metrics.UpdateViewerCount(viewers)
	}

	return stats
}
