// Package engine implements the mutation ingestion engine: it applies
// create/update/delete mutations from scorekeeping clients against the game
// event store, enforcing idempotent creates and sequence exclusivity, and
// hands confirmed state to the broadcast gateway.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dugout/internal/adapters/repository"
	"dugout/internal/domain/model"
	"dugout/pkg/logger"
	"dugout/pkg/metrics"
)

// Broadcaster fans a confirmed event or tombstone out to viewers of a game.
// Fire-and-forget: the engine does not await delivery and never treats a
// failed fan-out as a mutation failure. Clients that miss a push recover by
// re-fetching the ordered event list.
type Broadcaster interface {
	Broadcast(ctx context.Context, accountID, gameID string, payload map[string]any)
}

// Engine ingests mutations and answers event-list queries.
type Engine struct {
	store repository.Store
	cast  Broadcaster
	newID func() string
	log   logger.Logger
}

// New creates an engine over the given store and broadcast gateway.
func New(store repository.Store, cast Broadcaster, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		cast:  cast,
		newID: uuid.NewString,
		log:   logger.Get().Named("engine"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Ingest applies one mutation for the given game. It returns a typed error
// for genuine problems; a legitimate create retry is not an error and yields
// the original acceptance. The store serializes mutations per game, so the
// read-then-write sequence below is atomic.
func (e *Engine) Ingest(ctx context.Context, accountID, gameID string, m model.Mutation) (model.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordIngestLatency(float64(time.Since(start).Milliseconds()))
	}()

	var (
		res model.Result
		err error
	)
	switch m.Type {
	case model.MutationCreate:
		res, err = e.create(ctx, accountID, gameID, m)
	case model.MutationUpdate:
		res, err = e.update(ctx, accountID, gameID, m)
	case model.MutationDelete:
		res, err = e.delete(ctx, accountID, gameID, m)
	default:
		err = fmt.Errorf("mutation type %q: %w", m.Type, ErrInvalidMutation)
	}
	if err != nil {
		metrics.RecordMutationRejected(rejectReason(err))
		return model.Result{}, err
	}
	return res, nil
}

// List returns the game's confirmed events in ascending-sequence order.
// A game with no store yet yields an empty slice.
func (e *Engine) List(ctx context.Context, accountID, gameID string) []model.ScoreEvent {
	return e.store.Snapshot(ctx, accountID, gameID)
}

func (e *Engine) create(ctx context.Context, accountID, gameID string, m model.Mutation) (model.Result, error) {
	if m.Event == nil {
		return model.Result{}, fmt.Errorf("create: missing event payload: %w", ErrInvalidMutation)
	}
	clientID := m.ClientID()
	if clientID == "" {
		return model.Result{}, fmt.Errorf("create: missing client event id: %w", ErrInvalidMutation)
	}

	var res model.Result
	err := e.store.Update(ctx, accountID, gameID, func(g *repository.Game) error {
		// A live event with this client id means the create is a retry.
		// Echo the original acceptance without re-applying anything.
		if prev, ok := g.ByClientID(clientID); ok {
			res = resultOf(prev)
			metrics.RecordDuplicateCreate()
			e.log.Debug(ctx, "create retry resolved idempotently",
				logger.String("clientEventID", clientID),
				logger.String("serverEventID", prev.ServerID),
			)
			return nil
		}

		// First writer wins a sequence slot; a different event proposing an
		// occupied slot must resync and resubmit.
		if held, ok := g.AtSequence(m.Sequence); ok {
			return fmt.Errorf("create: sequence %d already held by event %s: %w",
				m.Sequence, held.ServerID, ErrSeqConflict)
		}

		ev := model.ScoreEvent{
			ClientID:  clientID,
			ServerID:  e.newID(),
			Sequence:  m.Sequence,
			Payload:   m.Event,
			UserName:  m.Audit.UserName,
			DeviceID:  m.Audit.DeviceID,
			Timestamp: m.Audit.Timestamp,
		}
		g.Put(ev)
		res = resultOf(ev)
		metrics.RecordMutationApplied("create")
		e.cast.Broadcast(ctx, accountID, gameID, ev.Confirmed())
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}
	return res, nil
}

func (e *Engine) update(ctx context.Context, accountID, gameID string, m model.Mutation) (model.Result, error) {
	if m.Event == nil {
		return model.Result{}, fmt.Errorf("update: missing event payload: %w", ErrInvalidMutation)
	}

	var res model.Result
	err := e.store.Update(ctx, accountID, gameID, func(g *repository.Game) error {
		ev, ok := locate(g, m)
		if !ok {
			return fmt.Errorf("update: no live event for server id %q / client id %q: %w",
				m.ServerEventID, m.ClientID(), ErrNotFound)
		}

		// Identity is preserved; every mutable field is replaced. Updates may
		// move an event to any unoccupied sequence without a conflict check.
		ev.Sequence = m.Sequence
		ev.Payload = m.Event
		ev.UserName = m.Audit.UserName
		ev.DeviceID = m.Audit.DeviceID
		ev.Timestamp = m.Audit.Timestamp
		g.Put(ev)

		res = resultOf(ev)
		metrics.RecordMutationApplied("update")
		e.cast.Broadcast(ctx, accountID, gameID, ev.Confirmed())
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}
	return res, nil
}

func (e *Engine) delete(ctx context.Context, accountID, gameID string, m model.Mutation) (model.Result, error) {
	var res model.Result
	err := e.store.Update(ctx, accountID, gameID, func(g *repository.Game) error {
		ev, ok := locate(g, m)
		if !ok {
			return fmt.Errorf("delete: no live event for server id %q / client id %q: %w",
				m.ServerEventID, m.ClientID(), ErrNotFound)
		}

		g.Remove(ev.ServerID)

		// There is no current state to echo back; the tombstone is broadcast
		// once and the result carries a nil event.
		res = model.Result{ServerEventID: ev.ServerID, Sequence: ev.Sequence}
		metrics.RecordMutationApplied("delete")
		e.cast.Broadcast(ctx, accountID, gameID, ev.Tombstone())
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}
	return res, nil
}

// locate finds an update/delete target by server event id when the client
// knows it, falling back to the client event id.
func locate(g *repository.Game, m model.Mutation) (model.ScoreEvent, bool) {
	if m.ServerEventID != "" {
		return g.ByServerID(m.ServerEventID)
	}
	return g.ByClientID(m.ClientID())
}

func resultOf(ev model.ScoreEvent) model.Result {
	return model.Result{
		ServerEventID: ev.ServerID,
		Sequence:      ev.Sequence,
		Event:         ev.Confirmed(),
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrSeqConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidMutation):
		return "invalid"
	default:
		return "internal"
	}
}
