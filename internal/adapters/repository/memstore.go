package repository

import (
	"context"
	"sync"

	"dugout/internal/domain/model"
	"dugout/pkg/metrics"
)

// MemStore is the in-memory Store implementation: a table of per-game
// stores, each guarded by its own mutex. The table lock is held only long
// enough to find or create an entry, so games never contend with each other.
type MemStore struct {
	mu    sync.RWMutex
	games map[string]*gameEntry
}

type gameEntry struct {
	mu   sync.Mutex
	game Game
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{games: make(map[string]*gameEntry)}
}

// key builds the composite identity for one game's store.
func key(accountID, gameID string) string {
	return accountID + ":" + gameID
}

// entry returns the game's entry, creating it when create is set.
func (s *MemStore) entry(accountID, gameID string, create bool) *gameEntry {
	k := key(accountID, gameID)

	s.mu.RLock()
	e, ok := s.games[k]
	s.mu.RUnlock()
	if ok || !create {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.games[k]; ok {
		return e
	}
	e = &gameEntry{}
	s.games[k] = e
	metrics.UpdateGamesTracked(len(s.games))
	return e
}

// Update runs fn under the game's lock, creating the game lazily.
func (s *MemStore) Update(ctx context.Context, accountID, gameID string, fn func(g *Game) error) error {
	e := s.entry(accountID, gameID, true)

	e.mu.Lock()
	err := fn(&e.game)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	metrics.UpdateLiveEvents(s.Events(ctx))
	return nil
}

// Snapshot returns a copy of the game's live events in ascending order.
func (s *MemStore) Snapshot(_ context.Context, accountID, gameID string) []model.ScoreEvent {
	e := s.entry(accountID, gameID, false)
	if e == nil {
		return []model.ScoreEvent{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.All()
}

// Games returns the number of games with a live store.
func (s *MemStore) Games(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Events returns the total number of live events across all games.
func (s *MemStore) Events(_ context.Context) int {
	s.mu.RLock()
	entries := make([]*gameEntry, 0, len(s.games))
	for _, e := range s.games {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	total := 0
	for _, e := range entries {
		e.mu.Lock()
		total += e.game.Len()
		e.mu.Unlock()
	}
	return total
}
