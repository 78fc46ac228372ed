package repository

import (
	"sort"

	"dugout/internal/domain/model"
)

// Game holds the live events of one game, always sorted ascending by
// sequence. It is not safe for concurrent use on its own; callers reach it
// through Store.Update, which runs them under the game's lock.
type Game struct {
	events []model.ScoreEvent
}

// Len returns the number of live events.
func (g *Game) Len() int {
	return len(g.events)
}

// All returns a copy of the live events in ascending-sequence order.
func (g *Game) All() []model.ScoreEvent {
	out := make([]model.ScoreEvent, len(g.events))
	copy(out, g.events)
	return out
}

// ByServerID finds a live event by its server-assigned id.
func (g *Game) ByServerID(id string) (model.ScoreEvent, bool) {
	for _, e := range g.events {
		if e.ServerID == id {
			return e, true
		}
	}
	return model.ScoreEvent{}, false
}

// ByClientID finds a live event by the id the submitting device generated.
func (g *Game) ByClientID(id string) (model.ScoreEvent, bool) {
	for _, e := range g.events {
		if e.ClientID == id {
			return e, true
		}
	}
	return model.ScoreEvent{}, false
}

// AtSequence finds the live event occupying a sequence slot.
func (g *Game) AtSequence(seq int64) (model.ScoreEvent, bool) {
	for _, e := range g.events {
		if e.Sequence == seq {
			return e, true
		}
	}
	return model.ScoreEvent{}, false
}

// Put inserts e, or replaces the live event carrying the same server id,
// and restores ascending-sequence order.
func (g *Game) Put(e model.ScoreEvent) {
	replaced := false
	for i := range g.events {
		if g.events[i].ServerID == e.ServerID {
			g.events[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		g.events = append(g.events, e)
	}
	sort.Slice(g.events, func(i, j int) bool {
		return g.events[i].Sequence < g.events[j].Sequence
	})
}

// Remove hard-deletes the event with the given server id. Remaining events
// keep their sequence numbers; slots are never renumbered.
func (g *Game) Remove(serverID string) bool {
	for i := range g.events {
		if g.events[i].ServerID == serverID {
			g.events = append(g.events[:i], g.events[i+1:]...)
			return true
		}
	}
	return false
}
