package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"dugout/internal/domain/model"
)

func TestMemStore_LazyCreation(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	// Unknown games are empty, not errors
	events := store.Snapshot(ctx, "acct1", "game1")
	if len(events) != 0 {
		t.Errorf("expected empty snapshot, got %d events", len(events))
	}
	if n := store.Games(ctx); n != 0 {
		t.Errorf("expected 0 games before first mutation, got %d", n)
	}

	err := store.Update(ctx, "acct1", "game1", func(g *Game) error {
		g.Put(model.ScoreEvent{ClientID: "c1", ServerID: "s1", Sequence: 1})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := store.Games(ctx); n != 1 {
		t.Errorf("expected 1 game, got %d", n)
	}
	if n := store.Events(ctx); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestMemStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	_ = store.Update(ctx, "a", "g", func(g *Game) error {
		g.Put(model.ScoreEvent{ClientID: "c1", ServerID: "s1", Sequence: 1})
		return nil
	})

	snap := store.Snapshot(ctx, "a", "g")
	snap[0].Sequence = 99

	again := store.Snapshot(ctx, "a", "g")
	if again[0].Sequence != 1 {
		t.Errorf("snapshot mutation leaked into the store: sequence %d", again[0].Sequence)
	}
}

func TestMemStore_UpdateErrorLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	wantErr := fmt.Errorf("rejected")
	err := store.Update(ctx, "a", "g", func(g *Game) error {
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected fn error back verbatim, got %v", err)
	}
	if n := store.Events(ctx); n != 0 {
		t.Errorf("expected 0 events after rejected update, got %d", n)
	}
}

func TestMemStore_ConcurrentGamesDoNotInterfere(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	const games = 8
	const perGame = 50

	var wg sync.WaitGroup
	for i := 0; i < games; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			gameID := fmt.Sprintf("game%d", n)
			for j := 0; j < perGame; j++ {
				_ = store.Update(ctx, "acct", gameID, func(g *Game) error {
					g.Put(model.ScoreEvent{
						ClientID: fmt.Sprintf("c%d-%d", n, j),
						ServerID: fmt.Sprintf("s%d-%d", n, j),
						Sequence: int64(j + 1),
					})
					return nil
				})
			}
		}(i)
	}
	wg.Wait()

	if n := store.Games(ctx); n != games {
		t.Errorf("expected %d games, got %d", games, n)
	}
	if n := store.Events(ctx); n != games*perGame {
		t.Errorf("expected %d events, got %d", games*perGame, n)
	}
}

func TestGame_OrderedBySequence(t *testing.T) {
	g := &Game{}

	// Out-of-order arrival: 1, 3, 2
	g.Put(model.ScoreEvent{ClientID: "c1", ServerID: "s1", Sequence: 1})
	g.Put(model.ScoreEvent{ClientID: "c3", ServerID: "s3", Sequence: 3})
	g.Put(model.ScoreEvent{ClientID: "c2", ServerID: "s2", Sequence: 2})

	events := g.All()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []int64{1, 2, 3} {
		if events[i].Sequence != want {
			t.Errorf("position %d: expected sequence %d, got %d", i, want, events[i].Sequence)
		}
	}
}

func TestGame_PutReplacesByServerID(t *testing.T) {
	g := &Game{}
	g.Put(model.ScoreEvent{ClientID: "c1", ServerID: "s1", Sequence: 1})
	g.Put(model.ScoreEvent{ClientID: "c2", ServerID: "s2", Sequence: 2})

	// Move s1 to sequence 5; identity is preserved, count is not grown
	g.Put(model.ScoreEvent{ClientID: "c1", ServerID: "s1", Sequence: 5})

	if g.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", g.Len())
	}
	events := g.All()
	if events[0].ServerID != "s2" || events[1].ServerID != "s1" {
		t.Errorf("expected order s2,s1 after move, got %s,%s", events[0].ServerID, events[1].ServerID)
	}
	if events[1].Sequence != 5 {
		t.Errorf("expected moved event at sequence 5, got %d", events[1].Sequence)
	}
}

func TestGame_RemoveKeepsSequences(t *testing.T) {
	g := &Game{}
	g.Put(model.ScoreEvent{ClientID: "c1", ServerID: "s1", Sequence: 1})
	g.Put(model.ScoreEvent{ClientID: "c2", ServerID: "s2", Sequence: 2})
	g.Put(model.ScoreEvent{ClientID: "c3", ServerID: "s3", Sequence: 3})

	if !g.Remove("s2") {
		t.Fatal("expected remove to succeed")
	}
	if g.Remove("s2") {
		t.Error("expected second remove to fail")
	}

	events := g.All()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// No renumbering: 1 and 3 keep their slots
	if events[0].Sequence != 1 || events[1].Sequence != 3 {
		t.Errorf("expected sequences 1,3 after delete, got %d,%d", events[0].Sequence, events[1].Sequence)
	}
}

func TestGame_Lookups(t *testing.T) {
	g := &Game{}
	g.Put(model.ScoreEvent{ClientID: "c1", ServerID: "s1", Sequence: 4})

	if e, ok := g.ByServerID("s1"); !ok || e.ClientID != "c1" {
		t.Errorf("ByServerID failed: %v %v", e, ok)
	}
	if e, ok := g.ByClientID("c1"); !ok || e.ServerID != "s1" {
		t.Errorf("ByClientID failed: %v %v", e, ok)
	}
	if e, ok := g.AtSequence(4); !ok || e.ServerID != "s1" {
		t.Errorf("AtSequence failed: %v %v", e, ok)
	}
	if _, ok := g.ByServerID("nope"); ok {
		t.Error("expected miss for unknown server id")
	}
	if _, ok := g.AtSequence(9); ok {
		t.Error("expected miss for unoccupied sequence")
	}
}
