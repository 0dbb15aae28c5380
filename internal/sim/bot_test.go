package sim_test

import (
	"context"
	"testing"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/game"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/rng"
	"github.com/atmx/caravan/internal/sim"
	"github.com/atmx/caravan/internal/trade"
)

// checkState asserts the invariants every reachable state must hold.
func checkState(t *testing.T, s *model.GameState, prevTurns int) {
	t.Helper()
	if s.Money < 0 {
		t.Fatalf("money went negative: %d", s.Money)
	}
	if used := s.UsedSlots(); used > s.InventorySlots {
		t.Fatalf("inventory %d exceeds capacity %d", used, s.InventorySlots)
	}
	if s.InventorySlots > s.MaxInventorySlots {
		t.Fatalf("capacity %d exceeds max %d", s.InventorySlots, s.MaxInventorySlots)
	}
	for id, q := range s.Inventory {
		if q <= 0 {
			t.Fatalf("inventory[%s] = %d", id, q)
		}
	}
	for id := range s.CostBasis {
		if _, ok := s.Inventory[id]; !ok {
			t.Fatalf("cost basis kept for %s after it left the inventory", id)
		}
	}
	if !s.IsUnlocked(s.CurrentLocation) {
		t.Fatalf("standing in locked location %s", s.CurrentLocation)
	}
	if s.Turns < prevTurns || s.Turns > prevTurns+1 {
		t.Fatalf("turns jumped from %d to %d", prevTurns, s.Turns)
	}
	if s.Weather != nil && s.Weather.RemainingTurns <= 0 {
		t.Fatalf("weather %s kept with %d turns left", s.Weather.ID, s.Weather.RemainingTurns)
	}
	for _, e := range s.Events {
		if e.RemainingTurns <= 0 {
			t.Fatalf("event %s kept with %d turns left", e.ID, e.RemainingTurns)
		}
	}
	if s.Chain != nil && s.Chain.Progress >= s.Chain.Stages {
		t.Fatalf("chain %s kept at %d/%d", s.Chain.ID, s.Chain.Progress, s.Chain.Stages)
	}
	for i := 1; i < len(s.History); i++ {
		if s.History[i].Turn < s.History[i-1].Turn {
			t.Fatalf("history out of order at %d", i)
		}
	}
	if want := (s.Turns / trade.SeasonLength) % len(model.Seasons); s.Season != model.Seasons[want] {
		t.Fatalf("season %s at turn %d, want %s", s.Season, s.Turns, model.Seasons[want])
	}
}

func TestBot_InvariantsHold(t *testing.T) {
	cat := catalog.Default()
	for _, m := range cat.Modes() {
		for seed := int64(1); seed <= 5; seed++ {
			t.Run(m.ID, func(t *testing.T) {
				engine := trade.NewEngine(cat, rng.New(seed))
				s, err := game.New(engine, m.ID, game.Options{})
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				defer s.Close()

				prev := 0
				bot := sim.NewBot(rng.New(seed + 1000))
				bot.OnStep = func(st *model.GameState) {
					checkState(t, st, prev)
					prev = st.Turns
				}
				rep, err := bot.Play(context.Background(), s, 80)
				if err != nil {
					t.Fatalf("Play: %v", err)
				}
				if rep.Actions == 0 {
					t.Fatalf("bot took no actions")
				}
				if rep.Turns > 80 {
					t.Fatalf("played %d turns past the cap", rep.Turns)
				}
				p := s.Progression()
				if p.Level < 1 || p.XP < 0 {
					t.Fatalf("progression = %+v", p)
				}
			})
		}
	}
}

func TestBot_Reproducible(t *testing.T) {
	play := func() *model.GameState {
		engine := trade.NewEngine(catalog.Default(), rng.New(42))
		s, err := game.New(engine, "career", game.Options{})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer s.Close()
		if _, err := sim.NewBot(rng.New(7)).Play(context.Background(), s, 30); err != nil {
			t.Fatalf("Play: %v", err)
		}
		return s.State()
	}
	a, b := play(), play()
	if a.Money != b.Money || a.Turns != b.Turns || a.CurrentLocation != b.CurrentLocation || len(a.History) != len(b.History) {
		t.Errorf("equal seeds diverged: %d/%d/%s vs %d/%d/%s", a.Money, a.Turns, a.CurrentLocation, b.Money, b.Turns, b.CurrentLocation)
	}
}

func TestBot_StopsOnCancel(t *testing.T) {
	engine := trade.NewEngine(catalog.Default(), rng.New(1))
	s, err := game.New(engine, "sandbox", game.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.NewBot(rng.New(1)).Play(ctx, s, 10); err == nil {
		t.Fatal("expected context error")
	}
	if s.State().Turns != 0 {
		t.Errorf("bot moved after cancel")
	}
}
