package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/config"
	"github.com/atmx/caravan/internal/leaderboard"
	"github.com/atmx/caravan/internal/save"
	"github.com/atmx/caravan/internal/store"
)

func testApp(t *testing.T) *app {
	t.Helper()
	color.NoColor = true
	return &app{
		cfg: &config.Config{Store: config.StoreMemory, Player: "Tester", Seed: 11},
		cat: catalog.Default(),
		kv:  store.NewMemoryStore(),
	}
}

func TestREPL(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)
	s, err := a.startSession(ctx, "sandbox", 0, false, 0)
	if err != nil {
		t.Fatalf("startSession: %v", err)
	}
	defer s.Close()

	in := strings.NewReader("help\nmarket\nbuy cotton 2\nsell cotton 5\nfly away\nsave 0\nsave 2\nhistory 3\nquit\nstatus\n")
	var out bytes.Buffer
	if err := a.repl(ctx, s, in, &out); err != nil {
		t.Fatalf("repl: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"buy 2 cotton",
		"not enough goods",
		`unknown command "fly"`,
		"slot 0 is the autosave",
		"Saved to slot 2.",
		"Bought 2 Cotton",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	saves := save.NewManager(a.kv)
	slots, err := saves.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if slots[0].Empty || slots[2].Empty || !slots[1].Empty {
		t.Errorf("slots = %+v, want autosave and slot 2 filled", slots)
	}
}

func TestREPL_ResumeAutosave(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)
	s, err := a.startSession(ctx, "career", 0, false, 0)
	if err != nil {
		t.Fatalf("startSession: %v", err)
	}
	if _, err := s.Travel(ctx, "mumbai"); err != nil {
		t.Fatalf("Travel: %v", err)
	}
	s.Close()

	resumed, err := a.startSession(ctx, "", save.AutosaveSlot, true, 0)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	defer resumed.Close()
	if st := resumed.State(); st.Mode != "career" || st.CurrentLocation != "mumbai" || st.Turns != 1 {
		t.Errorf("resumed state = %s at %s turn %d", st.Mode, st.CurrentLocation, st.Turns)
	}
}

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)

	results, err := a.simulate(ctx, 4, "career", 20, 100)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, r := range results {
		if r.seed != 100+int64(i) {
			t.Errorf("result %d seed = %d", i, r.seed)
		}
		if r.entry.ID == "" || r.entry.GameMode != "career" {
			t.Errorf("result %d entry = %+v", i, r.entry)
		}
	}

	stats, err := leaderboard.New(a.kv).Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalGames != 4 {
		t.Errorf("TotalGames = %d, want 4", stats.TotalGames)
	}

	again, err := a.simulate(ctx, 4, "career", 20, 100)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	for i := range results {
		if again[i].entry.Score != results[i].entry.Score || again[i].entry.Turns != results[i].entry.Turns {
			t.Errorf("game %d not reproducible: %d/%d vs %d/%d", i,
				results[i].entry.Score, results[i].entry.Turns, again[i].entry.Score, again[i].entry.Turns)
		}
	}
}
