package save_test

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/progression"
	"github.com/atmx/caravan/internal/rng"
	"github.com/atmx/caravan/internal/save"
	"github.com/atmx/caravan/internal/store"
	"github.com/atmx/caravan/internal/trade"
)

// playedGame returns a state and progression with a bit of everything in
// them: goods, cost basis, an active event, weather and history.
func playedGame(t *testing.T) (*model.GameState, *model.Progression) {
	t.Helper()
	cat := catalog.Default()
	e := trade.NewEngine(cat, rng.Fixed(0.5))
	tr := progression.NewTracker(cat)

	s, err := e.NewGame("career")
	if err != nil {
		t.Fatal(err)
	}
	p := tr.Initial(len(s.UnlockedLocations))

	s, r, err := e.Buy(s, "wheat", 3)
	if err != nil {
		t.Fatal(err)
	}
	p, _ = tr.RecordTrade(p, progression.Trade{Profit: r.Profit}, progression.Facts{Money: s.Money})

	s.Events = append(s.Events, model.MarketEvent{ID: "commodity_bubble", Target: "random", ResolvedGood: "silk", PriceMultiplier: 10, Duration: 3, RemainingTurns: 3, IsDaily: true, IsRare: true})
	s.Weather = &model.Weather{ID: "fog", Name: "Fog", PriceModifier: 0.9, TravelCostModifier: 1.2, Duration: 2, RemainingTurns: 2}
	s, _, err = e.TravelTo(s, "mumbai")
	if err != nil {
		t.Fatal(err)
	}
	return s, p
}

type failingStore struct {
	store.Store
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := save.NewManager(store.NewMemoryStore())
	s, p := playedGame(t)

	saved, err := m.Save(ctx, 2, s, p)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Version != save.Version || saved.Timestamp == 0 {
		t.Errorf("bundle header = %q @ %d", saved.Version, saved.Timestamp)
	}

	got, err := m.Load(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.GameState, s) {
		t.Errorf("state differs after load:\n got %+v\nwant %+v", got.GameState, s)
	}
	if !reflect.DeepEqual(got.Progression, p) {
		t.Errorf("progression differs after load:\n got %+v\nwant %+v", got.Progression, p)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := save.NewManager(store.NewMemoryStore())
	s, p := playedGame(t)
	if _, err := src.Save(ctx, save.AutosaveSlot, s, p); err != nil {
		t.Fatal(err)
	}

	payload, err := src.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}

	dst := save.NewManager(store.NewMemoryStore())
	b, err := dst.Import(ctx, payload)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.GameState, s) || !reflect.DeepEqual(b.Progression, p) {
		t.Error("imported bundle differs from the exported one")
	}
	ok, err := dst.HasAutosave(ctx)
	if err != nil || !ok {
		t.Errorf("HasAutosave after import = %v, %v", ok, err)
	}
}

func TestExport_NoAutosave(t *testing.T) {
	m := save.NewManager(store.NewMemoryStore())
	if _, err := m.Export(context.Background()); !errors.Is(err, save.ErrEmptySlot) {
		t.Errorf("err = %v, want ErrEmptySlot", err)
	}
}

func TestImport_Rejects(t *testing.T) {
	s, p := playedGame(t)
	encode := func(raw string) string { return base64.StdEncoding.EncodeToString([]byte(raw)) }
	valid, err := save.Encode(save.Bundle{GameState: s, Progression: p, Version: save.Version})
	if err != nil {
		t.Fatal(err)
	}
	oldMajor, err := save.Encode(save.Bundle{GameState: s, Progression: p, Version: "1.4.0"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not base64", "%%%", save.ErrInvalidBundle},
		{"not json", encode("hello"), save.ErrInvalidBundle},
		{"missing progression", encode(`{"game_state":{"current_location":"istanbul"},"version":"2.0.0"}`), save.ErrInvalidBundle},
		{"missing version", encode(`{"game_state":{},"progression":{}}`), save.ErrInvalidBundle},
		{"old major version", oldMajor, save.ErrIncompatibleVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := save.NewManager(store.NewMemoryStore())
			if _, err := m.Import(ctx, valid); err != nil {
				t.Fatal(err)
			}

			if _, err := m.Import(ctx, tt.payload); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			b, err := m.Load(ctx, save.AutosaveSlot)
			if err != nil || !reflect.DeepEqual(b.GameState, s) {
				t.Error("rejected import disturbed the autosave")
			}
		})
	}
}

func TestBundle_ValidateState(t *testing.T) {
	base, p := playedGame(t)
	tests := []struct {
		name   string
		mutate func(s *model.GameState)
	}{
		{"locked location", func(s *model.GameState) { s.CurrentLocation = "sydney" }},
		{"bad season", func(s *model.GameState) { s.Season = "monsoon" }},
		{"zero count", func(s *model.GameState) { s.Inventory["rice"] = 0 }},
		{"over capacity", func(s *model.GameState) { s.InventorySlots = 1 }},
		{"overflowing counts", func(s *model.GameState) {
			s.Inventory["rice"] = math.MaxInt
			s.Inventory["wheat"] = math.MaxInt
		}},
		{"expired event", func(s *model.GameState) { s.Events[0].RemainingTurns = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base.Clone()
			tt.mutate(s)
			err := save.Bundle{GameState: s, Progression: p, Version: save.Version}.Validate()
			if !errors.Is(err, save.ErrInvalidBundle) {
				t.Errorf("err = %v, want ErrInvalidBundle", err)
			}
		})
	}
}

func TestSave_SlotBounds(t *testing.T) {
	ctx := context.Background()
	m := save.NewManager(store.NewMemoryStore())
	s, p := playedGame(t)
	for _, slot := range []int{-1, save.Slots} {
		if _, err := m.Save(ctx, slot, s, p); !errors.Is(err, save.ErrSlotOutOfRange) {
			t.Errorf("Save(%d) err = %v", slot, err)
		}
		if _, err := m.Load(ctx, slot); !errors.Is(err, save.ErrSlotOutOfRange) {
			t.Errorf("Load(%d) err = %v", slot, err)
		}
	}
	if _, err := m.Load(ctx, 4); !errors.Is(err, save.ErrEmptySlot) {
		t.Errorf("Load(empty) err = %v", err)
	}
}

func TestSave_FailedWriteKeepsPreviousBundle(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s, p := playedGame(t)
	if _, err := save.NewManager(kv).Save(ctx, 1, s, p); err != nil {
		t.Fatal(err)
	}

	later := s.Clone()
	later.Money += 1000
	if _, err := save.NewManager(failingStore{kv}).Save(ctx, 1, later, p); err == nil {
		t.Fatal("expected the write to fail")
	}

	b, err := save.NewManager(kv).Load(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b.GameState.Money != s.Money {
		t.Errorf("money = %d, want the previously saved %d", b.GameState.Money, s.Money)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	m := save.NewManager(kv)
	s, p := playedGame(t)
	if _, err := m.Save(ctx, 0, s, p); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Save(ctx, 3, s, p); err != nil {
		t.Fatal(err)
	}
	if err := kv.Put(ctx, "save:slot:4", []byte("{garbage")); err != nil {
		t.Fatal(err)
	}

	infos, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != save.Slots {
		t.Fatalf("got %d slots", len(infos))
	}
	if infos[0].Empty || infos[0].Mode != "career" || infos[0].Turns != 1 {
		t.Errorf("slot 0 = %+v", infos[0])
	}
	if !infos[1].Empty || !infos[2].Empty {
		t.Error("slots 1 and 2 should be empty")
	}
	if !errors.Is(infos[4].Err, save.ErrInvalidBundle) {
		t.Errorf("slot 4 err = %v", infos[4].Err)
	}

	if err := m.Delete(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.HasAutosave(ctx); ok {
		t.Error("autosave still present after delete")
	}
}

type recordingStore struct {
	store.Store
	gets []string
}

func (r *recordingStore) Get(ctx context.Context, key string) ([]byte, error) {
	r.gets = append(r.gets, key)
	return r.Store.Get(ctx, key)
}

func TestList_ReadsOnlyOccupiedSlots(t *testing.T) {
	ctx := context.Background()
	kv := &recordingStore{Store: store.NewMemoryStore()}
	m := save.NewManager(kv)
	s, p := playedGame(t)
	if _, err := m.Save(ctx, 3, s, p); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"save:slot:9", "save:slot:x", "leaderboard"} {
		if err := kv.Put(ctx, k, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i, info := range infos {
		if want := i != 3; info.Empty != want || info.Err != nil {
			t.Errorf("slot %d = %+v, want empty=%v", i, info, want)
		}
	}
	if !reflect.DeepEqual(kv.gets, []string{"save:slot:3"}) {
		t.Errorf("gets = %v, want only the occupied slot", kv.gets)
	}
}
