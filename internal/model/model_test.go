package model

import (
	"reflect"
	"testing"
)

func TestSeason_Next(t *testing.T) {
	tests := []struct {
		in, want Season
	}{
		{Spring, Summer},
		{Summer, Autumn},
		{Autumn, Winter},
		{Winter, Spring},
		{"monsoon", Spring},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.want {
			t.Errorf("%s.Next() = %s, want %s", tt.in, got, tt.want)
		}
	}
	if Season("monsoon").Valid() {
		t.Error("monsoon should not be valid")
	}
}

func TestGameState_Clone(t *testing.T) {
	s := &GameState{
		Money:             10,
		Inventory:         map[string]int{"wheat": 2},
		CostBasis:         map[string]int{"wheat": 20},
		UnlockedLocations: []string{"istanbul"},
		Events:            []MarketEvent{{ID: "glut", RemainingTurns: 2}},
		Weather:           &Weather{ID: "fog", RemainingTurns: 1},
		Chain:             &ChainState{ID: "c", Stages: 3},
	}
	s.Log(HistoryBuy, "bought")

	c := s.Clone()
	if !reflect.DeepEqual(c, s) {
		t.Fatal("clone differs from source")
	}

	c.Inventory["wheat"] = 5
	c.CostBasis["rice"] = 1
	c.UnlockedLocations[0] = "cairo"
	c.Events[0].RemainingTurns = 9
	c.Weather.RemainingTurns = 9
	c.Chain.Progress = 2
	c.Log(HistoryTravel, "moved")

	if s.Inventory["wheat"] != 2 || len(s.CostBasis) != 1 || s.UnlockedLocations[0] != "istanbul" ||
		s.Events[0].RemainingTurns != 2 || s.Weather.RemainingTurns != 1 || s.Chain.Progress != 0 || len(s.History) != 1 {
		t.Errorf("mutating the clone changed the source: %+v", s)
	}
}

func TestClone_PreservesNil(t *testing.T) {
	s := &GameState{}
	if c := s.Clone(); c.Inventory != nil || c.Events != nil || c.History != nil || c.Weather != nil {
		t.Errorf("nil fields became non-nil: %+v", c)
	}
	p := &Progression{Level: 1}
	if c := p.Clone(); !reflect.DeepEqual(c, p) {
		t.Errorf("progression clone = %+v, want %+v", c, p)
	}
}

func TestGameState_Queries(t *testing.T) {
	s := &GameState{
		Inventory:         map[string]int{"wheat": 2, "silk": 3},
		UnlockedLocations: []string{"istanbul", "mumbai"},
	}
	if s.UsedSlots() != 5 {
		t.Errorf("UsedSlots = %d, want 5", s.UsedSlots())
	}
	if !s.IsUnlocked("mumbai") || s.IsUnlocked("beijing") {
		t.Error("IsUnlocked is wrong")
	}
	p := &Progression{AchievementsUnlocked: []string{"first_trade"}, PerksUnlocked: []string{"profit_basic"}}
	if !p.HasAchievement("first_trade") || p.HasAchievement("level_2") || !p.HasPerk("profit_basic") {
		t.Error("Has* lookups are wrong")
	}
}
