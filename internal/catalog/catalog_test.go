package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/atmx/caravan/internal/catalog"
)

func TestDefault(t *testing.T) {
	c := catalog.Default()

	counts := []struct {
		name string
		got  int
		want int
	}{
		{"goods", len(c.Goods()), 31},
		{"locations", len(c.Locations()), 14},
		{"weather", len(c.Weather()), 4},
		{"events", len(c.Events()), 27},
		{"chains", len(c.Chains()), 5},
		{"modes", len(c.Modes()), 5},
		{"levels", len(c.Levels()), 10},
		{"achievements", len(c.Achievements()), 21},
		{"vehicles", len(c.Vehicles()), 3},
	}
	for _, tt := range counts {
		if tt.got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if home := c.Home(); home.ID != "istanbul" || home.TravelCost != 0 {
		t.Errorf("home = %+v", home)
	}
	if got := c.MaxInventorySlots(); got != 150 {
		t.Errorf("MaxInventorySlots = %d, want 150", got)
	}
	if c.MaxLevel() != 10 {
		t.Errorf("MaxLevel = %d, want 10", c.MaxLevel())
	}
	for _, l := range c.Levels() {
		for _, p := range l.Perks {
			if _, ok := c.Perk(p); !ok {
				t.Errorf("level %d perk %q missing", l.Level, p)
			}
		}
	}
}

func TestInitialUnlocked(t *testing.T) {
	c := catalog.Default()
	tests := []struct {
		mode string
		want []string
	}{
		{"sandbox", []string{"istanbul", "mumbai", "cairo", "venice"}},
		{"speedrun", []string{"istanbul", "mumbai", "cairo", "venice"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			m, ok := c.Mode(tt.mode)
			if !ok {
				t.Fatalf("mode %q missing", tt.mode)
			}
			if got := c.InitialUnlocked(m); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookupsReturnCopies(t *testing.T) {
	c := catalog.Default()

	m, _ := c.Mode("career")
	m.StartingInventory["wheat"] = 99
	*m.Lose.MoneyBelow = 0
	again, _ := c.Mode("career")
	if again.StartingInventory["wheat"] != 2 || *again.Lose.MoneyBelow != -1000 {
		t.Errorf("mode mutation leaked into catalog: %+v", again)
	}

	loc, _ := c.Location("istanbul")
	loc.Goods[0].Multiplier = 9
	if fresh, _ := c.Location("istanbul"); fresh.Goods[0].Multiplier != 0.8 {
		t.Errorf("location mutation leaked: %v", fresh.Goods[0])
	}

	v, _ := c.Vehicle("cart")
	v.Tiers[0].Slots = 1
	if fresh, _ := c.Vehicle("cart"); fresh.Tiers[0].Slots != 40 {
		t.Errorf("vehicle mutation leaked: %v", fresh.Tiers[0])
	}

	if _, ok := c.Good("unobtainium"); ok {
		t.Error("unknown good found")
	}
}

const minimal = `
settings: {initial_inventory_slots: 10, home: town, default_mode: free}
goods:
  - {id: salt, name: Salt, base_price: 5, volatility: 0.1, category: food}
locations:
  - {id: town, name: Town, travel_cost: 0, goods: [{good: salt, multiplier: 1.0}]}
  - {id: port, name: Port, travel_cost: 10, unlock_cost: 50}
events:
  - {id: glut, description: Salt glut, target: salt, price_multiplier: 0.5, duration: 2}
modes:
  - {id: free, name: Free, starting_money: 100, score: {kind: money}}
levels:
  - {level: 1, xp_required: 0, title: Novice}
  - {level: 2, xp_required: 50, title: Trader}
`

func TestParse(t *testing.T) {
	c, err := catalog.Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.Goods()) != 1 || c.Home().ID != "town" {
		t.Errorf("unexpected catalog: %d goods, home %s", len(c.Goods()), c.Home().ID)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		wantMsg string
	}{
		{"bad yaml", "settings:", "settings: [", ""},
		{"unknown local good", "{good: salt,", "{good: pepper,", "unknown good"},
		{"duplicate location", "id: port", "id: town", "duplicate location"},
		{"missing home", "home: town", "home: castle", "home location"},
		{"unknown default mode", "default_mode: free", "default_mode: hard", "default mode"},
		{"event target", "target: salt", "target: pepper", "targets unknown"},
		{"bad category", "category: food", "category: toys", "unknown category"},
		{"level gap", "{level: 2,", "{level: 3,", "numbered"},
		{"unknown field", "price_multiplier: 0.5,", "price_multiplier: 0.5, travel_cost_modifier: 1.5,", "travel_cost_modifier"},
		{"uncapped turn rule", "score: {kind: money}", "lose: {turns_exhausted: true}, score: {kind: money}", "max_turns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(minimal, tt.old, tt.new, 1)
			if data == minimal {
				t.Fatalf("fixture unchanged; %q not found", tt.old)
			}
			_, err := catalog.Parse([]byte(data))
			if !errors.Is(err, catalog.ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog, got %v", err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(minimal), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, err := catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
