// Package model defines the core domain types shared across the caravan
// engine. Money is integral gold; fractional math happens in pricing and is
// rounded before it reaches a GameState.
package model

// Season is one of the four phases of the in-game year.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// Seasons lists the cycle in order.
var Seasons = []Season{Spring, Summer, Autumn, Winter}

// Next returns the season that follows s in the cycle. An unknown season
// maps to spring.
func (s Season) Next() Season {
	for i, v := range Seasons {
		if v == s {
			return Seasons[(i+1)%len(Seasons)]
		}
	}
	return Spring
}

// Valid reports whether s is one of the four known seasons.
func (s Season) Valid() bool {
	for _, v := range Seasons {
		if v == s {
			return true
		}
	}
	return false
}

// HistoryKind tags a history entry for display filtering.
type HistoryKind string

const (
	HistoryBuy     HistoryKind = "buy"
	HistorySell    HistoryKind = "sell"
	HistoryTravel  HistoryKind = "travel"
	HistoryEvent   HistoryKind = "event"
	HistoryWeather HistoryKind = "weather"
	HistorySeason  HistoryKind = "season"
	HistoryUnlock  HistoryKind = "unlock"
	HistoryUpgrade HistoryKind = "upgrade"
)

// HistoryEntry is one line of the append-only game log.
type HistoryEntry struct {
	Type    HistoryKind `json:"type"`
	Message string      `json:"message"`
	Turn    int         `json:"turn"`
}

// Weather is an active global modifier. At most one is present on a
// GameState and RemainingTurns is always positive while it is.
type Weather struct {
	ID                 string  `json:"id" yaml:"id"`
	Name               string  `json:"name" yaml:"name"`
	Description        string  `json:"description" yaml:"description"`
	PriceModifier      float64 `json:"price_modifier" yaml:"price_modifier"`
	TravelCostModifier float64 `json:"travel_cost_modifier" yaml:"travel_cost_modifier"`
	Duration           int     `json:"duration" yaml:"duration"`
	RemainingTurns     int     `json:"remaining_turns" yaml:"-"`
}

// Target sentinels for MarketEvent.Target. Any other value is a good id or a
// category name.
const (
	TargetAll    = "all"
	TargetRandom = "random"
)

// MarketEvent is an active timed price modifier. Templates live in the
// catalog; instances on a GameState carry a countdown and, for "random"
// targets, the good picked when the event fired.
type MarketEvent struct {
	ID              string  `json:"id" yaml:"id"`
	Description     string  `json:"description" yaml:"description"`
	Target          string  `json:"target" yaml:"target"`
	ResolvedGood    string  `json:"resolved_good" yaml:"-"`
	PriceMultiplier float64 `json:"price_multiplier" yaml:"price_multiplier"`
	Duration        int     `json:"duration" yaml:"duration"`
	RemainingTurns  int     `json:"remaining_turns" yaml:"-"`
	IsSeasonal      bool    `json:"is_seasonal" yaml:"is_seasonal"`
	Season          Season  `json:"season" yaml:"season"`
	IsDaily         bool    `json:"is_daily" yaml:"is_daily"`
	IsRare          bool    `json:"is_rare" yaml:"is_rare"`
	ChainID         string  `json:"chain_id" yaml:"-"`
}

// EffectiveTarget is the target used at price-query time: the resolved good
// for "random" events, the declared target otherwise.
func (e MarketEvent) EffectiveTarget() string {
	if e.Target == TargetRandom {
		return e.ResolvedGood
	}
	return e.Target
}

// ChainState tracks the single active event chain.
type ChainState struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
	Stages   int    `json:"stages"`
}

// Vehicle is the purchased inventory upgrade. An empty Kind means the
// player still carries goods on foot.
type Vehicle struct {
	Kind  string `json:"kind"`
	Level int    `json:"level"`
}

// GameState is the root aggregate. Engine functions never modify a
// GameState they receive; they return a new one built from Clone.
type GameState struct {
	Mode              string         `json:"mode"`
	Money             int            `json:"money"`
	Inventory         map[string]int `json:"inventory"`
	CostBasis         map[string]int `json:"cost_basis"`
	CurrentLocation   string         `json:"current_location"`
	UnlockedLocations []string       `json:"unlocked_locations"`
	Turns             int            `json:"turns"`
	Events            []MarketEvent  `json:"events"`
	Weather           *Weather       `json:"weather"`
	Season            Season         `json:"season"`
	InventorySlots    int            `json:"inventory_slots"`
	MaxInventorySlots int            `json:"max_inventory_slots"`
	Vehicle           Vehicle        `json:"vehicle"`
	Chain             *ChainState    `json:"chain"`
	History           []HistoryEntry `json:"history"`
}

// UsedSlots returns the number of inventory slots currently occupied.
func (s *GameState) UsedSlots() int {
	n := 0
	for _, q := range s.Inventory {
		n += q
	}
	return n
}

// IsUnlocked reports whether locationID is in the unlocked set.
func (s *GameState) IsUnlocked(locationID string) bool {
	for _, id := range s.UnlockedLocations {
		if id == locationID {
			return true
		}
	}
	return false
}

// Log appends a history entry stamped with the current turn.
func (s *GameState) Log(kind HistoryKind, msg string) {
	s.History = append(s.History, HistoryEntry{Type: kind, Message: msg, Turn: s.Turns})
}

// Clone returns a deep copy. Nil maps and slices stay nil so a clone is
// reflect.DeepEqual to its source.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Inventory = cloneMap(s.Inventory)
	c.CostBasis = cloneMap(s.CostBasis)
	if s.UnlockedLocations != nil {
		c.UnlockedLocations = append([]string{}, s.UnlockedLocations...)
	}
	if s.Events != nil {
		c.Events = append([]MarketEvent{}, s.Events...)
	}
	if s.Weather != nil {
		w := *s.Weather
		c.Weather = &w
	}
	if s.Chain != nil {
		ch := *s.Chain
		c.Chain = &ch
	}
	if s.History != nil {
		c.History = append([]HistoryEntry{}, s.History...)
	}
	return &c
}

func cloneMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Progression is the player's cumulative XP, level and unlock record.
type Progression struct {
	Level                int      `json:"level"`
	XP                   int      `json:"xp"`
	XPToNext             int      `json:"xp_to_next"`
	TotalTrades          int      `json:"total_trades"`
	GoldEarned           int      `json:"gold_earned"`
	LocationsUnlocked    int      `json:"locations_unlocked"`
	PerksUnlocked        []string `json:"perks_unlocked"`
	AchievementsUnlocked []string `json:"achievements_unlocked"`
	CurrentStreak        int      `json:"current_streak"`
	BestStreak           int      `json:"best_streak"`
	WentBankrupt         bool     `json:"went_bankrupt"`
}

// HasAchievement reports whether id is already unlocked.
func (p *Progression) HasAchievement(id string) bool {
	return contains(p.AchievementsUnlocked, id)
}

// HasPerk reports whether id is already unlocked.
func (p *Progression) HasPerk(id string) bool {
	return contains(p.PerksUnlocked, id)
}

// Clone returns a deep copy with the same nil-ness as p.
func (p *Progression) Clone() *Progression {
	c := *p
	if p.PerksUnlocked != nil {
		c.PerksUnlocked = append([]string{}, p.PerksUnlocked...)
	}
	if p.AchievementsUnlocked != nil {
		c.AchievementsUnlocked = append([]string{}, p.AchievementsUnlocked...)
	}
	return &c
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
