// Package catalog holds the immutable reference data of the trading game:
// goods, locations, weather, event templates and chains, game modes, levels,
// perks, achievements and vehicle upgrades.
//
// The catalog is decoded from YAML once and never modified afterwards. Every
// accessor returns a copy, so callers cannot reach back into shared data.
// Player-specific state such as which locations are unlocked lives in
// model.GameState, never here.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/atmx/caravan/internal/model"
)

//go:embed catalog.yaml
var embedded []byte

// ErrInvalidCatalog is returned when catalog data fails validation.
var ErrInvalidCatalog = errors.New("catalog: invalid data")

// Category groups goods for category-wide market events.
type Category string

const (
	Food      Category = "food"
	Spices    Category = "spices"
	Luxury    Category = "luxury"
	Materials Category = "materials"
	Special   Category = "special"
	Rare      Category = "rare"
)

// Categories lists every valid category.
var Categories = []Category{Food, Spices, Luxury, Materials, Special, Rare}

// IsCategory reports whether s names a good category.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Good is a tradeable commodity.
type Good struct {
	ID              string       `yaml:"id" json:"id"`
	Name            string       `yaml:"name" json:"name"`
	BasePrice       int          `yaml:"base_price" json:"base_price"`
	Volatility      float64      `yaml:"volatility" json:"volatility"`
	Category        Category     `yaml:"category" json:"category"`
	PreferredSeason model.Season `yaml:"preferred_season" json:"preferred_season,omitempty"`
}

// LocalGood is a good listed at a location with its local price multiplier.
type LocalGood struct {
	GoodID     string  `yaml:"good" json:"good"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// Location is a city the player can travel to.
type Location struct {
	ID         string      `yaml:"id" json:"id"`
	Name       string      `yaml:"name" json:"name"`
	TravelCost int         `yaml:"travel_cost" json:"travel_cost"`
	UnlockCost int         `yaml:"unlock_cost" json:"unlock_cost,omitempty"` // 0: open from game start
	Goods      []LocalGood `yaml:"goods" json:"goods"`
}

// Unlockable reports whether the location has to be bought.
func (l Location) Unlockable() bool { return l.UnlockCost > 0 }

// Multiplier returns the local price multiplier for goodID, or 1 when the
// good is not listed here.
func (l Location) Multiplier(goodID string) float64 {
	for _, g := range l.Goods {
		if g.GoodID == goodID {
			return g.Multiplier
		}
	}
	return 1
}

// ChainStage is one weighted event of a chain.
type ChainStage struct {
	EventID string  `yaml:"event" json:"event"`
	Weight  float64 `yaml:"weight" json:"weight"`
}

// EventChain is a scripted sequence of events that fire together.
type EventChain struct {
	ID            string       `yaml:"id" json:"id"`
	Description   string       `yaml:"description" json:"description"`
	TriggerChance float64      `yaml:"trigger_chance" json:"trigger_chance"`
	Duration      int          `yaml:"duration" json:"duration"`
	Stages        []ChainStage `yaml:"stages" json:"stages"`
}

// WinRule is met when money reaches Money, optionally only while the turn
// count is within the mode's MaxTurns.
type WinRule struct {
	Money          int  `yaml:"money" json:"money"`
	WithinMaxTurns bool `yaml:"within_max_turns" json:"within_max_turns"`
}

// LoseRule lists the conditions that end a run in defeat. Nil thresholds
// are not checked.
type LoseRule struct {
	MoneyBelow     *int `yaml:"money_below" json:"money_below,omitempty"`
	MoneyAtOrBelow *int `yaml:"money_at_or_below" json:"money_at_or_below,omitempty"`
	TurnsExhausted bool `yaml:"turns_exhausted" json:"turns_exhausted"`
}

// ScoreKind selects the scoring formula of a mode.
type ScoreKind string

const (
	ScoreMoney      ScoreKind = "money"       // money
	ScoreTurnsBonus ScoreKind = "turns_bonus" // money + turnsLeft*factor
	ScoreTurnsRatio ScoreKind = "turns_ratio" // money*turnsLeft/factor
	ScoreProfit     ScoreKind = "profit"      // (money-startingMoney)*factor
)

// ScoreRule is a mode's scoring formula.
type ScoreRule struct {
	Kind   ScoreKind `yaml:"kind" json:"kind"`
	Factor int       `yaml:"factor" json:"factor"`
}

// Mode is a game-mode configuration. MaxTurns 0 means unlimited; a nil Win
// means the mode cannot be won.
type Mode struct {
	ID                string         `yaml:"id" json:"id"`
	Name              string         `yaml:"name" json:"name"`
	Description       string         `yaml:"description" json:"description"`
	StartingMoney     int            `yaml:"starting_money" json:"starting_money"`
	StartingInventory map[string]int `yaml:"starting_inventory" json:"starting_inventory"`
	UnlockedLocations []string       `yaml:"unlocked_locations" json:"unlocked_locations"`
	MaxTurns          int            `yaml:"max_turns" json:"max_turns"`
	Win               *WinRule       `yaml:"win" json:"win,omitempty"`
	Lose              LoseRule       `yaml:"lose" json:"lose"`
	Score             ScoreRule      `yaml:"score" json:"score"`
}

// Level is one row of the XP table.
type Level struct {
	Level      int      `yaml:"level" json:"level"`
	XPRequired int      `yaml:"xp_required" json:"xp_required"`
	Title      string   `yaml:"title" json:"title"`
	Perks      []string `yaml:"perks" json:"perks"`
}

// Perk is a passive bonus unlocked by levelling. Perks are tracked but not
// applied to prices or costs.
type Perk struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Tier        string `yaml:"tier" json:"tier"`
	Description string `yaml:"description" json:"description"`
}

// RequirementType names an achievement predicate.
type RequirementType string

const (
	ReqTotalTrades          RequirementType = "total_trades"
	ReqGoldEarned           RequirementType = "gold_earned"
	ReqLocationsUnlocked    RequirementType = "locations_unlocked"
	ReqProfitPerTrade       RequirementType = "profit_per_trade"
	ReqTurnsSurvived        RequirementType = "turns_survived"
	ReqLevelReached         RequirementType = "level_reached"
	ReqLevelWithinModeTurns RequirementType = "level_within_mode_turns"
	ReqMoneyWithinTurns     RequirementType = "money_within_turns"
	ReqBankruptcyRecovery   RequirementType = "bankruptcy_recovery"
	ReqPerfectTrade         RequirementType = "perfect_trade"
)

var requirementTypes = map[RequirementType]bool{
	ReqTotalTrades: true, ReqGoldEarned: true, ReqLocationsUnlocked: true,
	ReqProfitPerTrade: true, ReqTurnsSurvived: true, ReqLevelReached: true,
	ReqLevelWithinModeTurns: true, ReqMoneyWithinTurns: true,
	ReqBankruptcyRecovery: true, ReqPerfectTrade: true,
}

// Requirement is an achievement predicate. Turns is only used by
// money_within_turns.
type Requirement struct {
	Type  RequirementType `yaml:"type" json:"type"`
	Value int             `yaml:"value" json:"value"`
	Turns int             `yaml:"turns" json:"turns,omitempty"`
}

// Achievement is a one-time milestone with an XP reward.
type Achievement struct {
	ID          string      `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Category    string      `yaml:"category" json:"category"`
	XPReward    int         `yaml:"xp_reward" json:"xp_reward"`
	Requirement Requirement `yaml:"requirement" json:"requirement"`
}

// VehicleTier is one purchasable level of a vehicle line.
type VehicleTier struct {
	Level int    `yaml:"level" json:"level"`
	Name  string `yaml:"name" json:"name"`
	Cost  int    `yaml:"cost" json:"cost"`
	Slots int    `yaml:"slots" json:"slots"`
}

// VehicleLine is an upgrade path (cart, wagon, ship).
type VehicleLine struct {
	Kind  string        `yaml:"kind" json:"kind"`
	Name  string        `yaml:"name" json:"name"`
	Tiers []VehicleTier `yaml:"tiers" json:"tiers"`
}

// Tier returns the tier at level, if any.
func (v VehicleLine) Tier(level int) (VehicleTier, bool) {
	for _, t := range v.Tiers {
		if t.Level == level {
			return t, true
		}
	}
	return VehicleTier{}, false
}

// Settings are the global starting parameters.
type Settings struct {
	InitialInventorySlots int    `yaml:"initial_inventory_slots" json:"initial_inventory_slots"`
	Home                  string `yaml:"home" json:"home"`
	DefaultMode           string `yaml:"default_mode" json:"default_mode"`
}

type document struct {
	Settings     Settings            `yaml:"settings"`
	Goods        []Good              `yaml:"goods"`
	Locations    []Location          `yaml:"locations"`
	Weather      []model.Weather     `yaml:"weather"`
	Events       []model.MarketEvent `yaml:"events"`
	Chains       []EventChain        `yaml:"chains"`
	Modes        []Mode              `yaml:"modes"`
	Levels       []Level             `yaml:"levels"`
	Perks        []Perk              `yaml:"perks"`
	Achievements []Achievement       `yaml:"achievements"`
	Vehicles     []VehicleLine       `yaml:"vehicles"`
}

// Catalog is a validated, read-only view over the game's reference data.
type Catalog struct {
	doc document

	goods        map[string]int
	locations    map[string]int
	events       map[string]int
	chains       map[string]int
	modes        map[string]int
	perks        map[string]int
	achievements map[string]int
	vehicles     map[string]int
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog embedded in the binary. It panics if the
// embedded file is invalid, which TestDefault guards against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embedded)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// LoadFile parses and validates a catalog override from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML catalog data and validates cross references. Unknown
// keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c := &Catalog{doc: doc}
	if err := c.index(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, fmt.Sprintf(format, args...))
}

func indexBy[T any](kind string, items []T, id func(T) string) (map[string]int, error) {
	m := make(map[string]int, len(items))
	for i, it := range items {
		k := id(it)
		if k == "" {
			return nil, invalid("%s #%d has no id", kind, i)
		}
		if _, dup := m[k]; dup {
			return nil, invalid("duplicate %s %q", kind, k)
		}
		m[k] = i
	}
	return m, nil
}

func (c *Catalog) index() error {
	var err error
	d := &c.doc
	if c.goods, err = indexBy("good", d.Goods, func(g Good) string { return g.ID }); err != nil {
		return err
	}
	if c.locations, err = indexBy("location", d.Locations, func(l Location) string { return l.ID }); err != nil {
		return err
	}
	if _, err = indexBy("weather", d.Weather, func(w model.Weather) string { return w.ID }); err != nil {
		return err
	}
	if c.events, err = indexBy("event", d.Events, func(e model.MarketEvent) string { return e.ID }); err != nil {
		return err
	}
	if c.chains, err = indexBy("chain", d.Chains, func(ch EventChain) string { return ch.ID }); err != nil {
		return err
	}
	if c.modes, err = indexBy("mode", d.Modes, func(m Mode) string { return m.ID }); err != nil {
		return err
	}
	if c.perks, err = indexBy("perk", d.Perks, func(p Perk) string { return p.ID }); err != nil {
		return err
	}
	if c.achievements, err = indexBy("achievement", d.Achievements, func(a Achievement) string { return a.ID }); err != nil {
		return err
	}
	if c.vehicles, err = indexBy("vehicle", d.Vehicles, func(v VehicleLine) string { return v.Kind }); err != nil {
		return err
	}
	return nil
}

func (c *Catalog) validate() error {
	d := &c.doc

	if d.Settings.InitialInventorySlots <= 0 {
		return invalid("settings need positive inventory slots")
	}
	home, ok := c.locations[d.Settings.Home]
	if !ok {
		return invalid("home location %q not found", d.Settings.Home)
	}
	if l := d.Locations[home]; l.TravelCost != 0 || l.Unlockable() {
		return invalid("home location %q must be free to reach and always open", l.ID)
	}

	for _, g := range d.Goods {
		if g.BasePrice <= 0 {
			return invalid("good %q: base price must be positive", g.ID)
		}
		if g.Volatility < 0 || g.Volatility > 1 {
			return invalid("good %q: volatility out of [0,1]", g.ID)
		}
		if !IsCategory(string(g.Category)) {
			return invalid("good %q: unknown category %q", g.ID, g.Category)
		}
		if g.PreferredSeason != "" && !g.PreferredSeason.Valid() {
			return invalid("good %q: unknown season %q", g.ID, g.PreferredSeason)
		}
	}

	if _, ok := c.modes[d.Settings.DefaultMode]; !ok {
		return invalid("default mode %q not found", d.Settings.DefaultMode)
	}

	for _, l := range d.Locations {
		if l.TravelCost < 0 || l.UnlockCost < 0 {
			return invalid("location %q: negative cost", l.ID)
		}
		for _, lg := range l.Goods {
			if _, ok := c.goods[lg.GoodID]; !ok {
				return invalid("location %q lists unknown good %q", l.ID, lg.GoodID)
			}
			if lg.Multiplier < 0 {
				return invalid("location %q: negative multiplier for %q", l.ID, lg.GoodID)
			}
		}
	}

	for _, w := range d.Weather {
		if w.Duration <= 0 || w.PriceModifier < 0 || w.TravelCostModifier < 0 {
			return invalid("weather %q: bad duration or modifier", w.ID)
		}
	}

	for _, e := range d.Events {
		if e.Duration <= 0 || e.PriceMultiplier < 0 {
			return invalid("event %q: bad duration or multiplier", e.ID)
		}
		switch {
		case e.Target == model.TargetAll, e.Target == model.TargetRandom, IsCategory(e.Target):
		default:
			if _, ok := c.goods[e.Target]; !ok {
				return invalid("event %q targets unknown %q", e.ID, e.Target)
			}
		}
		if e.IsSeasonal && !e.Season.Valid() {
			return invalid("event %q is seasonal without a valid season", e.ID)
		}
	}

	for _, ch := range d.Chains {
		if ch.Duration <= 0 || ch.TriggerChance < 0 || ch.TriggerChance > 1 || len(ch.Stages) == 0 {
			return invalid("chain %q: bad duration, chance or stages", ch.ID)
		}
		for _, s := range ch.Stages {
			if _, ok := c.events[s.EventID]; !ok {
				return invalid("chain %q references unknown event %q", ch.ID, s.EventID)
			}
			if s.Weight <= 0 {
				return invalid("chain %q: stage %q has non-positive weight", ch.ID, s.EventID)
			}
		}
	}

	for _, m := range d.Modes {
		if m.StartingMoney < 0 {
			return invalid("mode %q: negative starting money", m.ID)
		}
		used := 0
		for id, q := range m.StartingInventory {
			if _, ok := c.goods[id]; !ok {
				return invalid("mode %q starts with unknown good %q", m.ID, id)
			}
			if q <= 0 {
				return invalid("mode %q: non-positive starting quantity of %q", m.ID, id)
			}
			used += q
		}
		if used > d.Settings.InitialInventorySlots {
			return invalid("mode %q starting inventory exceeds %d slots", m.ID, d.Settings.InitialInventorySlots)
		}
		for _, id := range m.UnlockedLocations {
			if _, ok := c.locations[id]; !ok {
				return invalid("mode %q unlocks unknown location %q", m.ID, id)
			}
		}
		switch m.Score.Kind {
		case ScoreMoney, ScoreTurnsBonus, ScoreProfit:
		case ScoreTurnsRatio:
			if m.Score.Factor == 0 {
				return invalid("mode %q: turns_ratio needs a non-zero factor", m.ID)
			}
		default:
			return invalid("mode %q: unknown score kind %q", m.ID, m.Score.Kind)
		}
		if m.MaxTurns < 0 || ((m.Lose.TurnsExhausted || (m.Win != nil && m.Win.WithinMaxTurns)) && m.MaxTurns == 0) {
			return invalid("mode %q: turn rules need a positive max_turns", m.ID)
		}
	}

	if len(d.Levels) == 0 || d.Levels[0].XPRequired != 0 {
		return invalid("level table must start at 0 XP")
	}
	for i, l := range d.Levels {
		if l.Level != i+1 {
			return invalid("levels must be numbered 1..n, got %d at #%d", l.Level, i)
		}
		if i > 0 && l.XPRequired <= d.Levels[i-1].XPRequired {
			return invalid("level %d: xp thresholds must ascend", l.Level)
		}
		for _, p := range l.Perks {
			if _, ok := c.perks[p]; !ok {
				return invalid("level %d unlocks unknown perk %q", l.Level, p)
			}
		}
	}

	for _, a := range d.Achievements {
		if !requirementTypes[a.Requirement.Type] {
			return invalid("achievement %q: unknown requirement %q", a.ID, a.Requirement.Type)
		}
		if a.XPReward < 0 {
			return invalid("achievement %q: negative reward", a.ID)
		}
	}

	for _, v := range d.Vehicles {
		if len(v.Tiers) == 0 {
			return invalid("vehicle %q has no tiers", v.Kind)
		}
		for i, t := range v.Tiers {
			if t.Level != i+1 || t.Cost < 0 || t.Slots <= 0 {
				return invalid("vehicle %q tier #%d is malformed", v.Kind, i)
			}
			if i > 0 && t.Slots <= v.Tiers[i-1].Slots {
				return invalid("vehicle %q: tier slots must ascend", v.Kind)
			}
		}
	}
	return nil
}

// --- Accessors (all return copies) ---

// Settings returns the global starting parameters.
func (c *Catalog) Settings() Settings { return c.doc.Settings }

// Home returns the home location.
func (c *Catalog) Home() Location {
	l, _ := c.Location(c.doc.Settings.Home)
	return l
}

// Goods returns every good in catalog order.
func (c *Catalog) Goods() []Good {
	return append([]Good(nil), c.doc.Goods...)
}

// Good looks a good up by id.
func (c *Catalog) Good(id string) (Good, bool) {
	i, ok := c.goods[id]
	if !ok {
		return Good{}, false
	}
	return c.doc.Goods[i], true
}

// Locations returns every location in catalog order.
func (c *Catalog) Locations() []Location {
	out := make([]Location, len(c.doc.Locations))
	for i, l := range c.doc.Locations {
		out[i] = copyLocation(l)
	}
	return out
}

// Location looks a location up by id.
func (c *Catalog) Location(id string) (Location, bool) {
	i, ok := c.locations[id]
	if !ok {
		return Location{}, false
	}
	return copyLocation(c.doc.Locations[i]), true
}

func copyLocation(l Location) Location {
	l.Goods = append([]LocalGood(nil), l.Goods...)
	return l
}

// Weather returns the weather templates.
func (c *Catalog) Weather() []model.Weather {
	return append([]model.Weather(nil), c.doc.Weather...)
}

// Events returns every market event template.
func (c *Catalog) Events() []model.MarketEvent {
	return append([]model.MarketEvent(nil), c.doc.Events...)
}

// Event looks an event template up by id.
func (c *Catalog) Event(id string) (model.MarketEvent, bool) {
	i, ok := c.events[id]
	if !ok {
		return model.MarketEvent{}, false
	}
	return c.doc.Events[i], true
}

// Chains returns the event chains in catalog order.
func (c *Catalog) Chains() []EventChain {
	out := make([]EventChain, len(c.doc.Chains))
	for i, ch := range c.doc.Chains {
		ch.Stages = append([]ChainStage(nil), ch.Stages...)
		out[i] = ch
	}
	return out
}

// Chain looks a chain up by id.
func (c *Catalog) Chain(id string) (EventChain, bool) {
	i, ok := c.chains[id]
	if !ok {
		return EventChain{}, false
	}
	ch := c.doc.Chains[i]
	ch.Stages = append([]ChainStage(nil), ch.Stages...)
	return ch, true
}

// Modes returns every game mode in catalog order.
func (c *Catalog) Modes() []Mode {
	out := make([]Mode, len(c.doc.Modes))
	for i, m := range c.doc.Modes {
		out[i] = copyMode(m)
	}
	return out
}

// Mode looks a game mode up by id.
func (c *Catalog) Mode(id string) (Mode, bool) {
	i, ok := c.modes[id]
	if !ok {
		return Mode{}, false
	}
	return copyMode(c.doc.Modes[i]), true
}

func copyMode(m Mode) Mode {
	inv := make(map[string]int, len(m.StartingInventory))
	for k, v := range m.StartingInventory {
		inv[k] = v
	}
	m.StartingInventory = inv
	m.UnlockedLocations = append([]string(nil), m.UnlockedLocations...)
	if m.Win != nil {
		w := *m.Win
		m.Win = &w
	}
	if m.Lose.MoneyBelow != nil {
		v := *m.Lose.MoneyBelow
		m.Lose.MoneyBelow = &v
	}
	if m.Lose.MoneyAtOrBelow != nil {
		v := *m.Lose.MoneyAtOrBelow
		m.Lose.MoneyAtOrBelow = &v
	}
	return m
}

// InitialUnlocked returns the locations open at the start of a game in mode:
// every location without an unlock cost plus any the mode opens, in catalog
// order.
func (c *Catalog) InitialUnlocked(mode Mode) []string {
	extra := make(map[string]bool, len(mode.UnlockedLocations))
	for _, id := range mode.UnlockedLocations {
		extra[id] = true
	}
	var out []string
	for _, l := range c.doc.Locations {
		if !l.Unlockable() || extra[l.ID] {
			out = append(out, l.ID)
		}
	}
	return out
}

// Levels returns the XP table in ascending order.
func (c *Catalog) Levels() []Level {
	out := make([]Level, len(c.doc.Levels))
	for i, l := range c.doc.Levels {
		l.Perks = append([]string(nil), l.Perks...)
		out[i] = l
	}
	return out
}

// MaxLevel returns the highest level in the table.
func (c *Catalog) MaxLevel() int { return len(c.doc.Levels) }

// Level returns row n of the XP table.
func (c *Catalog) Level(n int) (Level, bool) {
	if n < 1 || n > len(c.doc.Levels) {
		return Level{}, false
	}
	l := c.doc.Levels[n-1]
	l.Perks = append([]string(nil), l.Perks...)
	return l, true
}

// Perk looks a perk up by id.
func (c *Catalog) Perk(id string) (Perk, bool) {
	i, ok := c.perks[id]
	if !ok {
		return Perk{}, false
	}
	return c.doc.Perks[i], true
}

// Achievements returns every achievement in catalog order.
func (c *Catalog) Achievements() []Achievement {
	return append([]Achievement(nil), c.doc.Achievements...)
}

// Achievement looks an achievement up by id.
func (c *Catalog) Achievement(id string) (Achievement, bool) {
	i, ok := c.achievements[id]
	if !ok {
		return Achievement{}, false
	}
	return c.doc.Achievements[i], true
}

// Vehicles returns every vehicle line.
func (c *Catalog) Vehicles() []VehicleLine {
	out := make([]VehicleLine, len(c.doc.Vehicles))
	for i, v := range c.doc.Vehicles {
		v.Tiers = append([]VehicleTier(nil), v.Tiers...)
		out[i] = v
	}
	return out
}

// Vehicle looks a vehicle line up by kind.
func (c *Catalog) Vehicle(kind string) (VehicleLine, bool) {
	i, ok := c.vehicles[kind]
	if !ok {
		return VehicleLine{}, false
	}
	v := c.doc.Vehicles[i]
	v.Tiers = append([]VehicleTier(nil), v.Tiers...)
	return v, true
}

// MaxInventorySlots is the largest capacity any vehicle can provide.
func (c *Catalog) MaxInventorySlots() int {
	best := c.doc.Settings.InitialInventorySlots
	for _, v := range c.doc.Vehicles {
		for _, t := range v.Tiers {
			if t.Slots > best {
				best = t.Slots
			}
		}
	}
	return best
}
