// Package progression turns trading and travel into XP, levels, perks and
// achievements. Every call returns a new Progression together with a Delta
// describing what changed, so callers can announce level-ups and unlocks.
package progression

import (
	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/model"
)

// XPFromTrade is one XP per ten gold of profit. Losing trades grant nothing.
func XPFromTrade(profit int) int {
	if profit <= 0 {
		return 0
	}
	return profit / 10
}

// XPFromTravel is one XP per hundred gold of travel cost.
func XPFromTravel(cost int) int {
	if cost <= 0 {
		return 0
	}
	return cost / 100
}

// Trade is the progression-relevant summary of an executed trade.
type Trade struct {
	Sell    bool
	Revenue int // sale proceeds; 0 on buys
	Profit  int
	Perfect bool
}

// Facts is the game context achievement predicates are checked against.
type Facts struct {
	Money    int
	Turns    int
	MaxTurns int // 0 when the mode has no turn cap

	LastProfit   int
	PerfectTrade bool
}

// Delta reports what a single update changed.
type Delta struct {
	XPGained      int                   `json:"xp_gained"`
	PreviousLevel int                   `json:"previous_level"`
	Level         int                   `json:"level"`
	LevelsReached []int                 `json:"levels_reached,omitempty"`
	Perks         []string              `json:"perks,omitempty"`
	Achievements  []catalog.Achievement `json:"achievements,omitempty"`
}

// LeveledUp reports whether at least one level was gained.
func (d Delta) LeveledUp() bool { return len(d.LevelsReached) > 0 }

// Tracker evaluates progression against a catalog's level table and
// achievement list.
type Tracker struct {
	cat *catalog.Catalog
}

// NewTracker creates a Tracker.
func NewTracker(cat *catalog.Catalog) *Tracker {
	return &Tracker{cat: cat}
}

// Initial returns a fresh level-1 progression. locationsUnlocked seeds the
// exploration counter, normally len(state.UnlockedLocations).
func (t *Tracker) Initial(locationsUnlocked int) *model.Progression {
	return &model.Progression{
		Level:                1,
		XPToNext:             t.XPToNext(0),
		LocationsUnlocked:    locationsUnlocked,
		PerksUnlocked:        []string{},
		AchievementsUnlocked: []string{},
	}
}

// LevelForXP returns the highest level whose threshold is at most xp.
func (t *Tracker) LevelForXP(xp int) int {
	level := 1
	for _, l := range t.cat.Levels() {
		if xp >= l.XPRequired {
			level = l.Level
		}
	}
	return level
}

// XPToNext returns the XP still needed to reach the level after the one xp
// earns, or 0 at the top of the table.
func (t *Tracker) XPToNext(xp int) int {
	next, ok := t.cat.Level(t.LevelForXP(xp) + 1)
	if !ok {
		return 0
	}
	return next.XPRequired - xp
}

// --- Updates ---

// RecordTrade counts a trade, grants profit XP, updates the sale streak and
// then evaluates achievements.
func (t *Tracker) RecordTrade(p *model.Progression, tr Trade, f Facts) (*model.Progression, Delta) {
	next, d := t.begin(p)
	next.TotalTrades++
	if tr.Sell {
		next.GoldEarned += tr.Revenue
		if tr.Profit > 0 {
			next.CurrentStreak++
			if next.CurrentStreak > next.BestStreak {
				next.BestStreak = next.CurrentStreak
			}
		} else {
			next.CurrentStreak = 0
		}
	}
	t.grant(next, XPFromTrade(tr.Profit), &d)

	f.LastProfit = tr.Profit
	f.PerfectTrade = tr.Perfect
	t.evaluate(next, f, &d)
	return next, d
}

// RecordTravel grants travel XP and evaluates achievements.
func (t *Tracker) RecordTravel(p *model.Progression, cost int, f Facts) (*model.Progression, Delta) {
	next, d := t.begin(p)
	t.grant(next, XPFromTravel(cost), &d)
	t.evaluate(next, f, &d)
	return next, d
}

// RecordUnlock counts a newly unlocked location and evaluates achievements.
func (t *Tracker) RecordUnlock(p *model.Progression, f Facts) (*model.Progression, Delta) {
	next, d := t.begin(p)
	next.LocationsUnlocked++
	t.evaluate(next, f, &d)
	return next, d
}

// AddXP grants a flat amount of XP without touching any counter.
func (t *Tracker) AddXP(p *model.Progression, xp int) (*model.Progression, Delta) {
	next, d := t.begin(p)
	t.grant(next, xp, &d)
	return next, d
}

// Evaluate checks every locked achievement against f without recording an
// action.
func (t *Tracker) Evaluate(p *model.Progression, f Facts) (*model.Progression, Delta) {
	next, d := t.begin(p)
	t.evaluate(next, f, &d)
	return next, d
}

func (t *Tracker) begin(p *model.Progression) (*model.Progression, Delta) {
	next := p.Clone()
	return next, Delta{PreviousLevel: p.Level, Level: p.Level}
}

func (t *Tracker) grant(p *model.Progression, xp int, d *Delta) {
	if xp <= 0 {
		return
	}
	p.XP += xp
	d.XPGained += xp

	level := t.LevelForXP(p.XP)
	for n := p.Level + 1; n <= level; n++ {
		d.LevelsReached = append(d.LevelsReached, n)
		row, _ := t.cat.Level(n)
		for _, id := range row.Perks {
			if !p.HasPerk(id) {
				p.PerksUnlocked = append(p.PerksUnlocked, id)
				d.Perks = append(d.Perks, id)
			}
		}
	}
	if level > p.Level {
		p.Level = level
	}
	p.XPToNext = t.XPToNext(p.XP)
	d.Level = p.Level
}

// evaluate unlocks achievements until a pass adds none, so rewards that
// cross a level threshold can satisfy level achievements in the same call.
func (t *Tracker) evaluate(p *model.Progression, f Facts, d *Delta) {
	if f.Money < 0 {
		p.WentBankrupt = true
	}
	for {
		unlocked := false
		for _, a := range t.cat.Achievements() {
			if p.HasAchievement(a.ID) || !met(a.Requirement, p, f) {
				continue
			}
			p.AchievementsUnlocked = append(p.AchievementsUnlocked, a.ID)
			d.Achievements = append(d.Achievements, a)
			t.grant(p, a.XPReward, d)
			unlocked = true
		}
		if !unlocked {
			return
		}
	}
}

func met(r catalog.Requirement, p *model.Progression, f Facts) bool {
	switch r.Type {
	case catalog.ReqTotalTrades:
		return p.TotalTrades >= r.Value
	case catalog.ReqGoldEarned:
		return p.GoldEarned >= r.Value
	case catalog.ReqLocationsUnlocked:
		return p.LocationsUnlocked >= r.Value
	case catalog.ReqProfitPerTrade:
		return f.LastProfit >= r.Value
	case catalog.ReqTurnsSurvived:
		return f.Turns >= r.Value
	case catalog.ReqLevelReached:
		return p.Level >= r.Value
	case catalog.ReqLevelWithinModeTurns:
		// Modes without a cap never rule this out on turn count.
		return p.Level >= r.Value && (f.MaxTurns == 0 || f.Turns <= f.MaxTurns)
	case catalog.ReqMoneyWithinTurns:
		return f.Money >= r.Value && f.Turns < r.Turns
	case catalog.ReqBankruptcyRecovery:
		return p.WentBankrupt && f.Money > 0
	case catalog.ReqPerfectTrade:
		return f.PerfectTrade
	}
	return false
}
