// Package event rolls, activates and expires market events, weather and
// event chains. Every function returns new values; callers own the state.
package event

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/rng"
)

// Per-turn trigger probabilities.
const (
	DailyChance    = 0.15
	RareChance     = 0.01
	SeasonalChance = 0.20
	WeatherChance  = 0.20
)

// Roller draws new events from catalog templates using an injected source.
type Roller struct {
	cat *catalog.Catalog
	src rng.Source
}

// NewRoller creates a Roller over cat drawing from src.
func NewRoller(cat *catalog.Catalog, src rng.Source) *Roller {
	return &Roller{cat: cat, src: src}
}

// --- Countdown ---

// Tick decrements every event and drops those that reach zero. The input
// slice is not modified.
func Tick(events []model.MarketEvent) []model.MarketEvent {
	var out []model.MarketEvent
	for _, e := range events {
		e.RemainingTurns--
		if e.RemainingTurns > 0 {
			out = append(out, e)
		}
	}
	return out
}

// TickWeather decrements w and reports whether it just cleared.
func TickWeather(w *model.Weather) (next *model.Weather, cleared bool) {
	if w == nil {
		return nil, false
	}
	n := *w
	n.RemainingTurns--
	if n.RemainingTurns <= 0 {
		return nil, true
	}
	return &n, false
}

// --- Activation ---

// Activate turns a template into a live event. A "random" target is
// resolved to one catalog good here, at trigger time.
func (r *Roller) Activate(tmpl model.MarketEvent) model.MarketEvent {
	e := tmpl
	e.RemainingTurns = e.Duration
	if e.Target == model.TargetRandom && e.ResolvedGood == "" {
		goods := r.cat.Goods()
		e.ResolvedGood = goods[r.src.IntN(len(goods))].ID
	}
	return e
}

func (r *Roller) pick(candidates []model.MarketEvent, p float64) (model.MarketEvent, bool) {
	if len(candidates) == 0 || !rng.Roll(r.src, p) {
		return model.MarketEvent{}, false
	}
	return r.Activate(candidates[r.src.IntN(len(candidates))]), true
}

// RollDaily fires a daily event with probability DailyChance. Daily
// templates that are also seasonal are only eligible in their season.
func (r *Roller) RollDaily(season model.Season) (model.MarketEvent, bool) {
	var candidates []model.MarketEvent
	for _, e := range r.cat.Events() {
		if e.IsDaily && (!e.IsSeasonal || e.Season == season) {
			candidates = append(candidates, e)
		}
	}
	return r.pick(candidates, DailyChance)
}

// RollRare fires a rare event with probability RareChance.
func (r *Roller) RollRare() (model.MarketEvent, bool) {
	var candidates []model.MarketEvent
	for _, e := range r.cat.Events() {
		if e.IsRare {
			candidates = append(candidates, e)
		}
	}
	return r.pick(candidates, RareChance)
}

// RollSeasonal fires an event of the given season with probability
// SeasonalChance.
func (r *Roller) RollSeasonal(season model.Season) (model.MarketEvent, bool) {
	var candidates []model.MarketEvent
	for _, e := range r.cat.Events() {
		if e.IsSeasonal && e.Season == season {
			candidates = append(candidates, e)
		}
	}
	return r.pick(candidates, SeasonalChance)
}

// RollWeather starts new weather with probability WeatherChance, but only
// when none is active.
func (r *Roller) RollWeather(current *model.Weather) (*model.Weather, bool) {
	if current != nil {
		return nil, false
	}
	types := r.cat.Weather()
	if len(types) == 0 || !rng.Roll(r.src, WeatherChance) {
		return nil, false
	}
	w := types[r.src.IntN(len(types))]
	w.RemainingTurns = w.Duration
	return &w, true
}

// --- Chains ---

// RollChain tests each chain in catalog order against its own trigger
// chance; the first success becomes the active chain and its stage events
// are returned ready to append. Nothing fires while a chain is active.
func (r *Roller) RollChain(current *model.ChainState) (*model.ChainState, []model.MarketEvent, bool) {
	if current != nil {
		return nil, nil, false
	}
	for _, ch := range r.cat.Chains() {
		if !rng.Roll(r.src, ch.TriggerChance) {
			continue
		}
		events := make([]model.MarketEvent, 0, len(ch.Stages))
		for _, s := range ch.Stages {
			tmpl, ok := r.cat.Event(s.EventID)
			if !ok {
				continue
			}
			tmpl.Duration = StageDuration(s.Weight, ch.Duration)
			e := r.Activate(tmpl)
			e.ChainID = ch.ID
			events = append(events, e)
		}
		return &model.ChainState{ID: ch.ID, Stages: len(ch.Stages)}, events, true
	}
	return nil, nil, false
}

// StageDuration is round(weight × chainDuration), at least one turn.
func StageDuration(weight float64, chainDuration int) int {
	d := decimal.NewFromFloat(weight).Mul(decimal.NewFromInt(int64(chainDuration))).Round(0).IntPart()
	if d < 1 {
		return 1
	}
	return int(d)
}

// AdvanceChain moves the active chain forward one turn. The chain is
// cleared once its progress reaches the stage count.
func AdvanceChain(c *model.ChainState) *model.ChainState {
	if c == nil {
		return nil
	}
	n := *c
	n.Progress++
	if n.Progress >= n.Stages {
		return nil
	}
	return &n
}

// --- Queries ---

// ImpactOf returns the multiplier of the most recently added event that
// targets goodID directly or targets everything, or 1 if none does.
func ImpactOf(events []model.MarketEvent, goodID string) float64 {
	for i := len(events) - 1; i >= 0; i-- {
		t := events[i].EffectiveTarget()
		if t == goodID || t == model.TargetAll {
			return events[i].PriceMultiplier
		}
	}
	return 1
}

// GlobalImpact returns the multiplier of the most recent "all" event, or 1.
func GlobalImpact(events []model.MarketEvent) float64 {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Target == model.TargetAll {
			return events[i].PriceMultiplier
		}
	}
	return 1
}

// Current returns the most recently added active event.
func Current(events []model.MarketEvent) (model.MarketEvent, bool) {
	if len(events) == 0 {
		return model.MarketEvent{}, false
	}
	return events[len(events)-1], true
}

// Longest returns the largest remaining duration among active events.
func Longest(events []model.MarketEvent) int {
	n := 0
	for _, e := range events {
		if e.RemainingTurns > n {
			n = e.RemainingTurns
		}
	}
	return n
}

// Volatility classifies market turbulence.
type Volatility string

const (
	Low    Volatility = "low"
	Medium Volatility = "medium"
	High   Volatility = "high"
)

// VolatilityScore is 100 × min(1, Σ|multiplier−1| / 5) over events that
// target everything or a random good.
func VolatilityScore(events []model.MarketEvent) float64 {
	sum := 0.0
	for _, e := range events {
		if e.Target == model.TargetAll || e.Target == model.TargetRandom {
			sum += math.Abs(e.PriceMultiplier - 1)
		}
	}
	return 100 * math.Min(1, sum/5)
}

// VolatilityLevel buckets VolatilityScore: below 20 is low, below 50 medium.
func VolatilityLevel(events []model.MarketEvent) Volatility {
	s := VolatilityScore(events)
	switch {
	case s < 20:
		return Low
	case s < 50:
		return Medium
	default:
		return High
	}
}
