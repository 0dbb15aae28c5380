// Package pricing computes spot prices and travel costs.
//
// The factor chain is evaluated with shopspring/decimal so that catalog
// multipliers such as 0.7 or 1.15 compose without binary float drift; only
// the final value is rounded to whole gold.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/rng"
)

var (
	// SurplusMultiplier applies in a good's preferred season.
	SurplusMultiplier = decimal.RequireFromString("0.8")

	// ScarcityMultiplier applies in the season right after the preferred one.
	ScarcityMultiplier = decimal.RequireFromString("1.2")

	// NoiseScale bounds the noise amplitude as a fraction of volatility.
	NoiseScale = decimal.RequireFromString("0.3")

	one  = decimal.NewFromInt(1)
	half = decimal.RequireFromString("0.5")
)

// Price returns the spot price of good at loc. Each call draws one value
// from src for the noise factor, so repeated queries can differ.
func Price(good catalog.Good, loc catalog.Location, events []model.MarketEvent, season model.Season, weather *model.Weather, src rng.Source) int {
	return round(Factors(good, loc, events, season, weather).Mul(Noise(good, src.Float64())))
}

// Reference returns the price with the noise factor fixed at 1. It is the
// midpoint of the range Price draws from.
func Reference(good catalog.Good, loc catalog.Location, events []model.MarketEvent, season model.Season, weather *model.Weather) int {
	return round(Factors(good, loc, events, season, weather))
}

// Factors returns base price × location × season × weather × events, the
// deterministic part of the price.
func Factors(good catalog.Good, loc catalog.Location, events []model.MarketEvent, season model.Season, weather *model.Weather) decimal.Decimal {
	p := decimal.NewFromInt(int64(good.BasePrice))
	p = p.Mul(decimal.NewFromFloat(loc.Multiplier(good.ID)))
	p = p.Mul(SeasonalMultiplier(good, season))
	if weather != nil {
		p = p.Mul(decimal.NewFromFloat(weather.PriceModifier))
	}
	return p.Mul(EventMultiplier(good, events))
}

// SeasonalMultiplier is 0.8 in the good's preferred season, 1.2 in the
// season that follows it, and 1 otherwise.
func SeasonalMultiplier(good catalog.Good, season model.Season) decimal.Decimal {
	switch {
	case good.PreferredSeason == "":
		return one
	case season == good.PreferredSeason:
		return SurplusMultiplier
	case season == good.PreferredSeason.Next():
		return ScarcityMultiplier
	default:
		return one
	}
}

// EventMultiplier is the product of the multipliers of every event that
// affects good.
func EventMultiplier(good catalog.Good, events []model.MarketEvent) decimal.Decimal {
	m := one
	for _, e := range events {
		if Affects(e, good) {
			m = m.Mul(decimal.NewFromFloat(e.PriceMultiplier))
		}
	}
	return m
}

// Affects reports whether e applies to good: by id, by category, or because
// it targets everything. Random-target events only match the good they
// resolved to when they fired.
func Affects(e model.MarketEvent, good catalog.Good) bool {
	t := e.EffectiveTarget()
	return t == model.TargetAll || t == good.ID || t == string(good.Category)
}

// Noise returns 1 + (u - 0.5) × volatility × 0.3 for a uniform draw u.
func Noise(good catalog.Good, u float64) decimal.Decimal {
	return one.Add(decimal.NewFromFloat(u).Sub(half).
		Mul(decimal.NewFromFloat(good.Volatility)).
		Mul(NoiseScale))
}

// TravelCost returns base scaled by the weather's travel modifier, rounded.
func TravelCost(base int, weather *model.Weather) int {
	c := decimal.NewFromInt(int64(base))
	if weather != nil {
		c = c.Mul(decimal.NewFromFloat(weather.TravelCostModifier))
	}
	return round(c)
}

func round(d decimal.Decimal) int {
	n := int(d.Round(0).IntPart())
	if n < 0 {
		return 0
	}
	return n
}
