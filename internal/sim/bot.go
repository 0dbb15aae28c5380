// Package sim plays sessions automatically. The simulate command uses it to
// populate leaderboards and metrics, and tests use it to drive the engine
// through long random runs.
package sim

import (
	"context"
	"errors"
	"sort"

	"github.com/atmx/caravan/internal/game"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/rng"
	"github.com/atmx/caravan/internal/trade"
)

// Report summarises one automated run.
type Report struct {
	Actions  int  `json:"actions"`
	Rejected int  `json:"rejected"`
	Turns    int  `json:"turns"`
	Stuck    bool `json:"stuck"` // no affordable destination was left
}

// Bot is a greedy trader: it sells held goods above their average cost,
// buys the most underpriced local good, upgrades and unlocks when rich
// enough, then travels somewhere at random.
type Bot struct {
	src rng.Source

	// Reserve is the gold kept back from purchases for the next journey.
	Reserve int

	// OnStep, when set, is called with a copy of the state after every
	// accepted action.
	OnStep func(*model.GameState)
}

// NewBot creates a bot whose choices draw from src. The source should not
// be shared with the engine if runs must be reproducible.
func NewBot(src rng.Source) *Bot {
	return &Bot{src: src, Reserve: 60}
}

// Play drives s until the run ends, maxTurns turns have passed or ctx is
// cancelled. Engine rejections are counted, not returned.
func (b *Bot) Play(ctx context.Context, s *game.Session, maxTurns int) (Report, error) {
	var r Report
	for s.State().Turns < maxTurns && !s.Result().Outcome.Finished() {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		if err := b.sell(ctx, s, &r); err != nil {
			return r, err
		}
		if err := b.invest(ctx, s, &r); err != nil {
			return r, err
		}
		if err := b.buy(ctx, s, &r); err != nil {
			return r, err
		}
		moved, err := b.travel(ctx, s, &r)
		if err != nil {
			return r, err
		}
		if !moved {
			r.Stuck = true
			break
		}
	}
	r.Turns = s.State().Turns
	return r, nil
}

// step records the outcome of one attempted action. Only engine rejections
// are swallowed.
func (b *Bot) step(s *game.Session, r *Report, err error) error {
	if err != nil {
		if errors.Is(err, game.ErrGameOver) {
			return nil
		}
		if trade.KindOf(err) == trade.KindUnknown {
			return err
		}
		r.Rejected++
		return nil
	}
	r.Actions++
	if b.OnStep != nil {
		b.OnStep(s.State())
	}
	return nil
}

func (b *Bot) sell(ctx context.Context, s *game.Session, r *Report) error {
	st := s.State()
	goods := make([]string, 0, len(st.Inventory))
	for id := range st.Inventory {
		goods = append(goods, id)
	}
	sort.Strings(goods)

	for _, id := range goods {
		held := st.Inventory[id]
		price, err := s.Quote(id)
		if err != nil {
			return err
		}
		if price*held <= st.CostBasis[id] {
			continue
		}
		_, err = s.Sell(ctx, id, held)
		if err := b.step(s, r, err); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) buy(ctx context.Context, s *game.Session, r *Report) error {
	listings, err := s.Market()
	if err != nil {
		return err
	}
	var (
		best  game.Listing
		ratio float64
	)
	for _, l := range listings {
		if l.Price <= 0 {
			continue
		}
		if q := float64(l.Good.BasePrice) / float64(l.Price); q > ratio {
			best, ratio = l, q
		}
	}
	if ratio < 1 {
		return nil
	}

	st := s.State()
	budget := st.Money - b.Reserve
	qty := min(budget/best.Price, st.InventorySlots-st.UsedSlots())
	if qty <= 0 {
		return nil
	}
	_, err = s.Buy(ctx, best.Good.ID, qty)
	return b.step(s, r, err)
}

// invest buys capacity and new markets once the purse comfortably covers
// them.
func (b *Bot) invest(ctx context.Context, s *game.Session, r *Report) error {
	cat := s.Catalog()
	st := s.State()

	for _, line := range cat.Vehicles() {
		level := 1
		if st.Vehicle.Kind == line.Kind {
			level = st.Vehicle.Level + 1
		}
		tier, ok := line.Tier(level)
		if !ok || tier.Slots <= st.InventorySlots || tier.Cost*3 > st.Money {
			continue
		}
		_, err := s.Upgrade(ctx, line.Kind)
		if err := b.step(s, r, err); err != nil {
			return err
		}
		st = s.State()
	}

	for _, loc := range cat.Locations() {
		if st.IsUnlocked(loc.ID) || !loc.Unlockable() || loc.UnlockCost*3 > st.Money {
			continue
		}
		_, err := s.Unlock(ctx, loc.ID)
		if err := b.step(s, r, err); err != nil {
			return err
		}
		st = s.State()
	}
	return nil
}

func (b *Bot) travel(ctx context.Context, s *game.Session, r *Report) (bool, error) {
	if s.Result().Outcome.Finished() {
		return true, nil
	}
	money := s.State().Money
	var options []string
	for _, d := range s.Destinations() {
		if d.Unlocked && !d.Here && d.Cost <= money {
			options = append(options, d.Location.ID)
		}
	}
	if len(options) == 0 {
		return false, nil
	}
	_, terr := s.Travel(ctx, options[b.src.IntN(len(options))])
	if err := b.step(s, r, terr); err != nil {
		return false, err
	}
	return terr == nil || errors.Is(terr, game.ErrGameOver), nil
}
