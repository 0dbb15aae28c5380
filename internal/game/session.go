// Package game runs a single play session: it applies player actions through
// the trade engine, feeds the results to progression, checks the mode's win
// and lose rules and autosaves after every accepted action.
//
// Engine packages are pure. Everything with a side effect (logging, metrics,
// persistence, feedback cues) happens here.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/leaderboard"
	"github.com/atmx/caravan/internal/metrics"
	"github.com/atmx/caravan/internal/mode"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/progression"
	"github.com/atmx/caravan/internal/save"
	"github.com/atmx/caravan/internal/trade"
)

var (
	ErrGameOver  = errors.New("game: run has ended")
	ErrNoStorage = errors.New("game: no save storage configured")
)

// Options configures optional session collaborators. The zero value runs a
// session without persistence, feedback or a dedicated logger.
type Options struct {
	Saves    *save.Manager // nil disables autosave and save slots
	Feedback Feedback
	Logger   *slog.Logger
}

// Outcome is what an accepted action produced. Exactly one of the action
// fields is set.
type Outcome struct {
	Receipt  *trade.Receipt       `json:"receipt,omitempty"`
	Travel   *trade.Travel        `json:"travel,omitempty"`
	Unlocked string               `json:"unlocked,omitempty"`
	Paid     int                  `json:"paid,omitempty"` // unlock or upgrade price
	Vehicle  *catalog.VehicleTier `json:"vehicle,omitempty"`
	Progress progression.Delta    `json:"progress"`
	Result   mode.Result          `json:"result"`
}

// Session serialises the actions of one player.
type Session struct {
	ID string

	engine   *trade.Engine
	tracker  *progression.Tracker
	mode     catalog.Mode
	saves    *save.Manager
	feedback Feedback
	log      *slog.Logger

	mu     sync.Mutex
	state  *model.GameState
	prog   *model.Progression
	result mode.Result
	active bool
}

// New starts a fresh run in modeID.
func New(engine *trade.Engine, modeID string, opts Options) (*Session, error) {
	state, err := engine.NewGame(modeID)
	if err != nil {
		return nil, err
	}
	tracker := progression.NewTracker(engine.Catalog())
	s := newSession(engine, tracker, opts)
	s.install(state, tracker.Initial(len(state.UnlockedLocations)))
	s.log.Info("session started", "session_id", s.ID, "mode", s.mode.ID, "money", state.Money)
	return s, nil
}

// Resume continues the run stored in b.
func Resume(engine *trade.Engine, b save.Bundle, opts Options) (*Session, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	s := newSession(engine, progression.NewTracker(engine.Catalog()), opts)
	if err := s.restore(b); err != nil {
		return nil, err
	}
	s.log.Info("session resumed", "session_id", s.ID, "mode", s.mode.ID, "turns", b.GameState.Turns)
	return s, nil
}

func newSession(engine *trade.Engine, tracker *progression.Tracker, opts Options) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		engine:   engine,
		tracker:  tracker,
		saves:    opts.Saves,
		feedback: opts.Feedback,
		log:      opts.Logger,
	}
	if s.feedback == nil {
		s.feedback = NopFeedback{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

func (s *Session) restore(b save.Bundle) error {
	modeID := b.GameState.Mode
	if modeID == "" {
		modeID = s.engine.Catalog().Settings().DefaultMode
	}
	if _, ok := s.engine.Catalog().Mode(modeID); !ok {
		return fmt.Errorf("%w: %q", trade.ErrUnknownMode, modeID)
	}
	state := b.GameState.Clone()
	state.Mode = modeID
	s.install(state, b.Progression.Clone())
	return nil
}

// install swaps in a new run and re-derives its result. Callers hold mu or
// own s exclusively.
func (s *Session) install(state *model.GameState, prog *model.Progression) {
	s.mode, _ = s.engine.Catalog().Mode(state.Mode)
	s.state = state
	s.prog = prog
	s.result = mode.Evaluate(s.mode, state.Money, state.Turns)
	if !s.result.Outcome.Finished() && !s.active {
		s.active = true
		metrics.ActiveSessions.Inc()
	}
	if s.result.Outcome.Finished() {
		s.deactivate()
	}
}

func (s *Session) deactivate() {
	if s.active {
		s.active = false
		metrics.ActiveSessions.Dec()
	}
}

// Close releases the session's slot in the active-session gauge.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivate()
}

// --- Queries ---

// State returns a copy of the current game state.
func (s *Session) State() *model.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Progression returns a copy of the current progression.
func (s *Session) Progression() *model.Progression {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prog.Clone()
}

// Result returns the latest win/lose evaluation.
func (s *Session) Result() mode.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Mode returns the rules the session is played under.
func (s *Session) Mode() catalog.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Catalog returns the reference data behind the session.
func (s *Session) Catalog() *catalog.Catalog { return s.engine.Catalog() }

// Quote prices goodID at the current location.
func (s *Session) Quote(goodID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Quote(s.state, goodID)
}

// Listing is one row of the local market.
type Listing struct {
	Good  catalog.Good `json:"good"`
	Price int          `json:"price"`
	Held  int          `json:"held"`
}

// Market quotes every good traded at the current location. Quotes draw
// fresh noise, so an executed trade may fill at a different price.
func (s *Session) Market() ([]Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.engine.Catalog().Location(s.state.CurrentLocation)
	if !ok {
		return nil, fmt.Errorf("%w: %q", trade.ErrInvalidLocation, s.state.CurrentLocation)
	}
	out := make([]Listing, 0, len(loc.Goods))
	for _, lg := range loc.Goods {
		good, ok := s.engine.Catalog().Good(lg.GoodID)
		if !ok {
			continue
		}
		price, err := s.engine.Quote(s.state, lg.GoodID)
		if err != nil {
			return nil, err
		}
		out = append(out, Listing{Good: good, Price: price, Held: s.state.Inventory[lg.GoodID]})
	}
	return out, nil
}

// Destination is a location as seen from the player's position.
type Destination struct {
	Location catalog.Location `json:"location"`
	Cost     int              `json:"cost"` // weather-adjusted travel cost
	Unlocked bool             `json:"unlocked"`
	Here     bool             `json:"here"`
}

// Destinations lists every location in catalog order.
func (s *Session) Destinations() []Destination {
	s.mu.Lock()
	defer s.mu.Unlock()

	locs := s.engine.Catalog().Locations()
	out := make([]Destination, 0, len(locs))
	for _, loc := range locs {
		cost, _ := s.engine.TravelCost(s.state, loc.ID)
		out = append(out, Destination{
			Location: loc,
			Cost:     cost,
			Unlocked: s.state.IsUnlocked(loc.ID),
			Here:     loc.ID == s.state.CurrentLocation,
		})
	}
	return out
}

// Entry summarises the run for the leaderboard.
func (s *Session) Entry(player string) leaderboard.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return leaderboard.Entry{
		PlayerName:   player,
		GameMode:     s.mode.ID,
		Score:        s.result.Score,
		Gold:         s.state.Money,
		Turns:        s.state.Turns,
		Achievements: len(s.prog.AchievementsUnlocked),
		Level:        s.prog.Level,
	}
}

// --- Actions ---

// Buy purchases qty units of goodID at the current location.
func (s *Session) Buy(ctx context.Context, goodID string, qty int) (Outcome, error) {
	return s.trade(ctx, trade.Buy, goodID, qty)
}

// Sell sells qty units of goodID at the current location.
func (s *Session) Sell(ctx context.Context, goodID string, qty int) (Outcome, error) {
	return s.trade(ctx, trade.Sell, goodID, qty)
}

func (s *Session) trade(ctx context.Context, side trade.Side, goodID string, qty int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playable(); err != nil {
		return Outcome{}, err
	}

	apply, cue := s.engine.Buy, CueBuy
	if side == trade.Sell {
		apply, cue = s.engine.Sell, CueSell
	}
	start := time.Now()
	next, rc, err := apply(s.state, goodID, qty)
	metrics.ObserveAction(string(side), start)
	if err != nil {
		return Outcome{}, s.reject(string(side), err)
	}

	prog, delta := s.tracker.RecordTrade(s.prog, progression.Trade{
		Sell:    side == trade.Sell,
		Revenue: revenue(rc),
		Profit:  rc.Profit,
		Perfect: rc.Perfect(),
	}, s.facts(next))

	metrics.TradesTotal.WithLabelValues(string(side)).Inc()
	metrics.TradeUnits.WithLabelValues(goodID, string(side)).Add(float64(qty))
	s.log.Debug("trade executed",
		"session_id", s.ID,
		"side", side,
		"good", goodID,
		"qty", qty,
		"price", rc.UnitPrice,
		"profit", rc.Profit,
		"money", next.Money,
	)
	s.feedback.Cue(cue)

	out := Outcome{Receipt: &rc}
	s.commit(ctx, next, prog, delta, &out)
	return out, nil
}

func revenue(rc trade.Receipt) int {
	if rc.Side == trade.Sell {
		return rc.Total
	}
	return 0
}

// Travel moves to locationID, advancing one turn.
func (s *Session) Travel(ctx context.Context, locationID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playable(); err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	next, tr, err := s.engine.TravelTo(s.state, locationID)
	metrics.ObserveAction("travel", start)
	if err != nil {
		return Outcome{}, s.reject("travel", err)
	}
	prog, delta := s.tracker.RecordTravel(s.prog, tr.Cost, s.facts(next))

	metrics.TravelsTotal.Inc()
	s.log.Debug("traveled",
		"session_id", s.ID,
		"from", tr.From,
		"to", tr.To,
		"cost", tr.Cost,
		"turn", tr.Turn,
		"money", next.Money,
	)
	s.feedback.Cue(CueTravel)
	s.announceTravel(tr)

	out := Outcome{Travel: &tr}
	s.commit(ctx, next, prog, delta, &out)
	return out, nil
}

func (s *Session) announceTravel(tr trade.Travel) {
	if tr.SeasonChanged {
		metrics.EventsTriggered.WithLabelValues("season").Inc()
		s.log.Info("season changed", "session_id", s.ID, "season", tr.Season)
	}
	if tr.WeatherCleared != "" {
		s.log.Info("weather cleared", "session_id", s.ID, "weather", tr.WeatherCleared)
	}
	if tr.Weather != nil {
		metrics.EventsTriggered.WithLabelValues("weather").Inc()
		s.log.Info("weather started", "session_id", s.ID, "weather", tr.Weather.ID, "turns", tr.Weather.RemainingTurns)
	}
	if tr.ChainStarted != "" {
		metrics.EventsTriggered.WithLabelValues("chain").Inc()
		s.log.Info("event chain started", "session_id", s.ID, "chain", tr.ChainStarted)
	}
	for _, ev := range tr.Events {
		metrics.EventsTriggered.WithLabelValues("event").Inc()
		s.log.Info("market event",
			"session_id", s.ID,
			"event", ev.ID,
			"target", ev.EffectiveTarget(),
			"multiplier", ev.PriceMultiplier,
			"turns", ev.RemainingTurns,
		)
	}
	if tr.Weather != nil || len(tr.Events) > 0 {
		s.feedback.Cue(CueEvent)
	}
}

// Unlock buys access to locationID.
func (s *Session) Unlock(ctx context.Context, locationID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playable(); err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	next, cost, err := s.engine.UnlockLocation(s.state, locationID)
	metrics.ObserveAction("unlock", start)
	if err != nil {
		return Outcome{}, s.reject("unlock", err)
	}
	prog, delta := s.tracker.RecordUnlock(s.prog, s.facts(next))

	s.log.Debug("location unlocked", "session_id", s.ID, "location", locationID, "cost", cost, "money", next.Money)
	s.feedback.Cue(CueUnlock)

	out := Outcome{Unlocked: locationID, Paid: cost}
	s.commit(ctx, next, prog, delta, &out)
	return out, nil
}

// Upgrade buys the next tier of the given vehicle line.
func (s *Session) Upgrade(ctx context.Context, kind string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.playable(); err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	next, tier, err := s.engine.UpgradeVehicle(s.state, kind)
	metrics.ObserveAction("upgrade", start)
	if err != nil {
		return Outcome{}, s.reject("upgrade", err)
	}
	prog, delta := s.tracker.Evaluate(s.prog, s.facts(next))

	s.log.Debug("vehicle upgraded", "session_id", s.ID, "vehicle", kind, "level", tier.Level, "slots", tier.Slots, "money", next.Money)
	s.feedback.Cue(CueUpgrade)

	out := Outcome{Vehicle: &tier, Paid: tier.Cost}
	s.commit(ctx, next, prog, delta, &out)
	return out, nil
}

func (s *Session) playable() error {
	if s.result.Outcome.Finished() {
		return fmt.Errorf("%w: %s (%s)", ErrGameOver, s.result.Outcome, s.result.Reason)
	}
	return nil
}

func (s *Session) facts(next *model.GameState) progression.Facts {
	return progression.Facts{Money: next.Money, Turns: next.Turns, MaxTurns: s.mode.MaxTurns}
}

func (s *Session) reject(action string, err error) error {
	kind := trade.KindOf(err)
	metrics.ActionFailures.WithLabelValues(string(kind)).Inc()
	s.log.Debug("action rejected", "session_id", s.ID, "action", action, "kind", kind, "error", err)
	s.feedback.Cue(CueError)
	return err
}

// commit installs an accepted transition, announces progression, evaluates
// the mode and autosaves.
func (s *Session) commit(ctx context.Context, next *model.GameState, prog *model.Progression, delta progression.Delta, out *Outcome) {
	s.state = next
	s.prog = prog
	out.Progress = delta
	s.announceProgress(delta)

	s.result = mode.Evaluate(s.mode, next.Money, next.Turns)
	out.Result = s.result
	if s.result.Outcome.Finished() {
		metrics.GamesFinished.WithLabelValues(s.mode.ID, string(s.result.Outcome)).Inc()
		s.log.Info("game over",
			"session_id", s.ID,
			"mode", s.mode.ID,
			"outcome", s.result.Outcome,
			"reason", s.result.Reason,
			"score", s.result.Score,
		)
		s.feedback.Cue(CueGameOver)
		s.deactivate()
	}

	s.autosave(ctx)
}

func (s *Session) announceProgress(d progression.Delta) {
	for _, lvl := range d.LevelsReached {
		metrics.LevelUps.Inc()
		row, _ := s.engine.Catalog().Level(lvl)
		s.log.Info("level up", "session_id", s.ID, "level", lvl, "title", row.Title)
	}
	if d.LeveledUp() {
		s.feedback.Cue(CueLevelUp)
	}
	for _, a := range d.Achievements {
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
		s.log.Info("achievement unlocked", "session_id", s.ID, "achievement", a.ID, "xp_reward", a.XPReward)
		s.feedback.Cue(CueAchievement)
	}
}

func (s *Session) autosave(ctx context.Context) {
	if s.saves == nil {
		return
	}
	if _, err := s.saves.Save(ctx, save.AutosaveSlot, s.state, s.prog); err != nil {
		metrics.SavesTotal.WithLabelValues("error").Inc()
		s.log.Warn("autosave failed", "session_id", s.ID, "error", err)
		return
	}
	metrics.SavesTotal.WithLabelValues("ok").Inc()
}

// --- Save slots ---

// SaveSlot writes the current run into slot.
func (s *Session) SaveSlot(ctx context.Context, slot int) (save.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saves == nil {
		return save.Bundle{}, ErrNoStorage
	}
	b, err := s.saves.Save(ctx, slot, s.state, s.prog)
	if err != nil {
		metrics.SavesTotal.WithLabelValues("error").Inc()
		s.log.Warn("save failed", "session_id", s.ID, "slot", slot, "error", err)
		return save.Bundle{}, err
	}
	metrics.SavesTotal.WithLabelValues("ok").Inc()
	s.log.Debug("game saved", "session_id", s.ID, "slot", slot)
	return b, nil
}

// LoadSlot replaces the current run with the one stored in slot. The
// session is unchanged when loading fails.
func (s *Session) LoadSlot(ctx context.Context, slot int) (save.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saves == nil {
		return save.Bundle{}, ErrNoStorage
	}
	b, err := s.saves.Load(ctx, slot)
	if err != nil {
		return save.Bundle{}, err
	}
	if err := s.restore(b); err != nil {
		return save.Bundle{}, err
	}
	s.log.Info("game loaded", "session_id", s.ID, "slot", slot, "mode", s.mode.ID, "turns", s.state.Turns)
	return b, nil
}
