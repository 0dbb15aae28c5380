// Package trade implements the guarded state transitions of the game: buy,
// sell, travel, unlock and vehicle upgrades.
//
// Every operation takes a GameState and returns a new one or an error
// wrapping one of the package sentinels. The input state is never modified,
// so a failed call leaves the caller's state exactly as it was.
package trade

import (
	"fmt"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/event"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/pricing"
	"github.com/atmx/caravan/internal/rng"
)

// SeasonLength is the number of turns per season.
const SeasonLength = 4

// Engine applies player actions against a catalog. Randomness for price
// noise and event rolls comes from the injected source.
type Engine struct {
	cat    *catalog.Catalog
	src    rng.Source
	roller *event.Roller
}

// NewEngine creates an Engine.
func NewEngine(cat *catalog.Catalog, src rng.Source) *Engine {
	return &Engine{cat: cat, src: src, roller: event.NewRoller(cat, src)}
}

// Catalog returns the reference data the engine runs on.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// --- Results ---

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Receipt describes an executed trade.
type Receipt struct {
	Side      Side   `json:"side"`
	GoodID    string `json:"good_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
	Total     int    `json:"total"`
	CostBasis int    `json:"cost_basis"` // purchase cost of the units sold
	Profit    int    `json:"profit"`     // Total - CostBasis on sells, 0 on buys
}

// Perfect reports whether a sale returned exactly what the goods cost.
func (r Receipt) Perfect() bool {
	return r.Side == Sell && r.CostBasis > 0 && r.Profit == 0
}

// Travel describes what happened during one turn of travel.
type Travel struct {
	From           string              `json:"from"`
	To             string              `json:"to"`
	Cost           int                 `json:"cost"`
	Turn           int                 `json:"turn"`
	SeasonChanged  bool                `json:"season_changed"`
	Season         model.Season        `json:"season"`
	WeatherCleared string              `json:"weather_cleared,omitempty"`
	Weather        *model.Weather      `json:"weather,omitempty"` // newly started
	Events         []model.MarketEvent `json:"events,omitempty"`  // newly triggered
	ChainStarted   string              `json:"chain_started,omitempty"`
}

// --- Setup ---

// InitialState starts a game in the catalog's default mode.
func (e *Engine) InitialState() *model.GameState {
	s, err := e.NewGame(e.cat.Settings().DefaultMode)
	if err != nil {
		// Parse guarantees the default mode exists.
		panic(err)
	}
	return s
}

// NewGame starts a game in the given mode at the home location.
func (e *Engine) NewGame(modeID string) (*model.GameState, error) {
	mode, ok := e.cat.Mode(modeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, modeID)
	}
	settings := e.cat.Settings()
	home := e.cat.Home()

	s := &model.GameState{
		Mode:              mode.ID,
		Money:             mode.StartingMoney,
		Inventory:         mode.StartingInventory,
		CostBasis:         make(map[string]int),
		CurrentLocation:   home.ID,
		UnlockedLocations: e.cat.InitialUnlocked(mode),
		Season:            model.Spring,
		InventorySlots:    settings.InitialInventorySlots,
		MaxInventorySlots: e.cat.MaxInventorySlots(),
	}
	s.Log(model.HistoryEvent, fmt.Sprintf("Welcome to %s mode. Your journey starts in %s.", mode.Name, home.Name))
	return s, nil
}

// --- Queries ---

func (e *Engine) here(s *model.GameState) (catalog.Location, error) {
	loc, ok := e.cat.Location(s.CurrentLocation)
	if !ok {
		return catalog.Location{}, fmt.Errorf("%w: current location %q", ErrInvalidLocation, s.CurrentLocation)
	}
	return loc, nil
}

// Quote returns the current spot price of goodID at the player's location.
// Each quote draws fresh noise.
func (e *Engine) Quote(s *model.GameState, goodID string) (int, error) {
	good, ok := e.cat.Good(goodID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGood, goodID)
	}
	loc, err := e.here(s)
	if err != nil {
		return 0, err
	}
	return pricing.Price(good, loc, s.Events, s.Season, s.Weather, e.src), nil
}

// TravelCost returns the weather-adjusted cost of travelling to locationID.
func (e *Engine) TravelCost(s *model.GameState, locationID string) (int, error) {
	loc, ok := e.cat.Location(locationID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLocation, locationID)
	}
	return pricing.TravelCost(loc.TravelCost, s.Weather), nil
}

// --- Trading ---

// Buy purchases qty units of goodID at the current location.
func (e *Engine) Buy(s *model.GameState, goodID string, qty int) (*model.GameState, Receipt, error) {
	good, ok := e.cat.Good(goodID)
	if !ok {
		return nil, Receipt{}, fmt.Errorf("%w: %q", ErrInvalidGood, goodID)
	}
	if qty <= 0 {
		return nil, Receipt{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	loc, err := e.here(s)
	if err != nil {
		return nil, Receipt{}, err
	}
	if used := s.UsedSlots(); qty > s.InventorySlots-used {
		return nil, Receipt{}, fmt.Errorf("%w: %d of %d slots used, cannot add %d", ErrCapacityExceeded, used, s.InventorySlots, qty)
	}

	price := pricing.Price(good, loc, s.Events, s.Season, s.Weather, e.src)
	if price > 0 && qty > s.Money/price {
		return nil, Receipt{}, fmt.Errorf("%w: need %d gold per unit for %d, have %d", ErrInsufficientFunds, price, qty, s.Money)
	}
	total := price * qty

	next := s.Clone()
	if next.Inventory == nil {
		next.Inventory = make(map[string]int)
	}
	if next.CostBasis == nil {
		next.CostBasis = make(map[string]int)
	}
	next.Money -= total
	next.Inventory[goodID] += qty
	next.CostBasis[goodID] += total
	next.Log(model.HistoryBuy, fmt.Sprintf("Bought %d %s for %d gold", qty, good.Name, total))

	return next, Receipt{Side: Buy, GoodID: goodID, Quantity: qty, UnitPrice: price, Total: total}, nil
}

// Sell sells qty units of goodID at the current location. The cost basis of
// the sold units is released proportionally and the realised profit is
// reported on the receipt.
func (e *Engine) Sell(s *model.GameState, goodID string, qty int) (*model.GameState, Receipt, error) {
	good, ok := e.cat.Good(goodID)
	if !ok {
		return nil, Receipt{}, fmt.Errorf("%w: %q", ErrInvalidGood, goodID)
	}
	if qty <= 0 {
		return nil, Receipt{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	held := s.Inventory[goodID]
	if held < qty {
		return nil, Receipt{}, fmt.Errorf("%w: have %d %s, want to sell %d", ErrInsufficientInventory, held, good.Name, qty)
	}
	loc, err := e.here(s)
	if err != nil {
		return nil, Receipt{}, err
	}

	price := pricing.Price(good, loc, s.Events, s.Season, s.Weather, e.src)
	total := price * qty
	basis := s.CostBasis[goodID] * qty / held

	next := s.Clone()
	next.Money += total
	if held == qty {
		delete(next.Inventory, goodID)
		delete(next.CostBasis, goodID)
	} else {
		next.Inventory[goodID] = held - qty
		if next.CostBasis != nil {
			next.CostBasis[goodID] -= basis
		}
	}
	next.Log(model.HistorySell, fmt.Sprintf("Sold %d %s for %d gold", qty, good.Name, total))

	return next, Receipt{
		Side:      Sell,
		GoodID:    goodID,
		Quantity:  qty,
		UnitPrice: price,
		Total:     total,
		CostBasis: basis,
		Profit:    total - basis,
	}, nil
}

// --- Travel ---

// TravelTo moves the player to locationID and advances one turn: season
// rotation, weather decay and rolls, event expiry and the event roll battery
// all happen here and nowhere else.
func (e *Engine) TravelTo(s *model.GameState, locationID string) (*model.GameState, Travel, error) {
	dest, ok := e.cat.Location(locationID)
	if !ok {
		return nil, Travel{}, fmt.Errorf("%w: %q", ErrInvalidLocation, locationID)
	}
	if locationID == s.CurrentLocation {
		return nil, Travel{}, fmt.Errorf("%w: %s", ErrAlreadyThere, dest.Name)
	}
	if !s.IsUnlocked(locationID) {
		return nil, Travel{}, fmt.Errorf("%w: %s", ErrLocationLocked, dest.Name)
	}
	cost := pricing.TravelCost(dest.TravelCost, s.Weather)
	if cost > s.Money {
		return nil, Travel{}, fmt.Errorf("%w: travel to %s costs %d gold, have %d", ErrInsufficientFunds, dest.Name, cost, s.Money)
	}

	next := s.Clone()
	report := Travel{From: s.CurrentLocation, To: locationID, Cost: cost}

	next.Money -= cost
	next.CurrentLocation = locationID
	next.Turns++
	report.Turn = next.Turns

	if next.Turns%SeasonLength == 0 {
		next.Season = next.Season.Next()
		report.SeasonChanged = true
		next.Log(model.HistorySeason, fmt.Sprintf("The season turns to %s.", next.Season))
	}
	report.Season = next.Season

	if w, cleared := event.TickWeather(next.Weather); cleared {
		report.WeatherCleared = next.Weather.ID
		next.Weather = nil
		next.Log(model.HistoryWeather, fmt.Sprintf("The %s has cleared.", report.WeatherCleared))
	} else {
		next.Weather = w
	}
	if w, ok := e.roller.RollWeather(next.Weather); ok {
		next.Weather = w
		report.Weather = w
		next.Log(model.HistoryWeather, fmt.Sprintf("%s: %s", w.Name, w.Description))
	}

	next.Events = event.Tick(next.Events)
	next.Chain = event.AdvanceChain(next.Chain)

	var fired []model.MarketEvent
	if report.SeasonChanged {
		if ev, ok := e.roller.RollSeasonal(next.Season); ok {
			fired = append(fired, ev)
		}
	}
	if ev, ok := e.roller.RollDaily(next.Season); ok {
		fired = append(fired, ev)
	}
	if ev, ok := e.roller.RollRare(); ok {
		fired = append(fired, ev)
	}
	if chain, evs, ok := e.roller.RollChain(next.Chain); ok {
		next.Chain = chain
		report.ChainStarted = chain.ID
		fired = append(fired, evs...)
	}
	for _, ev := range fired {
		next.Events = append(next.Events, ev)
		next.Log(model.HistoryEvent, e.announce(ev))
	}
	report.Events = fired

	next.Log(model.HistoryTravel, fmt.Sprintf("Traveled to %s (-%d gold)", dest.Name, cost))
	return next, report, nil
}

func (e *Engine) announce(ev model.MarketEvent) string {
	if ev.Target == model.TargetRandom {
		if g, ok := e.cat.Good(ev.ResolvedGood); ok {
			return fmt.Sprintf("%s (%s)", ev.Description, g.Name)
		}
	}
	return ev.Description
}

// --- Unlocks and upgrades ---

// UnlockLocation buys access to locationID. No turn passes.
func (e *Engine) UnlockLocation(s *model.GameState, locationID string) (*model.GameState, int, error) {
	loc, ok := e.cat.Location(locationID)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidLocation, locationID)
	}
	if s.IsUnlocked(locationID) {
		return nil, 0, fmt.Errorf("%w: %s", ErrAlreadyUnlocked, loc.Name)
	}
	if !loc.Unlockable() {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotUnlockable, loc.Name)
	}
	if loc.UnlockCost > s.Money {
		return nil, 0, fmt.Errorf("%w: unlocking %s costs %d gold, have %d", ErrInsufficientFunds, loc.Name, loc.UnlockCost, s.Money)
	}

	next := s.Clone()
	next.Money -= loc.UnlockCost
	next.UnlockedLocations = append(next.UnlockedLocations, locationID)
	next.Log(model.HistoryUnlock, fmt.Sprintf("Unlocked %s for %d gold", loc.Name, loc.UnlockCost))
	return next, loc.UnlockCost, nil
}

// UpgradeVehicle buys the next tier of the given vehicle line, or its first
// tier when switching lines. The new tier must carry more than the current
// capacity. No turn passes.
func (e *Engine) UpgradeVehicle(s *model.GameState, kind string) (*model.GameState, catalog.VehicleTier, error) {
	line, ok := e.cat.Vehicle(kind)
	if !ok {
		return nil, catalog.VehicleTier{}, fmt.Errorf("%w: %q", ErrUnknownVehicle, kind)
	}
	level := 1
	if s.Vehicle.Kind == kind {
		level = s.Vehicle.Level + 1
	}
	tier, ok := line.Tier(level)
	if !ok {
		return nil, catalog.VehicleTier{}, fmt.Errorf("%w: %s", ErrVehicleMaxed, line.Name)
	}
	if tier.Slots <= s.InventorySlots {
		return nil, catalog.VehicleTier{}, fmt.Errorf("%w: %s holds %d, you already carry %d", ErrNotAnUpgrade, tier.Name, tier.Slots, s.InventorySlots)
	}
	if tier.Cost > s.Money {
		return nil, catalog.VehicleTier{}, fmt.Errorf("%w: %s costs %d gold, have %d", ErrInsufficientFunds, tier.Name, tier.Cost, s.Money)
	}

	next := s.Clone()
	next.Money -= tier.Cost
	next.InventorySlots = tier.Slots
	next.Vehicle = model.Vehicle{Kind: kind, Level: level}
	next.Log(model.HistoryUpgrade, fmt.Sprintf("Bought a %s (%d slots) for %d gold", tier.Name, tier.Slots, tier.Cost))
	return next, tier, nil
}
