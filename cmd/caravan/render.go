package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/atmx/caravan/internal/event"
	"github.com/atmx/caravan/internal/game"
	"github.com/atmx/caravan/internal/leaderboard"
	"github.com/atmx/caravan/internal/mode"
	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/save"
	"github.com/atmx/caravan/internal/trade"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgYellow)
	eventColor   = color.New(color.FgMagenta)
	errorColor   = color.New(color.FgRed)
)

func printMarket(w io.Writer, loc string, listings []game.Listing) {
	titleColor.Fprintf(w, "\nMarket of %s\n", loc)
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Good", "Category", "Price", "Base", "Held"}),
	)
	for _, l := range listings {
		_ = table.Append([]string{
			l.Good.ID,
			string(l.Good.Category),
			strconv.Itoa(l.Price),
			strconv.Itoa(l.Good.BasePrice),
			strconv.Itoa(l.Held),
		})
	}
	_ = table.Render()
}

func printDestinations(w io.Writer, dests []game.Destination) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Location", "Travel", "Unlock", "Status"}),
	)
	for _, d := range dests {
		status := "locked"
		switch {
		case d.Here:
			status = "here"
		case d.Unlocked:
			status = "open"
		}
		unlock := "-"
		if d.Location.Unlockable() && !d.Unlocked {
			unlock = strconv.Itoa(d.Location.UnlockCost)
		}
		_ = table.Append([]string{d.Location.ID, strconv.Itoa(d.Cost), unlock, status})
	}
	_ = table.Render()
}

func printStatus(w io.Writer, s *model.GameState, p *model.Progression, r mode.Result) {
	titleColor.Fprintf(w, "\n%s | turn %d | %s\n", s.CurrentLocation, s.Turns, s.Season)
	fmt.Fprintf(w, "Gold: %d   Slots: %d/%d   Level %d (%d XP, %d to next)\n",
		s.Money, s.UsedSlots(), s.InventorySlots, p.Level, p.XP, p.XPToNext)
	if r.TurnsRemaining > 0 {
		fmt.Fprintf(w, "Turns left: %d   Score: %d\n", r.TurnsRemaining, r.Score)
	}
	if s.Weather != nil {
		eventColor.Fprintf(w, "Weather: %s (%d turns)\n", s.Weather.Name, s.Weather.RemainingTurns)
	}
	if ev, ok := event.Current(s.Events); ok {
		eventColor.Fprintf(w, "Latest event: %s (%d turns, market %s)\n",
			ev.Description, ev.RemainingTurns, event.VolatilityLevel(s.Events))
	}
	if len(s.Inventory) == 0 {
		return
	}
	table := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Good", "Qty", "Paid"}))
	for _, id := range sortedKeys(s.Inventory) {
		_ = table.Append([]string{id, strconv.Itoa(s.Inventory[id]), strconv.Itoa(s.CostBasis[id])})
	}
	_ = table.Render()
}

func printHistory(w io.Writer, h []model.HistoryEntry, n int) {
	if n > 0 && n < len(h) {
		h = h[len(h)-n:]
	}
	for _, e := range h {
		fmt.Fprintf(w, "[%3d] %-8s %s\n", e.Turn, e.Type, e.Message)
	}
}

// announce prints everything notable about an accepted action.
func announce(w io.Writer, out game.Outcome) {
	switch {
	case out.Receipt != nil:
		rc := out.Receipt
		msg := fmt.Sprintf("%s %d %s at %d (total %d)", rc.Side, rc.Quantity, rc.GoodID, rc.UnitPrice, rc.Total)
		if rc.Side == trade.Sell {
			msg += fmt.Sprintf(", profit %d", rc.Profit)
		}
		successColor.Fprintln(w, msg)
	case out.Travel != nil:
		tr := out.Travel
		successColor.Fprintf(w, "Arrived in %s after paying %d gold.\n", tr.To, tr.Cost)
		if tr.SeasonChanged {
			infoColor.Fprintf(w, "The season turns to %s.\n", tr.Season)
		}
		if tr.WeatherCleared != "" {
			infoColor.Fprintf(w, "The %s has cleared.\n", tr.WeatherCleared)
		}
		if tr.Weather != nil {
			eventColor.Fprintf(w, "%s: %s\n", tr.Weather.Name, tr.Weather.Description)
		}
		for _, ev := range tr.Events {
			eventColor.Fprintf(w, "Event: %s\n", ev.Description)
		}
	case out.Vehicle != nil:
		successColor.Fprintf(w, "Bought a %s: %d slots.\n", out.Vehicle.Name, out.Vehicle.Slots)
	case out.Unlocked != "":
		successColor.Fprintf(w, "Unlocked %s for %d gold.\n", out.Unlocked, out.Paid)
	}

	d := out.Progress
	if d.XPGained > 0 {
		fmt.Fprintf(w, "+%d XP\n", d.XPGained)
	}
	for _, lvl := range d.LevelsReached {
		successColor.Fprintf(w, "Level up! You are now level %d.\n", lvl)
	}
	for _, p := range d.Perks {
		infoColor.Fprintf(w, "Perk unlocked: %s\n", p)
	}
	for _, a := range d.Achievements {
		infoColor.Fprintf(w, "Achievement: %s (+%d XP)\n", a.Title, a.XPReward)
	}
	printResult(w, out.Result)
}

func printResult(w io.Writer, r mode.Result) {
	switch r.Outcome {
	case mode.Won:
		successColor.Fprintf(w, "\nYou won: %s. Final score %d.\n", r.Reason, r.Score)
	case mode.Lost:
		errorColor.Fprintf(w, "\nGame over: %s. Final score %d.\n", r.Reason, r.Score)
	}
}

func printLeaderboard(w io.Writer, entries []leaderboard.Entry) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"#", "Player", "Mode", "Score", "Gold", "Turns", "Level"}),
	)
	for i, e := range entries {
		_ = table.Append([]string{
			strconv.Itoa(i + 1),
			e.PlayerName,
			e.GameMode,
			leaderboard.FormatScore(e.Score),
			strconv.Itoa(e.Gold),
			strconv.Itoa(e.Turns),
			strconv.Itoa(e.Level),
		})
	}
	_ = table.Render()
}

func printSlots(w io.Writer, slots []save.SlotInfo) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Slot", "Mode", "Gold", "Turns", "Level", "Saved"}),
	)
	for _, s := range slots {
		name := strconv.Itoa(s.Slot)
		if s.Slot == save.AutosaveSlot {
			name += " (auto)"
		}
		switch {
		case s.Empty:
			_ = table.Append([]string{name, "-", "-", "-", "-", "empty"})
		case s.Err != nil:
			_ = table.Append([]string{name, "-", "-", "-", "-", "unreadable"})
		default:
			_ = table.Append([]string{
				name,
				s.Mode,
				strconv.Itoa(s.Money),
				strconv.Itoa(s.Turns),
				strconv.Itoa(s.Level),
				s.SavedAt.Format("2006-01-02 15:04"),
			})
		}
	}
	_ = table.Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
