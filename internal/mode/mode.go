// Package mode decides whether a run has been won or lost and scores it.
package mode

import (
	"github.com/shopspring/decimal"

	"github.com/atmx/caravan/internal/catalog"
)

// Outcome is the status of a run under its mode's rules.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	Won        Outcome = "won"
	Lost       Outcome = "lost"
)

// Finished reports whether the run has ended.
func (o Outcome) Finished() bool { return o != InProgress }

// Result is the evaluation of a run at one point in time.
type Result struct {
	Outcome        Outcome `json:"outcome"`
	Reason         string  `json:"reason,omitempty"`
	Score          int     `json:"score"`
	TurnsRemaining int     `json:"turns_remaining"` // 0 for uncapped modes
}

// Evaluate checks m's win rule, then its lose rules, against the current
// money and turn count. A win takes precedence when both hold.
func Evaluate(m catalog.Mode, money, turns int) Result {
	r := Result{
		Outcome:        InProgress,
		Score:          Score(m, money, turns),
		TurnsRemaining: remaining(m, turns),
	}

	if w := m.Win; w != nil && money >= w.Money && (!w.WithinMaxTurns || m.MaxTurns == 0 || turns <= m.MaxTurns) {
		r.Outcome, r.Reason = Won, "target reached"
		return r
	}

	l := m.Lose
	switch {
	case l.MoneyBelow != nil && money < *l.MoneyBelow:
		r.Outcome, r.Reason = Lost, "bankrupt"
	case l.MoneyAtOrBelow != nil && money <= *l.MoneyAtOrBelow:
		r.Outcome, r.Reason = Lost, "out of money"
	case l.TurnsExhausted && m.MaxTurns > 0 && turns >= m.MaxTurns:
		r.Outcome, r.Reason = Lost, "out of turns"
	case m.Win != nil && m.Win.WithinMaxTurns && m.MaxTurns > 0 && turns > m.MaxTurns:
		// The win window has closed.
		r.Outcome, r.Reason = Lost, "out of turns"
	}
	return r
}

// Score applies m's scoring formula. Fractional results are floored.
func Score(m catalog.Mode, money, turns int) int {
	factor := decimal.NewFromInt(int64(m.Score.Factor))
	gold := decimal.NewFromInt(int64(money))
	left := decimal.NewFromInt(int64(remaining(m, turns)))

	var s decimal.Decimal
	switch m.Score.Kind {
	case catalog.ScoreTurnsBonus:
		s = gold.Add(left.Mul(factor))
	case catalog.ScoreTurnsRatio:
		if factor.IsZero() {
			return money
		}
		s = gold.Mul(left).Div(factor)
	case catalog.ScoreProfit:
		s = gold.Sub(decimal.NewFromInt(int64(m.StartingMoney))).Mul(factor)
	default:
		return money
	}
	return int(s.Floor().IntPart())
}

func remaining(m catalog.Mode, turns int) int {
	if m.MaxTurns == 0 || turns >= m.MaxTurns {
		return 0
	}
	return m.MaxTurns - turns
}
