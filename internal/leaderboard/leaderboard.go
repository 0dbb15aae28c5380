// Package leaderboard keeps a ranked list of finished runs and running
// aggregate statistics in a store.Store.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atmx/caravan/internal/store"
)

// MaxEntries caps the ranked list.
const MaxEntries = 50

const boardKey = "leaderboard"

// Entry is one finished run.
type Entry struct {
	ID           string `json:"id"`
	PlayerName   string `json:"player_name"`
	GameMode     string `json:"game_mode"`
	Score        int    `json:"score"`
	Gold         int    `json:"gold"`
	Turns        int    `json:"turns"`
	Achievements int    `json:"achievements"`
	Level        int    `json:"level"`
	Timestamp    int64  `json:"timestamp"` // unix milliseconds
}

// Stats aggregates every submitted run, including runs that have since
// dropped off the ranked list.
type Stats struct {
	TotalGames        int             `json:"total_games"`
	TotalGoldEarned   int             `json:"total_gold_earned"`
	TotalAchievements int             `json:"total_achievements"`
	HighestLevel      int             `json:"highest_level"`
	BestScore         int             `json:"best_score"`
	AverageScore      decimal.Decimal `json:"average_score"`
}

type document struct {
	Entries []Entry `json:"entries"`
	Stats   Stats   `json:"stats"`
}

// Board reads and writes the leaderboard. Entries and stats share one
// record so every submission is a single atomic Put. A Board serialises its
// own submissions; separate processes sharing a store may race.
type Board struct {
	kv  store.Store
	mu  sync.Mutex
	now func() time.Time
}

// New creates a Board over kv.
func New(kv store.Store) *Board {
	return &Board{kv: kv, now: time.Now}
}

func (b *Board) load(ctx context.Context) (document, error) {
	data, err := b.kv.Get(ctx, boardKey)
	if errors.Is(err, store.ErrNotFound) {
		return document{}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("load leaderboard: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode leaderboard: %w", err)
	}
	return doc, nil
}

// Submit records a finished run and returns it with its assigned ID and
// timestamp, plus its 1-based rank on the overall board (0 when the score
// did not make the cut).
func (b *Board) Submit(ctx context.Context, e Entry) (Entry, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.load(ctx)
	if err != nil {
		return Entry{}, 0, err
	}

	e.ID = uuid.NewString()
	e.Timestamp = b.now().UnixMilli()

	doc.Entries = append(doc.Entries, e)
	sort.SliceStable(doc.Entries, func(i, j int) bool { return doc.Entries[i].Score > doc.Entries[j].Score })
	if len(doc.Entries) > MaxEntries {
		doc.Entries = doc.Entries[:MaxEntries]
	}
	rank := 0
	for i, x := range doc.Entries {
		if x.ID == e.ID {
			rank = i + 1
			break
		}
	}

	doc.Stats = doc.Stats.add(e)

	data, err := json.Marshal(doc)
	if err != nil {
		return Entry{}, 0, fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := b.kv.Put(ctx, boardKey, data); err != nil {
		return Entry{}, 0, fmt.Errorf("save leaderboard: %w", err)
	}
	return e, rank, nil
}

func (s Stats) add(e Entry) Stats {
	s.TotalGames++
	s.TotalGoldEarned += e.Gold
	s.TotalAchievements += e.Achievements
	s.HighestLevel = max(s.HighestLevel, e.Level)
	if s.TotalGames == 1 || e.Score > s.BestScore {
		s.BestScore = e.Score
	}
	n := decimal.NewFromInt(int64(s.TotalGames))
	s.AverageScore = s.AverageScore.Mul(n.Sub(decimal.NewFromInt(1))).
		Add(decimal.NewFromInt(int64(e.Score))).
		Div(n)
	return s
}

// Top returns up to limit entries, best first. A non-empty mode filters to
// that game mode. limit <= 0 returns every entry.
func (b *Board) Top(ctx context.Context, limit int, mode string) ([]Entry, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []Entry{}
	for _, e := range doc.Entries {
		if mode != "" && e.GameMode != mode {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Rank returns the 1-based position of player's best entry, optionally
// within one mode, or 0 if the player is not on the board.
func (b *Board) Rank(ctx context.Context, player, mode string) (int, error) {
	entries, err := b.Top(ctx, 0, mode)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if e.PlayerName == player {
			return i + 1, nil
		}
	}
	return 0, nil
}

// Stats returns the aggregate statistics.
func (b *Board) Stats(ctx context.Context) (Stats, error) {
	doc, err := b.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return doc.Stats, nil
}

// Clear removes every entry and resets the statistics.
func (b *Board) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kv.Delete(ctx, boardKey)
}

// FormatScore abbreviates large scores: 1500 → "1.5K", 2300000 → "2.3M".
func FormatScore(score int) string {
	d := decimal.NewFromInt(int64(score))
	switch {
	case score >= 1_000_000:
		return d.Div(decimal.NewFromInt(1_000_000)).StringFixed(1) + "M"
	case score >= 1_000:
		return d.Div(decimal.NewFromInt(1_000)).StringFixed(1) + "K"
	}
	return d.String()
}
