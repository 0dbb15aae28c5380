package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/atmx/caravan/internal/game"
	"github.com/atmx/caravan/internal/leaderboard"
	"github.com/atmx/caravan/internal/metrics"
	"github.com/atmx/caravan/internal/mode"
	"github.com/atmx/caravan/internal/rng"
	"github.com/atmx/caravan/internal/sim"
	"github.com/atmx/caravan/internal/trade"
)

type simResult struct {
	player string
	seed   int64
	report sim.Report
	result mode.Result
	entry  leaderboard.Entry
	rank   int
}

func newSimulateCmd(a *app) *cobra.Command {
	var (
		games      int
		modeID     string
		turns      int
		seed       int64
		metricsOut string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play seeded games with the autoplay bot",
		Long: `Runs several bot games concurrently, records every finished run on the
leaderboard and prints a summary. Equal seeds replay identical games.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if games <= 0 {
				return fmt.Errorf("--games must be positive")
			}
			if _, ok := a.cat.Mode(modeID); !ok {
				return fmt.Errorf("%w: %q", trade.ErrUnknownMode, modeID)
			}
			base, err := a.seed(seed)
			if err != nil {
				return err
			}

			results, err := a.simulate(cmd.Context(), games, modeID, turns, base)
			if err != nil {
				return err
			}
			printSimulation(cmd, results)

			if metricsOut != "" {
				if err := metrics.WriteTextfile(metricsOut); err != nil {
					return err
				}
				slog.Info("metrics written", "path", metricsOut)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&games, "games", "n", 8, "Number of games")
	cmd.Flags().StringVarP(&modeID, "mode", "m", "career", "Game mode")
	cmd.Flags().IntVarP(&turns, "turns", "t", 60, "Turn cap per game")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Base seed; game i uses seed+i")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus textfile metrics to this path")
	return cmd
}

func (a *app) simulate(ctx context.Context, games int, modeID string, turns int, base int64) ([]simResult, error) {
	board := leaderboard.New(a.kv)
	results := make([]simResult, games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range games {
		g.Go(func() error {
			seed := base + int64(i)
			engine := trade.NewEngine(a.cat, rng.New(seed))
			s, err := game.New(engine, modeID, game.Options{})
			if err != nil {
				return err
			}
			defer s.Close()

			rep, err := sim.NewBot(rng.New(^seed)).Play(gctx, s, turns)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}

			player := fmt.Sprintf("%s-bot-%d", a.cfg.Player, i+1)
			entry, rank, err := board.Submit(gctx, s.Entry(player))
			if err != nil {
				return err
			}
			results[i] = simResult{
				player: player,
				seed:   seed,
				report: rep,
				result: s.Result(),
				entry:  entry,
				rank:   rank,
			}
			slog.Debug("simulation finished", "player", player, "seed", seed, "score", entry.Score, "turns", rep.Turns)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printSimulation(cmd *cobra.Command, results []simResult) {
	out := cmd.OutOrStdout()
	titleColor.Fprintf(out, "\nSimulated %d games\n", len(results))

	table := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Player", "Seed", "Outcome", "Score", "Gold", "Turns", "Level", "Actions", "Rank"}),
	)
	var won int
	for _, r := range results {
		outcome := string(r.result.Outcome)
		if r.report.Stuck {
			outcome += " (stuck)"
		}
		if r.result.Outcome == mode.Won {
			won++
		}
		rank := "-"
		if r.rank > 0 {
			rank = strconv.Itoa(r.rank)
		}
		_ = table.Append([]string{
			r.player,
			strconv.FormatInt(r.seed, 10),
			outcome,
			leaderboard.FormatScore(r.entry.Score),
			strconv.Itoa(r.entry.Gold),
			strconv.Itoa(r.entry.Turns),
			strconv.Itoa(r.entry.Level),
			strconv.Itoa(r.report.Actions),
			rank,
		})
	}
	_ = table.Render()
	successColor.Fprintf(out, "%d of %d games won\n", won, len(results))
}
