package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atmx/caravan/internal/leaderboard"
	"github.com/atmx/caravan/internal/save"
)

func newLeaderboardCmd(a *app) *cobra.Command {
	var (
		modeID string
		limit  int
		reset  bool
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			board := leaderboard.New(a.kv)
			if reset {
				if err := board.Clear(ctx); err != nil {
					return err
				}
				infoColor.Fprintln(cmd.OutOrStdout(), "Leaderboard cleared.")
				return nil
			}

			entries, err := board.Top(ctx, limit, modeID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			printLeaderboard(out, entries)

			stats, err := board.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d games, best %s, average %s, highest level %d\n",
				stats.TotalGames, leaderboard.FormatScore(stats.BestScore),
				stats.AverageScore.StringFixed(1), stats.HighestLevel)

			if rank, err := board.Rank(ctx, a.cfg.Player, modeID); err == nil && rank > 0 {
				infoColor.Fprintf(out, "%s is ranked #%d\n", a.cfg.Player, rank)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modeID, "mode", "m", "", "Only show runs in this mode")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of entries")
	cmd.Flags().BoolVar(&reset, "clear", false, "Remove every entry and reset statistics")
	return cmd
}

func newSavesCmd(a *app) *cobra.Command {
	var del int
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List save slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			saves := save.NewManager(a.kv)
			if cmd.Flags().Changed("delete") {
				if err := saves.Delete(ctx, del); err != nil {
					return err
				}
				infoColor.Fprintf(cmd.OutOrStdout(), "Slot %d deleted.\n", del)
			}
			slots, err := saves.List(ctx)
			if err != nil {
				return err
			}
			printSlots(cmd.OutOrStdout(), slots)
			return nil
		},
	}
	cmd.Flags().IntVar(&del, "delete", 0, "Empty this slot before listing")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the autosave as a portable string",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := save.NewManager(a.kv).Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <payload>",
		Short: "Replace the autosave with an exported string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := save.NewManager(a.kv).Import(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Imported %s game at turn %d with %d gold. Resume with: caravan play --resume\n",
				b.GameState.Mode, b.GameState.Turns, b.GameState.Money)
			return nil
		},
	}
}
