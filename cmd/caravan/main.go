package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atmx/caravan/internal/catalog"
	"github.com/atmx/caravan/internal/config"
	"github.com/atmx/caravan/internal/rng"
	"github.com/atmx/caravan/internal/store"
)

// app carries what every subcommand needs once the root command has run its
// setup.
type app struct {
	cfg     *config.Config
	cat     *catalog.Catalog
	kv      store.Store
	cleanup []func()
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// seed returns the flag value when set, then CARAVAN_SEED, then a fresh
// random seed.
func (a *app) seed(flag int64) (int64, error) {
	if flag != 0 {
		return flag, nil
	}
	if a.cfg.Seed != 0 {
		return a.cfg.Seed, nil
	}
	return rng.NewSeed()
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "caravan",
		Short: "Caravan trading game engine",
		Long: `Buy low, sell high and travel between fourteen cities while seasons,
weather and market events move prices. Progress is saved to the configured
store after every action.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	rootCmd.AddCommand(
		newPlayCmd(a),
		newSimulateCmd(a),
		newLeaderboardCmd(a),
		newSavesCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		a.close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	// stdout belongs to the game; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.CatalogPath != "" {
		a.cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return err
		}
		slog.Info("catalog loaded", "path", cfg.CatalogPath)
	} else {
		a.cat = catalog.Default()
	}

	a.kv, err = a.openStore(cmd.Context())
	return err
}
