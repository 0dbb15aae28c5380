package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atmx/caravan/internal/game"
	"github.com/atmx/caravan/internal/leaderboard"
	"github.com/atmx/caravan/internal/rng"
	"github.com/atmx/caravan/internal/save"
	"github.com/atmx/caravan/internal/trade"
)

const playHelp = `Commands:
  market                 prices at the current location
  status                 gold, inventory, level and active events
  map                    travel and unlock costs
  buy <good> <qty>       buy goods
  sell <good> <qty>      sell goods
  travel <location>      move on; one turn passes
  unlock <location>      buy access to a location
  upgrade <vehicle>      buy the next cart, wagon or ship tier
  save <slot>            save to slot 1-4
  load <slot>            load slot 0-4
  history [n]            last n log lines
  quit`

func newPlayCmd(a *app) *cobra.Command {
	var (
		modeID string
		slot   int
		resume bool
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.startSession(cmd.Context(), modeID, slot, resume, seed)
			if err != nil {
				return err
			}
			defer s.Close()
			return a.repl(cmd.Context(), s, os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&modeID, "mode", "m", "", "Game mode (default from catalog)")
	cmd.Flags().IntVar(&slot, "slot", save.AutosaveSlot, "Slot to resume from")
	cmd.Flags().BoolVarP(&resume, "resume", "r", false, "Resume the game in --slot")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses CARAVAN_SEED or a random one)")
	return cmd
}

func (a *app) startSession(ctx context.Context, modeID string, slot int, resume bool, seedFlag int64) (*game.Session, error) {
	seed, err := a.seed(seedFlag)
	if err != nil {
		return nil, err
	}
	engine := trade.NewEngine(a.cat, rng.New(seed))
	saves := save.NewManager(a.kv)
	opts := game.Options{Saves: saves, Feedback: game.FeedbackFunc(bell)}

	if resume {
		b, err := saves.Load(ctx, slot)
		if err != nil {
			return nil, err
		}
		return game.Resume(engine, b, opts)
	}
	if modeID == "" {
		modeID = a.cat.Settings().DefaultMode
	}
	return game.New(engine, modeID, opts)
}

// bell rings the terminal for the big moments.
func bell(c game.Cue) {
	switch c {
	case game.CueLevelUp, game.CueAchievement, game.CueGameOver:
		fmt.Fprint(os.Stderr, "\a")
	}
}

func (a *app) repl(ctx context.Context, s *game.Session, in io.Reader, out io.Writer) error {
	m := s.Mode()
	titleColor.Fprintf(out, "%s: %s\n", m.Name, m.Description)
	fmt.Fprintln(out, `Type "help" for commands.`)
	printStatus(out, s.State(), s.Progression(), s.Result())

	submitted := s.Result().Outcome.Finished()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		quit, err := a.dispatch(ctx, s, out, fields)
		if err != nil {
			errorColor.Fprintln(out, err)
		}
		if quit {
			return nil
		}
		if r := s.Result(); r.Outcome.Finished() && !submitted {
			submitted = true
			a.submit(ctx, out, s)
		}
	}
	return sc.Err()
}

// dispatch runs one REPL command. It reports whether the loop should end.
func (a *app) dispatch(ctx context.Context, s *game.Session, out io.Writer, f []string) (bool, error) {
	arg := func(i int) (string, error) {
		if len(f) <= i {
			return "", fmt.Errorf("%s: missing argument, try help", f[0])
		}
		return strings.ToLower(f[i]), nil
	}
	num := func(i int) (int, error) {
		v, err := arg(i)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", f[0], v)
		}
		return n, nil
	}

	switch strings.ToLower(f[0]) {
	case "help", "?":
		fmt.Fprintln(out, playHelp)
	case "quit", "exit", "q":
		return true, nil
	case "market":
		listings, err := s.Market()
		if err != nil {
			return false, err
		}
		printMarket(out, s.State().CurrentLocation, listings)
	case "status":
		printStatus(out, s.State(), s.Progression(), s.Result())
	case "map":
		printDestinations(out, s.Destinations())
	case "history":
		n := 10
		if len(f) > 1 {
			v, err := num(1)
			if err != nil {
				return false, err
			}
			n = v
		}
		printHistory(out, s.State().History, n)

	case "buy", "sell":
		good, err := arg(1)
		if err != nil {
			return false, err
		}
		qty, err := num(2)
		if err != nil {
			return false, err
		}
		act := s.Buy
		if strings.EqualFold(f[0], "sell") {
			act = s.Sell
		}
		o, err := act(ctx, good, qty)
		if err != nil {
			return false, err
		}
		announce(out, o)
	case "travel", "go":
		loc, err := arg(1)
		if err != nil {
			return false, err
		}
		o, err := s.Travel(ctx, loc)
		if err != nil {
			return false, err
		}
		announce(out, o)
	case "unlock":
		loc, err := arg(1)
		if err != nil {
			return false, err
		}
		o, err := s.Unlock(ctx, loc)
		if err != nil {
			return false, err
		}
		announce(out, o)
	case "upgrade":
		kind, err := arg(1)
		if err != nil {
			return false, err
		}
		o, err := s.Upgrade(ctx, kind)
		if err != nil {
			return false, err
		}
		announce(out, o)

	case "save":
		slot, err := num(1)
		if err != nil {
			return false, err
		}
		if slot == save.AutosaveSlot {
			return false, errors.New("save: slot 0 is the autosave, pick 1-4")
		}
		if _, err := s.SaveSlot(ctx, slot); err != nil {
			return false, err
		}
		successColor.Fprintf(out, "Saved to slot %d.\n", slot)
	case "load":
		slot, err := num(1)
		if err != nil {
			return false, err
		}
		if _, err := s.LoadSlot(ctx, slot); err != nil {
			return false, err
		}
		successColor.Fprintf(out, "Loaded slot %d.\n", slot)
		printStatus(out, s.State(), s.Progression(), s.Result())

	default:
		return false, fmt.Errorf("unknown command %q, try help", f[0])
	}
	return false, nil
}

func (a *app) submit(ctx context.Context, out io.Writer, s *game.Session) {
	board := leaderboard.New(a.kv)
	e, rank, err := board.Submit(ctx, s.Entry(a.cfg.Player))
	if err != nil {
		errorColor.Fprintf(out, "Could not record score: %v\n", err)
		return
	}
	if rank > 0 {
		infoColor.Fprintf(out, "Leaderboard rank #%d with %s points.\n", rank, leaderboard.FormatScore(e.Score))
	}
}
