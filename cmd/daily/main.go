// Command daily runs one live cycle: advance tracked positions against the
// day's bars, evaluate every strategy on each symbol, and persist the book.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/datasource"
	"github.com/vnquant-lab/signal-engine/internal/logger"
	"github.com/vnquant-lab/signal-engine/internal/store"
	"github.com/vnquant-lab/signal-engine/internal/strategy"
	"github.com/vnquant-lab/signal-engine/internal/tracker"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

func dailyAction(ctx context.Context, cmd *cli.Command) error {
	zlog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zlog.Sync()

	cfg := config.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	db, err := store.NewStore(cmd.String("db"), zlog)
	if err != nil {
		return err
	}
	defer db.Close()

	source, err := datasource.NewBarSource(zlog)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := source.Initialize(cmd.String("history")); err != nil {
		return err
	}

	day := cmd.Timestamp("date")
	if day.IsZero() {
		day, err = source.LatestDate()
		if err != nil {
			return err
		}
	}

	zlog.Info("running daily cycle", zap.String("date", day.Format("2006-01-02")))

	positions, err := db.LoadPositions()
	if err != nil {
		return err
	}

	book := tracker.NewTracker(cfg, zlog)
	book.Load(positions)

	todayBars, err := source.GetBarsOn(day)
	if err != nil {
		return err
	}

	closed := book.UpdatePositions(day, todayBars)
	for _, p := range closed {
		fmt.Printf("closed %s %s %s at %.2f (%s), pnl %.4f%%\n",
			p.Symbol, p.Strategy, p.Direction,
			p.ExitPrice.TakeOr(0), p.ExitReason.TakeOr(""), p.PnLPercent.TakeOr(0))
	}

	registry := strategy.NewRegistry()
	for _, s := range []strategy.Strategy{strategy.NewBollinger(cfg), strategy.NewBreakout(cfg)} {
		if err := registry.Register(s); err != nil {
			return err
		}
	}

	added := generateSignals(zlog, book, source, registry, day)

	if err := db.SavePositions(book.Snapshot()); err != nil {
		return err
	}

	fmt.Printf("daily cycle done: %d closed, %d new signals, %d active\n",
		len(closed), added, len(book.OpenPositions()))

	return nil
}

// generateSignals evaluates every strategy on every symbol that traded on the
// given day. A failure on one symbol never stops the rest of the run.
func generateSignals(zlog *logger.Logger, book *tracker.Tracker, source *datasource.BarSource, registry *strategy.Registry, day time.Time) int {
	symbols, err := source.Symbols()
	if err != nil {
		zlog.Warn("failed to list symbols, skipping signal generation", zap.Error(err))

		return 0
	}

	added := 0

	for _, symbol := range symbols {
		bars, err := source.GetBars(symbol)
		if err != nil {
			zlog.Warn("skipping symbol, failed to load bars", zap.String("symbol", symbol), zap.Error(err))

			continue
		}

		history := truncateAfter(bars, day)
		if len(history) == 0 || !types.SameDay(history[len(history)-1].Date, day) {
			continue // symbol did not trade on the reference day
		}

		lastClose := history[len(history)-1].Close

		for _, strat := range registry.All() {
			proposal, err := strat.GenerateSignal(history)
			if err != nil {
				if !errors.IsInsufficientDataError(err) {
					zlog.Warn("strategy failed",
						zap.String("symbol", symbol), zap.String("strategy", strat.Name()), zap.Error(err))
				}

				continue
			}

			if err := proposal.Validate(); err != nil {
				zlog.Warn("discarding malformed proposal",
					zap.String("symbol", symbol), zap.String("strategy", strat.Name()), zap.Error(err))

				continue
			}

			if p, ok := book.AddSignal(symbol, day, lastClose, strat.Name(), proposal); ok {
				added++

				fmt.Printf("new signal %s %s %s: entry ~%.2f target %.2f stop %.2f (%s)\n",
					p.Symbol, p.Strategy, p.Direction, p.RecommendedEntry, p.Target, p.Stop, p.Rationale)
			}
		}
	}

	return added
}

func truncateAfter(bars []types.Bar, day time.Time) []types.Bar {
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Date.After(day) {
			return bars[:i+1]
		}
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "daily",
		Usage: "Advance tracked positions and raise new signals for the day",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "history",
				Aliases:  []string{"H"},
				Usage:    "Path to the price history file (CSV or parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the position book database",
				Value: "signals.duckdb",
			},
			&cli.TimestampFlag{
				Name:  "date",
				Usage: "Reference day in `YYYY-MM-DD` format (default: latest bar date)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
		},
		Action: dailyAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
