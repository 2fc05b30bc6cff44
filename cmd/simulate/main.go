// Command simulate replays every registered strategy over a price history and
// reports per-strategy performance.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/datasource"
	"github.com/vnquant-lab/signal-engine/internal/evaluator"
	"github.com/vnquant-lab/signal-engine/internal/logger"
	"github.com/vnquant-lab/signal-engine/internal/simulator"
	"github.com/vnquant-lab/signal-engine/internal/store"
	"github.com/vnquant-lab/signal-engine/internal/strategy"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

func simulateAction(ctx context.Context, cmd *cli.Command) error {
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

	source, err := datasource.NewBarSource(zlog)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := source.Initialize(cmd.String("history")); err != nil {
		return err
	}

	symbols := cmd.StringSlice("symbol")
	if len(symbols) == 0 {
		symbols, err = source.Symbols()
		if err != nil {
			return err
		}
	}

	registry := strategy.NewRegistry()
	for _, s := range []strategy.Strategy{strategy.NewBollinger(cfg), strategy.NewBreakout(cfg)} {
		if err := registry.Register(s); err != nil {
			return err
		}
	}

	engine := simulator.NewEngine(cfg, zlog)
	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetDescription("Simulating"),
		progressbar.OptionShowCount())

	var records []types.TradeRecord

	for _, symbol := range symbols {
		bars, err := source.GetBars(symbol)
		if err != nil {
			zlog.Warn("skipping symbol, failed to load bars", zap.String("symbol", symbol), zap.Error(err))
			bar.Add(1)

			continue
		}

		for _, strat := range registry.All() {
			result, err := engine.Run(symbol, bars, strat)
			if err != nil {
				if errors.IsInsufficientDataError(err) {
					zlog.Debug("not enough history to simulate",
						zap.String("symbol", symbol), zap.String("strategy", strat.Name()))

					continue
				}

				zlog.Warn("simulation failed",
					zap.String("symbol", symbol), zap.String("strategy", strat.Name()), zap.Error(err))

				continue
			}

			records = append(records, result...)
		}

		bar.Add(1)
	}

	db, err := store.NewStore(cmd.String("db"), zlog)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveTradeRecords(records); err != nil {
		return err
	}

	if path := cmd.String("csv"); path != "" {
		if err := db.ExportTradeRecordsCSV(path); err != nil {
			return err
		}
	}

	printSummaries(evaluator.Summarize(records))

	return nil
}

func printSummaries(summaries []evaluator.StrategyPerformance) {
	for _, s := range summaries {
		fmt.Printf("\n%s: %d trades, win rate %.2f%%, directional accuracy %.2f%%\n",
			s.Strategy, s.Trades, s.WinRate, s.DirectionalAccuracy)
		fmt.Printf("  total pnl %.2f, avg pnl %.2f, return on capital %.2f%%\n",
			s.TotalPnL, s.AvgPnL, s.ReturnOnCapital)

		for _, m := range s.Monthly {
			fmt.Printf("  %s: %d trades, %d wins, pnl %.2f\n", m.Month, m.Trades, m.Wins, m.PnL)
		}
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "simulate",
		Usage: "Replay signal strategies over historical daily bars",
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
				Usage: "Path to the results database",
				Value: "signals.duckdb",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Optional path to export trade records as CSV",
			},
			&cli.StringSliceFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Restrict the run to specific symbols (default: all)",
			},
		},
		Action: simulateAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
