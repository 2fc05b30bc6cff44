// Package simulator replays a strategy over historical bars with strict
// no-lookahead discipline: on each evaluation day the strategy sees only the
// bars up to and including that day, fills happen at the next day's open, and
// exits are resolved against the days after that.
package simulator

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/logger"
	"github.com/vnquant-lab/signal-engine/internal/strategy"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// Engine runs historical simulations for a single symbol and strategy.
type Engine struct {
	cfg config.Config
	log *logger.Logger
}

// NewEngine creates a simulation engine.
func NewEngine(cfg config.Config, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// Run replays the strategy over the bar series and returns one trade record
// per evaluation day that produced a playable fill. A strategy error or an
// invalid proposal skips that day only; the replay itself never fails on them.
func (e *Engine) Run(symbol string, bars []types.Bar, strat strategy.Strategy) ([]types.TradeRecord, error) {
	if err := types.ValidateBarSeries(bars); err != nil {
		return nil, err
	}

	n := len(bars)

	// One bar after the evaluation day for the fill, one more to resolve it.
	required := e.cfg.SimulationMinLookback + 2
	if n < required {
		return nil, errors.NewInsufficientDataErrorf(required, n, symbol,
			"insufficient data to simulate %s: required %d bars, got %d", symbol, required, n)
	}

	var records []types.TradeRecord

	for d := e.cfg.SimulationMinLookback; d <= n-2; d++ {
		history := bars[:d+1]

		proposal, err := strat.GenerateSignal(history)
		if err != nil {
			e.log.Debug("strategy failed on evaluation day, skipping",
				zap.String("symbol", symbol),
				zap.String("strategy", strat.Name()),
				zap.String("date", bars[d].Date.Format("2006-01-02")),
				zap.Error(err))

			continue
		}

		if err := proposal.Validate(); err != nil {
			e.log.Debug("discarding malformed proposal",
				zap.String("symbol", symbol),
				zap.String("strategy", strat.Name()),
				zap.String("date", bars[d].Date.Format("2006-01-02")),
				zap.Error(err))

			continue
		}

		record, ok := e.playOut(symbol, strat.Name(), bars, d, proposal)
		if ok {
			records = append(records, record)
		}
	}

	return records, nil
}

// playOut fills the proposal at the next day's open and walks the holding
// window resolving target, stop and expiry in that order of precedence.
func (e *Engine) playOut(symbol, strategyName string, bars []types.Bar, d int, proposal types.TradeProposal) (types.TradeRecord, bool) {
	n := len(bars)

	holding := proposal.HoldingDays
	if holding < e.cfg.TPlusMin {
		holding = e.cfg.TPlusMin
	}

	if holding > e.cfg.TPlusMax {
		holding = e.cfg.TPlusMax
	}

	entryIdx := d + 1

	entry := bars[entryIdx].Open
	if entry <= 0 {
		return types.TradeRecord{}, false
	}

	exitIdx := -1

	var (
		exitPrice float64
		reason    types.ExitReason
	)

	for offset := 1; offset <= holding; offset++ {
		idx := entryIdx + offset
		if idx >= n {
			break
		}

		bar := bars[idx]

		if proposal.Direction == types.DirectionDown {
			if bar.Low <= proposal.Target {
				exitIdx, exitPrice, reason = idx, proposal.Target, types.ExitReasonTargetHit
				break
			}

			if bar.High >= proposal.Stop {
				exitIdx, exitPrice, reason = idx, proposal.Stop, types.ExitReasonStopHit
				break
			}

			continue
		}

		// Up and Sideways proposals resolve long-side, target before stop.
		if bar.High >= proposal.Target {
			exitIdx, exitPrice, reason = idx, proposal.Target, types.ExitReasonTargetHit
			break
		}

		if bar.Low <= proposal.Stop {
			exitIdx, exitPrice, reason = idx, proposal.Stop, types.ExitReasonStopHit
			break
		}
	}

	if exitIdx < 0 {
		exitIdx = entryIdx + holding
		if exitIdx > n-1 {
			exitIdx = n - 1
		}

		exitPrice = bars[exitIdx].Close
		reason = types.ExitReasonHorizonExpired
	}

	shares := e.cfg.SimulationShares

	entryDec := decimal.NewFromFloat(entry)
	move := decimal.NewFromFloat(exitPrice).Sub(entryDec)

	if proposal.Direction == types.DirectionDown {
		move = move.Neg()
	}

	pnl := move.Mul(decimal.NewFromInt(int64(shares))).Round(2).InexactFloat64()
	pct := move.Div(entryDec).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()

	return types.TradeRecord{
		Symbol:      symbol,
		Strategy:    strategyName,
		SignalDate:  bars[d].Date,
		EntryDate:   bars[entryIdx].Date,
		ExitDate:    bars[exitIdx].Date,
		Direction:   proposal.Direction,
		EntryPrice:  round2(entry),
		Target:      proposal.Target,
		Stop:        proposal.Stop,
		HoldingDays: holding,
		ExitPrice:   round2(exitPrice),
		ExitReason:  reason,
		Shares:      shares,
		PnL:         pnl,
		PnLPercent:  pct,
		Result:      types.ClassifyTradeResult(pnl),
	}, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
