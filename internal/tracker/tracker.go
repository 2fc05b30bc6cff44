// Package tracker advances live positions through their lifecycle: a signal
// becomes a pending position, fills at the open of the first session on or
// after its entry date, and closes on target, stop or horizon expiry as daily
// bars arrive.
package tracker

import (
	"math"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/logger"
	"github.com/vnquant-lab/signal-engine/internal/types"
)

// Tracker holds the live position book. Safe for concurrent use.
type Tracker struct {
	cfg       config.Config
	log       *logger.Logger
	positions []*types.Position
	index     map[string]*types.Position
	mu        sync.Mutex
}

// NewTracker creates an empty tracker.
func NewTracker(cfg config.Config, log *logger.Logger) *Tracker {
	return &Tracker{
		cfg:   cfg,
		log:   log,
		index: make(map[string]*types.Position),
	}
}

// AddSignal converts a directional proposal into a pending position. Sideways
// proposals and duplicates of an already-tracked identity are skipped; the
// boolean reports whether a position was added.
func (t *Tracker) AddSignal(symbol string, signalDate time.Time, closePrice float64, strategyName string, proposal types.TradeProposal) (types.Position, bool) {
	if proposal.Direction == types.DirectionSideways {
		return types.Position{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := types.PositionIdentityKey(symbol, strategyName, signalDate)
	if _, exists := t.index[key]; exists {
		t.log.Debug("duplicate signal ignored", zap.String("key", key))

		return types.Position{}, false
	}

	// Suggested limit just beyond the signal close, on the entry side.
	recommended := closePrice * 1.001
	if proposal.Direction == types.DirectionDown {
		recommended = closePrice * 0.999
	}

	entryDate := types.NextTradingDay(signalDate)

	p := &types.Position{
		Symbol:           symbol,
		Strategy:         strategyName,
		SignalDate:       signalDate,
		Direction:        proposal.Direction,
		RecommendedEntry: round2(recommended),
		Target:           proposal.Target,
		Stop:             proposal.Stop,
		HoldingDays:      proposal.HoldingDays,
		EntryDate:        entryDate,
		ExpectedExitDate: types.AddTradingDays(entryDate, proposal.HoldingDays),
		Status:           types.PositionStatusPending,
		Rationale:        proposal.Rationale,
	}

	t.positions = append(t.positions, p)
	t.index[key] = p

	return *p, true
}

// UpdatePositions advances every active position against today's bars, keyed
// by symbol. Positions whose symbol has no bar today are left untouched.
// Returns the positions closed by this update.
func (t *Tracker) UpdatePositions(today time.Time, bars map[string]types.Bar) []types.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	var closed []types.Position

	for _, p := range t.positions {
		if !p.IsActive() {
			continue
		}

		bar, ok := bars[p.Symbol]
		if !ok {
			continue
		}

		if p.Status == types.PositionStatusPending {
			// The entry day itself may be a holiday with no bar; the fill
			// then happens at the next session's open.
			if !today.Before(p.EntryDate) && bar.Open > 0 {
				p.EntryPrice = optional.Some(bar.Open)
				p.Status = types.PositionStatusOpen

				t.log.Info("position filled",
					zap.String("symbol", p.Symbol),
					zap.String("strategy", p.Strategy),
					zap.Float64("entry", bar.Open))
			}

			continue
		}

		if t.resolveOpen(p, today, bar) {
			closed = append(closed, *p)
		}
	}

	return closed
}

// resolveOpen checks target, stop and horizon expiry, in that order, for an
// open position against today's bar. Returns true when the position closed.
func (t *Tracker) resolveOpen(p *types.Position, today time.Time, bar types.Bar) bool {
	var (
		exitPrice float64
		reason    types.ExitReason
		hit       bool
	)

	if p.Direction == types.DirectionDown {
		switch {
		case bar.Low <= p.Target:
			exitPrice, reason, hit = p.Target, types.ExitReasonTargetHit, true
		case bar.High >= p.Stop:
			exitPrice, reason, hit = p.Stop, types.ExitReasonStopHit, true
		}
	} else {
		switch {
		case bar.High >= p.Target:
			exitPrice, reason, hit = p.Target, types.ExitReasonTargetHit, true
		case bar.Low <= p.Stop:
			exitPrice, reason, hit = p.Stop, types.ExitReasonStopHit, true
		}
	}

	if !hit {
		if today.Before(p.ExpectedExitDate) && !types.SameDay(today, p.ExpectedExitDate) {
			return false
		}

		exitPrice, reason = bar.Close, types.ExitReasonHorizonExpired
	}

	t.close(p, today, exitPrice, reason)

	return true
}

func (t *Tracker) close(p *types.Position, today time.Time, exitPrice float64, reason types.ExitReason) {
	p.Status = types.PositionStatusClosed
	p.ExitDate = optional.Some(today)
	p.ExitPrice = optional.Some(exitPrice)
	p.ExitReason = optional.Some(reason)

	entry := p.EntryPrice.TakeOr(0)
	if entry > 0 {
		move := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(entry))
		if p.Direction == types.DirectionDown {
			move = move.Neg()
		}

		pct := move.Div(decimal.NewFromFloat(entry)).Mul(decimal.NewFromInt(100)).Round(4).InexactFloat64()
		p.PnLPercent = optional.Some(pct)
	}

	t.log.Info("position closed",
		zap.String("symbol", p.Symbol),
		zap.String("strategy", p.Strategy),
		zap.String("reason", string(reason)),
		zap.Float64("exit", exitPrice))
}

// OpenPositions returns a snapshot of every position still needing updates.
func (t *Tracker) OpenPositions() []types.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []types.Position

	for _, p := range t.positions {
		if p.IsActive() {
			out = append(out, *p)
		}
	}

	return out
}

// OpenPositionsFor returns the active positions of one symbol.
func (t *Tracker) OpenPositionsFor(symbol string) []types.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []types.Position

	for _, p := range t.positions {
		if p.IsActive() && p.Symbol == symbol {
			out = append(out, *p)
		}
	}

	return out
}

// Snapshot returns a copy of the whole book, closed positions included.
func (t *Tracker) Snapshot() []types.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.Position, 0, len(t.positions))
	for _, p := range t.positions {
		out = append(out, *p)
	}

	return out
}

// Load replaces the book, typically with positions read back from storage.
func (t *Tracker) Load(positions []types.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.positions = t.positions[:0]
	t.index = make(map[string]*types.Position, len(positions))

	for i := range positions {
		p := positions[i]
		t.positions = append(t.positions, &p)
		t.index[p.IdentityKey()] = &p
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
