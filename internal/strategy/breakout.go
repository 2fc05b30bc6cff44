package strategy

import (
	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

const (
	breakoutLookback      = 20
	breakoutVolumeRatio   = 1.5
	breakoutTakeProfitPct = 0.07
	breakoutStopLossPct   = 0.03
)

// Breakout signals a close at or beyond the recent range on expanded volume, with
// the short trend agreeing. Resistance and support are the extremes of the
// prior lookback window, excluding the reference day itself.
type Breakout struct {
	cfg config.Config
}

func NewBreakout(cfg config.Config) *Breakout {
	return &Breakout{cfg: cfg}
}

// Name returns the strategy name.
func (b *Breakout) Name() string {
	return "Breakout"
}

// GenerateSignal evaluates the reference day (the last bar).
func (b *Breakout) GenerateSignal(bars []types.Bar) (types.TradeProposal, error) {
	n := len(bars)
	if n == 0 {
		return types.TradeProposal{}, errors.NewInsufficientDataErrorf(breakoutLookback+trendShiftBars, 0, "",
			"no bars to evaluate")
	}

	cur := bars[n-1]
	if n < breakoutLookback+trendShiftBars {
		return b.neutral(cur.Close, "not enough history for range evaluation"), nil
	}

	window := bars[n-1-breakoutLookback : n-1]

	resistance := window[0].High
	support := window[0].Low

	for _, bar := range window {
		if bar.High > resistance {
			resistance = bar.High
		}

		if bar.Low < support {
			support = bar.Low
		}
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)

	for i, bar := range bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	// Volume baseline is the trailing SMA20 ending on the reference day.
	volSMA := smaLast(volumes, breakoutLookback)
	if volSMA <= 0 {
		return b.neutral(cur.Close, "no meaningful volume in the range window"), nil
	}

	smaNow := smaLast(closes, breakoutLookback)
	smaPrev := smaLast(closes[:n-trendShiftBars], breakoutLookback)

	expandedVolume := cur.Volume >= volSMA*breakoutVolumeRatio
	spike := volumeSpiking(volumes, cur.Volume, b.cfg)

	rr := round2(breakoutTakeProfitPct / breakoutStopLossPct)

	if cur.Close >= resistance && expandedVolume && smaNow > smaPrev {
		return types.TradeProposal{
			Direction:   types.DirectionUp,
			Target:      round2(cur.Close * (1 + breakoutTakeProfitPct)),
			Stop:        round2(cur.Close * (1 - breakoutStopLossPct)),
			RewardRisk:  rr,
			HoldingDays: RecommendHoldingDays(b.cfg, rr, spike),
			SuccessRate: SuccessRate(rr),
			Rationale:   "close above the range high on expanded volume in a rising trend",
		}, nil
	}

	if cur.Close <= support && expandedVolume && smaNow < smaPrev {
		return types.TradeProposal{
			Direction:   types.DirectionDown,
			Target:      round2(cur.Close * (1 - breakoutTakeProfitPct)),
			Stop:        round2(cur.Close * (1 + breakoutStopLossPct)),
			RewardRisk:  rr,
			HoldingDays: RecommendHoldingDays(b.cfg, rr, spike),
			SuccessRate: SuccessRate(rr),
			Rationale:   "close below the range low on expanded volume in a falling trend",
		}, nil
	}

	return b.neutral(cur.Close, "no range break on the reference day"), nil
}

func (b *Breakout) neutral(entry float64, reason string) types.TradeProposal {
	rr := round2(breakoutTakeProfitPct / breakoutStopLossPct)

	return types.TradeProposal{
		Direction:   types.DirectionSideways,
		Target:      round2(entry * (1 + breakoutTakeProfitPct)),
		Stop:        round2(entry * (1 - breakoutStopLossPct)),
		RewardRisk:  rr,
		HoldingDays: neutralHoldingDays,
		SuccessRate: SuccessRate(rr),
		Rationale:   reason,
	}
}
