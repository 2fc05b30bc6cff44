package strategy

import (
	"math"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

const (
	bollingerPeriod       = 20
	bollingerStdDev       = 2.0
	bollingerMinBars      = 52
	bollingerMinBandwidth = 0.03
	// touch-then-reclaim: the previous bar must have touched the band and the
	// touch bar's volume must not exceed its trailing average (exhaustion).
	exhaustionMinBars = 22
	exhaustionRatio   = 1.0

	trendSMAPeriod = 50
	trendShiftBars = 5

	neutralHoldingDays = 5
)

// Bollinger signals mean reversion back inside the Bollinger Bands: the
// previous bar touches a band on exhausted volume and the reference day closes
// back inside, with the long trend agreeing.
type Bollinger struct {
	cfg config.Config
}

func NewBollinger(cfg config.Config) *Bollinger {
	return &Bollinger{cfg: cfg}
}

// Name returns the strategy name.
func (b *Bollinger) Name() string {
	return "Bollinger"
}

// GenerateSignal evaluates the reference day (the last bar).
func (b *Bollinger) GenerateSignal(bars []types.Bar) (types.TradeProposal, error) {
	n := len(bars)
	if n == 0 {
		return types.TradeProposal{}, errors.NewInsufficientDataErrorf(bollingerMinBars, 0, "",
			"no bars to evaluate")
	}

	cur := bars[n-1]
	if n < bollingerMinBars {
		return b.neutral(cur.Close, "not enough history for band evaluation"), nil
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)

	for i, bar := range bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	upper, middle, lower := bollingerBands(closes, bollingerPeriod, bollingerStdDev)
	if middle <= 0 {
		return b.neutral(cur.Close, "degenerate band midline"), nil
	}

	bandwidth := (upper - lower) / middle
	if bandwidth < bollingerMinBandwidth {
		return b.neutral(cur.Close, "bands too narrow, range-bound market"), nil
	}

	// Long trend slope: SMA50 today versus five bars ago. A flat average
	// permits either side.
	if n < trendSMAPeriod+trendShiftBars {
		return b.neutral(cur.Close, "not enough history to read the trend"), nil
	}

	smaNow := smaLast(closes, trendSMAPeriod)
	smaPrev := smaLast(closes[:n-trendShiftBars], trendSMAPeriod)

	// Bands as of the touch bar, one day before the reference day.
	prevUpper, _, prevLower := bollingerBands(closes[:n-1], bollingerPeriod, bollingerStdDev)
	prev := bars[n-2]

	touchedLower := prev.Low <= prevLower && cur.Close > lower
	touchedUpper := prev.High >= prevUpper && cur.Close < upper

	exhausted := touchVolumeExhausted(volumes, prev.Volume)
	spike := volumeSpiking(volumes, cur.Volume, b.cfg)

	if touchedLower && smaNow >= smaPrev && exhausted {
		entry := cur.Close
		target := round2(middle)
		stop := round2(lower * 0.985)

		reward := target - entry
		risk := entry - stop

		if reward <= 0 || risk <= 0 {
			return b.neutral(entry, "reclaim without room to the midline"), nil
		}

		rr := round2(reward / risk)

		return types.TradeProposal{
			Direction:   types.DirectionUp,
			Target:      target,
			Stop:        stop,
			RewardRisk:  rr,
			HoldingDays: RecommendHoldingDays(b.cfg, rr, spike),
			SuccessRate: SuccessRate(rr),
			Rationale:   "lower band touch on exhausted volume, close reclaimed the band in an uptrend",
		}, nil
	}

	if touchedUpper && smaNow <= smaPrev && exhausted {
		entry := cur.Close
		target := round2(middle)
		stop := round2(upper * 1.015)

		reward := entry - target
		risk := stop - entry

		if reward <= 0 || risk <= 0 {
			return b.neutral(entry, "rejection without room to the midline"), nil
		}

		rr := round2(reward / risk)

		return types.TradeProposal{
			Direction:   types.DirectionDown,
			Target:      target,
			Stop:        stop,
			RewardRisk:  rr,
			HoldingDays: RecommendHoldingDays(b.cfg, rr, spike),
			SuccessRate: SuccessRate(rr),
			Rationale:   "upper band touch on exhausted volume, close rejected the band in a downtrend",
		}, nil
	}

	return b.neutral(cur.Close, "no band touch-and-reclaim on the reference day"), nil
}

func (b *Bollinger) neutral(entry float64, reason string) types.TradeProposal {
	target := round2(entry * 1.02)
	stop := round2(entry * 0.99)
	rr := round2((target - entry) / (entry - stop))

	return types.TradeProposal{
		Direction:   types.DirectionSideways,
		Target:      target,
		Stop:        stop,
		RewardRisk:  rr,
		HoldingDays: neutralHoldingDays,
		SuccessRate: SuccessRate(rr),
		Rationale:   reason,
	}
}

// touchVolumeExhausted reports whether the touch bar carried capitulation
// volume, at or above its trailing average. Short histories and degenerate
// averages pass, so the filter only ever vetoes.
func touchVolumeExhausted(volumes []float64, touchVolume float64) bool {
	if len(volumes) < exhaustionMinBars {
		return true
	}

	volSMA := smaLast(volumes[:len(volumes)-1], bollingerPeriod)
	if volSMA <= 0 {
		return true
	}

	return touchVolume >= volSMA*exhaustionRatio
}

func volumeSpiking(volumes []float64, curVolume float64, cfg config.Config) bool {
	if len(volumes) < cfg.SMAPeriod {
		return false
	}

	return curVolume > smaLast(volumes, cfg.SMAPeriod)*cfg.VolumeSpikeRatio
}

// bollingerBands computes the upper, middle and lower bands over the trailing
// period of closes. Callers guarantee len(closes) >= period.
func bollingerBands(closes []float64, period int, stdDevs float64) (upper, middle, lower float64) {
	middle = smaLast(closes, period)

	var squaredDiffSum float64

	for i := len(closes) - period; i < len(closes); i++ {
		diff := closes[i] - middle
		squaredDiffSum += diff * diff
	}

	sd := math.Sqrt(squaredDiffSum / float64(period))

	return middle + stdDevs*sd, middle, middle - stdDevs*sd
}
