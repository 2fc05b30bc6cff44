// Package analysis computes the technical feature snapshot (moving averages,
// swing points, Fibonacci retracement levels) that strategies consume.
// Everything here is a pure function of the bar series it is given.
package analysis

import (
	"math"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// PricePosition describes the close's position relative to the short SMA.
type PricePosition string

const (
	PriceAboveSMA        PricePosition = "above"
	PriceBelowSMA        PricePosition = "below"
	PricePositionUnknown PricePosition = "unknown"
)

// FeatureSnapshot is the full set of technical features derived from a bar
// series ending at a reference day. Recomputed fresh on every call.
type FeatureSnapshot struct {
	// Close is the reference day's closing price.
	Close float64
	// PctChange is the percent change versus the prior close.
	PctChange float64
	// SMA is the short moving average of closes.
	SMA        float64
	PriceVsSMA PricePosition
	// Volume is the reference day's volume; VolumeSMA its moving average.
	Volume      float64
	VolumeSMA   float64
	VolumeSpike bool
	// SwingHigh and SwingLow are the trend-aware swing pair, see DetectSwingPair.
	SwingHigh float64
	SwingLow  float64
	// FibLevels maps each configured retracement ratio to its price level.
	FibLevels map[float64]float64
	// NearestSupport is the largest level strictly below Close (or the
	// minimum level if none qualifies); NearestResistance mirrors above.
	NearestSupport    float64
	NearestResistance float64
	AtFibSupport      bool
	AtFibResistance   bool
}

// ComputeFeatures derives a FeatureSnapshot from bars ending at the reference
// day. Returns an InsufficientDataError when fewer bars than the moving
// average period are available.
func ComputeFeatures(bars []types.Bar, cfg config.Config) (FeatureSnapshot, error) {
	if len(bars) < cfg.SMAPeriod {
		symbol := ""
		if len(bars) > 0 {
			symbol = bars[0].Symbol
		}

		return FeatureSnapshot{}, errors.NewInsufficientDataErrorf(cfg.SMAPeriod, len(bars), symbol,
			"insufficient data for feature computation: required %d bars, got %d", cfg.SMAPeriod, len(bars))
	}

	last := bars[len(bars)-1]
	prev := last

	if len(bars) >= 2 {
		prev = bars[len(bars)-2]
	}

	closePrice := last.Close

	pctChange := 0.0
	if prev.Close != 0 {
		pctChange = round2((closePrice - prev.Close) / prev.Close * 100)
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))

	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	sma := smaLast(closes, cfg.SMAPeriod)

	priceVsSMA := PricePositionUnknown
	if sma > 0 {
		if closePrice > sma {
			priceVsSMA = PriceAboveSMA
		} else {
			priceVsSMA = PriceBelowSMA
		}
	}

	volSMA := smaLast(volumes, cfg.SMAPeriod)
	volumeSpike := volSMA > 0 && last.Volume > volSMA*cfg.VolumeSpikeRatio

	swingHigh, swingLow := DetectSwingPair(bars, closePrice, cfg)
	fibLevels := computeFibLevels(swingHigh, swingLow, cfg.FibLevels)
	support, resistance := nearestLevels(closePrice, fibLevels)

	return FeatureSnapshot{
		Close:             closePrice,
		PctChange:         pctChange,
		SMA:               sma,
		PriceVsSMA:        priceVsSMA,
		Volume:            last.Volume,
		VolumeSMA:         volSMA,
		VolumeSpike:       volumeSpike,
		SwingHigh:         swingHigh,
		SwingLow:          swingLow,
		FibLevels:         fibLevels,
		NearestSupport:    support,
		NearestResistance: resistance,
		AtFibSupport:      atLevel(closePrice, support, cfg.FibProximityPct),
		AtFibResistance:   atLevel(closePrice, resistance, cfg.FibProximityPct),
	}, nil
}

// smaLast returns the mean of the trailing period values, or 0 when fewer
// values are available.
func smaLast(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	var sum float64
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}

	return sum / float64(period)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
