package analysis

import (
	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/types"
)

const (
	// reducedSwingWindow is the second attempt when the configured window
	// finds no swing points.
	reducedSwingWindow = 3
	// rollingFallbackBars is the final fallback: a plain rolling max/min.
	rollingFallbackBars = 60
	// minLookbackSample: below this many bars inside the lookback cutoff,
	// the whole series is used instead.
	minLookbackSample = 10
)

// DetectSwingPair selects the swing high/low pair that approximates the move
// currently in force, within the configured lookback months (measured from
// the last bar's date so replays are deterministic).
//
// The detection chain is an explicit ordered fallback: a centered window of
// half-width W, then W=3, then a rolling max/min over the last 60 bars. Pair
// selection is trend-biased: in an uptrend the most recent swing low anchors
// the pair and the highest swing high after it completes it; a downtrend
// mirrors this. When no candidate lies after the anchor, any candidate is
// accepted; the pair may then not reflect the trend bias, which is a known
// property of the heuristic, not a defect.
func DetectSwingPair(bars []types.Bar, refClose float64, cfg config.Config) (swingHigh, swingLow float64) {
	sub := restrictToLookback(bars, cfg.FibLookbackMonths)
	if len(sub) < minLookbackSample {
		sub = bars
	}

	n := len(sub)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)

	for i, b := range sub {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	var shIdx, slIdx []int
	for _, w := range []int{cfg.SwingWindow, reducedSwingWindow} {
		shIdx, slIdx = findSwings(highs, lows, w)
		if len(shIdx) > 0 && len(slIdx) > 0 {
			break
		}
	}

	if len(shIdx) == 0 || len(slIdx) == 0 {
		return rollingExtremes(highs, lows)
	}

	// Trend-aware pair selection against a short SMA of closes.
	midPeriod := cfg.SMAPeriod
	if n < midPeriod {
		midPeriod = n
	}

	mid := smaLast(closes, midPeriod)

	if refClose >= mid {
		// Uptrend: most recent swing low, then the highest swing high after it.
		latestLow := slIdx[len(slIdx)-1]

		candidates := indexesAfter(shIdx, latestLow)
		if len(candidates) == 0 {
			candidates = shIdx
		}

		bestHigh := candidates[0]
		for _, i := range candidates {
			if highs[i] > highs[bestHigh] {
				bestHigh = i
			}
		}

		return highs[bestHigh], lows[latestLow]
	}

	// Downtrend: most recent swing high, then the lowest swing low after it.
	latestHigh := shIdx[len(shIdx)-1]

	candidates := indexesAfter(slIdx, latestHigh)
	if len(candidates) == 0 {
		candidates = slIdx
	}

	bestLow := candidates[0]
	for _, i := range candidates {
		if lows[i] < lows[bestLow] {
			bestLow = i
		}
	}

	return highs[latestHigh], lows[bestLow]
}

// restrictToLookback returns the suffix of bars dated within the last months
// before the final bar's date.
func restrictToLookback(bars []types.Bar, months int) []types.Bar {
	if len(bars) == 0 {
		return bars
	}

	cutoff := bars[len(bars)-1].Date.AddDate(0, -months, 0)
	for i, b := range bars {
		if !b.Date.Before(cutoff) {
			return bars[i:]
		}
	}

	return bars[len(bars):]
}

// findSwings returns the indexes whose high (low) is the maximum (minimum)
// within a centered window of half-width w.
func findSwings(highs, lows []float64, w int) (shIdx, slIdx []int) {
	n := len(highs)

	for i := w; i < n-w; i++ {
		isHigh := true
		isLow := true

		for j := i - w; j <= i+w; j++ {
			if highs[j] > highs[i] {
				isHigh = false
			}

			if lows[j] < lows[i] {
				isLow = false
			}
		}

		if isHigh {
			shIdx = append(shIdx, i)
		}

		if isLow {
			slIdx = append(slIdx, i)
		}
	}

	return shIdx, slIdx
}

// rollingExtremes is the last-resort fallback: max high / min low over the
// trailing window.
func rollingExtremes(highs, lows []float64) (float64, float64) {
	n := len(highs)
	if n == 0 {
		return 0, 0
	}

	window := rollingFallbackBars
	if n < window {
		window = n
	}

	high := highs[n-window]
	low := lows[n-window]

	for i := n - window; i < n; i++ {
		if highs[i] > high {
			high = highs[i]
		}

		if lows[i] < low {
			low = lows[i]
		}
	}

	return high, low
}

func indexesAfter(idx []int, after int) []int {
	var out []int

	for _, i := range idx {
		if i > after {
			out = append(out, i)
		}
	}

	return out
}
