package analysis

import "math"

// computeFibLevels maps each retracement ratio r to
// swingHigh - r x (swingHigh - swingLow), rounded to 2 decimals.
func computeFibLevels(swingHigh, swingLow float64, ratios []float64) map[float64]float64 {
	diff := swingHigh - swingLow
	levels := make(map[float64]float64, len(ratios))

	for _, r := range ratios {
		levels[r] = round2(swingHigh - r*diff)
	}

	return levels
}

// nearestLevels finds the nearest support (largest level strictly below the
// close, or the minimum level) and resistance (smallest level strictly above,
// or the maximum level).
func nearestLevels(close float64, levels map[float64]float64) (support, resistance float64) {
	support = math.Inf(1)
	resistance = math.Inf(-1)
	minLevel := math.Inf(1)
	maxLevel := math.Inf(-1)
	belowFound := false
	aboveFound := false

	for _, price := range levels {
		if price < minLevel {
			minLevel = price
		}

		if price > maxLevel {
			maxLevel = price
		}

		if price < close {
			if !belowFound || price > support {
				support = price
			}

			belowFound = true
		}

		if price > close {
			if !aboveFound || price < resistance {
				resistance = price
			}

			aboveFound = true
		}
	}

	if !belowFound {
		support = minLevel
	}

	if !aboveFound {
		resistance = maxLevel
	}

	return support, resistance
}

// atLevel reports whether the close is within proximityPct of the level.
// A zero level never matches, guarding the division.
func atLevel(close, level, proximityPct float64) bool {
	if level == 0 {
		return false
	}

	return math.Abs(close-level)/level <= proximityPct
}
