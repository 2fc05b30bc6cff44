package types

import (
	"time"

	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// Bar is one trading day's open/high/low/close/volume for a symbol.
// A bar for a past date is immutable once recorded.
type Bar struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Date   time.Time `yaml:"date" json:"date" csv:"date"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// ValidateBarSeries checks that a bar series is strictly ascending by date
// with no duplicate dates. Every engine entry point assumes this ordering.
func ValidateBarSeries(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return errors.Newf(errors.ErrCodeInvalidBarSeries,
				"bar series not strictly ascending at index %d: %s then %s",
				i, bars[i-1].Date.Format("2006-01-02"), bars[i].Date.Format("2006-01-02"))
		}
	}

	return nil
}
