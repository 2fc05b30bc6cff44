// Package config holds every tunable the signal engine exposes. Values are
// supplied by the caller, either as DefaultConfig() or parsed from YAML.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// Config is the caller-supplied configuration object shared by the feature
// engine, strategies, simulator, and position tracker.
type Config struct {
	// SMAPeriod is the short moving-average period for price and volume.
	SMAPeriod int `yaml:"sma_period" validate:"required,gt=0"`
	// VolumeSpikeRatio flags a volume spike when volume > ratio x volume SMA.
	VolumeSpikeRatio float64 `yaml:"volume_spike_ratio" validate:"required,gt=0"`
	// FibLookbackMonths bounds the swing-detection window, measured back from
	// the last bar's date.
	FibLookbackMonths int `yaml:"fib_lookback_months" validate:"required,gt=0"`
	// SwingWindow is the half-width W of the centered swing-detection window.
	SwingWindow int `yaml:"swing_window" validate:"required,gt=0"`
	// FibProximityPct marks a close as "at" a retracement level when within
	// this fraction of the level.
	FibProximityPct float64 `yaml:"fib_proximity_pct" validate:"required,gt=0,lt=1"`
	// FibLevels are the retracement ratios, each in [0, 1].
	FibLevels []float64 `yaml:"fib_levels" validate:"required,min=2,dive,gte=0,lte=1"`
	// TPlusMin and TPlusMax bound the recommended holding horizon in trading days.
	TPlusMin int `yaml:"t_plus_min" validate:"required,gt=0"`
	TPlusMax int `yaml:"t_plus_max" validate:"required,gtefield=TPlusMin"`
	// SimulationMinLookback is the first evaluated day index in a historical
	// simulation, so every feature has enough history.
	SimulationMinLookback int `yaml:"simulation_min_lookback" validate:"required,gt=0"`
	// SimulationShares is the per-trade share size used for absolute P&L.
	SimulationShares int `yaml:"simulation_shares" validate:"required,gt=0"`
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		SMAPeriod:             20,
		VolumeSpikeRatio:      1.2,
		FibLookbackMonths:     6,
		SwingWindow:           5,
		FibProximityPct:       0.015,
		FibLevels:             []float64{0.0, 0.236, 0.382, 0.5, 0.618, 0.786, 1.0},
		TPlusMin:              3,
		TPlusMax:              5,
		SimulationMinLookback: 60,
		SimulationShares:      1000,
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}

// Parse unmarshals YAML on top of the defaults, so a partial file only
// overrides the keys it names.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read configuration file %s", path)
	}

	return Parse(data)
}
