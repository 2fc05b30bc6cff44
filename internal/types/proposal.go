package types

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// Direction is the directional call of a trade proposal.
type Direction string

const (
	DirectionUp       Direction = "UP"
	DirectionDown     Direction = "DOWN"
	DirectionSideways Direction = "SIDEWAYS"
)

// ExitReason records why a trade or position was closed.
type ExitReason string

const (
	ExitReasonTargetHit      ExitReason = "take_profit"
	ExitReasonStopHit        ExitReason = "stop_loss"
	ExitReasonHorizonExpired ExitReason = "horizon_expired"
)

// TradeProposal is a strategy's directional call for a single evaluation day:
// where to take profit, where to cut the loss, and how long to hold.
// A Sideways proposal is the well-formed "no signal" answer, not an error.
type TradeProposal struct {
	Direction Direction `yaml:"direction" json:"direction" csv:"direction" validate:"required,oneof=UP DOWN SIDEWAYS"`
	// Target is the favorable exit price boundary.
	Target float64 `yaml:"target" json:"target" csv:"target" validate:"required,gt=0"`
	// Stop is the adverse exit price boundary.
	Stop float64 `yaml:"stop" json:"stop" csv:"stop" validate:"required,gt=0"`
	// RewardRisk is |target-entry| / |entry-stop| at signal time.
	RewardRisk float64 `yaml:"reward_risk" json:"reward_risk" csv:"reward_risk" validate:"gte=0"`
	// HoldingDays is the recommended holding horizon in trading days.
	HoldingDays int `yaml:"holding_days" json:"holding_days" csv:"holding_days" validate:"required,gt=0"`
	// SuccessRate is the breakeven-derived success estimate in percent.
	SuccessRate float64 `yaml:"success_rate" json:"success_rate" csv:"success_rate" validate:"gte=0,lte=100"`
	// Rationale is the human-readable explanation of the call.
	Rationale string `yaml:"rationale" json:"rationale" csv:"rationale"`
}

// Validate checks that the proposal is well formed. A proposal with a missing
// or non-finite target/stop is skipped by the simulator and ignored by the
// position tracker; it is never a fatal condition.
func (p *TradeProposal) Validate() error {
	if !isFinite(p.Target) || !isFinite(p.Stop) {
		return errors.Newf(errors.ErrCodeInvalidProposal,
			"non-finite proposal boundaries: target=%v stop=%v", p.Target, p.Stop)
	}

	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProposal, "invalid trade proposal", err)
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
