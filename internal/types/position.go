package types

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
)

// PositionStatus is the lifecycle stage of a live-tracked position.
type PositionStatus string

const (
	PositionStatusPending PositionStatus = "pending"
	PositionStatusOpen    PositionStatus = "open"
	PositionStatusClosed  PositionStatus = "closed"
)

// Position is a live-tracked trade proposal advanced day by day from
// creation through fill to exit. Identity is (symbol, strategy, signal date);
// the tracker uses it to reject duplicate signals.
type Position struct {
	// ID is the storage row identifier, assigned on first save.
	ID       string `yaml:"id" json:"id" csv:"id"`
	Symbol   string `yaml:"symbol" json:"symbol" csv:"symbol"`
	Strategy string `yaml:"strategy" json:"strategy" csv:"strategy"`
	// SignalDate is the day the proposal was raised.
	SignalDate time.Time `yaml:"signal_date" json:"signal_date" csv:"signal_date"`
	Direction  Direction `yaml:"direction" json:"direction" csv:"direction"`
	// RecommendedEntry is the suggested limit price for the next session.
	RecommendedEntry float64 `yaml:"recommended_entry" json:"recommended_entry" csv:"recommended_entry"`
	Target           float64 `yaml:"target" json:"target" csv:"target"`
	Stop             float64 `yaml:"stop" json:"stop" csv:"stop"`
	HoldingDays      int     `yaml:"holding_days" json:"holding_days" csv:"holding_days"`
	// EntryDate is the expected fill day: the next trading day after SignalDate.
	EntryDate time.Time `yaml:"entry_date" json:"entry_date" csv:"entry_date"`
	// EntryPrice is set when the position fills at EntryDate's open.
	EntryPrice optional.Option[float64] `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	// ExpectedExitDate is EntryDate advanced by HoldingDays trading days.
	ExpectedExitDate time.Time                   `yaml:"expected_exit_date" json:"expected_exit_date" csv:"expected_exit_date"`
	ExitDate         optional.Option[time.Time]  `yaml:"exit_date" json:"exit_date" csv:"exit_date"`
	ExitPrice        optional.Option[float64]    `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	ExitReason       optional.Option[ExitReason] `yaml:"exit_reason" json:"exit_reason" csv:"exit_reason"`
	PnLPercent       optional.Option[float64]    `yaml:"pnl_percent" json:"pnl_percent" csv:"pnl_percent"`
	Status           PositionStatus              `yaml:"status" json:"status" csv:"status"`
	Rationale        string                      `yaml:"rationale" json:"rationale" csv:"rationale"`
}

// IdentityKey returns the duplicate-guard key (symbol, strategy, signal day).
func (p *Position) IdentityKey() string {
	return PositionIdentityKey(p.Symbol, p.Strategy, p.SignalDate)
}

// PositionIdentityKey builds the identity key used for duplicate detection.
func PositionIdentityKey(symbol, strategy string, signalDate time.Time) string {
	return fmt.Sprintf("%s|%s|%s", symbol, strategy, signalDate.Format("2006-01-02"))
}

// IsActive reports whether the position still needs daily updates.
func (p *Position) IsActive() bool {
	return p.Status == PositionStatusPending || p.Status == PositionStatusOpen
}
