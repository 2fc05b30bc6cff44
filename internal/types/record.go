package types

import "time"

// TradeResult is the win/loss classification of a closed simulated trade.
type TradeResult string

const (
	TradeResultWin       TradeResult = "WIN"
	TradeResultLoss      TradeResult = "LOSS"
	TradeResultBreakeven TradeResult = "BREAKEVEN"
)

// ClassifyTradeResult classifies a realized P&L amount by sign.
func ClassifyTradeResult(pnl float64) TradeResult {
	switch {
	case pnl > 0:
		return TradeResultWin
	case pnl < 0:
		return TradeResultLoss
	default:
		return TradeResultBreakeven
	}
}

// TradeRecord is one realized trade produced by the historical simulator.
// Immutable once created; the unit of aggregation for strategy comparison.
type TradeRecord struct {
	Symbol      string      `yaml:"symbol" json:"symbol" csv:"symbol"`
	Strategy    string      `yaml:"strategy" json:"strategy" csv:"strategy"`
	SignalDate  time.Time   `yaml:"signal_date" json:"signal_date" csv:"signal_date"`
	EntryDate   time.Time   `yaml:"entry_date" json:"entry_date" csv:"entry_date"`
	ExitDate    time.Time   `yaml:"exit_date" json:"exit_date" csv:"exit_date"`
	Direction   Direction   `yaml:"direction" json:"direction" csv:"direction"`
	EntryPrice  float64     `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	Target      float64     `yaml:"target" json:"target" csv:"target"`
	Stop        float64     `yaml:"stop" json:"stop" csv:"stop"`
	HoldingDays int         `yaml:"holding_days" json:"holding_days" csv:"holding_days"`
	ExitPrice   float64     `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	ExitReason  ExitReason  `yaml:"exit_reason" json:"exit_reason" csv:"exit_reason"`
	Shares      int         `yaml:"shares" json:"shares" csv:"shares"`
	PnL         float64     `yaml:"pnl" json:"pnl" csv:"pnl"`
	PnLPercent  float64     `yaml:"pnl_percent" json:"pnl_percent" csv:"pnl_percent"`
	Result      TradeResult `yaml:"result" json:"result" csv:"result"`
}
