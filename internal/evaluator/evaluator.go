// Package evaluator aggregates simulated trade records into per-strategy
// performance summaries for side-by-side comparison.
package evaluator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vnquant-lab/signal-engine/internal/types"
)

// MonthlyPerformance is the trade count and realized P&L for one calendar
// month of exits.
type MonthlyPerformance struct {
	Month  string  `yaml:"month" json:"month" csv:"month"`
	Trades int     `yaml:"trades" json:"trades" csv:"trades"`
	Wins   int     `yaml:"wins" json:"wins" csv:"wins"`
	PnL    float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// StrategyPerformance summarizes every simulated trade of one strategy.
type StrategyPerformance struct {
	Strategy   string `yaml:"strategy" json:"strategy" csv:"strategy"`
	Trades     int    `yaml:"trades" json:"trades" csv:"trades"`
	Wins       int    `yaml:"wins" json:"wins" csv:"wins"`
	Losses     int    `yaml:"losses" json:"losses" csv:"losses"`
	Breakevens int    `yaml:"breakevens" json:"breakevens" csv:"breakevens"`
	// WinRate is wins over all trades, in percent.
	WinRate  float64 `yaml:"win_rate" json:"win_rate" csv:"win_rate"`
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl" csv:"total_pnl"`
	AvgPnL   float64 `yaml:"avg_pnl" json:"avg_pnl" csv:"avg_pnl"`
	// ReturnOnCapital is total P&L over total capital deployed, in percent.
	ReturnOnCapital float64 `yaml:"return_on_capital" json:"return_on_capital" csv:"return_on_capital"`
	// DirectionalAccuracy is the win rate of Up and Down trades only,
	// leaving Sideways replays out of the denominator. UpAccuracy and
	// DownAccuracy split it by side.
	DirectionalAccuracy float64              `yaml:"directional_accuracy" json:"directional_accuracy" csv:"directional_accuracy"`
	UpAccuracy          float64              `yaml:"up_accuracy" json:"up_accuracy" csv:"up_accuracy"`
	DownAccuracy        float64              `yaml:"down_accuracy" json:"down_accuracy" csv:"down_accuracy"`
	Monthly             []MonthlyPerformance `yaml:"monthly" json:"monthly" csv:"-"`
}

type accumulator struct {
	trades, wins, losses, breakevens int
	up, upWins, down, downWins       int
	totalPnL, capital                decimal.Decimal
	monthly                          map[string]*MonthlyPerformance
}

// Summarize folds trade records into one performance summary per strategy,
// sorted by strategy name. Monthly buckets are keyed by exit month.
func Summarize(records []types.TradeRecord) []StrategyPerformance {
	acc := make(map[string]*accumulator)

	for _, r := range records {
		a, ok := acc[r.Strategy]
		if !ok {
			a = &accumulator{monthly: make(map[string]*MonthlyPerformance)}
			acc[r.Strategy] = a
		}

		a.trades++

		switch r.Result {
		case types.TradeResultWin:
			a.wins++
		case types.TradeResultLoss:
			a.losses++
		default:
			a.breakevens++
		}

		won := r.Result == types.TradeResultWin

		switch r.Direction {
		case types.DirectionUp:
			a.up++

			if won {
				a.upWins++
			}
		case types.DirectionDown:
			a.down++

			if won {
				a.downWins++
			}
		}

		pnl := decimal.NewFromFloat(r.PnL)
		a.totalPnL = a.totalPnL.Add(pnl)
		a.capital = a.capital.Add(decimal.NewFromFloat(r.EntryPrice).Mul(decimal.NewFromInt(int64(r.Shares))))

		month := r.ExitDate.Format("2006-01")

		m, ok := a.monthly[month]
		if !ok {
			m = &MonthlyPerformance{Month: month}
			a.monthly[month] = m
		}

		m.Trades++

		if r.Result == types.TradeResultWin {
			m.Wins++
		}

		m.PnL = decimal.NewFromFloat(m.PnL).Add(pnl).Round(2).InexactFloat64()
	}

	out := make([]StrategyPerformance, 0, len(acc))
	for name, a := range acc {
		out = append(out, a.summary(name))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })

	return out
}

func (a *accumulator) summary(name string) StrategyPerformance {
	s := StrategyPerformance{
		Strategy:   name,
		Trades:     a.trades,
		Wins:       a.wins,
		Losses:     a.losses,
		Breakevens: a.breakevens,
		TotalPnL:   a.totalPnL.Round(2).InexactFloat64(),
	}

	if a.trades > 0 {
		s.WinRate = pct(a.wins, a.trades)
		s.AvgPnL = a.totalPnL.Div(decimal.NewFromInt(int64(a.trades))).Round(2).InexactFloat64()
	}

	if a.up > 0 {
		s.UpAccuracy = pct(a.upWins, a.up)
	}

	if a.down > 0 {
		s.DownAccuracy = pct(a.downWins, a.down)
	}

	if a.up+a.down > 0 {
		s.DirectionalAccuracy = pct(a.upWins+a.downWins, a.up+a.down)
	}

	if a.capital.IsPositive() {
		s.ReturnOnCapital = a.totalPnL.Div(a.capital).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	months := make([]string, 0, len(a.monthly))
	for m := range a.monthly {
		months = append(months, m)
	}

	sort.Strings(months)

	for _, m := range months {
		s.Monthly = append(s.Monthly, *a.monthly[m])
	}

	return s
}

func pct(part, whole int) float64 {
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
