package evaluator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vnquant-lab/signal-engine/internal/types"
)

type EvaluatorTestSuite struct {
	suite.Suite
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func record(strategy string, direction types.Direction, pnl float64, exit time.Time) types.TradeRecord {
	return types.TradeRecord{
		Symbol:      "HPG",
		Strategy:    strategy,
		SignalDate:  exit.AddDate(0, 0, -4),
		EntryDate:   exit.AddDate(0, 0, -3),
		ExitDate:    exit,
		Direction:   direction,
		EntryPrice:  100,
		Target:      107,
		Stop:        97,
		HoldingDays: 3,
		ExitPrice:   100 + pnl/1000,
		ExitReason:  types.ExitReasonHorizonExpired,
		Shares:      1000,
		PnL:         pnl,
		PnLPercent:  pnl / 1000,
		Result:      types.ClassifyTradeResult(pnl),
	}
}

func (suite *EvaluatorTestSuite) TestEmptyInput() {
	suite.Empty(Summarize(nil))
}

func (suite *EvaluatorTestSuite) TestSingleStrategySummary() {
	jan := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)

	summaries := Summarize([]types.TradeRecord{
		record("Breakout", types.DirectionUp, 7000, jan),
		record("Breakout", types.DirectionUp, -3000, jan),
		record("Breakout", types.DirectionDown, 5000, feb),
		record("Breakout", types.DirectionSideways, 0, feb),
	})
	suite.Len(summaries, 1)

	s := summaries[0]
	suite.Equal("Breakout", s.Strategy)
	suite.Equal(4, s.Trades)
	suite.Equal(2, s.Wins)
	suite.Equal(1, s.Losses)
	suite.Equal(1, s.Breakevens)
	suite.Equal(50.0, s.WinRate)
	suite.Equal(9000.0, s.TotalPnL)
	suite.Equal(2250.0, s.AvgPnL)
	suite.Equal(2.25, s.ReturnOnCapital) // 9000 over 400000 deployed

	// Sideways replays stay out of the directional denominator.
	suite.InDelta(66.67, s.DirectionalAccuracy, 0.001)
	suite.Equal(50.0, s.UpAccuracy)
	suite.Equal(100.0, s.DownAccuracy)

	suite.Len(s.Monthly, 2)
	suite.Equal("2024-01", s.Monthly[0].Month)
	suite.Equal(2, s.Monthly[0].Trades)
	suite.Equal(1, s.Monthly[0].Wins)
	suite.Equal(4000.0, s.Monthly[0].PnL)
	suite.Equal("2024-02", s.Monthly[1].Month)
	suite.Equal(5000.0, s.Monthly[1].PnL)
}

func (suite *EvaluatorTestSuite) TestStrategiesSortedByName() {
	d := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	summaries := Summarize([]types.TradeRecord{
		record("Breakout", types.DirectionUp, 1000, d),
		record("Bollinger", types.DirectionUp, 2000, d),
	})
	suite.Len(summaries, 2)
	suite.Equal("Bollinger", summaries[0].Strategy)
	suite.Equal("Breakout", summaries[1].Strategy)
}

func (suite *EvaluatorTestSuite) TestAllSidewaysHasZeroDirectionalAccuracy() {
	d := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	summaries := Summarize([]types.TradeRecord{
		record("Bollinger", types.DirectionSideways, 1000, d),
	})
	suite.Equal(0.0, summaries[0].DirectionalAccuracy)
	suite.Equal(100.0, summaries[0].WinRate)
}
