package strategy

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

type BreakoutTestSuite struct {
	suite.Suite
	strategy *Breakout
}

func TestBreakoutSuite(t *testing.T) {
	suite.Run(t, new(BreakoutTestSuite))
}

func (suite *BreakoutTestSuite) SetupTest() {
	suite.strategy = NewBreakout(config.DefaultConfig())
}

func flatSeries(n int, price float64) []types.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}

	return barSeries(closes)
}

func (suite *BreakoutTestSuite) TestName() {
	suite.Equal("Breakout", suite.strategy.Name())
}

func (suite *BreakoutTestSuite) TestNoBars() {
	_, err := suite.strategy.GenerateSignal(nil)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *BreakoutTestSuite) TestShortHistoryIsNeutral() {
	proposal, err := suite.strategy.GenerateSignal(flatSeries(20, 100))
	suite.NoError(err)
	suite.Equal(types.DirectionSideways, proposal.Direction)
	suite.NoError(proposal.Validate())
}

func (suite *BreakoutTestSuite) TestUpwardBreakout() {
	bars := flatSeries(60, 100)
	bars[59].Open = 101
	bars[59].High = 106
	bars[59].Low = 100.5
	bars[59].Close = 105 // range high of the prior window is 100.5
	bars[59].Volume = 3000000

	proposal, err := suite.strategy.GenerateSignal(bars)
	suite.NoError(err)
	suite.Equal(types.DirectionUp, proposal.Direction)
	suite.Equal(112.35, proposal.Target) // close * 1.07
	suite.Equal(101.85, proposal.Stop)   // close * 0.97
	suite.Equal(2.33, proposal.RewardRisk)
	suite.Equal(5, proposal.HoldingDays)
	suite.InDelta(69.97, proposal.SuccessRate, 0.001)
	suite.NoError(proposal.Validate())
}

func (suite *BreakoutTestSuite) TestDownwardBreakdown() {
	bars := flatSeries(60, 100)
	bars[59].Open = 99
	bars[59].High = 99.5
	bars[59].Low = 94
	bars[59].Close = 95 // range low of the prior window is 99.5
	bars[59].Volume = 3000000

	proposal, err := suite.strategy.GenerateSignal(bars)
	suite.NoError(err)
	suite.Equal(types.DirectionDown, proposal.Direction)
	suite.Equal(88.35, proposal.Target) // close * 0.93
	suite.Equal(97.85, proposal.Stop)   // close * 1.03
	suite.Equal(2.33, proposal.RewardRisk)
	suite.NoError(proposal.Validate())
}

func (suite *BreakoutTestSuite) TestCloseAtRangeHighOnThresholdVolume() {
	bars := flatSeries(60, 100)

	// Volume SMA20 ends on the reference day: (19*37000 + 57000)/20 = 38000,
	// so 57000 sits exactly at the 1.5x threshold.
	for i := 40; i < 59; i++ {
		bars[i].Volume = 37000
	}

	bars[59].Open = 100.2
	bars[59].High = 101
	bars[59].Low = 100
	bars[59].Close = 100.5 // exactly the prior-window high
	bars[59].Volume = 57000

	proposal, err := suite.strategy.GenerateSignal(bars)
	suite.NoError(err)
	suite.Equal(types.DirectionUp, proposal.Direction)
	suite.InDelta(107.54, proposal.Target, 0.01) // close * 1.07
	suite.InDelta(97.49, proposal.Stop, 0.01)    // close * 0.97
	suite.Equal(2.33, proposal.RewardRisk)
	suite.Equal(5, proposal.HoldingDays)
	suite.NoError(proposal.Validate())
}

func (suite *BreakoutTestSuite) TestCloseAtRangeLowSignalsDown() {
	bars := flatSeries(60, 100)
	bars[59].Open = 99.8
	bars[59].High = 100
	bars[59].Low = 99
	bars[59].Close = 99.5 // exactly the prior-window low
	bars[59].Volume = 3000000

	proposal, err := suite.strategy.GenerateSignal(bars)
	suite.NoError(err)
	suite.Equal(types.DirectionDown, proposal.Direction)
	suite.InDelta(92.54, proposal.Target, 0.01) // close * 0.93
	suite.InDelta(102.49, proposal.Stop, 0.01)  // close * 1.03
	suite.NoError(proposal.Validate())
}

func (suite *BreakoutTestSuite) TestBreakWithoutVolumeIsNeutral() {
	bars := flatSeries(60, 100)
	bars[59].High = 106
	bars[59].Close = 105 // same break, volume stays at the flat average

	proposal, err := suite.strategy.GenerateSignal(bars)
	suite.NoError(err)
	suite.Equal(types.DirectionSideways, proposal.Direction)
}

func (suite *BreakoutTestSuite) TestQuietRangeIsNeutral() {
	proposal, err := suite.strategy.GenerateSignal(flatSeries(60, 100))
	suite.NoError(err)
	suite.Equal(types.DirectionSideways, proposal.Direction)
	suite.Equal(107.0, proposal.Target)
	suite.Equal(97.0, proposal.Stop)
	suite.Equal(2.33, proposal.RewardRisk)
	suite.Equal(5, proposal.HoldingDays)
}
