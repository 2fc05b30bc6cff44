package strategy

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vnquant-lab/signal-engine/internal/config"
	"github.com/vnquant-lab/signal-engine/internal/types"
)

// ContractTestSuite checks properties every strategy must satisfy regardless
// of its signal logic.
type ContractTestSuite struct {
	suite.Suite
	strategies []Strategy
}

func TestContractSuite(t *testing.T) {
	suite.Run(t, new(ContractTestSuite))
}

func (suite *ContractTestSuite) SetupTest() {
	cfg := config.DefaultConfig()
	suite.strategies = []Strategy{NewBollinger(cfg), NewBreakout(cfg)}
}

// TestNoLookahead hands each strategy a prefix slice whose backing array
// continues with wildly different future bars. The proposal must match one
// computed on an independent copy of the prefix, proving nothing beyond the
// reference day is read.
func (suite *ContractTestSuite) TestNoLookahead() {
	full := barSeries(oscillatingCloses(80, 100, 0.1))
	for i := 60; i < 80; i++ {
		full[i].Open = 10000
		full[i].High = 10500
		full[i].Low = 9500
		full[i].Close = 10000
		full[i].Volume = 1e9
	}

	prefix := full[:60]
	copied := make([]types.Bar, 60)
	copy(copied, full[:60])

	for _, s := range suite.strategies {
		fromPrefix, err1 := s.GenerateSignal(prefix)
		fromCopy, err2 := s.GenerateSignal(copied)

		suite.NoError(err1, s.Name())
		suite.NoError(err2, s.Name())
		suite.Equal(fromCopy, fromPrefix, s.Name())
	}
}

// TestProposalsAlwaysWellFormed runs each strategy across a sweep of history
// lengths and requires every proposal to validate, Sideways included.
func (suite *ContractTestSuite) TestProposalsAlwaysWellFormed() {
	bars := barSeries(oscillatingCloses(120, 100, 0.05))

	for _, s := range suite.strategies {
		for n := 1; n <= len(bars); n += 7 {
			proposal, err := s.GenerateSignal(bars[:n])
			suite.NoError(err, "%s at %d bars", s.Name(), n)
			suite.NoError(proposal.Validate(), "%s at %d bars", s.Name(), n)
		}
	}
}

// TestTargetStopOrdering: a directional proposal's target must sit on the
// favorable side of its stop.
func (suite *ContractTestSuite) TestTargetStopOrdering() {
	bars := flatSeries(60, 100)
	bars[59].High = 106
	bars[59].Close = 105
	bars[59].Volume = 3000000

	proposal, err := NewBreakout(config.DefaultConfig()).GenerateSignal(bars)
	suite.NoError(err)
	suite.Equal(types.DirectionUp, proposal.Direction)
	suite.Greater(proposal.Target, proposal.Stop)
}

// Reference-day identity: the evaluation date is the last bar's date, never
// wall clock. Shifting every date by a year must not change the proposal.
func (suite *ContractTestSuite) TestDateShiftInvariance() {
	bars := barSeries(oscillatingCloses(60, 100, 0.1))

	shifted := make([]types.Bar, len(bars))
	copy(shifted, bars)

	for i := range shifted {
		shifted[i].Date = shifted[i].Date.AddDate(-1, 0, 0)
	}

	for _, s := range suite.strategies {
		a, err1 := s.GenerateSignal(bars)
		b, err2 := s.GenerateSignal(shifted)

		suite.NoError(err1, s.Name())
		suite.NoError(err2, s.Name())
		suite.Equal(a, b, s.Name())
	}
}
