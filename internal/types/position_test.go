package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type PositionTestSuite struct {
	suite.Suite
}

func TestPositionSuite(t *testing.T) {
	suite.Run(t, new(PositionTestSuite))
}

func (suite *PositionTestSuite) TestIdentityKey() {
	p := Position{
		Symbol:     "HPG",
		Strategy:   "Breakout",
		SignalDate: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	}
	suite.Equal("HPG|Breakout|2024-01-09", p.IdentityKey())
	suite.Equal(p.IdentityKey(), PositionIdentityKey("HPG", "Breakout", p.SignalDate))
}

func (suite *PositionTestSuite) TestIdentityKeyIgnoresTimeOfDay() {
	morning := PositionIdentityKey("VCB", "Bollinger", time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC))
	evening := PositionIdentityKey("VCB", "Bollinger", time.Date(2024, 3, 4, 17, 45, 0, 0, time.UTC))
	suite.Equal(morning, evening)
}

func (suite *PositionTestSuite) TestIsActive() {
	p := Position{Status: PositionStatusPending}
	suite.True(p.IsActive())

	p.Status = PositionStatusOpen
	suite.True(p.IsActive())

	p.Status = PositionStatusClosed
	suite.False(p.IsActive())
}

func (suite *PositionTestSuite) TestUnfilledFieldsAreNone() {
	p := Position{
		Symbol:     "SSI",
		Strategy:   "Breakout",
		SignalDate: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		Status:     PositionStatusPending,
	}
	suite.True(p.EntryPrice.IsNone())
	suite.True(p.ExitPrice.IsNone())
	suite.True(p.ExitReason.IsNone())
	suite.True(p.PnLPercent.IsNone())

	p.EntryPrice = optional.Some(25.4)
	suite.True(p.EntryPrice.IsSome())
	suite.Equal(25.4, p.EntryPrice.Unwrap())
}
