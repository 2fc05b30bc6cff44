package strategy

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vnquant-lab/signal-engine/internal/config"
)

type HorizonTestSuite struct {
	suite.Suite
	cfg config.Config
}

func TestHorizonSuite(t *testing.T) {
	suite.Run(t, new(HorizonTestSuite))
}

func (suite *HorizonTestSuite) SetupTest() {
	suite.cfg = config.DefaultConfig()
}

func (suite *HorizonTestSuite) TestRecommendHoldingDays() {
	tests := []struct {
		name        string
		rewardRisk  float64
		volumeSpike bool
		expected    int
	}{
		{"base horizon", 1.0, false, 3},
		{"favorable ratio extends", 2.0, false, 4},
		{"spike extends", 1.0, true, 4},
		{"both extend", 2.33, true, 5},
		{"zero ratio", 0, false, 3},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, RecommendHoldingDays(suite.cfg, tc.rewardRisk, tc.volumeSpike))
		})
	}
}

func (suite *HorizonTestSuite) TestRecommendHoldingDaysCappedAtMax() {
	suite.cfg.TPlusMin = 5
	suite.cfg.TPlusMax = 5

	suite.Equal(5, RecommendHoldingDays(suite.cfg, 3.0, true))
}

func (suite *HorizonTestSuite) TestSuccessRate() {
	suite.Equal(50.0, SuccessRate(1.0))
	suite.InDelta(66.67, SuccessRate(2.0), 0.001)
	suite.InDelta(69.97, SuccessRate(2.33), 0.001)
	suite.Equal(0.0, SuccessRate(0))
	suite.Equal(0.0, SuccessRate(-1))
}
