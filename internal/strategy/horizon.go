package strategy

import "github.com/vnquant-lab/signal-engine/internal/config"

// RecommendHoldingDays picks the holding horizon for a directional proposal.
// The base horizon is the configured minimum; a favorable reward-to-risk ratio
// and a volume spike each extend it by one trading day, capped at the
// configured maximum.
func RecommendHoldingDays(cfg config.Config, rewardRisk float64, volumeSpike bool) int {
	days := cfg.TPlusMin

	if rewardRisk >= 2.0 {
		days++
	}

	if volumeSpike {
		days++
	}

	if days > cfg.TPlusMax {
		days = cfg.TPlusMax
	}

	return days
}

// SuccessRate converts a reward-to-risk ratio into the breakeven win
// probability of the opposite side, in percent. A trade at this ratio needs to
// win more often than 100 minus this value to be profitable.
func SuccessRate(rewardRisk float64) float64 {
	if rewardRisk <= 0 {
		return 0
	}

	return round2((1 - 1/(1+rewardRisk)) * 100)
}
