package advisor

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/vaultguardian/guardian/internal/domain"
	"github.com/vaultguardian/guardian/internal/services/promptbuilder"
)

const ruleConfidence = 0.87

var decimal1000 = decimal.NewFromInt(1000)

// ruleStrategy is the deterministic last-resort analysis. It never fails.
type ruleStrategy struct{}

func newRuleStrategy() *ruleStrategy {
	return &ruleStrategy{}
}

func (s *ruleStrategy) name() string {
	return "rule-based"
}

var baseRiskScores = map[domain.RiskProfile]float64{
	domain.ProfileConservative: 25,
	domain.ProfileModerate:     55,
	domain.ProfileAggressive:   85,
}

var volatilityMultipliers = map[domain.RiskProfile]float64{
	domain.ProfileConservative: 0.5,
	domain.ProfileModerate:     1.0,
	domain.ProfileAggressive:   1.5,
}

func (s *ruleStrategy) attempt(_ context.Context, pctx promptbuilder.PortfolioContext) (*domain.Analysis, error) {
	profile := domain.RiskProfileOrModerate(string(pctx.RiskProfile))
	change := pctx.Quote.Change24h

	base := baseRiskScores[profile]
	multiplier := volatilityMultipliers[profile]
	score := base + math.Abs(change)*multiplier
	score = math.Min(100, math.Max(0, score))

	analysis := &domain.Analysis{
		RiskScore:        int(math.Round(score)),
		SuggestedActions: s.suggestedActions(profile, change, pctx.Protocols),
		Provider:         "rule-based",
		Model:            "internal",
		Confidence:       ruleConfidence,
	}

	switch {
	case score < 40:
		analysis.Recommendation = "Low volatility detected. Portfolio stable. Consider maintaining current position."
		analysis.Reasoning = "Market conditions are favorable with low volatility. Your conservative allocation is performing well."
		analysis.MarketOutlook = domain.OutlookNeutral
		analysis.RebalanceNeeded = false
	case score < 70:
		analysis.Recommendation = "Moderate market volatility. Balanced approach recommended. Monitor positions closely."
		analysis.Reasoning = "Increased market activity suggests staying alert. Current allocation is appropriate for moderate risk."
		if change > 0 {
			analysis.MarketOutlook = domain.OutlookBullish
		} else {
			analysis.MarketOutlook = domain.OutlookBearish
		}
		analysis.RebalanceNeeded = math.Abs(change) > 3
	default:
		analysis.Recommendation = "High volatility detected. Consider reducing exposure or rebalancing to lower risk profile."
		analysis.Reasoning = "Significant market movements increase portfolio risk. Consider more conservative positioning."
		analysis.MarketOutlook = domain.OutlookBearish
		analysis.RebalanceNeeded = true
	}

	return analysis, nil
}

// suggestedActions assembles exactly three actions: a position hint, a
// protocol-health hint and the fixed review reminder, in that order.
func (s *ruleStrategy) suggestedActions(profile domain.RiskProfile, change float64, protocols map[string]domain.ProtocolMetrics) []string {
	actions := make([]string, 0, 3)

	switch {
	case math.Abs(change) > 5:
		actions = append(actions, fmt.Sprintf("High BTC volatility (%+.2f%%) - consider reducing position size", change))
	case profile == domain.ProfileAggressive && change > 3:
		actions = append(actions, "Consider taking profits on recent gains")
	default:
		actions = append(actions, "Hold current position and monitor market conditions")
	}

	if meanRiskScore(protocols) > 50 {
		actions = append(actions, "Monitor DeFi protocol health - average risk elevated")
	} else {
		actions = append(actions, "Protocol health good - maintain current allocations")
	}

	actions = append(actions, "Review allocation monthly and rebalance if needed")

	return actions
}

func meanRiskScore(protocols map[string]domain.ProtocolMetrics) float64 {
	if len(protocols) == 0 {
		return 0
	}

	var sum float64
	for _, p := range protocols {
		sum += float64(p.RiskScore)
	}
	return sum / float64(len(protocols))
}
