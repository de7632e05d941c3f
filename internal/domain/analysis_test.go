package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validAnalysisJSON = `{
	"riskScore": 45,
	"recommendation": "Hold current position",
	"reasoning": "Market is stable",
	"suggestedActions": ["Hold", "Monitor protocols", "Review monthly"],
	"marketOutlook": "neutral",
	"rebalanceNeeded": false
}`

func TestParseAnalysis_Valid(t *testing.T) {
	analysis, err := ParseAnalysis(validAnalysisJSON)
	require.NoError(t, err)

	require.Equal(t, 45, analysis.RiskScore)
	require.Equal(t, "Hold current position", analysis.Recommendation)
	require.Len(t, analysis.SuggestedActions, 3)
	require.Equal(t, OutlookNeutral, analysis.MarketOutlook)
	require.False(t, analysis.RebalanceNeeded)
}

func TestParseAnalysis_StripsCodeFences(t *testing.T) {
	analysis, err := ParseAnalysis("```json\n" + validAnalysisJSON + "\n```")
	require.NoError(t, err)
	require.Equal(t, 45, analysis.RiskScore)
}

func TestParseAnalysis_InvalidJSON(t *testing.T) {
	_, err := ParseAnalysis("the market looks fine to me")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid JSON")
}

func TestParseAnalysis_RiskScoreOutOfRange(t *testing.T) {
	_, err := ParseAnalysis(`{"riskScore":140,"recommendation":"x","suggestedActions":["a"],"marketOutlook":"neutral"}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}

func TestParseAnalysis_MissingRecommendation(t *testing.T) {
	_, err := ParseAnalysis(`{"riskScore":40,"suggestedActions":["a"],"marketOutlook":"neutral"}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "recommendation")
}

func TestParseAnalysis_MissingActions(t *testing.T) {
	_, err := ParseAnalysis(`{"riskScore":40,"recommendation":"x","marketOutlook":"neutral"}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "suggested actions")
}

func TestParseAnalysis_UnknownOutlook(t *testing.T) {
	_, err := ParseAnalysis(`{"riskScore":40,"recommendation":"x","suggestedActions":["a"],"marketOutlook":"moonish"}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "market outlook")
}
