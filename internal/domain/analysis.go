package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MarketOutlook is the advisor's directional view.
type MarketOutlook string

const (
	OutlookBullish MarketOutlook = "bullish"
	OutlookNeutral MarketOutlook = "neutral"
	OutlookBearish MarketOutlook = "bearish"
)

// Analysis is the advisor's portfolio assessment.
type Analysis struct {
	ID               string        `json:"analysisId"`
	RiskScore        int           `json:"riskScore"`
	Recommendation   string        `json:"recommendation"`
	Reasoning        string        `json:"reasoning,omitempty"`
	SuggestedActions []string      `json:"suggestedActions"`
	MarketOutlook    MarketOutlook `json:"marketOutlook"`
	RebalanceNeeded  bool          `json:"rebalanceNeeded"`
	Provider         string        `json:"provider"`
	Model            string        `json:"model"`
	Confidence       float64       `json:"confidence"`
	Timestamp        time.Time     `json:"timestamp"`
}

// ParseAnalysis builds a validated Analysis from a raw model completion.
// Model output is untrusted: the payload is sanitized, structurally checked
// and range-checked before use. Provider metadata is left for the caller.
func ParseAnalysis(raw string) (*Analysis, error) {
	payload := sanitizeModelPayload(raw)

	if !json.Valid([]byte(payload)) {
		return nil, errors.New("invalid JSON structure")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, errors.Wrap(err, "JSON unmarshal error")
	}

	if a.Recommendation == "" {
		return nil, errors.New("recommendation field is required")
	}
	if a.RiskScore < 0 || a.RiskScore > 100 {
		return nil, errors.Errorf("risk score %d out of range 0-100", a.RiskScore)
	}
	if len(a.SuggestedActions) == 0 {
		return nil, errors.New("suggested actions are required")
	}

	switch a.MarketOutlook {
	case OutlookBullish, OutlookNeutral, OutlookBearish:
	default:
		return nil, errors.Errorf("invalid market outlook: %q", a.MarketOutlook)
	}

	return &a, nil
}

func sanitizeModelPayload(raw string) string {
	payload := strings.TrimSpace(raw)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	return strings.TrimSpace(payload)
}
