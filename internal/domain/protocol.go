package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProtocolCategory classifies a yield protocol.
type ProtocolCategory string

const (
	CategoryLending ProtocolCategory = "lending"
	CategoryDEX     ProtocolCategory = "dex"
)

// ProtocolHealth grades how far a protocol's live yield has drifted from its base rate.
type ProtocolHealth string

const (
	HealthExcellent ProtocolHealth = "excellent"
	HealthGood      ProtocolHealth = "good"
	HealthFair      ProtocolHealth = "fair"
	HealthWarning   ProtocolHealth = "warning"
)

// RiskLevel is a protocol's qualitative risk bucket.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ProtocolDescriptor is the static definition of a yield protocol.
// Defined at process start, never mutated.
type ProtocolDescriptor struct {
	Key             string
	Name            string
	Category        ProtocolCategory
	ContractAddress string
	BaseAPY         float64
	RiskLevel       RiskLevel
}

// ProtocolMetrics is the time-varying view of a protocol, synthesized per
// cache window from the descriptor plus bounded variance. Not persisted.
type ProtocolMetrics struct {
	Key         string           `json:"-"`
	Name        string           `json:"name"`
	Category    ProtocolCategory `json:"type"`
	APY         float64          `json:"apy"`
	BaseAPY     float64          `json:"baseAPY"`
	TVL         decimal.Decimal  `json:"tvl"`
	Volume24h   decimal.Decimal  `json:"volume24h"`
	Liquidity   decimal.Decimal  `json:"liquidity"`
	RiskScore   int              `json:"riskScore"`
	RiskLevel   RiskLevel        `json:"riskLevel"`
	Health      ProtocolHealth   `json:"health"`
	Utilization float64          `json:"utilization"`
	Users       int              `json:"users"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

// AllocationSlice is one protocol's share of an allocation plan.
type AllocationSlice struct {
	Percentage float64         `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// Allocation maps protocol key to its share of the total.
type Allocation map[string]AllocationSlice
