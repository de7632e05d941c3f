package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a point-in-time market quote for one asset.
// Immutable once produced; a fresh fetch supersedes it after cache expiry.
type PriceQuote struct {
	USD       decimal.Decimal `json:"usd"`
	Change24h float64         `json:"usd_24h_change"`
	Volume24h decimal.Decimal `json:"usd_24h_vol"`
	MarketCap decimal.Decimal `json:"usd_market_cap"`
	Timestamp time.Time       `json:"timestamp"`
	// Fallback marks a hardcoded quote returned when the oracle was
	// unreachable. Degraded but usable data, never an error condition.
	Fallback bool `json:"fallback,omitempty"`
}

// PricePoint is a single entry of a daily price series.
type PricePoint struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// MarketStats carries extended market statistics. Callers must nil-check:
// the fetcher returns nil when the oracle is unreachable.
type MarketStats struct {
	Price             decimal.Decimal `json:"price"`
	MarketCap         decimal.Decimal `json:"marketCap"`
	Volume24h         decimal.Decimal `json:"volume24h"`
	PriceChange24h    float64         `json:"priceChange24h"`
	PriceChange7d     float64         `json:"priceChange7d"`
	PriceChange30d    float64         `json:"priceChange30d"`
	ATH               decimal.Decimal `json:"ath"`
	ATHDate           string          `json:"athDate"`
	ATL               decimal.Decimal `json:"atl"`
	ATLDate           string          `json:"atlDate"`
	CirculatingSupply float64         `json:"circulatingSupply"`
	TotalSupply       float64         `json:"totalSupply"`
	MaxSupply         float64         `json:"maxSupply"`
	Timestamp         time.Time       `json:"timestamp"`
}
