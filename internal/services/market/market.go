// Package market fetches price and market statistics for the vault's asset
// from the external price oracle, memoizing results in the shared TTL cache
// and degrading to static fallbacks when the oracle is unreachable.
package market

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/internal/cache"
	"github.com/vaultguardian/guardian/internal/clients"
	"github.com/vaultguardian/guardian/internal/domain"
)

const (
	priceTTL   = time.Minute
	historyTTL = time.Hour
	statsTTL   = 5 * time.Minute

	defaultHistoryDays = 30

	// Fallback band for the synthetic price walk.
	fallbackPrice = 42000
	walkFloor     = 35000
	walkCeiling   = 50000
	walkStep      = 1000
)

type oracle interface {
	CurrentPrice(ctx context.Context) (*clients.SimplePrice, error)
	MarketChart(ctx context.Context, days int) (*clients.MarketChart, error)
	CoinData(ctx context.Context) (*clients.CoinData, error)
}

// Service is the market data fetcher.
type Service struct {
	oracle oracle
	cache  cache.Cache
	logger *zap.Logger
	// rng drives the synthetic history fallback. Injected so tests can
	// assert exact series.
	rng *rand.Rand
	now func() time.Time
}

// NewService wires the fetcher to its oracle and the shared cache.
func NewService(oracle oracle, c cache.Cache, logger *zap.Logger, rng *rand.Rand) *Service {
	return &Service{
		oracle: oracle,
		cache:  c,
		logger: logger,
		rng:    rng,
		now:    time.Now,
	}
}

// CurrentPrice returns the live quote, cached for one minute. When the
// oracle fails it returns a hardcoded fallback quote marked Fallback rather
// than an error; callers treat it as degraded but usable data.
func (s *Service) CurrentPrice(ctx context.Context) domain.PriceQuote {
	const key = "market:price"

	if cached, ok := s.cache.Get(key); ok {
		if quote, ok := cached.(domain.PriceQuote); ok {
			return quote
		}
	}

	raw, err := s.oracle.CurrentPrice(ctx)
	if err != nil {
		s.logger.Warn("price oracle unavailable, serving fallback quote", zap.Error(err))
		return domain.PriceQuote{
			USD:       decimal.NewFromInt(fallbackPrice),
			Timestamp: s.now(),
			Fallback:  true,
		}
	}

	quote := domain.PriceQuote{
		USD:       decimal.NewFromFloat(raw.USD),
		Change24h: raw.USD24hChange,
		Volume24h: decimal.NewFromFloat(raw.USD24hVol),
		MarketCap: decimal.NewFromFloat(raw.USDMarketCap),
		Timestamp: s.now(),
	}

	s.cache.Set(key, quote, priceTTL)
	s.logger.Debug("fetched live quote", zap.String("usd", quote.USD.String()))

	return quote
}

// PriceHistory returns the daily price series for the requested day count,
// cached for one hour. On oracle failure it synthesizes a bounded random
// walk of days+1 points instead of propagating the error.
func (s *Service) PriceHistory(ctx context.Context, days int) []domain.PricePoint {
	if days <= 0 {
		days = defaultHistoryDays
	}

	key := cache.Key("market:history", fmt.Sprintf("%d", days))
	if cached, ok := s.cache.Get(key); ok {
		if series, ok := cached.([]domain.PricePoint); ok {
			return series
		}
	}

	chart, err := s.oracle.MarketChart(ctx, days)
	if err != nil {
		s.logger.Warn("history fetch failed, synthesizing series",
			zap.Int("days", days), zap.Error(err))
		return s.syntheticHistory(days)
	}

	series := make([]domain.PricePoint, 0, len(chart.Prices))
	for _, entry := range chart.Prices {
		ts := time.UnixMilli(int64(entry[0])).UTC()
		series = append(series, domain.PricePoint{
			Date:  ts.Format("2006-01-02"),
			Price: decimal.NewFromFloat(entry[1]).Round(2),
		})
	}

	s.cache.Set(key, series, historyTTL)
	s.logger.Debug("fetched price history", zap.Int("points", len(series)))

	return series
}

// MarketStats returns extended statistics, cached for five minutes, or nil
// when the oracle is unreachable. Callers must nil-check.
func (s *Service) MarketStats(ctx context.Context) *domain.MarketStats {
	const key = "market:stats"

	if cached, ok := s.cache.Get(key); ok {
		if stats, ok := cached.(*domain.MarketStats); ok {
			return stats
		}
	}

	data, err := s.oracle.CoinData(ctx)
	if err != nil {
		s.logger.Warn("market stats unavailable", zap.Error(err))
		return nil
	}

	md := data.MarketData
	stats := &domain.MarketStats{
		Price:             decimal.NewFromFloat(md.CurrentPrice["usd"]),
		MarketCap:         decimal.NewFromFloat(md.MarketCap["usd"]),
		Volume24h:         decimal.NewFromFloat(md.TotalVolume["usd"]),
		PriceChange24h:    md.PriceChangePercentage24h,
		PriceChange7d:     md.PriceChangePercentage7d,
		PriceChange30d:    md.PriceChangePercentage30d,
		ATH:               decimal.NewFromFloat(md.ATH["usd"]),
		ATHDate:           md.ATHDate["usd"],
		ATL:               decimal.NewFromFloat(md.ATL["usd"]),
		ATLDate:           md.ATLDate["usd"],
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
		MaxSupply:         md.MaxSupply,
		Timestamp:         s.now(),
	}

	s.cache.Set(key, stats, statsTTL)

	return stats
}

// syntheticHistory produces a deterministic-length random walk bounded to
// the fallback band, inclusive of "today" (days+1 points).
func (s *Service) syntheticHistory(days int) []domain.PricePoint {
	series := make([]domain.PricePoint, 0, days+1)
	price := float64(fallbackPrice)

	for i := days; i >= 0; i-- {
		date := s.now().AddDate(0, 0, -i)

		change := (s.rng.Float64() - 0.5) * walkStep
		price += change
		if price < walkFloor {
			price = walkFloor
		}
		if price > walkCeiling {
			price = walkCeiling
		}

		series = append(series, domain.PricePoint{
			Date:  date.Format("2006-01-02"),
			Price: decimal.NewFromFloat(price).Round(2),
		})
	}

	return series
}
