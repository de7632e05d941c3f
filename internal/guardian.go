package internal

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vaultguardian/guardian/config"
	"github.com/vaultguardian/guardian/internal/cache"
	"github.com/vaultguardian/guardian/internal/clients"
	"github.com/vaultguardian/guardian/internal/domain"
	"github.com/vaultguardian/guardian/internal/services/advisor"
	"github.com/vaultguardian/guardian/internal/services/analytics"
	"github.com/vaultguardian/guardian/internal/services/market"
	"github.com/vaultguardian/guardian/internal/services/promptbuilder"
	"github.com/vaultguardian/guardian/internal/services/protocol"
	"github.com/vaultguardian/guardian/internal/services/vault"
)

// Keys holds the advisor API keys read from the environment. Empty fields
// disable the corresponding hosted provider.
type Keys struct {
	OpenAI    string
	Anthropic string
}

// Guardian wires the upstream clients and services into a single portfolio
// analysis instance.
type Guardian struct {
	Market    *market.Service
	Registry  *protocol.Registry
	Vault     *vault.Replayer
	Advisor   *advisor.Service
	Analytics *analytics.Service

	cache  *cache.Ristretto
	logger *zap.Logger
}

// NewGuardian creates a guardian instance from the config.
func NewGuardian(cfg config.Config, keys Keys, logger *zap.Logger) (*Guardian, error) {
	c, err := cache.NewRistretto()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cache")
	}

	oracle := clients.NewCoinGeckoClient(cfg.OracleURL, cfg.AssetID)
	indexer := clients.NewHiroClient(cfg.IndexerURL, cfg.TxPageSize)

	// services run concurrently during report generation, so each gets its
	// own rand source
	marketSvc := market.NewService(oracle, c, logger, newRand())
	registry := protocol.NewRegistry(c, logger, newRand())
	replayer := vault.NewReplayer(indexer, cfg.ContractID, logger)

	var opts []advisor.Option
	if keys.OpenAI != "" && cfg.LLMAPIURL != "" {
		opts = append(opts, advisor.WithOpenAI(clients.NewOpenAICompatibleClient(cfg.LLMAPIURL, keys.OpenAI, cfg.LLMModel)))
	}
	if keys.Anthropic != "" {
		opts = append(opts, advisor.WithAnthropic(clients.NewAnthropicClient(keys.Anthropic, cfg.AnthropicModel)))
	}
	advisorSvc := advisor.NewService(c, logger, opts...)

	analyticsSvc := analytics.NewService(marketSvc, replayer, registry, c, logger, newRand())

	return &Guardian{
		Market:    marketSvc,
		Registry:  registry,
		Vault:     replayer,
		Advisor:   advisorSvc,
		Analytics: analyticsSvc,
		cache:     c,
		logger:    logger,
	}, nil
}

// Close releases the cache resources.
func (g *Guardian) Close() {
	g.cache.Close()
}

// Report is the full portfolio snapshot for one vault address.
type Report struct {
	Address      string                            `json:"address"`
	Vault        domain.VaultState                 `json:"vault"`
	Price        domain.PriceQuote                 `json:"price"`
	PriceHistory []domain.PricePoint               `json:"priceHistory"`
	MarketStats  *domain.MarketStats               `json:"marketStats,omitempty"`
	Protocols    map[string]domain.ProtocolMetrics `json:"protocols"`
	Allocation   domain.Allocation                 `json:"allocation"`
	WeightedAPY  float64                           `json:"weightedAPY"`
	Analysis     *domain.Analysis                  `json:"analysis"`
	Sentiment    *analytics.Sentiment              `json:"sentiment"`
	Exposure     *analytics.RiskExposure           `json:"riskExposure"`
	GeneratedAt  time.Time                         `json:"generatedAt"`
}

// Report gathers market data, protocol metrics and the replayed vault state
// concurrently, then runs the allocation and analysis passes over them.
func (g *Guardian) Report(ctx context.Context, address string, days int) (*Report, error) {
	var (
		quote     domain.PriceQuote
		history   []domain.PricePoint
		stats     *domain.MarketStats
		metrics   map[string]domain.ProtocolMetrics
		state     domain.VaultState
		sentiment *analytics.Sentiment
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		quote = g.Market.CurrentPrice(gctx)
		history = g.Market.PriceHistory(gctx, days)
		stats = g.Market.MarketStats(gctx)
		return nil
	})
	group.Go(func() error {
		metrics = g.Registry.AllProtocols()
		return nil
	})
	group.Go(func() error {
		state = g.Vault.ReconstructVault(gctx, address)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	balanceBTC := decimal.New(state.Balance, 0).Div(decimal.NewFromInt(100_000_000))
	usdValue := balanceBTC.Mul(quote.USD)
	allocation := protocol.OptimalAllocation(string(state.RiskProfile), usdValue)

	weightedAPY, err := protocol.WeightedAPY(allocation, metrics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute weighted APY")
	}

	analysis := g.Advisor.Analyze(ctx, promptbuilder.PortfolioContext{
		BalanceSats: state.Balance,
		RiskProfile: state.RiskProfile,
		Quote:       quote,
		Protocols:   metrics,
		Allocation:  protocol.AllocationFractions(state.RiskProfile),
	})

	sentiment = g.Analytics.MarketSentiment(ctx)
	exposure := g.Analytics.RiskExposure(ctx, address)

	return &Report{
		Address:      address,
		Vault:        state,
		Price:        quote,
		PriceHistory: history,
		MarketStats:  stats,
		Protocols:    metrics,
		Allocation:   allocation,
		WeightedAPY:  weightedAPY,
		Analysis:     analysis,
		Sentiment:    sentiment,
		Exposure:     exposure,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// Insight answers a free-form question about the address's portfolio. The
// context gathered for the advisor mirrors the one Report assembles.
func (g *Guardian) Insight(ctx context.Context, address, query string) *advisor.Insight {
	quote := g.Market.CurrentPrice(ctx)
	metrics := g.Registry.AllProtocols()
	state := g.Vault.ReconstructVault(ctx, address)

	return g.Advisor.Insight(ctx, query, promptbuilder.PortfolioContext{
		BalanceSats: state.Balance,
		RiskProfile: state.RiskProfile,
		Quote:       quote,
		Protocols:   metrics,
		Allocation:  protocol.AllocationFractions(state.RiskProfile),
	})
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
