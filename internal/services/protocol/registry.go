// Package protocol holds the static registry of yield protocols, synthesizes
// their time-varying metrics, and computes risk-profile allocations.
package protocol

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/internal/cache"
	"github.com/vaultguardian/guardian/internal/domain"
)

// ErrUnknownProtocol is returned when a caller-supplied key is absent from
// the static registry. Distinct from any upstream failure.
var ErrUnknownProtocol = errors.New("unknown protocol")

const metricsTTL = 5 * time.Minute

// baseline carries the fixed synthesis bases for one protocol.
type baseline struct {
	tvl       float64
	volume    float64
	liquidity float64
	riskScore int
}

// Registry synthesizes per-protocol metrics from static descriptors plus
// bounded variance. A cached result is reused within its TTL so a given
// response stays internally self-consistent.
type Registry struct {
	descriptors map[string]domain.ProtocolDescriptor
	baselines   map[string]baseline
	cache       cache.Cache
	logger      *zap.Logger
	rng         *rand.Rand
	now         func() time.Time
}

// NewRegistry builds the registry over the fixed protocol set. The rng is
// injected so tests can pin the synthesized variance.
func NewRegistry(c cache.Cache, logger *zap.Logger, rng *rand.Rand) *Registry {
	return &Registry{
		descriptors: map[string]domain.ProtocolDescriptor{
			"zest": {
				Key:             "zest",
				Name:            "Zest Protocol",
				Category:        domain.CategoryLending,
				ContractAddress: "ST2X1GBHA2WJXREWP231EEQXZ1GDYZEEXYRAD1PA8.zest-protocol",
				BaseAPY:         7.5,
				RiskLevel:       domain.RiskLow,
			},
			"velar": {
				Key:             "velar",
				Name:            "Velar",
				Category:        domain.CategoryDEX,
				ContractAddress: "ST2X1GBHA2WJXREWP231EEQXZ1GDYZEEXYRAD1PA8.velar-dex",
				BaseAPY:         9.2,
				RiskLevel:       domain.RiskMedium,
			},
			"stackswap": {
				Key:             "stackswap",
				Name:            "StackSwap",
				Category:        domain.CategoryDEX,
				ContractAddress: "ST2X1GBHA2WJXREWP231EEQXZ1GDYZEEXYRAD1PA8.stackswap",
				BaseAPY:         11.8,
				RiskLevel:       domain.RiskHigh,
			},
		},
		baselines: map[string]baseline{
			"zest":      {tvl: 2_500_000, volume: 150_000, liquidity: 800_000, riskScore: 25},
			"velar":     {tvl: 1_800_000, volume: 450_000, liquidity: 650_000, riskScore: 45},
			"stackswap": {tvl: 1_200_000, volume: 380_000, liquidity: 420_000, riskScore: 65},
		},
		cache:  c,
		logger: logger,
		rng:    rng,
		now:    time.Now,
	}
}

// Keys returns the registry's protocol keys in stable order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.descriptors))
	for key := range r.descriptors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Descriptor returns the static descriptor for a key.
func (r *Registry) Descriptor(key string) (domain.ProtocolDescriptor, error) {
	desc, ok := r.descriptors[key]
	if !ok {
		return domain.ProtocolDescriptor{}, errors.Wrapf(ErrUnknownProtocol, "%q", key)
	}
	return desc, nil
}

// AllProtocols synthesizes metrics for every registered protocol, cached for
// five minutes. Keys are walked in sorted order so an injected deterministic
// rng yields reproducible metrics.
func (r *Registry) AllProtocols() map[string]domain.ProtocolMetrics {
	const key = "protocols:all"

	if cached, ok := r.cache.Get(key); ok {
		if metrics, ok := cached.(map[string]domain.ProtocolMetrics); ok {
			return metrics
		}
	}

	metrics := make(map[string]domain.ProtocolMetrics, len(r.descriptors))
	for _, k := range r.Keys() {
		metrics[k] = r.synthesize(r.descriptors[k])
	}

	r.cache.Set(key, metrics, metricsTTL)
	r.logger.Debug("synthesized protocol metrics", zap.Int("protocols", len(metrics)))

	return metrics
}

// ProtocolData returns metrics for one protocol. A lookup miss fails with
// ErrUnknownProtocol; there is no network path here to confuse it with.
func (r *Registry) ProtocolData(key string) (domain.ProtocolMetrics, error) {
	desc, ok := r.descriptors[key]
	if !ok {
		return domain.ProtocolMetrics{}, errors.Wrapf(ErrUnknownProtocol, "%q", key)
	}

	// Reuse the cached batch when present so individual lookups agree with
	// the most recent AllProtocols response.
	if cached, ok := r.cache.Get("protocols:all"); ok {
		if all, ok := cached.(map[string]domain.ProtocolMetrics); ok {
			if m, ok := all[key]; ok {
				return m, nil
			}
		}
	}

	return r.synthesize(desc), nil
}

func (r *Registry) synthesize(desc domain.ProtocolDescriptor) domain.ProtocolMetrics {
	base := r.baselines[desc.Key]

	apy := round2(desc.BaseAPY + (r.rng.Float64()-0.5)*2)

	return domain.ProtocolMetrics{
		Key:         desc.Key,
		Name:        desc.Name,
		Category:    desc.Category,
		APY:         apy,
		BaseAPY:     desc.BaseAPY,
		TVL:         decimal.NewFromFloat(base.tvl + (r.rng.Float64()-0.5)*200_000).Round(2),
		Volume24h:   decimal.NewFromFloat(base.volume + (r.rng.Float64()-0.5)*50_000).Round(2),
		Liquidity:   decimal.NewFromFloat(base.liquidity * (0.9 + r.rng.Float64()*0.2)).Round(2),
		RiskScore:   base.riskScore + int(math.Floor((r.rng.Float64()-0.5)*10)),
		RiskLevel:   desc.RiskLevel,
		Health:      healthOf(apy, desc.BaseAPY),
		Utilization: round2(60 + r.rng.Float64()*30),
		Users:       100 + int(r.rng.Float64()*400),
		LastUpdated: r.now(),
	}
}

// healthOf is a step function of the absolute yield drift from base.
func healthOf(currentAPY, baseAPY float64) domain.ProtocolHealth {
	deviation := math.Abs(currentAPY - baseAPY)

	switch {
	case deviation < 1:
		return domain.HealthExcellent
	case deviation < 2:
		return domain.HealthGood
	case deviation < 3:
		return domain.HealthFair
	default:
		return domain.HealthWarning
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
