package protocol

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vaultguardian/guardian/internal/domain"
)

// allocationTable maps each risk profile to its fixed split across
// protocols. Fractions sum to 1.0 per profile.
var allocationTable = map[domain.RiskProfile]map[string]float64{
	domain.ProfileConservative: {
		"zest":      0.70,
		"velar":     0.20,
		"stackswap": 0.10,
	},
	domain.ProfileModerate: {
		"zest":      0.50,
		"velar":     0.30,
		"stackswap": 0.20,
	},
	domain.ProfileAggressive: {
		"zest":      0.30,
		"velar":     0.35,
		"stackswap": 0.35,
	},
}

// AllocationFractions exposes the raw split for a profile. Used by callers
// that need the table itself rather than amounts.
func AllocationFractions(profile domain.RiskProfile) map[string]float64 {
	fractions, ok := allocationTable[profile]
	if !ok {
		fractions = allocationTable[domain.ProfileModerate]
	}
	return fractions
}

// OptimalAllocation splits totalAmount across protocols per the profile's
// fixed table. Unknown profile names fall back to moderate. No rounding
// correction is applied across entries: percentages may drift from a 100
// sum within floating tolerance, and that drift is left visible.
func OptimalAllocation(profile string, totalAmount decimal.Decimal) domain.Allocation {
	fractions := AllocationFractions(domain.RiskProfileOrModerate(profile))

	allocation := make(domain.Allocation, len(fractions))
	for key, fraction := range fractions {
		allocation[key] = domain.AllocationSlice{
			Percentage: fraction * 100,
			Amount:     totalAmount.Mul(decimal.NewFromFloat(fraction)),
		}
	}

	return allocation
}

// WeightedAPY computes the blend yield of an allocation over the supplied
// metrics. The caller is responsible for supplying metrics covering every
// allocated protocol; a missing key is an error, not a zero contribution.
func WeightedAPY(allocation domain.Allocation, metrics map[string]domain.ProtocolMetrics) (float64, error) {
	var weighted float64

	for key, slice := range allocation {
		m, ok := metrics[key]
		if !ok {
			return 0, errors.Errorf("no metrics supplied for allocated protocol %q", key)
		}
		weighted += slice.Percentage / 100 * m.APY
	}

	return round2(weighted), nil
}
