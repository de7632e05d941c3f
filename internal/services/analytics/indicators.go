package analytics

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
)

// lastSMA computes the final simple moving average value over the series.
func lastSMA(closes []float64, period int) (float64, error) {
	if len(closes) < period {
		return 0, errors.Errorf("not enough data points for SMA: need %d, got %d", period, len(closes))
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))
	if len(out) == 0 {
		return 0, errors.New("SMA produced no output")
	}

	return out[len(out)-1], nil
}

// lastRSI computes the final relative strength index value over the series.
func lastRSI(closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, errors.Errorf("not enough data points for RSI: need %d, got %d", period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	out := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
	if len(out) == 0 {
		return 0, errors.New("RSI produced no output")
	}

	return out[len(out)-1], nil
}
