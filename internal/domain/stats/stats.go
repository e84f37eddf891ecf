// Package stats reduces simulated season outcomes to summary
// statistics.
package stats

import (
	"math"

	"github.com/okian/fastbreak/internal/domain/model"
)

// Summarize computes running statistics over a series of final
// expected win totals. The standard deviation uses the sample
// denominator (n-1) and the confidence interval is the half-width of
// the normal 95% interval around the mean. Fewer than two samples
// yield zero spread.
func Summarize(totals []float64) model.RunningStatistics {
	n := len(totals)
	if n == 0 {
		return model.RunningStatistics{}
	}

	sum := 0.0
	lo, hi := totals[0], totals[0]
	for _, v := range totals {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	mean := sum / float64(n)

	var std, ci float64
	if n > 1 {
		var ss float64
		for _, v := range totals {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
		ci = 1.96 * std / math.Sqrt(float64(n))
	}

	return model.RunningStatistics{
		AverageExpectedWins:  mean,
		StandardDeviation:    std,
		ConfidenceInterval95: ci,
		MinWins:              lo,
		MaxWins:              hi,
		SeasonsCompleted:     n,
	}
}
