package markov

import (
	"fmt"
	"math"

	"github.com/okian/fastbreak/internal/domain/state"
)

// Scenario is one single-metric improvement applied to the stored
// transition counts.
type Scenario struct {
	Name   string
	Metric string
	Counts []TransitionCount
}

// ImprovedTargets derives the full improved metric set for an
// improvement percentage: team metrics scale up, the team turnover
// percentage and every opponent metric scale down, and the opponent
// turnover percentage scales up. Targets clamp to [0,1].
func ImprovedTargets(p Profile, pct float64) Adjustments {
	factor := 1 + pct/100
	worsen := 2 - factor
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Adjustments{
		MetricFG2:     clamp(p.FG2Pct * factor),
		MetricFG3:     clamp(p.FG3Pct * factor),
		MetricFT:      clamp(p.FTPct * factor),
		MetricOREB:    clamp(p.ORebPct * factor),
		MetricDREB:    clamp(p.DRebPct * factor),
		MetricTOV:     clamp(p.TOVPct * worsen),
		MetricOppFG2:  clamp(p.OppFG2Pct * worsen),
		MetricOppFG3:  clamp(p.OppFG3Pct * worsen),
		MetricOppFT:   clamp(p.OppFTPct * worsen),
		MetricOppOREB: clamp(p.OppORebPct * worsen),
		MetricOppDREB: clamp(p.OppDRebPct * worsen),
		MetricOppTOV:  clamp(p.OppTOVPct * factor),
	}
}

var sweepOrder = []struct{ metric, format string }{
	{MetricFG2, "2PT FG%% +%g%%"},
	{MetricFG3, "3PT FG%% +%g%%"},
	{MetricFT, "FT%% +%g%%"},
	{MetricOREB, "OREB%% +%g%%"},
	{MetricDREB, "DREB%% +%g%%"},
	{MetricTOV, "TOV%% -%g%%"},
	{MetricOppFG2, "OPP 2PT FG%% -%g%%"},
	{MetricOppFG3, "OPP 3PT FG%% -%g%%"},
	{MetricOppFT, "OPP FT%% -%g%%"},
	{MetricOppOREB, "OPP OREB%% -%g%%"},
	{MetricOppDREB, "OPP DREB%% -%g%%"},
	{MetricOppTOV, "OPP TOV%% +%g%%"},
}

// Sweep applies the twelve single-metric improvement scenarios to the
// stored counts the way the adjustment export consumes them: each
// scenario touches only transitions already present in the data, keeps
// the rest untouched, clamps at zero and rounds to two decimals. The
// compensating-mass weights come from the fully improved rebound
// shares.
func Sweep(counts []TransitionCount, p Profile, r Rates, pct float64) ([]Scenario, error) {
	improved := ImprovedTargets(p, pct)
	orebPct := improved[MetricOREB]
	oppOrebPct := improved[MetricOppOREB]

	index := make(map[[2]state.State]int, len(counts))
	for i, tc := range counts {
		if tc.From >= state.Count || tc.To >= state.Count {
			return nil, fmt.Errorf("%w: transition %d -> %d outside the state space", ErrData, tc.From, tc.To)
		}
		index[[2]state.State{tc.From, tc.To}] = i
	}

	scenarios := make([]Scenario, 0, len(sweepOrder))
	for _, sc := range sweepOrder {
		single := Adjustments{sc.metric: improved[sc.metric]}
		e := extrasFromTargets(p, single)

		adjusted := make([]TransitionCount, len(counts))
		copy(adjusted, counts)
		for _, d := range adjustmentDeltas(e, r, orebPct, oppOrebPct) {
			i, ok := index[[2]state.State{d.from, d.to}]
			if !ok {
				continue // transitions absent from the data stay absent
			}
			adjusted[i].Count += d.amount
		}
		for i := range adjusted {
			if adjusted[i].Count < 0 {
				adjusted[i].Count = 0
			}
			adjusted[i].Count = math.Round(adjusted[i].Count*100) / 100
		}

		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf(sc.format, pct),
			Metric: sc.metric,
			Counts: adjusted,
		})
	}
	return scenarios, nil
}
