package markov

import (
	"fmt"
	"math"

	"github.com/okian/fastbreak/internal/domain/state"
)

// Epsilon is the minimum distance between an adjustment target and its
// baseline for the adjuster to act. Targets closer than this are exact
// no-ops and produce matrices identical to the base build.
const Epsilon = 1e-4

// Adjustable metric keys. Team metrics describe the simulated side,
// opp_ metrics the generic opponent.
const (
	MetricFG2     = "fg2_pct"
	MetricFG3     = "fg3_pct"
	MetricFT      = "ft_pct"
	MetricOREB    = "oreb_pct"
	MetricDREB    = "dreb_pct"
	MetricTOV     = "tov_pct"
	MetricOppFG2  = "opp_fg2_pct"
	MetricOppFG3  = "opp_fg3_pct"
	MetricOppFT   = "opp_ft_pct"
	MetricOppOREB = "opp_oreb_pct"
	MetricOppDREB = "opp_dreb_pct"
	MetricOppTOV  = "opp_tov_pct"
)

// MetricKeys lists the adjustable metrics in their canonical order.
var MetricKeys = [...]string{
	MetricFG2, MetricFG3, MetricFT, MetricOREB, MetricDREB, MetricTOV,
	MetricOppFG2, MetricOppFG3, MetricOppFT, MetricOppOREB, MetricOppDREB, MetricOppTOV,
}

func validMetric(key string) bool {
	for _, k := range MetricKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Adjustments maps adjustable metric keys to target values in [0,1].
type Adjustments map[string]float64

// Validate rejects unknown metric keys and out-of-range targets before
// any simulation work starts.
func (a Adjustments) Validate() error {
	for key, v := range a {
		if !validMetric(key) {
			return fmt.Errorf("%w: unknown metric %q", ErrValidation, key)
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s target %v outside [0,1]", ErrValidation, key, v)
		}
	}
	return nil
}

// Rate keys carrying documented league fallbacks. The remaining per_*
// rates referenced by the delta table read as zero when a team has no
// stored value for them.
const (
	RatePer2ptFromOREB        = "per_2pt_made_from_oreb"
	RatePer2ptFromStartTOV    = "per_2pt_made_from_offense_start_tov"
	RatePer3ptFromOREB        = "per_3pt_made_from_oreb"
	RatePer3ptFromStartTOV    = "per_3pt_made_from_offense_start_tov"
	RatePerFTFromOREB         = "per_ft_made_from_oreb"
	RatePerFTFromOffenseStart = "per_ft_made_from_offense_start"
	RatePerFTFromFTMade       = "per_ft_made_from_ft_made"
)

// Rates distributes adjustment mass across transitions. Keys are the
// per_* rate names of the adjustment-rates table; missing keys read as
// zero.
type Rates map[string]float64

// DefaultRates returns the league fallback used when a team has no
// stored rates.
func DefaultRates() Rates {
	return Rates{
		RatePer2ptFromOREB:        0.13,
		RatePer2ptFromStartTOV:    0.87,
		RatePer3ptFromOREB:        0.05,
		RatePer3ptFromStartTOV:    0.95,
		RatePerFTFromOREB:         0.02,
		RatePerFTFromOffenseStart: 0.98,
		RatePerFTFromFTMade:       0.0,
	}
}

// Profile carries a team's season baseline: the twelve adjustable
// percentages, the attempt and event counts the adjuster scales
// against, and the possession pace.
type Profile struct {
	FG2Pct     float64
	FG3Pct     float64
	FTPct      float64
	ORebPct    float64
	DRebPct    float64
	TOVPct     float64
	OppFG2Pct  float64
	OppFG3Pct  float64
	OppFTPct   float64
	OppORebPct float64
	OppDRebPct float64
	OppTOVPct  float64

	FG2Att       float64
	FG3Att       float64
	FTAtt        float64
	Turnovers    float64
	ORebs        float64
	DRebs        float64
	OppFG2Att    float64
	OppFG3Att    float64
	OppFTAtt     float64
	OppTurnovers float64
	OppORebs     float64
	OppDRebs     float64

	PossPerGame float64
}

// Metric returns the baseline value of an adjustable metric key.
func (p Profile) Metric(key string) (float64, bool) {
	switch key {
	case MetricFG2:
		return p.FG2Pct, true
	case MetricFG3:
		return p.FG3Pct, true
	case MetricFT:
		return p.FTPct, true
	case MetricOREB:
		return p.ORebPct, true
	case MetricDREB:
		return p.DRebPct, true
	case MetricTOV:
		return p.TOVPct, true
	case MetricOppFG2:
		return p.OppFG2Pct, true
	case MetricOppFG3:
		return p.OppFG3Pct, true
	case MetricOppFT:
		return p.OppFTPct, true
	case MetricOppOREB:
		return p.OppORebPct, true
	case MetricOppDREB:
		return p.OppDRebPct, true
	case MetricOppTOV:
		return p.OppTOVPct, true
	}
	return 0, false
}

// Possessions estimates the team possessions behind the turnover
// percentage denominator.
func (p Profile) Possessions() float64 { return p.FG2Att + p.FG3Att + p.Turnovers }

// OppPossessions is the opponent-side counterpart of Possessions.
func (p Profile) OppPossessions() float64 { return p.OppFG2Att + p.OppFG3Att + p.OppTurnovers }

// extras are the additional event counts a set of targets implies,
// one per adjustable metric. A zero field means that metric does not
// move.
type extras struct {
	made2        float64
	made3        float64
	madeFT       float64
	turnovers    float64
	dreb         float64
	oreb         float64
	oppMade2     float64
	oppMade3     float64
	oppMadeFT    float64
	oppTurnovers float64
	oppDReb      float64
	oppOReb      float64
}

// extrasFromTargets derives the additional counts for every metric
// whose target sits at least Epsilon away from its baseline.
func extrasFromTargets(p Profile, adj Adjustments) extras {
	var e extras

	moved := func(key string) (float64, bool) {
		v, ok := adj[key]
		if !ok {
			return 0, false
		}
		base, _ := p.Metric(key)
		if math.Abs(v-base) < Epsilon {
			return 0, false
		}
		return v, true
	}

	// Rebound opportunities come from rebounds over rebound share; a
	// zero baseline share leaves the metric immovable.
	rebExtra := func(rebs, pct, targetPct float64) float64 {
		if pct <= 0 {
			return 0
		}
		return (rebs/pct)*targetPct - rebs
	}

	if v, ok := moved(MetricFG2); ok {
		e.made2 = v*p.FG2Att - p.FG2Att*p.FG2Pct
	}
	if v, ok := moved(MetricFG3); ok {
		e.made3 = v*p.FG3Att - p.FG3Att*p.FG3Pct
	}
	if v, ok := moved(MetricFT); ok {
		e.madeFT = v*p.FTAtt - p.FTAtt*p.FTPct
	}
	if v, ok := moved(MetricTOV); ok {
		e.turnovers = v*p.Possessions() - p.Turnovers
	}
	if v, ok := moved(MetricDREB); ok {
		e.dreb = rebExtra(p.DRebs, p.DRebPct, v)
	}
	if v, ok := moved(MetricOREB); ok {
		e.oreb = rebExtra(p.ORebs, p.ORebPct, v)
	}
	if v, ok := moved(MetricOppFG2); ok {
		e.oppMade2 = v*p.OppFG2Att - p.OppFG2Att*p.OppFG2Pct
	}
	if v, ok := moved(MetricOppFG3); ok {
		e.oppMade3 = v*p.OppFG3Att - p.OppFG3Att*p.OppFG3Pct
	}
	if v, ok := moved(MetricOppFT); ok {
		e.oppMadeFT = v*p.OppFTAtt - p.OppFTAtt*p.OppFTPct
	}
	if v, ok := moved(MetricOppTOV); ok {
		e.oppTurnovers = v*p.OppPossessions() - p.OppTurnovers
	}
	if v, ok := moved(MetricOppDREB); ok {
		e.oppDReb = rebExtra(p.OppDRebs, p.OppDRebPct, v)
	}
	if v, ok := moved(MetricOppOREB); ok {
		e.oppOReb = rebExtra(p.OppORebs, p.OppORebPct, v)
	}
	return e
}

type countDelta struct {
	from   state.State
	to     state.State
	amount float64
}

// adjustmentDeltas expands the additional counts into signed count
// deltas. Positive mass lands on the improved transitions; the
// compensating negative mass is split across rebound outcomes by the
// per_* rates and the (possibly adjusted) offensive rebound shares.
func adjustmentDeltas(e extras, r Rates, orebPct, oppOrebPct float64) []countDelta {
	var ds []countDelta
	add := func(from, to state.State, amount float64) {
		ds = append(ds, countDelta{from: from, to: to, amount: amount})
	}

	if a := e.made2; a != 0 {
		oreb := r[RatePer2ptFromOREB]
		add(state.TeamOffenseStart, state.TeamMade2, a*(1-oreb))
		add(state.TeamOREB, state.TeamMade2, a*oreb)
		add(state.TeamOffenseStart, state.TeamOREB, -a*(1-oreb)*orebPct)
		add(state.TeamOffenseStart, state.OppDREB, -a*(1-oreb)*(1-orebPct))
		add(state.TeamOREB, state.TeamOREB, -a*oreb*orebPct)
		add(state.TeamOREB, state.OppDREB, -a*oreb*(1-orebPct))
	}

	if a := e.made3; a != 0 {
		oreb := r[RatePer3ptFromOREB]
		add(state.TeamOffenseStart, state.TeamMade3, a*(1-oreb))
		add(state.TeamOREB, state.TeamMade3, a*oreb)
		add(state.TeamOffenseStart, state.TeamOREB, -a*(1-oreb)*orebPct)
		add(state.TeamOffenseStart, state.OppDREB, -a*(1-oreb)*(1-orebPct))
		add(state.TeamOREB, state.TeamOREB, -a*oreb*orebPct)
		add(state.TeamOREB, state.OppDREB, -a*oreb*(1-orebPct))
	}

	if a := e.madeFT; a != 0 {
		start := r[RatePerFTFromOffenseStart]
		chain := r[RatePerFTFromFTMade]
		oreb := r[RatePerFTFromOREB]
		add(state.TeamOffenseStart, state.TeamMadeFT, a*start)
		add(state.TeamMadeFT, state.TeamMadeFT, a*chain)
		add(state.TeamOREB, state.TeamMadeFT, a*oreb)
		add(state.TeamOffenseStart, state.TeamOREB, -a*start*orebPct)
		add(state.TeamOffenseStart, state.OppDREB, -a*start*(1-orebPct))
		add(state.TeamOREB, state.TeamOREB, -a*oreb*orebPct)
		add(state.TeamOREB, state.OppDREB, -a*oreb*(1-orebPct))
		add(state.TeamMadeFT, state.TeamOREB, -a*chain*orebPct)
		add(state.TeamMadeFT, state.OppDREB, -a*chain*(1-orebPct))
	}

	if a := e.turnovers; a != 0 {
		oreb := r["per_turnover_from_oreb"]
		start2 := r[RatePer2ptFromStartTOV]
		start3 := r[RatePer3ptFromStartTOV]
		startFT := r["per_ft_made_from_offense_start_tov"]
		startOReb := r["per_oreb_from_offense_start_tov"]
		startDReb := r["per_opp_dreb_from_offense_start_tov"]
		oreb2 := r["per_2pt_made_from_oreb_tov"]
		oreb3 := r["per_3pt_made_from_oreb_tov"]
		orebFT := r["per_ft_made_from_oreb_tov"]
		orebOReb := r["per_oreb_from_oreb_tov"]
		orebDReb := r["per_opp_dreb_from_oreb_tov"]
		add(state.TeamOffenseStart, state.TeamTurnover, a*(1-oreb))
		add(state.TeamOREB, state.TeamTurnover, a*oreb)
		add(state.TeamOffenseStart, state.TeamMade2, -a*(1-oreb)*start2)
		add(state.TeamOffenseStart, state.TeamMade3, -a*(1-oreb)*start3)
		add(state.TeamOffenseStart, state.TeamMadeFT, -a*(1-oreb)*startFT)
		add(state.TeamOffenseStart, state.TeamOREB, -a*(1-oreb)*startOReb)
		add(state.TeamOffenseStart, state.OppDREB, -a*(1-oreb)*startDReb)
		add(state.TeamOREB, state.TeamMade2, -a*oreb*oreb2)
		add(state.TeamOREB, state.TeamMade3, -a*oreb*oreb3)
		add(state.TeamOREB, state.TeamMadeFT, -a*oreb*orebFT)
		add(state.TeamOREB, state.TeamOREB, -a*oreb*orebOReb)
		add(state.TeamOREB, state.OppDREB, -a*oreb*orebDReb)
	}

	if a := e.dreb; a != 0 {
		fromOppOReb := r["per_dreb_from_opp_oreb"]
		add(state.OppOffenseStart, state.TeamDREB, a*(1-fromOppOReb))
		add(state.OppOREB, state.TeamDREB, a*fromOppOReb)
		add(state.OppOffenseStart, state.OppOREB, -a*(1-fromOppOReb))
		add(state.OppOREB, state.OppOREB, -a*fromOppOReb)
	}

	if a := e.oreb; a != 0 {
		fromOReb := r["per_oreb_from_oreb"]
		add(state.TeamOffenseStart, state.TeamOREB, a*(1-fromOReb))
		add(state.TeamOREB, state.TeamOREB, a*fromOReb)
		add(state.TeamOffenseStart, state.OppDREB, -a*(1-fromOReb))
		add(state.TeamOREB, state.OppDREB, -a*fromOReb)
	}

	if a := e.oppMade2; a != 0 {
		oreb := r["per_2pt_made_from_oreb_opp"]
		add(state.OppOffenseStart, state.OppMade2, a*(1-oreb))
		add(state.OppOREB, state.OppMade2, a*oreb)
		add(state.OppOffenseStart, state.OppOREB, -a*(1-oreb)*oppOrebPct)
		add(state.OppOffenseStart, state.TeamDREB, -a*(1-oreb)*(1-oppOrebPct))
		add(state.OppOREB, state.OppOREB, -a*oreb*oppOrebPct)
		add(state.OppOREB, state.TeamDREB, -a*oreb*(1-oppOrebPct))
	}

	if a := e.oppMade3; a != 0 {
		oreb := r["per_3pt_made_from_oreb_opp"]
		add(state.OppOffenseStart, state.OppMade3, a*(1-oreb))
		add(state.OppOREB, state.OppMade3, a*oreb)
		add(state.OppOffenseStart, state.OppOREB, -a*(1-oreb)*oppOrebPct)
		add(state.OppOffenseStart, state.TeamDREB, -a*(1-oreb)*(1-oppOrebPct))
		add(state.OppOREB, state.OppOREB, -a*oreb*oppOrebPct)
		add(state.OppOREB, state.TeamDREB, -a*oreb*(1-oppOrebPct))
	}

	if a := e.oppMadeFT; a != 0 {
		start := r["per_ft_made_from_offense_start_opp"]
		oreb := r["per_ft_made_from_oreb_opp"]
		chain := r["per_ft_made_from_ft_made_opp"]
		add(state.OppOffenseStart, state.OppMadeFT, a*start)
		add(state.OppOREB, state.OppMadeFT, a*oreb)
		add(state.OppMadeFT, state.OppMadeFT, a*chain)
		add(state.OppOffenseStart, state.OppOREB, -a*start*oppOrebPct)
		add(state.OppOffenseStart, state.TeamDREB, -a*start*(1-oppOrebPct))
		add(state.OppOREB, state.OppOREB, -a*oreb*oppOrebPct)
		add(state.OppOREB, state.TeamDREB, -a*oreb*(1-oppOrebPct))
		add(state.OppMadeFT, state.OppOREB, -a*chain*oppOrebPct)
		add(state.OppMadeFT, state.TeamDREB, -a*chain*(1-oppOrebPct))
	}

	if a := e.oppTurnovers; a != 0 {
		oreb := r["per_turnover_from_oreb_opp"]
		start2 := r["per_2pt_made_from_offense_start_tov_opp"]
		start3 := r["per_3pt_made_from_offense_start_tov_opp"]
		startFT := r["per_ft_made_from_offense_start_tov_opp"]
		startOReb := r["per_oreb_from_offense_start_tov_opp"]
		startDReb := r["per_dreb_from_offense_start_tov_opp"]
		oreb2 := r["per_2pt_made_from_oreb_tov_opp"]
		oreb3 := r["per_3pt_made_from_oreb_tov_opp"]
		orebFT := r["per_ft_made_from_oreb_tov_opp"]
		orebOReb := r["per_oreb_from_oreb_tov_opp"]
		orebDReb := r["per_dreb_from_oreb_tov_opp"]
		add(state.OppOffenseStart, state.OppTurnover, a*(1-oreb))
		add(state.OppOREB, state.OppTurnover, a*oreb)
		add(state.OppOffenseStart, state.OppMade2, -a*(1-oreb)*start2)
		add(state.OppOffenseStart, state.OppMade3, -a*(1-oreb)*start3)
		add(state.OppOffenseStart, state.OppMadeFT, -a*(1-oreb)*startFT)
		add(state.OppOffenseStart, state.OppOREB, -a*(1-oreb)*startOReb)
		add(state.OppOffenseStart, state.TeamDREB, -a*(1-oreb)*startDReb)
		add(state.OppOREB, state.OppMade2, -a*oreb*oreb2)
		add(state.OppOREB, state.OppMade3, -a*oreb*oreb3)
		add(state.OppOREB, state.OppMadeFT, -a*oreb*orebFT)
		add(state.OppOREB, state.OppOREB, -a*oreb*orebOReb)
		add(state.OppOREB, state.TeamDREB, -a*oreb*orebDReb)
	}

	if a := e.oppDReb; a != 0 {
		fromOReb := r["per_opp_dreb_from_oreb"]
		add(state.TeamOffenseStart, state.OppDREB, a*(1-fromOReb))
		add(state.TeamOREB, state.OppDREB, a*fromOReb)
		add(state.TeamOffenseStart, state.TeamOREB, -a*(1-fromOReb))
		add(state.TeamOREB, state.TeamOREB, -a*fromOReb)
	}

	if a := e.oppOReb; a != 0 {
		fromOReb := r["per_opp_oreb_from_oreb_opp"]
		add(state.OppOffenseStart, state.OppOREB, a*(1-fromOReb))
		add(state.OppOREB, state.OppOREB, a*fromOReb)
		add(state.OppOffenseStart, state.TeamDREB, -a*(1-fromOReb))
		add(state.OppOREB, state.TeamDREB, -a*fromOReb)
	}

	return ds
}

// adjustedShare returns the offensive rebound share used to weight
// compensating mass: the caller's target when the metric is adjusted,
// the baseline otherwise.
func adjustedShare(adj Adjustments, key string, base float64) float64 {
	if v, ok := adj[key]; ok {
		return v
	}
	return base
}

// BuildAdjusted applies metric adjustments in count space and builds
// the resulting matrix pair. The input counts are never mutated. An
// adjustment that leaves an affected row without positive mass is a
// validation error; rows that had no data to begin with remain data
// errors.
func BuildAdjusted(counts []TransitionCount, p Profile, r Rates, adj Adjustments) (Matrices, error) {
	if err := adj.Validate(); err != nil {
		return Matrices{}, err
	}
	if len(adj) == 0 {
		return Build(counts)
	}

	grid, err := gridFrom(counts)
	if err != nil {
		return Matrices{}, err
	}

	var baseTotals [state.Count]float64
	for from := state.State(0); from < state.Count; from++ {
		for to := state.State(0); to < state.Count; to++ {
			baseTotals[from] += grid[from][to]
		}
	}

	e := extrasFromTargets(p, adj)
	orebPct := adjustedShare(adj, MetricOREB, p.ORebPct)
	oppOrebPct := adjustedShare(adj, MetricOppOREB, p.OppORebPct)

	for _, d := range adjustmentDeltas(e, r, orebPct, oppOrebPct) {
		grid[d.from][d.to] += d.amount
	}

	// Clamp after every delta has landed, not per delta.
	for from := state.State(0); from < state.Count; from++ {
		for to := state.State(0); to < state.Count; to++ {
			if grid[from][to] < 0 {
				grid[from][to] = 0
			}
		}
	}

	for from := state.State(0); from < state.Count; from++ {
		if _, forced := from.Forced(); forced {
			continue
		}
		total := 0.0
		for to := state.State(0); to < state.Count; to++ {
			total += grid[from][to]
		}
		if total <= 0 && baseTotals[from] > 0 {
			return Matrices{}, fmt.Errorf("%w: adjustment drains row %s", ErrValidation, from)
		}
	}

	return buildGrid(grid)
}
