// Package markov builds the possession transition matrices that drive
// season simulation, applies count-space metric adjustments to them
// and sweeps the single-metric improvement scenarios used by the
// adjustment export.
package markov

import (
	"fmt"

	"github.com/okian/fastbreak/internal/domain/state"
)

// RowSumTolerance is the accepted deviation of a normalized row sum
// from one.
const RowSumTolerance = 1e-6

// TransitionCount is one aggregated transition tally between two
// states, as stored per team and season.
type TransitionCount struct {
	From  state.State
	To    state.State
	Count float64
}

// Matrix holds row-normalized transition probabilities for the rows
// owned by one side. Instances are immutable after construction.
type Matrix struct {
	side state.Side
	rows [state.Count][state.Count]float64
}

// Side returns the side whose rows the matrix owns.
func (m *Matrix) Side() state.Side { return m.side }

// Prob returns P(to|from).
func (m *Matrix) Prob(from, to state.State) float64 { return m.rows[from][to] }

// Next samples the successor of from given a uniform draw in [0,1).
func (m *Matrix) Next(from state.State, u float64) state.State {
	acc := 0.0
	last := from
	for to := state.State(0); to < state.Count; to++ {
		p := m.rows[from][to]
		if p <= 0 {
			continue
		}
		last = to
		acc += p
		if u < acc {
			return to
		}
	}
	// Rounding can leave acc a hair short of u; the remainder belongs
	// to the last reachable state.
	return last
}

// Matrices is the pair driving one simulation: the offense matrix owns
// team-side rows, the defense matrix owns opponent-side rows. Both
// share the full state space as codomain.
type Matrices struct {
	Offense *Matrix
	Defense *Matrix
}

func (ms Matrices) owner(from state.State) *Matrix {
	if from.Side() == state.Opp {
		return ms.Defense
	}
	return ms.Offense
}

// Prob returns P(to|from), dispatching to the matrix owning from.
func (ms Matrices) Prob(from, to state.State) float64 {
	return ms.owner(from).Prob(from, to)
}

// Next samples the successor of from given a uniform draw in [0,1).
func (ms Matrices) Next(from state.State, u float64) state.State {
	return ms.owner(from).Next(from, u)
}

// Validate checks the row-sum invariant on every row of the pair.
func (ms Matrices) Validate() error {
	for from := state.State(0); from < state.Count; from++ {
		m := ms.owner(from)
		if m == nil {
			return fmt.Errorf("%w: missing %s matrix", ErrData, from.Side())
		}
		sum := 0.0
		for to := state.State(0); to < state.Count; to++ {
			sum += m.rows[from][to]
		}
		if diff := sum - 1; diff > RowSumTolerance || diff < -RowSumTolerance {
			return fmt.Errorf("%w: row %s sums to %v", ErrData, from, sum)
		}
	}
	return nil
}

// Build normalizes aggregated transition counts into the matrix pair.
// Forced rows take their mandatory successor at probability one and
// need no observed counts; any other row with zero observed total is a
// data error.
func Build(counts []TransitionCount) (Matrices, error) {
	grid, err := gridFrom(counts)
	if err != nil {
		return Matrices{}, err
	}
	return buildGrid(grid)
}

type countGrid [state.Count][state.Count]float64

func gridFrom(counts []TransitionCount) (*countGrid, error) {
	grid := &countGrid{}
	for _, tc := range counts {
		if tc.From >= state.Count || tc.To >= state.Count {
			return nil, fmt.Errorf("%w: transition %d -> %d outside the state space", ErrData, tc.From, tc.To)
		}
		if tc.Count < 0 {
			return nil, fmt.Errorf("%w: negative count for %s -> %s", ErrData, tc.From, tc.To)
		}
		grid[tc.From][tc.To] += tc.Count
	}
	return grid, nil
}

func buildGrid(grid *countGrid) (Matrices, error) {
	off := &Matrix{side: state.Team}
	def := &Matrix{side: state.Opp}
	for from := state.State(0); from < state.Count; from++ {
		m := off
		if from.Side() == state.Opp {
			m = def
		}
		if next, ok := from.Forced(); ok {
			m.rows[from][next] = 1
			continue
		}
		total := 0.0
		for to := state.State(0); to < state.Count; to++ {
			total += grid[from][to]
		}
		if total <= 0 {
			return Matrices{}, fmt.Errorf("%w: no outgoing transitions from %s", ErrData, from)
		}
		for to := state.State(0); to < state.Count; to++ {
			m.rows[from][to] = grid[from][to] / total
		}
	}
	ms := Matrices{Offense: off, Defense: def}
	if err := ms.Validate(); err != nil {
		return Matrices{}, err
	}
	return ms, nil
}
