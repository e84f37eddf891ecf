package sim

import "github.com/okian/fastbreak/internal/domain/model"

// GameOption tunes a game simulator.
type GameOption func(*GameSimulator)

// WithMaxWalkSteps caps how many transitions a single possession walk
// may take before it is abandoned.
func WithMaxWalkSteps(n int) GameOption {
	return func(g *GameSimulator) {
		if n > 0 {
			g.maxSteps = n
		}
	}
}

// WithOvertimeCap bounds how many overtime segments a tied game may
// play before the tie is broken by a draw.
func WithOvertimeCap(n int) GameOption {
	return func(g *GameSimulator) {
		if n > 0 {
			g.otCap = n
		}
	}
}

// RunOption tunes a run.
type RunOption func(*Run)

// WithEventBuffer sizes the run's event channel.
func WithEventBuffer(n int) RunOption {
	return func(r *Run) {
		if n > 0 {
			r.events = make(chan model.Event, n)
		}
	}
}
