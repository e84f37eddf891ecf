package sim

import (
	"math"
	"math/rand"

	"github.com/okian/fastbreak/internal/domain/markov"
	"github.com/okian/fastbreak/internal/domain/state"
)

const (
	// GamesPerSeason is the regular season length.
	GamesPerSeason = 82

	// defaultMaxWalkSteps bounds the states visited in one possession.
	defaultMaxWalkSteps = 50

	// defaultOvertimeCap bounds tie resolution before a single draw
	// decides the game.
	defaultOvertimeCap = 25
)

// GameSimulator plays single games on an immutable matrix pair. It is
// not safe for concurrent use; every simulator owns its RNG.
type GameSimulator struct {
	matrices    markov.Matrices
	possessions int
	maxSteps    int
	otCap       int
	rng         *rand.Rand
}

// NewGameSimulator builds a game simulator. possessionsPerGame is the
// per-side possession count of a regulation game, normally the rounded
// poss_per_game of the team profile.
func NewGameSimulator(ms markov.Matrices, possessionsPerGame int, rng *rand.Rand, opts ...GameOption) *GameSimulator {
	g := &GameSimulator{
		matrices:    ms,
		possessions: possessionsPerGame,
		maxSteps:    defaultMaxWalkSteps,
		otCap:       defaultOvertimeCap,
		rng:         rng,
	}
	if g.possessions < 1 {
		g.possessions = 1
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// possession walks the chain from one side's offense start, crediting
// points to the side of every scoring state entered, and stops when
// the ball reaches the other side's offense start or the step bound.
func (g *GameSimulator) possession(start state.Side) (team, opp int) {
	cur := state.OffenseStart(start)
	stop := state.OffenseStart(start.Other())
	for step := 0; step < g.maxSteps; step++ {
		next := g.matrices.Next(cur, g.rng.Float64())
		if pts := next.Points(); pts > 0 {
			if next.Side() == state.Opp {
				opp += pts
			} else {
				team += pts
			}
		}
		if next == stop {
			break
		}
		cur = next
	}
	return team, opp
}

// segment plays n possessions starting from each side in turn and
// returns the points both sides accumulated.
func (g *GameSimulator) segment(n int) (team, opp int) {
	for i := 0; i < n; i++ {
		t, o := g.possession(state.Team)
		team += t
		opp += o
	}
	for i := 0; i < n; i++ {
		t, o := g.possession(state.Opp)
		team += t
		opp += o
	}
	return team, opp
}

// overtimePossessions scales the five minute overtime against the 48
// minute regulation pace.
func (g *GameSimulator) overtimePossessions() int {
	n := int(math.Round(float64(g.possessions) * 5.0 / 48.0))
	if n < 1 {
		return 1
	}
	return n
}

// Play simulates one game: a regulation segment, overtime segments
// while tied, and a final draw if the overtime cap is reached still
// tied. Games never end even.
func (g *GameSimulator) Play() (teamScore, oppScore int) {
	teamScore, oppScore = g.segment(g.possessions)
	if teamScore != oppScore {
		return teamScore, oppScore
	}

	ot := g.overtimePossessions()
	for i := 0; i < g.otCap && teamScore == oppScore; i++ {
		t, o := g.segment(ot)
		teamScore += t
		oppScore += o
	}
	if teamScore == oppScore {
		if g.rng.Float64() < 0.5 {
			teamScore++
		} else {
			oppScore++
		}
	}
	return teamScore, oppScore
}
