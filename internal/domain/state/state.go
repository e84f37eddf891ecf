// Package state defines the possession state space of the simulation.
//
// A game is modeled as a Markov chain over fourteen states, seven per
// side: the start of a possession, the three scoring outcomes, a
// turnover and the two rebound outcomes. Historical play-by-play rows
// name team-side states with the team code ("MEM 2pt Made") and
// opponent-side states with the literal "OPP" prefix ("OPP DREB").
package state

import (
	"errors"
	"fmt"
	"strings"
)

// Count is the number of states in the chain.
const Count = 14

// PerSide is the number of states belonging to one side.
const PerSide = 7

// ErrUnknownLabel reports a play-by-play label outside the fourteen
// state vocabulary.
var ErrUnknownLabel = errors.New("unknown state label")

// Side identifies which side of the matchup a state belongs to.
type Side uint8

const (
	// Team is the side being simulated.
	Team Side = iota
	// Opp is the generic opponent side.
	Opp
)

// Other returns the opposing side.
func (d Side) Other() Side {
	if d == Team {
		return Opp
	}
	return Team
}

// String implements fmt.Stringer.
func (d Side) String() string {
	if d == Opp {
		return "OPP"
	}
	return "TEAM"
}

// State is one node of the possession chain. The zero value is the
// team's offense start.
type State uint8

const (
	TeamOffenseStart State = iota
	TeamMade2
	TeamMade3
	TeamMadeFT
	TeamTurnover
	TeamOREB
	TeamDREB
	OppOffenseStart
	OppMade2
	OppMade3
	OppMadeFT
	OppTurnover
	OppOREB
	OppDREB
)

var baseNames = [PerSide]string{
	"Offense Start",
	"2pt Made",
	"3pt Made",
	"FT Made",
	"Turnover",
	"OREB",
	"DREB",
}

func (s State) kind() uint8 { return uint8(s) % PerSide }

// Side returns the side the state belongs to.
func (s State) Side() Side {
	if s >= OppOffenseStart {
		return Opp
	}
	return Team
}

// Points returns the score value of the state: two for a made two
// pointer, three for a made three, one for a made free throw and zero
// for everything else.
func (s State) Points() int {
	switch s.kind() {
	case uint8(TeamMade2):
		return 2
	case uint8(TeamMade3):
		return 3
	case uint8(TeamMadeFT):
		return 1
	}
	return 0
}

// Scoring reports whether entering the state puts points on the board.
func (s State) Scoring() bool { return s.Points() > 0 }

// Forced returns the mandatory successor for states whose next state
// is fixed by the rules of the game rather than by data: a made field
// goal hands the ball to the other side and a defensive rebound starts
// a possession for the rebounding side. Rows for these states need no
// historical support.
func (s State) Forced() (State, bool) {
	switch s {
	case TeamMade2, TeamMade3:
		return OppOffenseStart, true
	case OppMade2, OppMade3:
		return TeamOffenseStart, true
	case TeamDREB:
		return TeamOffenseStart, true
	case OppDREB:
		return OppOffenseStart, true
	}
	return 0, false
}

// OffenseStart returns the possession-start state for a side.
func OffenseStart(side Side) State {
	if side == Opp {
		return OppOffenseStart
	}
	return TeamOffenseStart
}

// Label renders the state as it appears in play-by-play data for the
// given team code.
func (s State) Label(team string) string {
	prefix := team
	if s.Side() == Opp {
		prefix = "OPP"
	}
	return prefix + " " + baseNames[s.kind()]
}

// String implements fmt.Stringer with a team-agnostic label.
func (s State) String() string {
	if s >= Count {
		return fmt.Sprintf("State(%d)", uint8(s))
	}
	return s.Side().String() + " " + baseNames[s.kind()]
}

// Parse maps a play-by-play label back to a state. The team code
// distinguishes team-side labels from "OPP"-prefixed ones.
func Parse(team, label string) (State, error) {
	var side Side
	var rest string
	switch {
	case strings.HasPrefix(label, team+" "):
		side, rest = Team, label[len(team)+1:]
	case strings.HasPrefix(label, "OPP "):
		side, rest = Opp, label[4:]
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	for i, name := range baseNames {
		if rest == name {
			if side == Opp {
				return State(i + PerSide), nil
			}
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
}
