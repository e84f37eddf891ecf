package seed

import (
	"math"
	"math/rand"

	"github.com/okian/fastbreak/internal/adapters/repository"
	"github.com/okian/fastbreak/internal/domain/markov"
	"github.com/okian/fastbreak/internal/domain/state"
)

// TeamCodes lists the league's thirty franchise codes.
var TeamCodes = [...]string{
	"ATL", "BKN", "BOS", "CHA", "CHI", "CLE", "DAL", "DEN", "DET", "GSW",
	"HOU", "IND", "LAC", "LAL", "MEM", "MIA", "MIL", "MIN", "NOP", "NYK",
	"OKC", "ORL", "PHI", "PHX", "POR", "SAC", "SAS", "TOR", "UTA", "WAS",
}

// DefaultGames is the season length behind the synthesized counts.
const DefaultGames = 82

// League-average per-game baselines the generator jitters around. The
// possession total is the sum of field goal attempts and turnovers, so
// the seeded pace stays consistent with the possession proxy the
// adjuster scales turnovers against.
const (
	baseFG2Att    = 52.0
	baseFG3Att    = 34.0
	baseFTAtt     = 22.0
	baseTurnovers = 13.0
	baseORebs     = 10.5

	baseFG2Pct = 0.545
	baseFG3Pct = 0.365
	baseFTPct  = 0.78
)

// Structural shares of the synthesized chain: how turnovers, repeat
// offensive boards and missed final free throws distribute across the
// rows that are not pinned by the stored per_* rates.
const (
	tovFromStartShare = 0.92
	orebRepeatShare   = 0.06
	ftMissOwnShare    = 0.01
	ftMissOppShare    = 0.02
)

// TeamData is everything the seeder writes for one team's season.
type TeamData struct {
	Team        string
	Transitions []repository.TransitionRow
	Profile     map[string]float64
	Rates       map[string]float64
}

// League synthesizes aggregated possession data for n teams. The same
// seed always produces the same league.
func League(season string, n, games int, seed int64) []TeamData {
	if n <= 0 || n > len(TeamCodes) {
		n = len(TeamCodes)
	}
	if games <= 0 {
		games = DefaultGames
	}
	rng := rand.New(rand.NewSource(seed))

	out := make([]TeamData, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, synthTeam(rng, TeamCodes[i], float64(games)))
	}
	return out
}

// sideTotals carries one side's synthesized season totals.
type sideTotals struct {
	fg2a, fg3a, fta, tov, oreb float64
	fg2Pct, fg3Pct, ftPct      float64
	makes2, makes3, madeFT     float64
	poss                       float64
}

func synthSide(rng *rand.Rand, games float64) sideTotals {
	t := sideTotals{
		fg2a:   math.Round(games * jitter(rng, baseFG2Att, 3.0)),
		fg3a:   math.Round(games * jitter(rng, baseFG3Att, 2.5)),
		fta:    math.Round(games * jitter(rng, baseFTAtt, 2.0)),
		tov:    math.Round(games * jitter(rng, baseTurnovers, 1.2)),
		oreb:   math.Round(games * jitter(rng, baseORebs, 1.2)),
		fg2Pct: jitter(rng, baseFG2Pct, 0.03),
		fg3Pct: jitter(rng, baseFG3Pct, 0.022),
		ftPct:  jitter(rng, baseFTPct, 0.035),
	}
	t.makes2 = t.fg2Pct * t.fg2a
	t.makes3 = t.fg3Pct * t.fg3a
	t.madeFT = t.ftPct * t.fta
	t.poss = t.fg2a + t.fg3a + t.tov
	return t
}

func jitter(rng *rand.Rand, center, spread float64) float64 {
	return center + (rng.Float64()*2-1)*spread
}

// synthRates jitters the league default rates per team, keeping the
// complementary made-shot source shares summing to one.
func synthRates(rng *rand.Rand) markov.Rates {
	r := markov.DefaultRates()
	d2 := (rng.Float64()*2 - 1) * 0.02
	r[markov.RatePer2ptFromOREB] += d2
	r[markov.RatePer2ptFromStartTOV] -= d2
	d3 := (rng.Float64()*2 - 1) * 0.015
	r[markov.RatePer3ptFromOREB] += d3
	r[markov.RatePer3ptFromStartTOV] -= d3
	return r
}

type grid map[[2]state.State]float64

func key(from, to state.State) [2]state.State { return [2]state.State{from, to} }

// on maps a team-side state onto the given side.
func on(side state.Side, s state.State) state.State {
	if side == state.Opp {
		return s + state.PerSide
	}
	return s
}

// fillSide writes one side's rows into the grid. Defensive rebound
// rows are filled afterwards from both sides' miss outflows.
func fillSide(g grid, side state.Side, t sideTotals, r markov.Rates) {
	os := state.OffenseStart(side)
	made2 := on(side, state.TeamMade2)
	made3 := on(side, state.TeamMade3)
	madeFT := on(side, state.TeamMadeFT)
	tov := on(side, state.TeamTurnover)
	oreb := on(side, state.TeamOREB)
	otherOS := state.OffenseStart(side.Other())
	otherDREB := on(side.Other(), state.TeamDREB)

	// Made shots split across their source rows by the stored rates.
	orebM2 := t.makes2 * r[markov.RatePer2ptFromOREB]
	orebM3 := t.makes3 * r[markov.RatePer3ptFromOREB]
	orebFT := t.madeFT * r[markov.RatePerFTFromOREB]
	ftFT := t.madeFT * r[markov.RatePerFTFromFTMade]
	osM2 := t.makes2 - orebM2
	osM3 := t.makes3 - orebM3
	osFT := t.madeFT - orebFT - ftFT

	osTOV := t.tov * tovFromStartShare
	orebTOV := t.tov - osTOV

	// Offensive board inflows: the repeat-board loop, the missed final
	// free throw, and the balance from the possession start.
	orebSelf := t.oreb * orebRepeatShare
	ftOreb := t.madeFT * ftMissOwnShare
	osOreb := t.oreb - orebSelf - ftOreb

	// Row outflows balance against row visits; the remainder of every
	// miss goes to the other side's defensive board.
	ftOppDreb := t.madeFT * ftMissOppShare
	ftExit := t.madeFT - ftFT - ftOreb - ftOppDreb
	orebOppDreb := t.oreb - (orebM2 + orebM3 + orebFT + orebTOV + orebSelf)
	osOppDreb := t.poss - (osM2 + osM3 + osFT + osTOV + osOreb)

	g[key(os, made2)] += osM2
	g[key(os, made3)] += osM3
	g[key(os, madeFT)] += osFT
	g[key(os, tov)] += osTOV
	g[key(os, oreb)] += osOreb
	g[key(os, otherDREB)] += osOppDreb

	g[key(oreb, made2)] += orebM2
	g[key(oreb, made3)] += orebM3
	g[key(oreb, madeFT)] += orebFT
	g[key(oreb, tov)] += orebTOV
	g[key(oreb, oreb)] += orebSelf
	g[key(oreb, otherDREB)] += orebOppDreb

	g[key(madeFT, otherOS)] += ftExit
	g[key(madeFT, madeFT)] += ftFT
	g[key(madeFT, oreb)] += ftOreb
	g[key(madeFT, otherDREB)] += ftOppDreb

	g[key(tov, otherOS)] += t.tov

	// Forced rows keep their observed tallies; the matrix builder pins
	// them to probability one regardless.
	g[key(made2, otherOS)] += t.makes2
	g[key(made3, otherOS)] += t.makes3
}

// drebInflow sums everything the other side's misses sent to a
// defensive board state.
func drebInflow(g grid, dreb state.State) float64 {
	total := 0.0
	for from := state.State(0); from < state.Count; from++ {
		total += g[key(from, dreb)]
	}
	return total
}

func synthTeam(rng *rand.Rand, team string, games float64) TeamData {
	own := synthSide(rng, games)
	opp := synthSide(rng, games)
	rates := synthRates(rng)

	g := make(grid, 64)
	fillSide(g, state.Team, own, rates)
	fillSide(g, state.Opp, opp, rates)

	teamDreb := drebInflow(g, state.TeamDREB)
	oppDreb := drebInflow(g, state.OppDREB)
	g[key(state.TeamDREB, state.TeamOffenseStart)] = teamDreb
	g[key(state.OppDREB, state.OppOffenseStart)] = oppDreb

	profile := markov.Profile{
		FG2Pct:     own.fg2Pct,
		FG3Pct:     own.fg3Pct,
		FTPct:      own.ftPct,
		ORebPct:    own.oreb / (own.oreb + oppDreb),
		DRebPct:    teamDreb / (teamDreb + opp.oreb),
		TOVPct:     own.tov / own.poss,
		OppFG2Pct:  opp.fg2Pct,
		OppFG3Pct:  opp.fg3Pct,
		OppFTPct:   opp.ftPct,
		OppORebPct: opp.oreb / (opp.oreb + teamDreb),
		OppDRebPct: oppDreb / (oppDreb + own.oreb),
		OppTOVPct:  opp.tov / opp.poss,

		FG2Att:       own.fg2a,
		FG3Att:       own.fg3a,
		FTAtt:        own.fta,
		Turnovers:    own.tov,
		ORebs:        own.oreb,
		DRebs:        teamDreb,
		OppFG2Att:    opp.fg2a,
		OppFG3Att:    opp.fg3a,
		OppFTAtt:     opp.fta,
		OppTurnovers: opp.tov,
		OppORebs:     opp.oreb,
		OppDRebs:     oppDreb,

		PossPerGame: own.poss / games,
	}

	return TeamData{
		Team:        team,
		Transitions: rows(g, team),
		Profile:     profile.Metrics(),
		Rates:       map[string]float64(rates),
	}
}

// rows flattens the grid in state order, rounding counts the way
// aggregated play-by-play tallies are stored.
func rows(g grid, team string) []repository.TransitionRow {
	out := make([]repository.TransitionRow, 0, len(g))
	for from := state.State(0); from < state.Count; from++ {
		for to := state.State(0); to < state.Count; to++ {
			c, ok := g[key(from, to)]
			if !ok || c <= 0 {
				continue
			}
			out = append(out, repository.TransitionRow{
				State:     from.Label(team),
				NextState: to.Label(team),
				Count:     math.Round(c*100) / 100,
			})
		}
	}
	return out
}
