package sim

import (
	"math"

	"github.com/okian/fastbreak/internal/domain/model"
	"github.com/okian/fastbreak/pkg/metrics"
)

// SeasonSimulator plays full seasons on one game simulator.
type SeasonSimulator struct {
	game *GameSimulator
}

// NewSeasonSimulator wraps a game simulator. The season simulator
// inherits its single-goroutine constraint.
func NewSeasonSimulator(game *GameSimulator) *SeasonSimulator {
	return &SeasonSimulator{game: game}
}

// Simulate plays one 82 game season. Each game record carries the
// season-to-date projection (wins/games played, scaled to the full
// season); the final projection collapses to the win total.
func (s *SeasonSimulator) Simulate(season int) model.SeasonRecord {
	games := make([]model.GameRecord, 0, GamesPerSeason)
	wins := 0
	for game := 1; game <= GamesPerSeason; game++ {
		teamScore, oppScore := s.game.Play()
		win := teamScore > oppScore
		if win {
			wins++
		}
		expected := float64(wins) / float64(game) * GamesPerSeason
		games = append(games, model.GameRecord{
			Game:         game,
			TeamScore:    teamScore,
			OppScore:     oppScore,
			Win:          win,
			Wins:         wins,
			ExpectedWins: round2(expected),
		})
	}
	metrics.RecordGamesSimulated(GamesPerSeason)

	return model.SeasonRecord{
		Season:        season,
		Games:         games,
		ExpectedWins:  float64(wins),
		Wins:          wins,
		WinPercentage: round3(float64(wins) / GamesPerSeason),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
