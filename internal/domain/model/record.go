// Package model contains domain records passed between layers.
// Fields mirror the OpenAPI schemas for the simulation endpoints.
package model

// GameRecord captures one simulated game and the season-to-date
// projection after it.
type GameRecord struct {
	Game         int     `json:"game"`
	TeamScore    int     `json:"team_score"`
	OppScore     int     `json:"opp_score"`
	Win          bool    `json:"is_win"`
	Wins         int     `json:"wins"`
	ExpectedWins float64 `json:"expected_wins"`
}

// SeasonRecord aggregates the games of one simulated season.
type SeasonRecord struct {
	Season        int          `json:"season"`
	Games         []GameRecord `json:"games"`
	ExpectedWins  float64      `json:"final_expected_wins"`
	Wins          int          `json:"total_wins"`
	WinPercentage float64      `json:"win_percentage"`
}

// RunningStatistics summarizes final expected wins across the seasons
// completed so far in a run.
type RunningStatistics struct {
	AverageExpectedWins  float64 `json:"average_expected_wins"`
	StandardDeviation    float64 `json:"standard_deviation"`
	ConfidenceInterval95 float64 `json:"confidence_interval_95"`
	MinWins              float64 `json:"min_wins"`
	MaxWins              float64 `json:"max_wins"`
	SeasonsCompleted     int     `json:"seasons_completed"`
}

// MatrixRow is one non-zero transition probability of a built matrix
// pair, labeled for the requesting team.
type MatrixRow struct {
	State       string  `json:"state"`
	NextState   string  `json:"next_state"`
	Probability float64 `json:"probability"`
}

// AdjustedCount is one row of a scenario export: a single transition
// count after an improvement scenario has been applied to it.
type AdjustedCount struct {
	Team           string
	Season         string
	State          string
	NextState      string
	Count          float64
	AdjustmentType string
	PossPerGame    float64
}
