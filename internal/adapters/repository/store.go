// Package repository defines the historical possession data store
// interface and errors. The store is the source the engine builds its
// matrices from; write methods exist for the seeder and tests.
package repository

import "context"

// TransitionRow is one aggregated possession transition tally as it
// is stored: state labels carry the team code or the "OPP" prefix.
type TransitionRow struct {
	State     string
	NextState string
	Count     float64
}

// Store provides access to historical possession data keyed by team
// and season.
type Store interface {
	// Seasons lists the seasons with stored transition data.
	Seasons(ctx context.Context) ([]string, error)

	// Teams lists the teams with stored transition data for a season.
	Teams(ctx context.Context, season string) ([]string, error)

	// TransitionCounts returns the aggregated possession transitions
	// for a team's season. Returns ErrNotFound when the pair has no
	// stored rows.
	TransitionCounts(ctx context.Context, team, season string) ([]TransitionRow, error)

	// Profile returns the stored metric profile for a team's season:
	// the adjustable percentages, attempt and event counts, and pace.
	// Returns ErrNotFound when the pair has no stored profile.
	Profile(ctx context.Context, team, season string) (map[string]float64, error)

	// Rates returns the stored per-transition adjustment rates for a
	// team's season. An empty map is not an error; callers fall back
	// to league defaults.
	Rates(ctx context.Context, team, season string) (map[string]float64, error)

	// PutTransitions replaces the stored transitions for a team's
	// season.
	PutTransitions(ctx context.Context, team, season string, rows []TransitionRow) error

	// PutProfile replaces the stored metric profile for a team's
	// season.
	PutProfile(ctx context.Context, team, season string, metrics map[string]float64) error

	// PutRates replaces the stored adjustment rates for a team's
	// season.
	PutRates(ctx context.Context, team, season string, rates map[string]float64) error

	// Totals reports how many teams and transition rows the store
	// holds, for monitoring.
	Totals(ctx context.Context) (teams, transitions int, err error)

	// Close releases the underlying database handle.
	Close() error
}
