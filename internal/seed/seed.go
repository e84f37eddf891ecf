// Package seed synthesizes a league of aggregated possession data and
// writes it through the repository, giving the service something to
// simulate without a play-by-play ingest pipeline. Generation is
// deterministic for a given seed.
package seed

import (
	"context"
	"fmt"

	"github.com/okian/fastbreak/internal/adapters/repository"
	"github.com/okian/fastbreak/pkg/logger"
)

// Config holds configuration for one seeding run.
type Config struct {
	DBPath string // Path of the possession database
	Season string // Season label to seed, e.g. "2024-25"
	Teams  int    // Number of teams to generate (capped at the league size)
	Games  int    // Games behind the synthesized counts
	Seed   int64  // Generator seed; same seed, same league
}

// Run generates a league and writes it to the possession database.
func Run(ctx context.Context, cfg *Config) error {
	store, err := repository.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open possession store: %w", err)
	}
	defer store.Close()

	log := logger.Get()
	log.Info(ctx, "seeding synthetic league",
		logger.String("dbPath", cfg.DBPath),
		logger.String("season", cfg.Season),
		logger.Int("teams", cfg.Teams),
		logger.Int("games", cfg.Games),
	)

	for _, td := range League(cfg.Season, cfg.Teams, cfg.Games, cfg.Seed) {
		if err := store.PutTransitions(ctx, td.Team, cfg.Season, td.Transitions); err != nil {
			return fmt.Errorf("failed to write transitions for %s: %w", td.Team, err)
		}
		if err := store.PutProfile(ctx, td.Team, cfg.Season, td.Profile); err != nil {
			return fmt.Errorf("failed to write profile for %s: %w", td.Team, err)
		}
		if err := store.PutRates(ctx, td.Team, cfg.Season, td.Rates); err != nil {
			return fmt.Errorf("failed to write rates for %s: %w", td.Team, err)
		}
		log.Debug(ctx, "seeded team",
			logger.String("team", td.Team),
			logger.Int("transitions", len(td.Transitions)),
		)
	}

	teams, transitions, err := store.Totals(ctx)
	if err != nil {
		return fmt.Errorf("failed to read store totals: %w", err)
	}
	log.Info(ctx, "seed complete",
		logger.Int("storedTeams", teams),
		logger.Int("storedTransitions", transitions),
	)
	return nil
}
