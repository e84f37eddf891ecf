package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/fastbreak/internal/seed"
	"github.com/okian/fastbreak/pkg/logger"
)

// Default configuration constants.
const (
	defaultDBPath      = "fastbreak.db"
	defaultSeason      = "2024-25"
	defaultTeams       = 30
	defaultGames       = 82
	defaultSeed        = 1
	defaultSeedTimeout = 2 * time.Minute
)

func main() {
	var (
		dbPath  = flag.String("db", defaultDBPath, "Path of the possession database to write")
		season  = flag.String("season", defaultSeason, "Season label to seed")
		teams   = flag.Int("teams", defaultTeams, "Number of teams to generate (max 30)")
		games   = flag.Int("games", defaultGames, "Games behind the synthesized counts")
		seedVal = flag.Int64("seed", defaultSeed, "Generator seed; the same seed reproduces the same league")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	cfg := &seed.Config{
		DBPath: *dbPath,
		Season: *season,
		Teams:  *teams,
		Games:  *games,
		Seed:   *seedVal,
	}

	if err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}
