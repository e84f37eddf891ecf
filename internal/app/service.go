// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	repository "github.com/okian/fastbreak/internal/adapters/repository"
	"github.com/okian/fastbreak/internal/domain/markov"
	"github.com/okian/fastbreak/internal/domain/model"
	"github.com/okian/fastbreak/internal/domain/sim"
	"github.com/okian/fastbreak/internal/domain/state"
	"github.com/okian/fastbreak/pkg/logger"
)

// ErrInvalidRequest marks simulation requests rejected before any
// engine work starts.
var ErrInvalidRequest = errors.New("invalid simulation request")

// ErrNotStarted reports a call against a service that has not been
// started.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the win estimator.
type Service struct {
	mu sync.RWMutex

	// Core components
	store repository.Store

	// Active runs keyed by team, for cancel routing. The registry
	// holds the most recent run per team; terminal runs deregister
	// themselves.
	runs map[string]*sim.Run

	// Configuration
	dbPath              string
	defaultSeason       string
	defaultSeasons      int
	maxSeasons          int
	eventBuffer         int
	maxWalkSteps        int
	possessionsOverride int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the path of the possession database.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithDefaultSeason sets the season used when a request leaves it out.
func WithDefaultSeason(season string) Option {
	return func(s *Service) {
		if season != "" {
			s.defaultSeason = season
		}
	}
}

// WithDefaultSeasons sets how many seasons a request simulates when it
// does not say.
func WithDefaultSeasons(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultSeasons = n
		}
	}
}

// WithMaxSeasons caps the seasons a single request may ask for.
func WithMaxSeasons(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSeasons = n
		}
	}
}

// WithEventBuffer sizes the event channel of every run.
func WithEventBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.eventBuffer = n
		}
	}
}

// WithMaxWalkSteps caps the states visited in one possession walk.
func WithMaxWalkSteps(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxWalkSteps = n
		}
	}
}

// WithPossessionsOverride pins the per-side possession count of every
// game instead of reading the team's pace from its profile.
func WithPossessionsOverride(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.possessionsOverride = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:         "fastbreak.db",
		defaultSeason:  "2024-25",
		defaultSeasons: 10,
		maxSeasons:     50,
		eventBuffer:    4,
		maxWalkSteps:   50,
		runs:           make(map[string]*sim.Run),
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the possession store and readies the service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting simulation service...")

	store, err := repository.Open(ctx, s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open possession store: %w", err)
	}
	s.store = store

	s.started = true
	s.logger.Info(ctx, "simulation service started",
		logger.String("dbPath", s.dbPath),
		logger.String("defaultSeason", s.defaultSeason),
		logger.Int("defaultSeasons", s.defaultSeasons),
		logger.Int("maxSeasons", s.maxSeasons),
	)

	return nil
}

// Stop gracefully shuts down the service. In-flight runs are asked to
// stop at their next season boundary.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping simulation service...")

	for team, run := range s.runs {
		if run.Cancel() {
			s.logger.Info(context.Background(), "cancelled in-flight run",
				logger.String("team", team),
				logger.String("runID", run.ID().String()),
			)
		}
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "simulation service stopped")
}

// Seasons lists the seasons with stored data.
func (s *Service) Seasons(ctx context.Context) ([]string, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, err
	}
	return store.Seasons(ctx)
}

// Teams lists the teams with stored data for a season. An empty season
// falls back to the configured default.
func (s *Service) Teams(ctx context.Context, season string) ([]string, string, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, "", err
	}
	if season == "" {
		season = s.defaultSeasonLocked()
	}
	teams, err := store.Teams(ctx, season)
	if err != nil {
		return nil, season, err
	}
	return teams, season, nil
}

// MetricProfile returns a team's baseline: the stored metric profile
// plus the adjustment rates in effect for it.
func (s *Service) MetricProfile(ctx context.Context, team, season string) (map[string]float64, map[string]float64, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, nil, err
	}
	if team == "" {
		return nil, nil, fmt.Errorf("%w: team is required", ErrInvalidRequest)
	}
	if season == "" {
		season = s.defaultSeasonLocked()
	}

	profile, err := store.Profile(ctx, team, season)
	if err != nil {
		return nil, nil, err
	}
	rates, err := store.Rates(ctx, team, season)
	if err != nil {
		return nil, nil, err
	}
	if len(rates) == 0 {
		rates = markov.DefaultRates()
	}
	return profile, rates, nil
}

// RunSimulation validates the request, registers a run for the team
// and starts it. The run streams on its Events channel; the context
// bounds the consumer's interest in the stream.
func (s *Service) RunSimulation(ctx context.Context, req model.SimulationRequest) (*sim.Run, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil, ErrNotStarted
	}

	if req.Team == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: team is required", ErrInvalidRequest)
	}
	if req.Season == "" {
		req.Season = s.defaultSeason
	}
	if req.Seasons == 0 {
		req.Seasons = s.defaultSeasons
	}
	if req.Seasons < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: num_seasons %d must be positive", ErrInvalidRequest, req.Seasons)
	}
	if req.Seasons > s.maxSeasons {
		req.Seasons = s.maxSeasons
	}
	if err := markov.Adjustments(req.Adjustments).Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if existing, ok := s.runs[req.Team]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: run %s", sim.ErrRunActive, existing.ID())
	}

	seed := sim.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	run := sim.NewRun(req.Team, req.Seasons, s.buildFunc(req, seed), sim.WithEventBuffer(s.eventBuffer))
	s.runs[req.Team] = run
	s.mu.Unlock()

	s.logger.Info(ctx, "simulation run starting",
		logger.String("runID", run.ID().String()),
		logger.String("team", req.Team),
		logger.String("season", req.Season),
		logger.Int("seasons", req.Seasons),
		logger.Int("adjustments", len(req.Adjustments)),
	)

	run.Start(ctx)
	go s.deregisterOnDone(req.Team, run)
	return run, nil
}

// deregisterOnDone removes a terminal run from the registry so the
// team can be simulated again.
func (s *Service) deregisterOnDone(team string, run *sim.Run) {
	<-run.Done()
	s.mu.Lock()
	if s.runs[team] == run {
		delete(s.runs, team)
	}
	s.mu.Unlock()
}

// buildFunc defers data loading to the run's own goroutine so a
// missing team fails the run with zero season events instead of
// blocking the submitter.
func (s *Service) buildFunc(req model.SimulationRequest, seed int64) sim.BuildFunc {
	return func(ctx context.Context) (*sim.SeasonSimulator, error) {
		counts, profile, rates, err := s.loadInputs(ctx, req.Team, req.Season)
		if err != nil {
			return nil, err
		}

		ms, err := markov.BuildAdjusted(counts, profile, rates, markov.Adjustments(req.Adjustments))
		if err != nil {
			return nil, err
		}

		possessions := s.possessionsOverride
		if possessions <= 0 {
			possessions = int(math.Round(profile.PossPerGame))
		}

		rng := rand.New(rand.NewSource(seed))
		game := sim.NewGameSimulator(ms, possessions, rng, sim.WithMaxWalkSteps(s.maxWalkSteps))
		return sim.NewSeasonSimulator(game), nil
	}
}

// Cancel asks the active run for a team to stop at its next season
// boundary. It is idempotent and reports whether a run was in flight.
func (s *Service) Cancel(ctx context.Context, team string) bool {
	s.mu.RLock()
	run, ok := s.runs[team]
	s.mu.RUnlock()

	if !ok {
		return false
	}

	active := run.Cancel()
	s.logger.Info(ctx, "cancellation requested",
		logger.String("team", team),
		logger.String("runID", run.ID().String()),
		logger.Any("wasActive", active),
	)
	return active
}

// BuildAdjustedMatrix builds the matrix pair for a team, applies the
// optional adjustments and flattens the result to labeled rows. It is
// side-effect free.
func (s *Service) BuildAdjustedMatrix(ctx context.Context, team, season string, adjustments map[string]float64) ([]model.MatrixRow, error) {
	if _, err := s.activeStore(); err != nil {
		return nil, err
	}
	if team == "" {
		return nil, fmt.Errorf("%w: team is required", ErrInvalidRequest)
	}
	if season == "" {
		season = s.defaultSeasonLocked()
	}

	counts, profile, rates, err := s.loadInputs(ctx, team, season)
	if err != nil {
		return nil, err
	}
	ms, err := markov.BuildAdjusted(counts, profile, rates, markov.Adjustments(adjustments))
	if err != nil {
		return nil, err
	}

	rows := make([]model.MatrixRow, 0, state.Count*state.Count/4)
	for from := state.State(0); from < state.Count; from++ {
		for to := state.State(0); to < state.Count; to++ {
			p := ms.Prob(from, to)
			if p <= 0 {
				continue
			}
			rows = append(rows, model.MatrixRow{
				State:       from.Label(team),
				NextState:   to.Label(team),
				Probability: p,
			})
		}
	}
	return rows, nil
}

// AdjustmentExport sweeps the twelve single-metric improvement
// scenarios over a team's stored counts and flattens them to export
// rows in scenario order.
func (s *Service) AdjustmentExport(ctx context.Context, team, season string, pct float64) ([]model.AdjustedCount, error) {
	if _, err := s.activeStore(); err != nil {
		return nil, err
	}
	if team == "" {
		return nil, fmt.Errorf("%w: team is required", ErrInvalidRequest)
	}
	if pct <= 0 {
		return nil, fmt.Errorf("%w: adjustment_percentage %v must be positive", ErrInvalidRequest, pct)
	}
	if season == "" {
		season = s.defaultSeasonLocked()
	}

	counts, profile, rates, err := s.loadInputs(ctx, team, season)
	if err != nil {
		return nil, err
	}
	scenarios, err := markov.Sweep(counts, profile, rates, pct)
	if err != nil {
		return nil, err
	}

	out := make([]model.AdjustedCount, 0, len(scenarios)*len(counts))
	for _, sc := range scenarios {
		for _, tc := range sc.Counts {
			out = append(out, model.AdjustedCount{
				Team:           team,
				Season:         season,
				State:          tc.From.Label(team),
				NextState:      tc.To.Label(team),
				Count:          tc.Count,
				AdjustmentType: sc.Name,
				PossPerGame:    profile.PossPerGame,
			})
		}
	}
	return out, nil
}

// loadInputs reads everything one matrix build needs from the store.
// Unparseable stored labels surface as data errors.
func (s *Service) loadInputs(ctx context.Context, team, season string) ([]markov.TransitionCount, markov.Profile, markov.Rates, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, markov.Profile{}, nil, err
	}

	rows, err := store.TransitionCounts(ctx, team, season)
	if err != nil {
		return nil, markov.Profile{}, nil, err
	}
	counts := make([]markov.TransitionCount, 0, len(rows))
	for _, r := range rows {
		from, err := state.Parse(team, r.State)
		if err != nil {
			return nil, markov.Profile{}, nil, fmt.Errorf("%w: %v", markov.ErrData, err)
		}
		to, err := state.Parse(team, r.NextState)
		if err != nil {
			return nil, markov.Profile{}, nil, fmt.Errorf("%w: %v", markov.ErrData, err)
		}
		counts = append(counts, markov.TransitionCount{From: from, To: to, Count: r.Count})
	}

	stored, err := store.Profile(ctx, team, season)
	if err != nil {
		return nil, markov.Profile{}, nil, err
	}
	profile, err := markov.ProfileFromMetrics(stored)
	if err != nil {
		return nil, markov.Profile{}, nil, err
	}

	rates, err := store.Rates(ctx, team, season)
	if err != nil {
		return nil, markov.Profile{}, nil, err
	}
	if len(rates) == 0 {
		return counts, profile, markov.DefaultRates(), nil
	}
	return counts, profile, markov.Rates(rates), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"activeRuns":     len(s.runs),
		"defaultSeason":  s.defaultSeason,
		"defaultSeasons": s.defaultSeasons,
		"maxSeasons":     s.maxSeasons,
	}

	if s.started {
		teams := make([]string, 0, len(s.runs))
		for team := range s.runs {
			teams = append(teams, team)
		}
		stats["activeTeams"] = teams

		if storedTeams, transitions, err := s.store.Totals(context.Background()); err == nil {
			stats["storedTeams"] = storedTeams
			stats["storedTransitions"] = transitions
		}
	}

	return stats
}

// activeStore returns the store handle when the service is running.
func (s *Service) activeStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) defaultSeasonLocked() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultSeason
}
