package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/fastbreak/pkg/metrics"
)

// SQLiteStore is the Store implementation backed by an embedded
// SQLite database. A single handle is safe for concurrent use; WAL
// mode keeps readers from blocking the seeder.
type SQLiteStore struct {
	db *sql.DB

	metricsUpdateInterval time.Duration
	busyTimeout           time.Duration

	// Background metrics updater management.
	wg       sync.WaitGroup
	stopChan chan struct{}
	closed   bool
	mu       sync.Mutex
}

// Open opens or creates the possession database at the given path and
// runs schema migrations.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		metricsUpdateInterval: 5 * time.Second,
		busyTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait for locks instead of immediately failing
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s.db = db
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	migrations := []string{
		// Aggregated possession transition tallies per team and season.
		`CREATE TABLE IF NOT EXISTS possession_transitions (
			season     TEXT NOT NULL,
			team       TEXT NOT NULL,
			state      TEXT NOT NULL,
			next_state TEXT NOT NULL,
			count      REAL NOT NULL,
			PRIMARY KEY (season, team, state, next_state)
		)`,

		// Adjustable percentages, attempt counts, and pace per team.
		`CREATE TABLE IF NOT EXISTS team_profiles (
			season TEXT NOT NULL,
			team   TEXT NOT NULL,
			metric TEXT NOT NULL,
			value  REAL NOT NULL,
			PRIMARY KEY (season, team, metric)
		)`,

		// Per-transition redistribution rates; absent rows fall back
		// to league defaults at the caller.
		`CREATE TABLE IF NOT EXISTS adjustment_rates (
			season TEXT NOT NULL,
			team   TEXT NOT NULL,
			rate   TEXT NOT NULL,
			value  REAL NOT NULL,
			PRIMARY KEY (season, team, rate)
		)`,
	}

	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seasons lists the seasons with stored transition data, most recent
// label first.
func (s *SQLiteStore) Seasons(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery(time.Since(start).Seconds()) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT season FROM possession_transitions ORDER BY season DESC`)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []string
	for rows.Next() {
		var season string
		if err := rows.Scan(&season); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seasons: %w", err)
	}
	return seasons, nil
}

// Teams lists the teams with stored transition data for a season in
// alphabetical order.
func (s *SQLiteStore) Teams(ctx context.Context, season string) ([]string, error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery(time.Since(start).Seconds()) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT team FROM possession_transitions WHERE season = ? ORDER BY team ASC`,
		season)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

// TransitionCounts returns the aggregated possession transitions for a
// team's season.
func (s *SQLiteStore) TransitionCounts(ctx context.Context, team, season string) ([]TransitionRow, error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery(time.Since(start).Seconds()) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT state, next_state, count FROM possession_transitions
		 WHERE season = ? AND team = ?
		 ORDER BY state ASC, next_state ASC`,
		season, team)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("failed to load transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionRow
	for rows.Next() {
		var r TransitionRow
		if err := rows.Scan(&r.State, &r.NextState, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transitions: %w", err)
	}
	if len(out) == 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	return out, nil
}

// Profile returns the stored metric profile for a team's season.
func (s *SQLiteStore) Profile(ctx context.Context, team, season string) (map[string]float64, error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery(time.Since(start).Seconds()) }()

	out, err := s.keyedValues(ctx,
		`SELECT metric, value FROM team_profiles WHERE season = ? AND team = ?`,
		season, team)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if len(out) == 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	return out, nil
}

// Rates returns the stored adjustment rates for a team's season. An
// empty map means no overrides are stored.
func (s *SQLiteStore) Rates(ctx context.Context, team, season string) (map[string]float64, error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery(time.Since(start).Seconds()) }()

	out, err := s.keyedValues(ctx,
		`SELECT rate, value FROM adjustment_rates WHERE season = ? AND team = ?`,
		season, team)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	return out, nil
}

// keyedValues runs a two-column (TEXT, REAL) query and collects the
// result into a map.
func (s *SQLiteStore) keyedValues(ctx context.Context, query string, args ...any) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// PutTransitions replaces the stored transitions for a team's season.
func (s *SQLiteStore) PutTransitions(ctx context.Context, team, season string, transitions []TransitionRow) error {
	start := time.Now()
	defer func() { metrics.ObserveStoreWrite(time.Since(start).Seconds()) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM possession_transitions WHERE season = ? AND team = ?`,
		season, team); err != nil {
		return fmt.Errorf("failed to clear transitions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO possession_transitions (season, team, state, next_state, count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range transitions {
		if _, err := stmt.ExecContext(ctx, season, team, r.State, r.NextState, r.Count); err != nil {
			return fmt.Errorf("failed to insert transition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transitions: %w", err)
	}
	return nil
}

// PutProfile replaces the stored metric profile for a team's season.
func (s *SQLiteStore) PutProfile(ctx context.Context, team, season string, profile map[string]float64) error {
	start := time.Now()
	defer func() { metrics.ObserveStoreWrite(time.Since(start).Seconds()) }()

	return s.putKeyed(ctx, "team_profiles", "metric", team, season, profile)
}

// PutRates replaces the stored adjustment rates for a team's season.
func (s *SQLiteStore) PutRates(ctx context.Context, team, season string, rates map[string]float64) error {
	start := time.Now()
	defer func() { metrics.ObserveStoreWrite(time.Since(start).Seconds()) }()

	return s.putKeyed(ctx, "adjustment_rates", "rate", team, season, rates)
}

// putKeyed replaces the keyed values for a team's season in one of the
// two (TEXT key, REAL value) tables. Table and column names come from
// the callers above, never from user input.
func (s *SQLiteStore) putKeyed(ctx context.Context, table, keyColumn, team, season string, values map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE season = ? AND team = ?`, table),
		season, team); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (season, team, %s, value) VALUES (?, ?, ?, ?)`, table, keyColumn))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, season, team, key, value); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// Totals reports how many teams and transition rows the store holds.
func (s *SQLiteStore) Totals(ctx context.Context) (int, int, error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery(time.Since(start).Seconds()) }()

	var teams int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT team) FROM possession_transitions`).Scan(&teams); err != nil {
		return 0, 0, fmt.Errorf("failed to count teams: %w", err)
	}

	var transitions int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM possession_transitions`).Scan(&transitions); err != nil {
		return 0, 0, fmt.Errorf("failed to count transitions: %w", err)
	}

	return teams, transitions, nil
}

// startMetricsUpdater starts a background goroutine that refreshes the
// stored-data gauges at the configured interval.
func (s *SQLiteStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

// updateMetrics refreshes the stored-data gauges.
func (s *SQLiteStore) updateMetrics(ctx context.Context) {
	teams, transitions, err := s.Totals(ctx)
	if err != nil {
		return
	}
	metrics.UpdateStoredTeams(teams)
	metrics.UpdateStoredTransitions(transitions)
}

// Close stops the metrics updater and closes the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	return s.db.Close()
}
