package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fastbreak/internal/domain/model"
	"github.com/okian/fastbreak/internal/domain/stats"
	"github.com/okian/fastbreak/pkg/metrics"
)

// ErrRunActive reports that a simulation is already in flight for the
// team.
var ErrRunActive = errors.New("simulation already active for team")

// defaultEventBuffer sizes a run's event channel.
const defaultEventBuffer = 4

// BuildFunc assembles the season simulator when the run starts.
// Building on the run's own goroutine keeps data loading off the
// caller; a failed build fails the run with zero season events.
type BuildFunc func(ctx context.Context) (*SeasonSimulator, error)

// Run drives one simulation request through its seasons. It emits one
// event per completed season, each carrying running statistics over
// everything completed so far, and exactly one terminal event. The
// event channel closes after the terminal event.
type Run struct {
	id      uuid.UUID
	team    string
	seasons int
	build   BuildFunc

	mu     sync.RWMutex
	status model.Status

	started   atomic.Bool
	cancelled atomic.Bool
	events    chan model.Event
	done      chan struct{}
}

// NewRun prepares a run in the pending state.
func NewRun(team string, seasons int, build BuildFunc, opts ...RunOption) *Run {
	r := &Run{
		id:      uuid.New(),
		team:    team,
		seasons: seasons,
		build:   build,
		status:  model.StatusPending,
		events:  make(chan model.Event, defaultEventBuffer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the run identifier.
func (r *Run) ID() uuid.UUID { return r.id }

// Team returns the team the run simulates.
func (r *Run) Team() string { return r.team }

// Seasons returns the requested season count.
func (r *Run) Seasons() int { return r.seasons }

// Status returns the current lifecycle state.
func (r *Run) Status() model.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *Run) setStatus(s model.Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

// Events returns the run's event stream.
func (r *Run) Events() <-chan model.Event { return r.events }

// Done closes when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// Cancel requests a stop at the next season boundary; completed
// seasons are never discarded and a season in flight finishes. It
// reports whether the run was still in flight.
func (r *Run) Cancel() bool {
	r.cancelled.Store(true)
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Start launches the run loop. A run starts at most once; the context
// bounds the consumer's interest, not a wall-clock deadline.
func (r *Run) Start(ctx context.Context) {
	if r.started.Swap(true) {
		return
	}
	go r.loop(ctx)
}

func (r *Run) loop(ctx context.Context) {
	defer close(r.done)
	defer close(r.events)

	startedAt := time.Now()
	r.setStatus(model.StatusRunning)
	metrics.RecordRunStarted()
	metrics.IncActiveRuns()
	defer metrics.DecActiveRuns()

	buildStart := time.Now()
	simulator, err := r.build(ctx)
	metrics.ObserveMatrixBuildDuration(time.Since(buildStart).Seconds())
	if err != nil {
		r.setStatus(model.StatusFailed)
		metrics.RecordRunFailed()
		r.emit(ctx, model.Event{Kind: model.EventFailed, Err: err})
		return
	}

	totals := make([]float64, 0, r.seasons)
	for season := 1; season <= r.seasons; season++ {
		if r.cancelled.Load() || ctx.Err() != nil {
			running := stats.Summarize(totals)
			r.setStatus(model.StatusCancelled)
			metrics.RecordRunCancelled()
			r.emit(ctx, model.Event{Kind: model.EventCancelled, Running: &running, Completed: len(totals)})
			return
		}

		seasonStart := time.Now()
		record := simulator.Simulate(season)
		metrics.ObserveSeasonDuration(time.Since(seasonStart).Seconds())
		metrics.RecordSeasonSimulated()

		totals = append(totals, record.ExpectedWins)
		running := stats.Summarize(totals)
		ev := model.Event{Kind: model.EventSeason, Season: &record, Running: &running, Completed: len(totals)}
		if !r.emit(ctx, ev) {
			r.setStatus(model.StatusCancelled)
			metrics.RecordRunCancelled()
			return
		}
	}

	final := stats.Summarize(totals)
	r.setStatus(model.StatusCompleted)
	metrics.RecordRunCompleted()
	metrics.ObserveRunDuration(time.Since(startedAt).Seconds())
	r.emit(ctx, model.Event{Kind: model.EventFinal, Running: &final, Completed: len(totals)})
}

// emit delivers an event unless the consumer context ends first. It
// reports whether delivery happened.
func (r *Run) emit(ctx context.Context, ev model.Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
