package model

// Status is the lifecycle state of a simulation run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// EventKind discriminates the items on a run's event stream.
type EventKind string

const (
	// EventSeason carries one finished season.
	EventSeason EventKind = "season"
	// EventFinal closes a run that completed every requested season.
	EventFinal EventKind = "final_statistics"
	// EventCancelled closes a run stopped at a season boundary.
	EventCancelled EventKind = "cancelled"
	// EventFailed closes a run whose simulator could not be built or
	// whose loop errored.
	EventFailed EventKind = "error"
)

// Event is one item on a run's event stream. Season events carry the
// finished season plus statistics over everything completed so far;
// exactly one terminal event closes every stream.
type Event struct {
	Kind      EventKind
	Season    *SeasonRecord
	Running   *RunningStatistics
	Completed int
	Err       error
}

// Terminal reports whether the event closes the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventFinal || e.Kind == EventCancelled || e.Kind == EventFailed
}

// SimulationRequest is a validated instruction to simulate a batch of
// seasons for one team.
type SimulationRequest struct {
	Team        string
	Season      string
	Seasons     int
	Adjustments map[string]float64
	Seed        *int64
}
