// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/fastbreak/internal/domain/model"
)

// StreamHandler handles streaming simulation requests.
type StreamHandler struct {
	deps SimulateDependencies
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps SimulateDependencies) *StreamHandler {
	return &StreamHandler{deps: deps}
}

// seasonFrame is one completed season on the wire: the full season
// record plus statistics over everything completed so far.
type seasonFrame struct {
	model.SeasonRecord
	RunningStatistics *model.RunningStatistics `json:"running_statistics,omitempty"`
}

type finalFrame struct {
	Type       string                   `json:"type"`
	Statistics *model.RunningStatistics `json:"statistics"`
}

type cancelledFrame struct {
	Type             string                   `json:"type"`
	Message          string                   `json:"message"`
	SeasonsCompleted int                      `json:"seasons_completed"`
	Statistics       *model.RunningStatistics `json:"statistics,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandleStream handles POST /api/simulate/stream requests. Seasons
// arrive as server-sent events while the run plays; exactly one
// terminal frame closes the stream. A client that disconnects cancels
// the run through the request context.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate_stream"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrNoStreaming))
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	run, err := h.deps.RunSimulation(r.Context(), req.toModel())
	if err != nil {
		status, code := errorStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}

	// The matrix build is deferred into the run, so a data error
	// arrives as the first event rather than from RunSimulation.
	first, open := <-run.Events()
	if open && first.Kind == model.EventFailed {
		status, code := errorStatus(first.Err)
		writeError(w, status, code, Wrap(op, first.Err))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if open && !writeFrame(w, flusher, eventFrame(first)) {
		return
	}
	for ev := range run.Events() {
		if !writeFrame(w, flusher, eventFrame(ev)) {
			return
		}
	}
}

func eventFrame(ev model.Event) any {
	switch ev.Kind {
	case model.EventSeason:
		return seasonFrame{SeasonRecord: *ev.Season, RunningStatistics: ev.Running}
	case model.EventFinal:
		return finalFrame{Type: "final_statistics", Statistics: ev.Running}
	case model.EventCancelled:
		return cancelledFrame{
			Type:             "cancelled",
			Message:          "simulation cancelled by user",
			SeasonsCompleted: ev.Completed,
			Statistics:       ev.Running,
		}
	default:
		return errorFrame{Type: "error", Error: ev.Err.Error()}
	}
}

// writeFrame sends one SSE data frame. A false return means the client
// is gone and the stream should be abandoned.
func writeFrame(w http.ResponseWriter, flusher http.Flusher, frame any) bool {
	payload, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return false
	}
	flusher.Flush()
	return true
}
