// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/fastbreak/internal/domain/model"
	"github.com/okian/fastbreak/internal/domain/sim"
)

// SimulateDependencies defines the interface for starting runs.
type SimulateDependencies interface {
	RunSimulation(ctx context.Context, req model.SimulationRequest) (*sim.Run, error)
}

// SimulateHandler handles synchronous simulation requests.
type SimulateHandler struct {
	deps SimulateDependencies
}

// NewSimulateHandler creates a new simulate handler.
func NewSimulateHandler(deps SimulateDependencies) *SimulateHandler {
	return &SimulateHandler{deps: deps}
}

// seasonSummary is the compact per-season row of the synchronous
// response; full game logs only travel on the stream endpoint.
type seasonSummary struct {
	Season            int     `json:"season"`
	FinalExpectedWins float64 `json:"final_expected_wins"`
	TotalWins         int     `json:"total_wins"`
	WinPercentage     float64 `json:"win_percentage"`
}

type simulateResponse struct {
	Seasons    []seasonSummary          `json:"seasons"`
	Statistics *model.RunningStatistics `json:"statistics"`
}

// HandleSimulate handles POST /api/simulate requests. It plays every
// requested season before answering; a run that fails to build reports
// its cause instead of a partial result.
func (h *SimulateHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
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

	seasons := make([]seasonSummary, 0, run.Seasons())
	var final *model.RunningStatistics
	for ev := range run.Events() {
		switch ev.Kind {
		case model.EventSeason:
			seasons = append(seasons, seasonSummary{
				Season:            ev.Season.Season,
				FinalExpectedWins: ev.Season.ExpectedWins,
				TotalWins:         ev.Season.Wins,
				WinPercentage:     ev.Season.WinPercentage,
			})
		case model.EventFinal, model.EventCancelled:
			final = ev.Running
		case model.EventFailed:
			status, code := errorStatus(ev.Err)
			writeError(w, status, code, Wrap(op, ev.Err))
			return
		}
	}

	writeJSON(w, http.StatusOK, simulateResponse{Seasons: seasons, Statistics: final})
}
