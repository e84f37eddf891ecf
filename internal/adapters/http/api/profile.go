// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// ProfileDependencies defines the interface for baseline profile reads.
type ProfileDependencies interface {
	MetricProfile(ctx context.Context, team, season string) (map[string]float64, map[string]float64, error)
}

// ProfileHandler handles baseline metric profile requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type profileResponse struct {
	Team            string             `json:"team"`
	Season          string             `json:"season,omitempty"`
	Metrics         map[string]float64 `json:"metrics"`
	AdjustmentRates map[string]float64 `json:"adjustment_rates"`
}

// HandleGetMetrics handles GET /api/metrics?team=&season= requests. The
// response carries everything an adjustment UI needs: the adjustable
// percentages, the attempt counts behind them, the per-transition
// inflow rates and the team's pace.
func (h *ProfileHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_metrics"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	team := r.URL.Query().Get("team")
	if team == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	season := r.URL.Query().Get("season")

	metrics, rates, err := h.deps.MetricProfile(r.Context(), team, season)
	if err != nil {
		status, code := errorStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		Team:            team,
		Season:          season,
		Metrics:         metrics,
		AdjustmentRates: rates,
	})
}
