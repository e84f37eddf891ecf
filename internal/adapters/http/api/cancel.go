// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// CancelDependencies defines the interface for cancelling runs.
type CancelDependencies interface {
	Cancel(ctx context.Context, team string) bool
}

// CancelHandler handles simulation cancellation requests.
type CancelHandler struct {
	deps CancelDependencies
}

// NewCancelHandler creates a new cancel handler.
func NewCancelHandler(deps CancelDependencies) *CancelHandler {
	return &CancelHandler{deps: deps}
}

type cancelRequest struct {
	Team string `json:"team"`
}

type cancelResponse struct {
	Team      string `json:"team"`
	WasActive bool   `json:"was_active"`
	Message   string `json:"message"`
}

// HandleCancel handles POST /api/simulate/cancel requests. Cancellation
// is idempotent: asking twice, or asking for a team with nothing in
// flight, is not an error.
func (h *CancelHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate_cancel"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	team := strings.TrimSpace(req.Team)
	if team == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	active := h.deps.Cancel(r.Context(), team)
	message := fmt.Sprintf("no active simulation found for team: %s", team)
	if active {
		message = fmt.Sprintf("simulation cancelled for team: %s", team)
	}
	writeJSON(w, http.StatusOK, cancelResponse{Team: team, WasActive: active, Message: message})
}
