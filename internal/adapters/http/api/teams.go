// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// TeamsDependencies defines the interface for team listing.
type TeamsDependencies interface {
	Teams(ctx context.Context, season string) ([]string, string, error)
}

// TeamsHandler handles team listing requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

type teamsResponse struct {
	Teams  []string `json:"teams"`
	Season string   `json:"season"`
}

// HandleGetTeams handles GET /api/teams?season= requests. An omitted
// season resolves to the configured default.
func (h *TeamsHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_teams"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	teams, season, err := h.deps.Teams(r.Context(), r.URL.Query().Get("season"))
	if err != nil {
		status, code := errorStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	if teams == nil {
		teams = []string{}
	}
	writeJSON(w, http.StatusOK, teamsResponse{Teams: teams, Season: season})
}
