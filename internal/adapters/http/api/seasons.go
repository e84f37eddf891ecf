// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// SeasonsDependencies defines the interface for season listing.
type SeasonsDependencies interface {
	Seasons(ctx context.Context) ([]string, error)
}

// SeasonsHandler handles season listing requests.
type SeasonsHandler struct {
	deps SeasonsDependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps SeasonsDependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

type seasonsResponse struct {
	Seasons []string `json:"seasons"`
}

// HandleGetSeasons handles GET /api/seasons requests.
func (h *SeasonsHandler) HandleGetSeasons(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_seasons"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	seasons, err := h.deps.Seasons(r.Context())
	if err != nil {
		status, code := errorStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	if seasons == nil {
		seasons = []string{}
	}
	writeJSON(w, http.StatusOK, seasonsResponse{Seasons: seasons})
}
