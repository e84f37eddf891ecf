// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/fastbreak/internal/domain/model"
)

// MatrixDependencies defines the interface for matrix inspection.
type MatrixDependencies interface {
	BuildAdjustedMatrix(ctx context.Context, team, season string, adjustments map[string]float64) ([]model.MatrixRow, error)
}

// MatrixHandler handles transition matrix requests.
type MatrixHandler struct {
	deps MatrixDependencies
}

// NewMatrixHandler creates a new matrix handler.
func NewMatrixHandler(deps MatrixDependencies) *MatrixHandler {
	return &MatrixHandler{deps: deps}
}

type matrixRequest struct {
	Team        string             `json:"team"`
	Season      string             `json:"season"`
	Adjustments map[string]float64 `json:"adjustments"`
}

type matrixResponse struct {
	Team   string            `json:"team"`
	Season string            `json:"season,omitempty"`
	Rows   []model.MatrixRow `json:"rows"`
}

// HandleMatrix handles POST /api/matrix requests: it builds the base or
// adjusted matrix pair for inspection without simulating anything.
func (h *MatrixHandler) HandleMatrix(w http.ResponseWriter, r *http.Request) {
	const op = "api.matrix"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req matrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Team) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	rows, err := h.deps.BuildAdjustedMatrix(r.Context(), strings.TrimSpace(req.Team), strings.TrimSpace(req.Season), req.Adjustments)
	if err != nil {
		status, code := errorStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, matrixResponse{
		Team:   strings.TrimSpace(req.Team),
		Season: strings.TrimSpace(req.Season),
		Rows:   rows,
	})
}
