// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/fastbreak/internal/domain/model"
)

// ExportDependencies defines the interface for adjustment sweeps.
type ExportDependencies interface {
	AdjustmentExport(ctx context.Context, team, season string, pct float64) ([]model.AdjustedCount, error)
}

// ExportHandler handles adjustment export requests.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

type exportRequest struct {
	Team                 string  `json:"team"`
	Season               string  `json:"season"`
	AdjustmentPercentage float64 `json:"adjustment_percentage"`
}

// csvHeader is the column order of the export file.
var csvHeader = []string{"team", "season", "state", "next_state", "count", "adjustment_type", "poss_per_game"}

// HandleExport handles POST /api/adjustments/export requests: the
// twelve single-metric improvement scenarios swept over the team's
// stored counts, returned as a CSV download.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.adjustments_export"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	team := strings.TrimSpace(req.Team)
	if team == "" || req.AdjustmentPercentage <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	rows, err := h.deps.AdjustmentExport(r.Context(), team, strings.TrimSpace(req.Season), req.AdjustmentPercentage)
	if err != nil {
		status, code := errorStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}

	// The rows carry the resolved season even when the request left it
	// to the default.
	season := strings.TrimSpace(req.Season)
	if len(rows) > 0 {
		season = rows[0].Season
	}
	filename := fmt.Sprintf("%s_%s_%gpercent_adjustments.csv", team, season, req.AdjustmentPercentage)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, row := range rows {
		_ = cw.Write([]string{
			row.Team,
			row.Season,
			row.State,
			row.NextState,
			strconv.FormatFloat(row.Count, 'f', 2, 64),
			row.AdjustmentType,
			strconv.FormatFloat(row.PossPerGame, 'g', -1, 64),
		})
	}
	cw.Flush()
}
