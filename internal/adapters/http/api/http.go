// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/okian/fastbreak/internal/adapters/repository"
	"github.com/okian/fastbreak/internal/domain/markov"
	"github.com/okian/fastbreak/internal/domain/model"
	"github.com/okian/fastbreak/internal/domain/sim"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Teams(ctx context.Context, season string) ([]string, string, error)
	Seasons(ctx context.Context) ([]string, error)
	MetricProfile(ctx context.Context, team, season string) (map[string]float64, map[string]float64, error)
	RunSimulation(ctx context.Context, req model.SimulationRequest) (*sim.Run, error)
	Cancel(ctx context.Context, team string) bool
	BuildAdjustedMatrix(ctx context.Context, team, season string, adjustments map[string]float64) ([]model.MatrixRow, error)
	AdjustmentExport(ctx context.Context, team, season string, pct float64) ([]model.AdjustedCount, error)
}

// Server wires HTTP routes for the simulation API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	teamsHandler    *TeamsHandler
	seasonsHandler  *SeasonsHandler
	profileHandler  *ProfileHandler
	simulateHandler *SimulateHandler
	streamHandler   *StreamHandler
	cancelHandler   *CancelHandler
	matrixHandler   *MatrixHandler
	exportHandler   *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		teamsHandler:    NewTeamsHandler(deps),
		seasonsHandler:  NewSeasonsHandler(deps),
		profileHandler:  NewProfileHandler(deps),
		simulateHandler: NewSimulateHandler(deps),
		streamHandler:   NewStreamHandler(deps),
		cancelHandler:   NewCancelHandler(deps),
		matrixHandler:   NewMatrixHandler(deps),
		exportHandler:   NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/teams", MetricsMiddleware(s.teamsHandler.HandleGetTeams, "teams"))
	mux.HandleFunc("/api/seasons", MetricsMiddleware(s.seasonsHandler.HandleGetSeasons, "seasons"))
	mux.HandleFunc("/api/metrics", MetricsMiddleware(s.profileHandler.HandleGetMetrics, "metrics"))
	mux.HandleFunc("/api/simulate", MetricsMiddleware(s.simulateHandler.HandleSimulate, "simulate"))
	mux.HandleFunc("/api/simulate/stream", MetricsMiddleware(s.streamHandler.HandleStream, "simulate_stream"))
	mux.HandleFunc("/api/simulate/cancel", MetricsMiddleware(s.cancelHandler.HandleCancel, "simulate_cancel"))
	mux.HandleFunc("/api/matrix", MetricsMiddleware(s.matrixHandler.HandleMatrix, "matrix"))
	mux.HandleFunc("/api/adjustments/export", MetricsMiddleware(s.exportHandler.HandleExport, "adjustments_export"))
}

// simulateRequest mirrors the OpenAPI schema for the simulate and
// stream endpoints.
type simulateRequest struct {
	Team        string             `json:"team"`
	Season      string             `json:"season"`
	NumSeasons  int                `json:"num_seasons"`
	Adjustments map[string]float64 `json:"adjustments"`
	Seed        *int64             `json:"seed"`
}

func (r simulateRequest) validate() error {
	if strings.TrimSpace(r.Team) == "" {
		return errors.New("missing team")
	}
	if r.NumSeasons < 0 {
		return errors.New("num_seasons must be positive")
	}
	for key, v := range r.Adjustments {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return errors.New("adjustment " + key + " outside [0,1]")
		}
	}
	return nil
}

func (r simulateRequest) toModel() model.SimulationRequest {
	return model.SimulationRequest{
		Team:        strings.TrimSpace(r.Team),
		Season:      strings.TrimSpace(r.Season),
		Seasons:     r.NumSeasons,
		Adjustments: r.Adjustments,
		Seed:        r.Seed,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// errorStatus translates engine sentinels into transport status codes:
// validation problems are the caller's fault, missing history is a 404,
// a second run for a busy team conflicts, anything else is internal.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, markov.ErrValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, markov.ErrData):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, sim.ErrRunActive):
		return http.StatusConflict, "run_active"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
