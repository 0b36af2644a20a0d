package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lernquiz/lernquiz-go/internal/api/middleware"
	"github.com/lernquiz/lernquiz-go/internal/api/request"
	"github.com/lernquiz/lernquiz-go/internal/api/response"
	"github.com/lernquiz/lernquiz-go/internal/services/stats"
)

// StatsHandler handles stats endpoints
type StatsHandler struct {
	stats *stats.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *stats.Service) *StatsHandler {
	return &StatsHandler{
		stats: stats,
	}
}

// Opponents handles GET /api/v1/stats/opponents
func (h *StatsHandler) Opponents(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	opponents, err := h.stats.Opponents(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OpponentStatsResponse{Opponents: opponents})
}

// Overall handles GET /api/v1/stats/overall
func (h *StatsHandler) Overall(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	overall, err := h.stats.Overall(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, overall)
}

// RecordAttempts handles POST /api/v1/stats/attempts
func (h *StatsHandler) RecordAttempts(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	var req request.AttemptsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	recorded, err := h.stats.RecordAttempts(r.Context(), username, req.Attempts)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AttemptsResponse{Recorded: recorded})
}
