package handler

import (
	"net/http"

	"github.com/lernquiz/lernquiz-go/internal/api/middleware"
	"github.com/lernquiz/lernquiz-go/internal/api/response"
	"github.com/lernquiz/lernquiz-go/internal/services/badge"
)

// BadgeHandler handles badge endpoints
type BadgeHandler struct {
	badges *badge.Service
}

// NewBadgeHandler creates a new badge handler
func NewBadgeHandler(badges *badge.Service) *BadgeHandler {
	return &BadgeHandler{
		badges: badges,
	}
}

// Get handles GET /api/v1/badges
func (h *BadgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	counts, err := h.badges.Counters(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, counts)
}
