package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lernquiz/lernquiz-go/internal/api/middleware"
	"github.com/lernquiz/lernquiz-go/internal/api/request"
	"github.com/lernquiz/lernquiz-go/internal/api/response"
	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/notify"
	"github.com/lernquiz/lernquiz-go/internal/services/badge"
	"github.com/lernquiz/lernquiz-go/internal/services/game"
)

// GameHandler handles game endpoints
type GameHandler struct {
	games    *game.Controller
	badges   *badge.Service
	notifier *notify.Notifier
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *game.Controller, badges *badge.Service, notifier *notify.Notifier) *GameHandler {
	return &GameHandler{
		games:    games,
		badges:   badges,
		notifier: notifier,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	g, err := h.games.CreateGame(r.Context(), username, req.FriendName, req.Questions)
	if err != nil {
		WriteError(w, err)
		return
	}

	// The friend has a new open game waiting
	h.pushOpenGames(r, g.FriendName)

	response.JSON(w, http.StatusCreated, response.GameDetailFromModel(g, username))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !g.IsParticipant(username) {
		WriteError(w, model.ErrNotParticipant)
		return
	}

	response.JSON(w, http.StatusOK, response.GameDetailFromModel(g, username))
}

// ListOpen handles GET /api/v1/games/open
func (h *GameHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	views, unseen, err := h.games.ListOpen(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OpenGamesResponse{Games: views, Unseen: unseen})
}

// ListFinished handles GET /api/v1/games/finished
func (h *GameHandler) ListFinished(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	views, unseen, err := h.games.ListFinished(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FinishedGamesResponse{Games: views, Unseen: unseen})
}

// SubmitAnswers handles PATCH /api/v1/games/{id}/answer
func (h *GameHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	var req request.SubmitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	g, finished, err := h.games.SubmitAnswers(r.Context(), id, username, req.Answers)
	if err != nil {
		WriteError(w, err)
		return
	}

	side, _ := g.SideOf(username)
	if finished {
		// Both sides see a fresh result; recompute their badges
		h.notifier.PushFull(r.Context(), g.HostName)
		h.notifier.PushFull(r.Context(), g.FriendName)
	} else {
		h.notifier.GameProgress(r.Context(), g.ID, g.AnsweredCount(side), username)
	}

	response.JSON(w, http.StatusOK, response.SubmitAnswersResponse{
		Game:     response.GameDetailFromModel(g, username),
		Finished: finished,
	})
}

// MarkSeen handles PATCH /api/v1/games/{id}/seen
func (h *GameHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.games.MarkSeen(r.Context(), id, username)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.notifier.PushFull(r.Context(), username)

	response.JSON(w, http.StatusOK, response.GameDetailFromModel(g, username))
}

// Finish handles POST /api/v1/games/{id}/finish
func (h *GameHandler) Finish(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.games.FinishManually(r.Context(), id, username)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.notifier.PushFull(r.Context(), g.HostName)
	h.notifier.PushFull(r.Context(), g.FriendName)

	response.JSON(w, http.StatusOK, response.GameDetailFromModel(g, username))
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.games.Delete(r.Context(), id, username)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.notifier.PushFull(r.Context(), g.HostName)
	h.notifier.PushFull(r.Context(), g.FriendName)

	response.NoContent(w)
}

// pushOpenGames pushes an updated open-game count to a user
func (h *GameHandler) pushOpenGames(r *http.Request, username string) {
	counts, err := h.badges.Counters(r.Context(), username)
	if err != nil {
		return
	}
	h.notifier.PushDelta(r.Context(), username, map[string]any{"openGames": counts.OpenGames})
}
