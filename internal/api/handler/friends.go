package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lernquiz/lernquiz-go/internal/api/middleware"
	"github.com/lernquiz/lernquiz-go/internal/api/request"
	"github.com/lernquiz/lernquiz-go/internal/api/response"
	"github.com/lernquiz/lernquiz-go/internal/notify"
	"github.com/lernquiz/lernquiz-go/internal/services/friends"
)

// FriendsHandler handles friend endpoints
type FriendsHandler struct {
	friends  *friends.Manager
	notifier *notify.Notifier
}

// NewFriendsHandler creates a new friends handler
func NewFriendsHandler(friends *friends.Manager, notifier *notify.Notifier) *FriendsHandler {
	return &FriendsHandler{
		friends:  friends,
		notifier: notifier,
	}
}

// List handles GET /api/v1/friends
func (h *FriendsHandler) List(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	overview, err := h.friends.ListWithStatus(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendsResponseFromOverview(overview))
}

// Search handles GET /api/v1/friends/search?q=
func (h *FriendsHandler) Search(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	query := r.URL.Query().Get("q")

	users, err := h.friends.Search(r.Context(), username, query)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SearchResponse{Users: users})
}

// SendRequest handles POST /api/v1/friends/requests
func (h *FriendsHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	var req request.FriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	fr, matched, err := h.friends.SendRequest(r.Context(), username, req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.notifier.PushFull(r.Context(), fr.Target)
	if matched {
		h.notifier.PushFull(r.Context(), fr.Requester)
	}

	response.JSON(w, http.StatusCreated, response.FriendRequestResponse{
		From:    fr.Requester,
		To:      fr.Target,
		Status:  string(fr.Status),
		Matched: matched,
	})
}

// Respond handles POST /api/v1/friends/requests/respond
func (h *FriendsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	var req request.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.From == "" {
		WriteError(w, NewInvalidRequestError("from is required"))
		return
	}

	fr, err := h.friends.Respond(r.Context(), username, req.From, req.Accept)
	if err != nil {
		WriteError(w, err)
		return
	}

	// My own pending count changed either way; the requester only
	// cares when they gained a friend
	h.notifier.PushFull(r.Context(), username)
	if req.Accept {
		h.notifier.PushFull(r.Context(), fr.Requester)
	}

	response.JSON(w, http.StatusOK, response.FriendRequestResponse{
		From:   fr.Requester,
		To:     fr.Target,
		Status: string(fr.Status),
	})
}

// Remove handles DELETE /api/v1/friends/{name}
func (h *FriendsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	other := mux.Vars(r)["name"]

	if err := h.friends.Remove(r.Context(), username, other); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
