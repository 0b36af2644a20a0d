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
	"github.com/lernquiz/lernquiz-go/internal/services/messages"
)

// MessagesHandler handles message endpoints
type MessagesHandler struct {
	messages *messages.Service
	notifier *notify.Notifier
}

// NewMessagesHandler creates a new messages handler
func NewMessagesHandler(messages *messages.Service, notifier *notify.Notifier) *MessagesHandler {
	return &MessagesHandler{
		messages: messages,
		notifier: notifier,
	}
}

// Send handles POST /api/v1/messages
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	var req request.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	msg, err := h.messages.Send(r.Context(), username, req.To, req.Body)
	if err != nil {
		WriteError(w, err)
		return
	}

	if count, err := h.messages.UnreadCount(r.Context(), msg.To); err == nil {
		h.notifier.PushDelta(r.Context(), msg.To, map[string]any{"unreadMessages": count})
	}

	response.JSON(w, http.StatusCreated, response.MessageResponseFromModel(msg))
}

// MarkRead handles PATCH /api/v1/messages/{id}/read
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())
	id := model.MessageID(mux.Vars(r)["id"])

	msg, err := h.messages.MarkRead(r.Context(), id, username)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.notifier.PushFull(r.Context(), username)

	response.JSON(w, http.StatusOK, response.MessageResponseFromModel(msg))
}
