package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lernquiz/lernquiz-go/internal/api/middleware"
	"github.com/lernquiz/lernquiz-go/internal/api/request"
	"github.com/lernquiz/lernquiz-go/internal/api/response"
	"github.com/lernquiz/lernquiz-go/internal/notify"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second
)

// EventsHandler serves the event stream and accepts progress reports
type EventsHandler struct {
	notifier *notify.Notifier
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(notifier *notify.Notifier) *EventsHandler {
	return &EventsHandler{
		notifier: notifier,
	}
}

// Stream handles GET /api/v1/events
// Holds the connection open and pushes server-sent events until the
// client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	registry := h.notifier.Registry()
	conn := registry.Connect()
	registry.Identify(conn.ID(), username)
	defer registry.Disconnect(conn.ID())

	// Send initial connection event
	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	// Current badge state so the client starts in sync
	h.notifier.PushFullConn(r.Context(), username, conn.ID())

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-conn.Send():
			if !ok {
				// Registry closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Send keepalive comment
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

// Progress handles POST /api/v1/events/progress
// Reports how many questions the caller has answered in a game so the
// opponent can watch it live.
func (h *EventsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	username := middleware.MustGetUser(r.Context())

	var req request.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.GameID == "" {
		WriteError(w, NewInvalidRequestError("gameId is required"))
		return
	}
	if req.Answered < 0 {
		WriteError(w, NewInvalidRequestError("answered must not be negative"))
		return
	}

	h.notifier.GameProgress(r.Context(), req.GameID, req.Answered, username)
	response.NoContent(w)
}
