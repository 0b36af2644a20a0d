package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/lernquiz/lernquiz-go/internal/model"
	"github.com/lernquiz/lernquiz-go/internal/storage"
)

// Event names pushed over the stream
const (
	EventNotificationReset = "notification_reset"
	EventNotification      = "notification"
	EventGameProgress      = "game_progress"
)

// BadgeSource computes the full badge counters for a user
type BadgeSource interface {
	Counters(ctx context.Context, username string) (model.BadgeCounts, error)
}

// Notifier pushes badge updates and game progress to connected clients.
// Pushes are fire and forget; failures are logged, never surfaced to the
// request that triggered them.
type Notifier struct {
	registry *Registry
	badges   BadgeSource
	storage  storage.Storage
	logger   *slog.Logger
}

// NewNotifier creates a Notifier
func NewNotifier(registry *Registry, badges BadgeSource, storage storage.Storage, logger *slog.Logger) *Notifier {
	return &Notifier{
		registry: registry,
		badges:   badges,
		storage:  storage,
		logger:   logger.With(slog.String("component", "notify")),
	}
}

// Registry returns the underlying connection registry
func (n *Notifier) Registry() *Registry {
	return n.registry
}

// PushFull recomputes all badge counters for a user and pushes a reset
// event to every connection they hold
func (n *Notifier) PushFull(ctx context.Context, username string) {
	if n.registry.UserConnectionCount(username) == 0 {
		return
	}

	counts, err := n.badges.Counters(ctx, username)
	if err != nil {
		n.logger.Error("badge recompute failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return
	}

	data, err := json.Marshal(counts)
	if err != nil {
		n.logger.Error("badge marshal failed", slog.String("error", err.Error()))
		return
	}
	n.registry.SendToUser(username, FormatEvent(EventNotificationReset, string(data)))
}

// PushFullConn pushes a reset event to a single connection. Used for the
// initial state right after a connection identifies itself.
func (n *Notifier) PushFullConn(ctx context.Context, username string, id ConnID) {
	counts, err := n.badges.Counters(ctx, username)
	if err != nil {
		n.logger.Error("badge recompute failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return
	}

	data, err := json.Marshal(counts)
	if err != nil {
		n.logger.Error("badge marshal failed", slog.String("error", err.Error()))
		return
	}
	n.registry.SendToConn(id, FormatEvent(EventNotificationReset, string(data)))
}

// PushDelta pushes a partial badge update to a user, e.g. {"openGames": 3}
func (n *Notifier) PushDelta(ctx context.Context, username string, delta map[string]any) {
	if n.registry.UserConnectionCount(username) == 0 {
		return
	}

	data, err := json.Marshal(delta)
	if err != nil {
		n.logger.Error("delta marshal failed", slog.String("error", err.Error()))
		return
	}
	n.registry.SendToUser(username, FormatEvent(EventNotification, string(data)))
}

// GameProgress tells a player's opponent how far they have got through a
// game. The opponent's openGames counter moves with the progress, so a
// recomputed delta goes out ahead of the raw event. The sender never
// receives their own progress event.
func (n *Notifier) GameProgress(ctx context.Context, gameID model.GameID, answered int, from string) {
	game, err := n.storage.GetGame(ctx, gameID)
	if err != nil {
		n.logger.Warn("progress push skipped - game lookup failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()))
		return
	}
	if !game.IsParticipant(from) {
		return
	}
	opponent := game.Opponent(from)
	if n.registry.UserConnectionCount(opponent) == 0 {
		return
	}

	counts, err := n.badges.Counters(ctx, opponent)
	if err != nil {
		n.logger.Error("badge recompute failed",
			slog.String("username", opponent),
			slog.String("error", err.Error()))
	} else {
		n.PushDelta(ctx, opponent, map[string]any{"openGames": counts.OpenGames})
	}

	payload := map[string]any{
		"gameId":   game.ID,
		"answered": answered,
		"from":     from,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("progress marshal failed", slog.String("error", err.Error()))
		return
	}
	n.registry.SendToUser(opponent, FormatEvent(EventGameProgress, string(data)))
}

// FormatEvent formats a server-sent event with a name and data payload.
// Multi-line data gets a "data: " prefix on each line.
func FormatEvent(eventName, data string) []byte {
	msg := "event: " + eventName + "\n"
	for _, line := range splitLines(data) {
		msg += "data: " + line + "\n"
	}
	msg += "\n"
	return []byte(msg)
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	var lines []string
	var current string
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}
