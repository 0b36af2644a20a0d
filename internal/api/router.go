package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lernquiz/lernquiz-go/internal/api/handler"
	apimiddleware "github.com/lernquiz/lernquiz-go/internal/api/middleware"
	"github.com/lernquiz/lernquiz-go/internal/middleware"
	"github.com/lernquiz/lernquiz-go/internal/notify"
	"github.com/lernquiz/lernquiz-go/internal/services/account"
	"github.com/lernquiz/lernquiz-go/internal/services/badge"
	"github.com/lernquiz/lernquiz-go/internal/services/friends"
	"github.com/lernquiz/lernquiz-go/internal/services/game"
	"github.com/lernquiz/lernquiz-go/internal/services/messages"
	"github.com/lernquiz/lernquiz-go/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AccountService *account.Service
	GameController *game.Controller
	FriendManager  *friends.Manager
	BadgeService   *badge.Service
	MessageService *messages.Service
	StatsService   *stats.Service
	Notifier       *notify.Notifier
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AccountService)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.BadgeService, cfg.Notifier)
	friendsHandler := handler.NewFriendsHandler(cfg.FriendManager, cfg.Notifier)
	badgeHandler := handler.NewBadgeHandler(cfg.BadgeService)
	messagesHandler := handler.NewMessagesHandler(cfg.MessageService, cfg.Notifier)
	statsHandler := handler.NewStatsHandler(cfg.StatsService)
	eventsHandler := handler.NewEventsHandler(cfg.Notifier)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.AccountService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)
	metricsMiddleware := middleware.Metrics()

	// Prometheus scrape endpoint, outside the API prefix
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(metricsMiddleware)

	// Auth routes (no auth required for registering/logging in)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware)
	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	// Game routes
	authed.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/games/open", gameHandler.ListOpen).Methods(http.MethodGet)
	authed.HandleFunc("/games/finished", gameHandler.ListFinished).Methods(http.MethodGet)
	authed.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/games/{id}", gameHandler.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/games/{id}/answer", gameHandler.SubmitAnswers).Methods(http.MethodPatch)
	authed.HandleFunc("/games/{id}/seen", gameHandler.MarkSeen).Methods(http.MethodPatch)
	authed.HandleFunc("/games/{id}/finish", gameHandler.Finish).Methods(http.MethodPost)

	// Friend routes
	authed.HandleFunc("/friends", friendsHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/friends/search", friendsHandler.Search).Methods(http.MethodGet)
	authed.HandleFunc("/friends/requests", friendsHandler.SendRequest).Methods(http.MethodPost)
	authed.HandleFunc("/friends/requests/respond", friendsHandler.Respond).Methods(http.MethodPost)
	authed.HandleFunc("/friends/{name}", friendsHandler.Remove).Methods(http.MethodDelete)

	// Badge routes
	authed.HandleFunc("/badges", badgeHandler.Get).Methods(http.MethodGet)

	// Message routes
	authed.HandleFunc("/messages", messagesHandler.Send).Methods(http.MethodPost)
	authed.HandleFunc("/messages/{id}/read", messagesHandler.MarkRead).Methods(http.MethodPatch)

	// Stats routes
	authed.HandleFunc("/stats/opponents", statsHandler.Opponents).Methods(http.MethodGet)
	authed.HandleFunc("/stats/overall", statsHandler.Overall).Methods(http.MethodGet)
	authed.HandleFunc("/stats/attempts", statsHandler.RecordAttempts).Methods(http.MethodPost)

	// Event stream
	authed.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)
	authed.HandleFunc("/events/progress", eventsHandler.Progress).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
