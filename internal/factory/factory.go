package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/lernquiz/lernquiz-go/internal/dependencies/clock"
	"github.com/lernquiz/lernquiz-go/internal/dependencies/random"
	"github.com/lernquiz/lernquiz-go/internal/notify"
	"github.com/lernquiz/lernquiz-go/internal/services/account"
	"github.com/lernquiz/lernquiz-go/internal/services/badge"
	"github.com/lernquiz/lernquiz-go/internal/services/friends"
	"github.com/lernquiz/lernquiz-go/internal/services/game"
	"github.com/lernquiz/lernquiz-go/internal/services/messages"
	"github.com/lernquiz/lernquiz-go/internal/services/stats"
	"github.com/lernquiz/lernquiz-go/internal/storage"
	"github.com/lernquiz/lernquiz-go/internal/storage/memory"
	redisstorage "github.com/lernquiz/lernquiz-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	GameController *game.Controller
	FriendManager  *friends.Manager
	BadgeService   *badge.Service
	AccountService *account.Service
	MessageService *messages.Service
	StatsService   *stats.Service

	// Realtime
	Registry *notify.Registry
	Notifier *notify.Notifier
}

// Config holds configuration for the application factory
type Config struct {
	// AccountConfig holds configuration for the account service (optional)
	// If zero value, defaults to account.DefaultConfig()
	AccountConfig account.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default account config if not provided
	accountCfg := cfg.AccountConfig
	if accountCfg.SessionDuration == 0 {
		accountCfg = account.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, accountCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, accountCfg account.Config, logger *slog.Logger) *App {
	// Create services
	gameController := game.NewController(store, clk, rnd, logger)
	friendManager := friends.NewManager(store, clk, logger)
	badgeService := badge.New(store, logger)
	accountService := account.New(store, clk, accountCfg, logger)
	messageService := messages.New(store, clk, logger)
	statsService := stats.New(store, clk, logger)

	registry := notify.NewRegistry(logger)
	notifier := notify.NewNotifier(registry, badgeService, store, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		GameController: gameController,
		FriendManager:  friendManager,
		BadgeService:   badgeService,
		AccountService: accountService,
		MessageService: messageService,
		StatsService:   statsService,
		Registry:       registry,
		Notifier:       notifier,
	}
}
