package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/guessparty/guessparty-go/internal/dependencies/clock"
	"github.com/guessparty/guessparty-go/internal/dependencies/random"
	"github.com/guessparty/guessparty-go/internal/lock"
	"github.com/guessparty/guessparty-go/internal/services/grace"
	"github.com/guessparty/guessparty-go/internal/services/identity"
	"github.com/guessparty/guessparty-go/internal/services/lobby"
	"github.com/guessparty/guessparty-go/internal/services/round"
	"github.com/guessparty/guessparty-go/internal/services/snapshot"
	"github.com/guessparty/guessparty-go/internal/storage"
	"github.com/guessparty/guessparty-go/internal/storage/memory"
	redisstorage "github.com/guessparty/guessparty-go/internal/storage/redis"
	"github.com/guessparty/guessparty-go/internal/ws"
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
	IdentityService *identity.Service
	Registry        *identity.Registry
	GraceManager    *grace.Manager
	SnapshotService *snapshot.Service
	RoundController *round.Controller
	LobbyController *lobby.Controller
	HubManager      *ws.HubManager
	Broadcaster     *ws.Broadcaster
	WSHandler       *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// GraceConfig holds the disconnect grace timings (optional)
	// If zero value, defaults to grace.DefaultConfig()
	GraceConfig grace.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

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

	clk := clock.New()
	rnd := random.New()

	graceCfg := cfg.GraceConfig
	if graceCfg.RejoinWindow == 0 {
		graceCfg = grace.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, graceCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, graceCfg grace.Config, logger *slog.Logger) *App {
	locks := lock.NewKeyedMutex()

	identityService := identity.NewService(store, clk, rnd, logger)
	registry := identity.NewRegistry()
	graceManager := grace.NewManager(clk, graceCfg, logger)
	snapshotService := snapshot.NewService(store)
	roundController := round.NewController(store, clk, rnd, locks, logger)
	lobbyController := lobby.NewController(store, clk, rnd, locks, graceManager, roundController, logger)

	hubManager := ws.NewHubManager(logger)
	broadcaster := ws.NewBroadcaster(hubManager, snapshotService, logger)
	lobbyController.SetNotifier(broadcaster)

	wsHandler := ws.NewHandler(identityService, registry, lobbyController, roundController, hubManager, broadcaster, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		IdentityService: identityService,
		Registry:        registry,
		GraceManager:    graceManager,
		SnapshotService: snapshotService,
		RoundController: roundController,
		LobbyController: lobbyController,
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
		WSHandler:       wsHandler,
	}
}
