package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/voxnote/voxnote/internal/dependencies/clock"
	"github.com/voxnote/voxnote/internal/services/account"
	"github.com/voxnote/voxnote/internal/services/history"
	"github.com/voxnote/voxnote/internal/storage"
	"github.com/voxnote/voxnote/internal/storage/memory"
	redisstorage "github.com/voxnote/voxnote/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.KV
	Clock   clock.Clock

	History  *history.Log
	Accounts *account.Store
	Janitor  *account.Janitor
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AccountConfig holds account store settings (optional)
	// If zero value, defaults to account.DefaultConfig()
	AccountConfig account.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.KV
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
	return newWithDependencies(ctx, store, clk, cfg.AccountConfig, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(ctx context.Context, store storage.KV, clk clock.Clock, accountCfg account.Config, logger *slog.Logger) (*App, error) {
	historyLog := history.New(store, clk, logger)

	accountStore, err := account.New(ctx, store, historyLog, clk, accountCfg, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:  store,
		Clock:    clk,
		History:  historyLog,
		Accounts: accountStore,
		Janitor:  account.NewJanitor(accountStore, logger),
	}, nil
}

// Close releases backend resources, if the storage holds any.
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
