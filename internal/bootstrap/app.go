package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"gopherauth/internal/config"
	"gopherauth/internal/model"
	"gopherauth/internal/platform/database"
	redisClient "gopherauth/internal/platform/redis"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client

	StartedAt time.Time
}

// New opens the database and, when the limiter is Redis-backed, Redis.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        db,
		StartedAt: time.Now(),
	}

	if cfg.Database.AutoMigrate {
		if err := app.Migrate(ctx); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	if cfg.UsesRedis() {
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Redis = redisCli
	}

	slog.Info("bootstrap complete",
		"db_driver", cfg.Database.Driver,
		"rate_limit_enabled", cfg.RateLimit.Enabled,
		"rate_limit_backend", cfg.RateLimit.Backend)
	return app, nil
}

// OpenDatabase connects without touching Redis. Used by the migrate command.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, DB: db, StartedAt: time.Now()}, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	return database.New(ctx, database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.DSN(),
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		LogQueries:   !cfg.IsProduction() && cfg.Log.Level == "debug",
	})
}

func (a *App) Migrate(ctx context.Context) error {
	if err := a.DB.WithContext(ctx).AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis failed: %w", err))
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close database failed: %w", err))
		}
	}
	return closeErr
}
