package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	googleauth "placement-backend/internal/auth"
	"placement-backend/internal/dashboard"
	"placement-backend/internal/queue"
	"placement-backend/internal/shared/config"
	"placement-backend/internal/shared/server"
	"placement-backend/internal/shared/storage/db"
	"placement-backend/internal/shared/storage/object"
	localstore "placement-backend/internal/shared/storage/object/local"
	s3store "placement-backend/internal/shared/storage/object/s3"
	"placement-backend/internal/shared/telemetry"
	"placement-backend/internal/state"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Redis            *redis.Client
	State            state.Store
	Store            object.ObjectStore
	Queue            queue.Client
	Dashboard        *dashboard.Service
	DashboardHandler *dashboard.Handler
	GoogleAuth       *googleauth.GoogleService

	closers []func() error
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.StateStore) == "" {
		cfg.StateStore = "memory"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.buildState(ctx); err != nil {
		app.Close()
		return nil, err
	}
	app.connectSharedRedis(ctx)

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	if err := app.buildQueue(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.Dashboard = dashboard.NewService(dashboard.Options{
		Store:         app.State,
		Objects:       app.Store,
		Queue:         app.Queue,
		StalledDays:   cfg.StalledDays,
		RetentionDays: cfg.RetentionDays,
	})
	app.DashboardHandler = dashboard.NewHandler(app.Dashboard)
	var oauthStates googleauth.StateStore
	if app.Redis != nil {
		oauthStates = googleauth.NewRedisStateStore(app.Redis)
	}
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.Dashboard,
		oauthStates,
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		DashboardHandler: app.DashboardHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"state_store":  cfg.StateStore,
		"object_store": cfg.ObjectStoreType,
		"queue":        app.QueueBackend(),
	})
	return app, nil
}

// QueueBackend names the configured queue, "inline" when saves run the flow in-process.
func (a *App) QueueBackend() string {
	if a.Queue == nil {
		return queue.BackendInline
	}
	return a.Config.QueueBackend
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildState(ctx context.Context) error {
	cfg := a.Config
	switch cfg.StateStore {
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return err
		}
		if sqlDB == nil {
			a.State = state.NewMemoryStore()
			return nil
		}
		a.DB = sqlDB
		if db.RuntimeRole() != db.RoleLambda {
			a.closers = append(a.closers, sqlDB.Close)
		}
		a.State = &state.PGStore{DB: sqlDB}
	case "redis":
		client, err := state.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.redis.fallback", map[string]any{"error": err})
				a.State = state.NewMemoryStore()
				return nil
			}
			return err
		}
		a.Redis = client
		a.closers = append(a.closers, client.Close)
		a.State = state.NewRedisStore(client)
	default:
		a.State = state.NewMemoryStore()
	}
	return nil
}

// connectSharedRedis opens REDIS_URL for OAuth state when the state store did
// not already. Sign-in falls back to in-process state if Redis is unreachable.
func (a *App) connectSharedRedis(ctx context.Context) {
	if a.Redis != nil || strings.TrimSpace(a.Config.RedisURL) == "" {
		return
	}
	client, err := state.NewRedisClient(ctx, a.Config.RedisURL)
	if err != nil {
		telemetry.Warn("bootstrap.redis.unavailable", map[string]any{"error": err.Error()})
		return
	}
	a.Redis = client
	a.closers = append(a.closers, client.Close)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.fallback", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.RuntimeRole())
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.fallback", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) buildQueue(ctx context.Context) error {
	cfg := a.Config
	switch cfg.QueueBackend {
	case queue.BackendSQS:
		client, err := queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
		if err != nil {
			return err
		}
		a.Queue = client
	case queue.BackendAMQP:
		client, err := queue.NewAMQPClient(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		a.Queue = client
		a.closers = append(a.closers, client.Close)
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
