package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/analytics"
	"github.com/example/video-platform/internal/platform/config"
	"github.com/example/video-platform/internal/platform/db"
	"github.com/example/video-platform/internal/platform/httpclient"
	"github.com/example/video-platform/internal/platform/logging"
	"github.com/example/video-platform/internal/platform/natsconn"
	apiconfig "github.com/example/video-platform/services/api/internal/config"
	"github.com/example/video-platform/services/api/internal/fileupload"
	"github.com/example/video-platform/services/api/internal/media"
	"github.com/example/video-platform/services/api/internal/store"
)

// app holds the process-wide clients shared by every command.
type app struct {
	env config.AppConfig
	cfg apiconfig.Config
	log *zap.Logger

	pool  *pgxpool.Pool
	store store.Store
	nc    *nats.Conn
	js    nats.JetStreamContext
	redis *redis.Client
}

func newApp() (*app, error) {
	env, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.ForEnv(env.Env, env.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg, err := apiconfig.Load(env.IsProduction())
	if err != nil {
		return nil, err
	}
	return &app{env: env, cfg: cfg, log: log.With(zap.String("service", env.ServiceName))}, nil
}

// openStore selects the Store backend. Production requires Postgres; in
// development a missing or unreachable database falls back to memory.
func (a *app) openStore(ctx context.Context) error {
	if a.cfg.DatabaseURL == "" {
		if a.env.IsProduction() {
			return errors.New("DATABASE_URL is required in production")
		}
		a.log.Warn("DATABASE_URL not set, using in-memory store (development only)")
		a.store = store.NewInMemoryStore()
		return nil
	}
	pool, err := db.OpenDSN(ctx, a.cfg.DatabaseURL)
	if err != nil {
		if a.env.IsProduction() {
			return fmt.Errorf("postgres is required in production: %w", err)
		}
		a.log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		a.store = store.NewInMemoryStore()
		return nil
	}
	a.pool = pool
	a.store = store.NewPostgresStore(pool)
	a.log.Info("using postgres store")
	return nil
}

// openNATS connects to NATS when configured. required turns a failed
// connection into an error instead of a warning.
func (a *app) openNATS(required bool) error {
	if a.cfg.NATSURL == "" {
		if required {
			return errors.New("NATS_URL is required")
		}
		return nil
	}
	nc, err := natsconn.Connect(natsconn.Options{URL: a.cfg.NATSURL, Name: a.env.ServiceName})
	if err != nil {
		if required {
			return err
		}
		a.log.Error("nats connect, continuing without events", zap.Error(err))
		return nil
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("jetstream: %w", err)
	}
	a.nc, a.js = nc, js
	if err := natsconn.EnsureStream(js, analytics.StreamName, "analytics.>", analyticsMaxAge); err != nil {
		a.log.Warn("ensure analytics stream", zap.Error(err))
	}
	return nil
}

func (a *app) openRedis(ctx context.Context) error {
	if a.cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if a.env.IsProduction() {
			return fmt.Errorf("redis: %w", err)
		}
		a.log.Warn("redis unavailable, using local fallbacks", zap.Error(err))
		return nil
	}
	a.redis = client
	return nil
}

// fileService returns the file service client, or nil when unconfigured.
func (a *app) fileService() *fileupload.Client {
	fu := a.cfg.FileUpload
	if fu.APIKey == "" {
		return nil
	}
	return fileupload.New(fu.BaseURL, fu.APIKey, a.cfg.HTTPClient,
		httpclient.WithCircuitBreaker(httpclient.NewBreaker("file-upload", a.cfg.Breaker, a.log)),
		httpclient.WithLogger(a.log))
}

func (a *app) processor() *media.Processor {
	var files media.Files
	if fs := a.fileService(); fs != nil {
		files = fs
	}
	return media.NewProcessor(a.store, files, a.log)
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.nc != nil {
		_ = a.nc.Drain()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.log.Sync()
}
