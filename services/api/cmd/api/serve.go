package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/analytics"
	"github.com/example/video-platform/internal/platform/auth"
	"github.com/example/video-platform/internal/platform/db"
	"github.com/example/video-platform/internal/platform/httpclient"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/internal/platform/run"
	"github.com/example/video-platform/internal/platform/signing"
	"github.com/example/video-platform/services/api/internal/cache"
	"github.com/example/video-platform/services/api/internal/grpcapi"
	"github.com/example/video-platform/services/api/internal/handlers"
	"github.com/example/video-platform/services/api/internal/idempotency"
	"github.com/example/video-platform/services/api/internal/media"
	"github.com/example/video-platform/services/api/internal/migrations"
	"github.com/example/video-platform/services/api/internal/videoplatform"
	"github.com/example/video-platform/services/api/internal/workflow"
)

const (
	analyticsMaxAge   = 30 * 24 * time.Hour
	cacheInvalidation = "cache.invalidate.api"
	healthInterval    = 5 * time.Second
)

type serveOptions struct {
	migrate bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and gRPC health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	if err := a.openStore(ctx); err != nil {
		return err
	}
	if opts.migrate && a.pool != nil {
		if _, err := migrations.Up(ctx, a.pool, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	jetstream := a.cfg.MediaDispatch == "jetstream"
	if err := a.openNATS(jetstream); err != nil {
		return err
	}
	if err := a.openRedis(ctx); err != nil {
		return err
	}

	c, err := a.cache()
	if err != nil {
		return err
	}
	seen, err := idempotency.NewStore(idempotency.Backends{Redis: a.redis, Postgres: a.pool}, a.cfg.IdempotencyTTL, a.env.IsProduction())
	if err != nil {
		return err
	}

	d := &handlers.Deps{
		Store:         a.store,
		Cache:         c,
		Analytics:     analytics.New(a.js, log),
		Log:           log,
		AppURL:        a.cfg.AppURL,
		Seen:          seen,
		MediaVerifier: signing.Verifier{Secret: a.cfg.VideoPlatform.WebhookSecret},
		UserVerifier:  signing.MessageVerifier{Secret: a.cfg.AuthWebhookSecret},
	}
	a.wireClients(d)
	if a.cfg.VideoPlatform.WebhookSecret != "" {
		if jetstream {
			if err := media.EnsureStream(a.js); err != nil {
				return fmt.Errorf("media stream: %w", err)
			}
			d.Media = media.Publisher{JS: a.js}
		} else {
			d.Media = media.Inline{Processor: a.processor()}
		}
	} else {
		log.Warn("VIDEO_PLATFORM_WEBHOOK_SECRET not set, media webhook disabled")
	}

	var ready func() error
	if a.pool != nil {
		ready = db.ReadyFunc(a.pool)
	}
	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: ready, Logger: log})
	handlers.Register(r, d, auth.JWTVerifier{
		Secret:   []byte(a.cfg.JWTSecret),
		Issuer:   a.cfg.JWTIssuer,
		Audience: a.cfg.JWTAudience,
	})
	srv := httpserver.New(httpserver.Options{Addr: a.env.HTTP.Addr, ServiceName: a.env.ServiceName, Logger: log, Router: r})

	lis, err := net.Listen("tcp", a.env.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gs := grpcapi.New(a.env.ServiceName, ready, log)

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go gs.Watch(ctx, healthInterval)
		go func() {
			log.Info("grpc server starting", zap.String("addr", a.env.GRPC.Addr))
			if err := gs.Serve(lis); err != nil {
				log.Error("grpc serve", zap.Error(err))
			}
		}()
		return srv.Start()
	})
	runner.Graceful(srv.Shutdown, gs.Shutdown)
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	log.Info("exit", zap.Int("code", code))
	if code != 0 {
		return errors.New("api exited with errors")
	}
	return nil
}

// cache prefers Redis. The in-process fallback listens for invalidations on
// NATS so replicas drop stale pages together.
func (a *app) cache() (cache.Cache, error) {
	if a.redis != nil {
		return cache.NewRedisCache(a.redis, a.cfg.CacheTTL), nil
	}
	return cache.NewTTLCache(a.cfg.CacheTTL, a.nc, cacheInvalidation, a.log)
}

// wireClients attaches the third-party clients that are configured. Unset
// clients stay nil so their routes answer 503.
func (a *app) wireClients(d *handlers.Deps) {
	vp := a.cfg.VideoPlatform
	if vp.TokenID != "" && vp.TokenSecret != "" {
		d.Videos = videoplatform.New(vp.BaseURL, vp.TokenID, vp.TokenSecret, a.cfg.HTTPClient,
			httpclient.WithCircuitBreaker(httpclient.NewBreaker("video-platform", a.cfg.Breaker, a.log)),
			httpclient.WithLogger(a.log))
	}
	if fs := a.fileService(); fs != nil {
		d.Files = fs
	}
	if wf := a.cfg.Workflow; wf.Token != "" {
		d.Workflows = workflow.New(wf.BaseURL, wf.Token, a.cfg.HTTPClient,
			httpclient.WithCircuitBreaker(httpclient.NewBreaker("workflow", a.cfg.Breaker, a.log)),
			httpclient.WithLogger(a.log))
	}
}
