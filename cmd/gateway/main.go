package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contentguard/gateway/modules/banlists"
	"github.com/contentguard/gateway/modules/guardrails"
	"github.com/contentguard/gateway/modules/validatorconfigs"
	"github.com/contentguard/gateway/pkg/apiresponse"
	"github.com/contentguard/gateway/pkg/audit"
	"github.com/contentguard/gateway/pkg/auth"
	"github.com/contentguard/gateway/pkg/config"
	"github.com/contentguard/gateway/pkg/environment"
	"github.com/contentguard/gateway/pkg/guardrail"
	"github.com/contentguard/gateway/pkg/guardrail/validators"
	"github.com/contentguard/gateway/pkg/logger"
	"github.com/contentguard/gateway/pkg/pg"
	"github.com/contentguard/gateway/pkg/redis"
	"github.com/contentguard/gateway/pkg/requestid"
	"github.com/contentguard/gateway/pkg/tenant"
	"github.com/contentguard/gateway/storage/postgres"
)

type appConfig struct {
	Environment    string        `env:"APP_ENV" envDefault:"development"`
	Addr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownGrace  time.Duration `env:"HTTP_SHUTDOWN_GRACE" envDefault:"10s"`
	TenantCacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"1m"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("gateway exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		appCfg    appConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		authCfg   auth.Config
		tenantCfg tenant.BackendConfig
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&authCfg)
	config.MustLoad(&tenantCfg)

	env := environment.Parse(appCfg.Environment)
	log := logger.New(
		logger.WithEnvironment(env, "contentguard-gateway"),
		logger.WithContextExtractors(requestid.LogExtractor(), tenant.LogExtractor()),
	)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	// Tenant resolution: credential backend behind a cache. Redis is
	// optional; without it each instance caches on its own.
	var scopeCache tenant.Cache
	if redisCfg.ConnectionURL != "" {
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		scopeCache = tenant.NewRedisCache(redisClient, "", log)
	} else {
		scopeCache = tenant.NewMemoryCache()
	}
	resolver := tenant.NewCachingResolver(
		tenant.NewBackendResolver(tenantCfg, nil),
		scopeCache,
		appCfg.TenantCacheTTL,
	)

	banListStore := postgres.NewBanListStore(pool)
	configStore := postgres.NewValidatorConfigStore(pool)

	registry := guardrail.NewRegistry()
	validators.Register(registry)

	recorder := audit.NewRecorder(
		postgres.NewRequestLogStore(pool),
		postgres.NewValidatorLogStore(pool),
		audit.WithLogger(log),
	)
	svc := guardrail.NewService(
		registry,
		guardrail.NewBuilder(registry, banListStore),
		recorder,
		guardrail.WithLogger(log),
	)

	authError := func(w http.ResponseWriter, status int, err error) {
		apiresponse.Fail(w, status, err.Error())
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(environment.Middleware(env))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pg.Healthcheck(pool)(req.Context()); err != nil {
			apiresponse.Fail(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		apiresponse.OK(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/guardrails", guardrails.Router(
		guardrails.NewHandler(svc, configStore, log),
		resolver,
	))

	// Management API: bearer token plus tenant scope from the API key.
	r.Group(func(mgmt chi.Router) {
		mgmt.Use(auth.BearerMiddleware(authCfg, authError))
		mgmt.Use(tenant.Middleware(resolver, authError))
		mgmt.Mount("/ban-lists", banlists.Router(banlists.NewHandler(banListStore)))
		mgmt.Mount("/validator-configs", validatorconfigs.Router(validatorconfigs.NewHandler(configStore)))
	})

	server := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "gateway listening", slog.String("addr", appCfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
