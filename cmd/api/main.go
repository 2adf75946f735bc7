package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/0xweirdlabs/fastapi.prod.starter/api/routes"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/auth"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/identity"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/items"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/users"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/config"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/logger"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/metrics"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/migrate"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/provider"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	registry := metrics.NewRegistry()

	providerClient := provider.New(cfg.Provider, registry.External)
	if !providerClient.Configured() {
		logg.Warn(context.Background(), "identity provider not configured, delegated login disabled")
	}

	usersRepo := users.NewRepository(dbClient.DB(), registry.DB)
	itemsRepo := items.NewRepository(dbClient.DB(), registry.DB)

	resolver := identity.NewResolver(cfg.JWT, cfg.Provider, providerClient, usersRepo)
	authService := auth.NewService(usersRepo, providerClient, cfg.JWT, cfg.Password)
	itemsService := items.NewService(itemsRepo)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := registry.Serve(rootCtx, cfg.Metrics.Port, logg); err != nil {
			logg.Error(rootCtx, "metrics server stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(rootCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Resolver:     resolver,
			AuthService:  authService,
			ItemsService: itemsService,
			DBPinger:     dbClient,
			Redis:        redisClient,
			HTTPMetrics:  registry.HTTP,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(context.Background(), "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
