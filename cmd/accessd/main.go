package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/accessd/accessd/internal/app"
	"github.com/accessd/accessd/internal/auth"
	"github.com/accessd/accessd/internal/observability"
	"github.com/accessd/accessd/internal/permissions"
	"github.com/accessd/accessd/internal/platform/db"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/roles"
	"github.com/accessd/accessd/internal/users"
)

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Bootstrap(ctx, pool); err != nil {
		logger.Error("bootstrap schema", slog.Any("error", err))
		os.Exit(1)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens, err := auth.NewTokenManager(cfg.SecretKey, cfg.TokenAlgorithm, cfg.TokenTTL)
	if err != nil {
		logger.Error("token manager", slog.Any("error", err))
		os.Exit(1)
	}

	usersSvc := users.NewService(users.NewStore(pool), hasher, users.ReplaceRoles)
	rolesSvc := roles.NewService(roles.NewStore(pool), roles.ReplacePermissions)
	permsSvc := permissions.NewService(permissions.NewStore(pool))

	authSvc := auth.NewService(usersSvc, hasher, tokens)
	authMW := auth.Middleware{Logger: logger, Tokens: tokens, Users: usersSvc}
	guard := rbac.Guard{Logger: logger}

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       auth.NewHandler(logger, authSvc),
		UsersRouter:       users.NewRouter(logger, usersSvc, authMW.Authenticate, guard),
		RolesRouter:       roles.NewRouter(logger, rolesSvc, authMW.Authenticate, guard),
		PermissionsRouter: permissions.NewRouter(logger, permsSvc, authMW.Authenticate, guard),
		Pool:              pool,
		Metrics:           metrics,
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
