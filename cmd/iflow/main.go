package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/iflow-pos/iflow/internal/app"
	"github.com/iflow-pos/iflow/internal/auth"
	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/categories"
	"github.com/iflow-pos/iflow/internal/clients"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/derive"
	"github.com/iflow-pos/iflow/internal/observability"
	"github.com/iflow-pos/iflow/internal/platform/cache"
	"github.com/iflow-pos/iflow/internal/platform/db"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/sales"
	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
	"github.com/iflow-pos/iflow/internal/stream"
	"github.com/iflow-pos/iflow/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "iflow_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	documents := store.NewPG(dbpool, redisClient, logger)
	valuation := derive.NewValuation(documents, cfg.DefaultExchangeRate)

	profileService := profile.NewService(documents, cfg.DefaultExchangeRate)
	capitalService := capital.NewService(documents, valuation)
	stockService := stock.NewService(documents)
	salesService := sales.NewService(documents, valuation)
	debtsService := debts.NewService(documents, valuation)
	clientsService := clients.NewService(documents)
	categoriesService := categories.NewService(documents)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, profileService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthHandler:       auth.NewHandler(logger, authService, sessionManager),
		ProfileHandler:    profile.NewHandler(logger, profileService),
		CapitalHandler:    capital.NewHandler(logger, capitalService, derive.HistoryWindow),
		StockHandler:      stock.NewHandler(logger, stockService),
		SalesHandler:      sales.NewHandler(logger, salesService),
		DebtsHandler:      debts.NewHandler(logger, debtsService),
		ClientsHandler:    clients.NewHandler(logger, clientsService),
		CategoriesHandler: categories.NewHandler(logger, categoriesService),
		StreamHandler:     stream.NewHandler(logger, documents, metrics, cfg.SyncDebounce, cfg.DefaultExchangeRate),
		JobsHandler:       jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:        cfg.AppAddr,
		Handler:     router,
		ReadTimeout: cfg.AppReadTimeout,
		// WriteTimeout would sever long-lived event streams; per-route
		// timeouts cover the JSON API instead.
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
