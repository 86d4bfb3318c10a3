package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finsight/internal/advisor"
	"github.com/MrJamesThe3rd/finsight/internal/amqp"
	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/auth"
	authStore "github.com/MrJamesThe3rd/finsight/internal/auth/store"
	"github.com/MrJamesThe3rd/finsight/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/finsight/internal/budget/store"
	"github.com/MrJamesThe3rd/finsight/internal/cache"
	"github.com/MrJamesThe3rd/finsight/internal/category"
	categoryStore "github.com/MrJamesThe3rd/finsight/internal/category/store"
	"github.com/MrJamesThe3rd/finsight/internal/config"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/export"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	goalStore "github.com/MrJamesThe3rd/finsight/internal/goal/store"
	finsightHttp "github.com/MrJamesThe3rd/finsight/internal/http"
	adviceHandler "github.com/MrJamesThe3rd/finsight/internal/http/advice"
	analyticsHandler "github.com/MrJamesThe3rd/finsight/internal/http/analytics"
	authHandler "github.com/MrJamesThe3rd/finsight/internal/http/auth"
	budgetHandler "github.com/MrJamesThe3rd/finsight/internal/http/budget"
	categoryHandler "github.com/MrJamesThe3rd/finsight/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/finsight/internal/http/export"
	goalHandler "github.com/MrJamesThe3rd/finsight/internal/http/goal"
	importHandler "github.com/MrJamesThe3rd/finsight/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/finsight/internal/http/matching"
	notificationHandler "github.com/MrJamesThe3rd/finsight/internal/http/notification"
	recurringHandler "github.com/MrJamesThe3rd/finsight/internal/http/recurring"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	txHandler "github.com/MrJamesThe3rd/finsight/internal/http/transaction"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/finsight/internal/matching/store"
	"github.com/MrJamesThe3rd/finsight/internal/notification"
	notificationStore "github.com/MrJamesThe3rd/finsight/internal/notification/store"
	"github.com/MrJamesThe3rd/finsight/internal/recurring"
	recurringStore "github.com/MrJamesThe3rd/finsight/internal/recurring/store"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
	txStore "github.com/MrJamesThe3rd/finsight/internal/transaction/store"
	"github.com/MrJamesThe3rd/finsight/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("api failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	responseCache, closeCache := newCache(ctx, cfg)
	defer closeCache()

	registry := ws.NewRegistry(cfg.CORS.AllowedOrigins)
	defer registry.Close()

	var (
		authService         = auth.NewService(authStore.New(db), auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
		transactionService  = transaction.NewService(txStore.New(db))
		categoryService     = category.NewService(categoryStore.New(db))
		budgetService       = budget.NewService(budgetStore.New(db), transactionService)
		goalService         = goal.NewService(goalStore.New(db))
		recurringRepo       = recurringStore.New(db)
		recurringService    = recurring.NewService(recurringRepo)
		notificationService = notification.NewService(notificationStore.New(db), registry, nil)
		processor           = recurring.NewProcessor(recurringRepo, transactionService, notificationService)
		alerter             = notification.NewAlerter(budgetService, goalService, notificationService)
		engine              = analytics.NewEngine(transactionService, budgetService, goalService)
		matchingService     = matching.NewService(matchingStore.New(db))
		importService       = importer.NewService(transactionService, matchingService)
		exportService       = export.NewService(transactionService, engine, authService)
		advisorService      = advisor.NewService(engine, newGenerator(ctx, cfg))
	)

	// Alert checks run off the request path.
	transactionService.Subscribe(func(ctx context.Context, userID uuid.UUID) {
		go alerter.Check(context.WithoutCancel(ctx), userID)
	})

	if cfg.AMQP.URL != "" {
		// The worker publishes its notifications; deliver them to sockets held here.
		go amqp.Listen(ctx, cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue,
			func(ctx context.Context, msg notification.Message) error {
				notificationService.Deliver(ctx, msg)
				return nil
			})
	}

	router := finsightHttp.New(finsightHttp.Handlers{
		Auth:          authHandler.NewHandler(authService),
		Transactions:  txHandler.NewHandler(transactionService),
		Categories:    categoryHandler.NewHandler(categoryService),
		Budgets:       budgetHandler.NewHandler(budgetService),
		Goals:         goalHandler.NewHandler(goalService),
		Recurring:     recurringHandler.NewHandler(recurringService, processor),
		Analytics:     analyticsHandler.NewHandler(engine, responseCache),
		Export:        exportHandler.NewHandler(exportService),
		Import:        importHandler.NewHandler(importService),
		Matching:      matchingHandler.NewHandler(matchingService),
		Advice:        adviceHandler.NewHandler(advisorService),
		Notifications: notificationHandler.NewHandler(notificationService, registry),
	}, finsightHttp.Options{
		Authenticate:       auth.Middleware(authService, respond.Unauthorized),
		AuthenticateSocket: auth.SocketMiddleware(authService, respond.Unauthorized),
		Cache:              responseCache,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		Timeout:            cfg.Server.Timeout,
		DB:                 db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", cfg.App.Port, "advisor", advisorService.Enabled())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	slog.Info("server stopped")

	return nil
}

// newCache prefers Redis when configured and falls back to an in-process LRU.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.TTL)
		if err == nil {
			slog.Info("using redis cache", "addr", cfg.Redis.Addr)
			return rc, func() { _ = rc.Close() }
		}

		slog.Warn("redis unavailable, falling back to in-memory cache", "error", err)
	}

	lru := cache.NewLRU(cfg.Cache.MaxSize, cfg.Cache.TTL)

	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(cfg.Cache.TTL)

	return lru, manager.Stop
}

func newGenerator(ctx context.Context, cfg *config.Config) advisor.Generator {
	if cfg.AI.APIKey == "" {
		slog.Info("advisor disabled: no API key configured")
		return nil
	}

	g, err := advisor.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		slog.Warn("advisor disabled", "error", err)
		return nil
	}

	return g
}
