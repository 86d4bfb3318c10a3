package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finsight/internal/amqp"
	"github.com/MrJamesThe3rd/finsight/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/finsight/internal/budget/store"
	"github.com/MrJamesThe3rd/finsight/internal/cache"
	"github.com/MrJamesThe3rd/finsight/internal/config"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	goalStore "github.com/MrJamesThe3rd/finsight/internal/goal/store"
	"github.com/MrJamesThe3rd/finsight/internal/notification"
	notificationStore "github.com/MrJamesThe3rd/finsight/internal/notification/store"
	"github.com/MrJamesThe3rd/finsight/internal/recurring"
	recurringStore "github.com/MrJamesThe3rd/finsight/internal/recurring/store"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
	txStore "github.com/MrJamesThe3rd/finsight/internal/transaction/store"
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
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	// Sockets live in the API process; notifications reach them via the broker.
	var publisher notification.Publisher

	if cfg.AMQP.URL != "" {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			slog.Warn("amqp unavailable, notifications are stored only", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	var (
		transactionService  = transaction.NewService(txStore.New(db))
		budgetService       = budget.NewService(budgetStore.New(db), transactionService)
		goalService         = goal.NewService(goalStore.New(db))
		notificationService = notification.NewService(notificationStore.New(db), nil, publisher)
		alerter             = notification.NewAlerter(budgetService, goalService, notificationService)
		processor           = recurring.NewProcessor(recurringStore.New(db), transactionService, notificationService)
	)

	transactionService.Subscribe(alerter.Check)

	// Only a shared cache can be invalidated from here.
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.TTL)
		if err != nil {
			slog.Warn("redis unavailable, api cache will expire on its own", "error", err)
		} else {
			defer rc.Close()

			transactionService.Subscribe(func(ctx context.Context, userID uuid.UUID) {
				rc.DeletePrefix(ctx, cache.UserPrefix(userID))
			})
		}
	}

	slog.Info("worker started", "interval", cfg.Worker.Interval)

	processDue(ctx, processor, time.Now())

	ticker := time.NewTicker(cfg.Worker.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped")
			return nil
		case now := <-ticker.C:
			processDue(ctx, processor, now)
		}
	}
}

func processDue(ctx context.Context, p *recurring.Processor, now time.Time) {
	n, err := p.ProcessDue(ctx, now)
	if err != nil {
		slog.Error("processing recurring transactions failed", "error", err)
		return
	}

	slog.Info("processed recurring transactions", "created", n)
}
