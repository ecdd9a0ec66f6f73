package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"adpilot/internal/config"
	"adpilot/internal/database"
	"adpilot/internal/domain/account"
	"adpilot/internal/domain/billing"
	"adpilot/internal/domain/campaign"
	"adpilot/internal/meta"
	"adpilot/internal/pkg/logger"
)

// One-shot maintenance job, meant to run from cron: reconciles campaign
// statuses against the remote API and expires overdue subscriptions.
func main() {
	limit := flag.Int("limit", 100, "max campaigns to check per run")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run deadline")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	campaignRepo := campaign.NewRepository(db)
	accountRepo := account.NewRepository(db)
	client := meta.NewClient(cfg.MetaAPIBaseURL, cfg.MetaAPITimeout, zlog)
	gateway := meta.NewGateway(client, campaignRepo, accountRepo, zlog)

	checked, err := gateway.SyncStale(ctx, *limit)
	if err != nil {
		zlog.Error("status sweep aborted", zap.Int("checked", checked), zap.Error(err))
	}

	expired, err := billing.NewRepository(db).ExpireOldSubscriptions(ctx)
	if err != nil {
		zlog.Error("subscription expiry failed", zap.Error(err))
	}

	zlog.Info("sync worker finished",
		zap.Int("campaigns_checked", checked),
		zap.Int("subscriptions_expired", expired))
}
