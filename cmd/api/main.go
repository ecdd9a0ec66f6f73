package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"adpilot/internal/config"
	"adpilot/internal/database"
	"adpilot/internal/domain/account"
	"adpilot/internal/domain/alert"
	"adpilot/internal/domain/auth"
	"adpilot/internal/domain/billing"
	"adpilot/internal/domain/bulkupload"
	"adpilot/internal/domain/campaign"
	"adpilot/internal/meta"
	"adpilot/internal/middleware"
	"adpilot/internal/pkg/logger"
	"adpilot/internal/queue"

	jwtsvc "adpilot/internal/pkg/jwt"
)

func main() {
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

	if err := db.AutoMigrate(
		&auth.User{},
		&auth.BackupCode{},
		&account.AdAccount{},
		&campaign.Campaign{},
		&campaign.AdSet{},
		&campaign.Ad{},
		&bulkupload.UploadBatch{},
		&bulkupload.BatchRow{},
		&alert.AlertRule{},
		&alert.AlertNotification{},
		&alert.AlertSettings{},
		&billing.Plan{},
		&billing.Subscription{},
	); err != nil {
		zlog.Fatal("auto-migrate failed", zap.Error(err))
	}

	dispatcher := queue.NewDispatcher(zlog, cfg.QueueWorkers, cfg.QueueMaxRetries)
	defer dispatcher.Stop()

	// repositories
	userRepo := auth.NewRepository(db)
	accountRepo := account.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	uploadRepo := bulkupload.NewRepository(db)
	alertRepo := alert.NewRepository(db)
	billingRepo := billing.NewRepository(db)

	if err := billingRepo.SeedPlans(context.Background(), billing.DefaultPlans()); err != nil {
		zlog.Fatal("seeding plans failed", zap.Error(err))
	}

	// services
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := auth.NewService(userRepo, j, zlog)
	accountService := account.NewService(accountRepo, zlog)

	metaClient := meta.NewClient(cfg.MetaAPIBaseURL, cfg.MetaAPITimeout, zlog)
	gateway := meta.NewGateway(metaClient, campaignRepo, accountRepo, zlog)

	billingService := billing.NewService(billingRepo, campaignRepo, alertRepo, cfg.StripeSecretKey, zlog)
	campaignService := campaign.NewService(campaignRepo, accountService, gateway, billingService, dispatcher, zlog)
	uploadService := bulkupload.NewService(uploadRepo, campaignRepo, accountService, gateway, billingService, dispatcher, zlog)
	notifier := alert.NewNotifier(10 * time.Second)
	alertService := alert.NewService(alertRepo, notifier, billingService, zlog)
	uploadService.SetObserver(alertService)

	// handlers
	authHandler := auth.NewHandler(authService)
	accountHandler := account.NewHandler(accountService)
	campaignHandler := campaign.NewHandler(campaignService)
	uploadHandler := bulkupload.NewHandler(uploadService)
	alertHandler := alert.NewHandler(alertService)
	billingHandler := billing.NewHandler(billingService)

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(zlog))
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			accountHandler.RegisterRoutes(protected)
			campaignHandler.RegisterRoutes(protected)
			uploadHandler.RegisterRoutes(protected)
			alertHandler.RegisterRoutes(protected)
			billingHandler.RegisterRoutes(v1, protected)
		}
	}

	addr := ":" + envOr("PORT", "8080")
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		zlog.Info("api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
