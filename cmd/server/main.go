package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/economy"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/handler"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/middleware"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/logger"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/ratelimit"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/repository"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/service"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 0. Initialize Logger
	logger.Init("info")

	// 1. Load Configuration (schema failures are fatal here, by design)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	clock := clockwork.NewRealClock()

	// 2. Initialize Persistence (Redis > Memory for counters and windows)
	var limitStore ratelimit.Store
	var usageStore economy.UsageStore
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			limitStore = ratelimit.NewRedisStore(redisClient.Client)
			usageStore = redisClient
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if limitStore == nil {
		memStore := ratelimit.NewMemoryStore()
		limitStore = memStore
		go sweepLoop(memStore, clock)
	}
	if usageStore == nil {
		usageStore = economy.NewMemoryUsageStore()
	}

	db, err := repository.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	userRepo := repository.NewPostgresUserRepo(db)

	// 3. Initialize Core Services
	limiter := ratelimit.New(limitStore, clock)

	xpSvc, err := service.NewXPService(cfg.Economy, usageStore, userRepo)
	if err != nil {
		log.Fatalf("Failed to initialize XP service: %v", err)
	}
	walletSvc := service.NewWalletService(cfg, userRepo, xpSvc)

	guard := middleware.NewWalletGuard(cfg, limiter, clock)
	validator := webhook.NewValidator(cfg.Webhook, clock)
	throttle := webhook.NewIPThrottle(cfg.Webhook.RequestsPerMinute)
	go throttleSweepLoop(throttle)

	// 4. Initialize Handlers
	walletHandler := handler.NewWalletHandler(walletSvc, cfg.Limits.MaxDepositUSD)
	economyHandler := handler.NewEconomyHandler(xpSvc)
	adminHandler := handler.NewAdminHandler(walletSvc)
	webhookHandler := handler.NewWebhookHandler(cfg.Webhook, throttle, validator)

	// 5. Setup Router
	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "degentalk-econ"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Webhooks authenticate by signature, not session.
	r.POST("/webhooks/payments", webhookHandler.HandlePayment)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg, userRepo))
	{
		v1.POST("/wallet/deposit", guard.DepositGuard(), walletHandler.Deposit)
		v1.POST("/wallet/tip", guard.TipGuard(), walletHandler.Tip)
		v1.POST("/wallet/transfer", guard.TipGuard(), walletHandler.Transfer)
		v1.POST("/wallet/withdraw", guard.WithdrawGuard(), walletHandler.Withdraw)
		v1.POST("/wallet/faucet", guard.FaucetGuard(), walletHandler.FaucetClaim)
		v1.POST("/wallet/rain", guard.RainGuard(), walletHandler.Rain)
		v1.GET("/economy/progress", economyHandler.Progress)
		v1.GET("/economy/levels", economyHandler.Levels)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/credit", adminHandler.Credit)
		}
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 Degentalk economy engine started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}

// sweepLoop clears expired in-memory windows so idle keys don't accumulate.
func sweepLoop(store *ratelimit.MemoryStore, clock clockwork.Clock) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		store.Sweep(clock.Now())
	}
}

// throttleSweepLoop evicts webhook throttle entries for IPs idle longer than
// the sweep interval.
func throttleSweepLoop(throttle *webhook.IPThrottle) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		throttle.Sweep(time.Now().Add(-10 * time.Minute))
	}
}
