package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/config"
	"carrental-backend/internal/handlers"
	"carrental-backend/internal/legacy"
	"carrental-backend/internal/metrics"
	"carrental-backend/internal/middleware"
	"carrental-backend/internal/payment"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/routes"
	"carrental-backend/internal/service"
	"carrental-backend/internal/storage/mysql"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

func main() {
	// 1. Load env
	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.Environment, cfg.LoggerLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect DB
	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Error("database connection failed", logger.Error(err))
		return
	}
	if err := mysql.Migrate(db); err != nil {
		log.Error("migration failed", logger.Error(err))
		return
	}
	stg := mysql.New(db, log)
	defer stg.Close()

	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			log.Error("seed file unreadable", logger.String("path", cfg.SeedFile), logger.Error(err))
			return
		}
		if err := seed.Apply(ctx, stg, log); err != nil {
			log.Error("seeding failed", logger.Error(err))
			return
		}
	}

	// 3. Shared state: Redis when configured, otherwise this process only
	var (
		pending cache.PendingOrders = cache.NewMemoryPendingOrders(cache.PendingOrderTTL)
		claims  cache.ClaimSet      = cache.NewMemoryClaimSet(cache.ClaimTTL)
	)
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cache.RedisConfig{Address: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := cache.Ping(ctx, rdb); err != nil {
			log.Error("redis unreachable", logger.Error(err))
			return
		}
		defer rdb.Close()
		pending = cache.NewRedisPendingOrders(rdb, cache.PendingOrderTTL)
		claims = cache.NewRedisClaimSet(rdb, cache.ClaimTTL)
	}

	// 4. Payment gateways
	var gateways service.Gateways
	if cfg.MoMo.Enabled() {
		gateways.MoMo = payment.NewMoMo(payment.MoMoConfig(cfg.MoMo))
	}
	if cfg.PayOS.Enabled() {
		gateways.PayOS = payment.NewPayOS(payment.PayOSConfig(cfg.PayOS))
	}
	if cfg.Midtrans.Enabled() {
		gateways.Midtrans = payment.NewMidtrans(payment.MidtransConfig(cfg.Midtrans))
	}

	// Init Firebase
	var notifier utils.Notifier = utils.NopNotifier{}
	if cfg.FCMCredentials != "" {
		fcm, err := utils.InitFCM(ctx, cfg.FCMCredentials, log)
		if err != nil {
			log.Warning("push notifications disabled", logger.Error(err))
		} else {
			notifier = fcm
		}
	}

	if err := utils.RegisterValidators(); err != nil {
		log.Error("validator registration failed", logger.Error(err))
		return
	}
	metrics.Register()

	svc := service.New(service.Deps{
		Storage:  stg,
		Pending:  pending,
		Gateways: gateways,
		Notifier: notifier,
		Settings: service.Settings{
			Location:         cfg.Location(),
			DepositPercent:   cfg.DepositPercent,
			LegacyOrderIDMax: cfg.LegacyOrderIDMax,
			FrontendURL:      cfg.FrontendURL,
			PublicBaseURL:    cfg.PublicBaseURL,
			JWTSecret:        cfg.JWTSecret,
		},
		Log: log,
	})

	// 5. Background workers
	worker := service.NewAutoCancelWorker(stg, claims, notifier, cfg.AutoCancelTick, log)
	go worker.Run(ctx)

	if cfg.LegacyAPIURL != "" {
		scheme := rental.SchemeFull
		if cfg.LegacyStatusScheme == "compact" {
			scheme = rental.SchemeCompact
		}
		importer := legacy.NewImporter(legacy.NewClient(cfg.LegacyAPIURL), stg,
			legacy.Decoder{Zone: cfg.Location(), Scheme: scheme}, log)
		go importer.Run(ctx, cfg.LegacySyncInterval)
	}

	// 6. Router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, handlers.New(svc, log, cfg.Environment == "production"), routes.Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: []string{cfg.FrontendURL},
		Limiter:        middleware.NewIPRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		Health:         stg,
		Log:            log,
	})

	// 7. Run server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server listening", logger.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logger.Error(err))
	}
	log.Info("server stopped")
}
