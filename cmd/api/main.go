package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/polsommer/PanelHosting/internal/config"
	"github.com/polsommer/PanelHosting/internal/handler"
	"github.com/polsommer/PanelHosting/internal/metrics"
	"github.com/polsommer/PanelHosting/internal/notifier"
	"github.com/polsommer/PanelHosting/internal/pricing"
	"github.com/polsommer/PanelHosting/internal/repository"
	"github.com/polsommer/PanelHosting/internal/service"
	"github.com/polsommer/PanelHosting/internal/settings"
	appvalidator "github.com/polsommer/PanelHosting/internal/validator"
	"github.com/polsommer/PanelHosting/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	prices, err := pricing.FromConfig(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid store pricing")
	}

	// Events always go to the log; Redis is added when configured.
	sinks := []notifier.Sink{notifier.LogSink{}}
	var extraChecks []handler.HealthCheck
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		sinks = append(sinks, notifier.NewRedisSink(rdb, cfg.Notify.RedisChannel))
		extraChecks = append(extraChecks, handler.HealthCheck{
			Name: "redis",
			Pinger: handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		})
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Notify.RedisChannel).Msg("redis event sink enabled")
	}
	dispatcher := notifier.NewDispatcher(cfg.Notify.Buffer, sinks...)

	couponRepo := repository.NewCouponRepository(pool)
	redemptionRepo := repository.NewRedemptionRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository()
	referralRepo := repository.NewReferralRepository(pool)

	couponService := service.NewCouponService(pool, couponRepo, redemptionRepo, accountRepo, settings.FromConfig(cfg.Coupons), dispatcher)
	ledgerService := service.NewLedgerService(pool, accountRepo, dispatcher)
	storeService := service.NewStoreService(pool, prices, accountRepo, purchaseRepo, dispatcher, cfg.Store.Enabled)
	referralService := service.NewReferralService(pool, referralRepo, accountRepo, dispatcher, cfg.Referral.Reward, cfg.Referral.MaxCodes)

	app := fiber.New(fiber.Config{
		AppName:      "PanelHosting Ledger",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	validate := appvalidator.New()
	handler.Register(app, handler.Handlers{
		Health:   handler.NewHealthHandler(pool, extraChecks...),
		Coupons:  handler.NewCouponHandler(couponService, validate),
		Redeem:   handler.NewRedeemHandler(couponService, validate),
		Accounts: handler.NewAccountHandler(ledgerService, validate),
		Store:    handler.NewStoreHandler(storeService, validate),
		Referral: handler.NewReferralHandler(referralService, validate),
	})

	// The dispatcher outlives the server so events from in-flight requests
	// are still delivered during shutdown.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		return app.Listen(":" + cfg.Server.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopDispatch()

		log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		log.Info().Msg("waiting for in-flight requests to complete...")
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
