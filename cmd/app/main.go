package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/travelbook/api"
	"github.com/Domenick1991/travelbook/config"
	"github.com/Domenick1991/travelbook/internal/bootstrap"
	"github.com/Domenick1991/travelbook/internal/cache"
	"github.com/Domenick1991/travelbook/internal/kafka"
	"github.com/Domenick1991/travelbook/internal/logger"
	"github.com/Domenick1991/travelbook/internal/repository"
	"github.com/Domenick1991/travelbook/internal/service/bookings"
	"github.com/Domenick1991/travelbook/internal/service/cancellation"
	"github.com/Domenick1991/travelbook/internal/service/reservation"
	"github.com/Domenick1991/travelbook/internal/travelapi"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := travelapi.New(cfg.TravelAPI.BaseURL, cfg.TravelAPI.Token, cfg.TravelAPI.Timeout())

	var store cancellation.Store
	switch cfg.Cancellation.Store {
	case "redis":
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cancellation.DialogTTL())
		if err := redisCache.Ping(ctx); err != nil {
			zlog.Fatal("connect redis", zap.Error(err))
		}
		defer redisCache.Close()
		store = redisCache
	default:
		store = cache.NewMemoryStore(cfg.Cancellation.DialogTTL())
	}

	var opts []cancellation.CancellationServiceOption

	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			zlog.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()

		migrator, err := bootstrap.NewMigrator(pool, zlog)
		if err != nil {
			zlog.Fatal("init migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			zlog.Fatal("apply migrations", zap.Error(err))
		}
		_ = migrator.Close()

		opts = append(opts, cancellation.WithAuditRepository(repository.NewCancellationRepository(pool)))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog, kafka.WithRetries(cfg.Kafka.PublishRetries))
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			zlog.Warn("kafka unreachable, events will be retried per publish", zap.Error(err))
		}
		opts = append(opts,
			cancellation.WithProducer(producer, cfg.Kafka.CancellationsTopic),
			cancellation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	cancellationService := cancellation.NewCancellationService(client, store, cfg.Cancellation.RequestLockTTL(), zlog, opts...)
	bookingsService := bookings.NewBookingsService(
		client,
		cache.NewViewCache(cfg.Bookings.ViewCacheTTL()),
		cfg.Bookings.LoadConcurrency,
		zlog,
	)
	reservationService := reservation.NewReservationService(client, cfg.Bookings.LoadConcurrency, zlog)

	events, unsubscribe := cancellationService.Subscribe()
	defer unsubscribe()
	go bookingsService.Watch(ctx, events)

	handlers := bootstrap.Handlers{
		Bookings:        api.NewBookingHandler(bookingsService),
		Cancellations:   api.NewCancellationHandler(cancellationService),
		Refunds:         api.NewRefundHandler(client),
		ServiceBookings: api.NewServiceBookingHandler(reservationService),
	}

	if err := bootstrap.Run(ctx, cfg, zlog, handlers); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
