package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/travelbook/config"
	"github.com/Domenick1991/travelbook/internal/email"
	"github.com/Domenick1991/travelbook/internal/kafka"
	"github.com/Domenick1991/travelbook/internal/logger"
	"github.com/Domenick1991/travelbook/internal/repository"
	"github.com/Domenick1991/travelbook/internal/travelapi"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type auditPruner interface {
	DeleteBefore(ctx context.Context, deadline time.Time) (int64, error)
}

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

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog)
		defer consumer.Close()

		client := travelapi.New(cfg.TravelAPI.BaseURL, cfg.TravelAPI.Token, cfg.TravelAPI.Timeout())
		sender := email.NewSender(zlog, email.WithRecipientLookup(client))
		go func() {
			if err := consumer.ConsumeCancellations(ctx, sender.Send); err != nil {
				zlog.Error("consumer stopped", zap.Error(err))
				stop()
			}
		}()
	} else {
		zlog.Warn("kafka notifications topic not configured, email delivery disabled")
	}

	var pruner auditPruner
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			zlog.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()
		pruner = repository.NewCancellationRepository(pool)
	}

	sweepTicker := time.NewTicker(cfg.Worker.SweepInterval())
	defer sweepTicker.Stop()

	zlog.Info("worker started")
	for {
		select {
		case <-sweepTicker.C:
			if pruner == nil {
				continue
			}
			sweepAudit(ctx, pruner, time.Now().Add(-cfg.Worker.AuditRetention()), zlog)
		case <-ctx.Done():
			zlog.Info("shutting down worker")
			return
		}
	}
}

func sweepAudit(ctx context.Context, pruner auditPruner, deadline time.Time, logger *zap.Logger) {
	deleted, err := pruner.DeleteBefore(ctx, deadline)
	if err != nil {
		logger.Error("audit retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Info("audit records expired", zap.Int64("deleted", deleted), zap.Time("before", deadline))
	}
}
