package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/clients/kafka_client"
	"github.com/spacesedan/sentidash/internal/consumers"
	"github.com/spacesedan/sentidash/internal/logging"
	"github.com/spacesedan/sentidash/internal/monitoring"
	"github.com/spacesedan/sentidash/internal/processing"
	"github.com/spacesedan/sentidash/internal/store"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kafkaCfg := kafka_client.NewKafkaConfig(cfg.KafkaBroker, cfg.KafkaGroupID)
	for {
		err := kafka_client.InitProducer(kafkaCfg)
		if err == nil {
			break
		}

		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer kafka_client.CloseProducer()

	resultStore, closeStore, err := store.Open(cfg.StoreBackend, clients.ValkeyOptions{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		UseTLS:   cfg.ValkeyTLS,
	}, cfg.SessionID)
	if err != nil {
		slog.Error("[Main] Failed to open result store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	storeHealthy := &atomic.Bool{}
	monitoring.CheckHealth(ctx, "result-store", resultStore, storeHealthy)
	go monitoring.MonitorHealth(ctx, "result-store", resultStore, storeHealthy, monitoring.HEALTHCHECK_TIMER)

	analyzer := processing.NewDefaultAnalyzer(cfg.StopWordsPath,
		processing.WithKeywordCount(cfg.KeywordCount),
		processing.WithWorkers(cfg.BatchWorkers),
		processing.WithDefaultDate(cfg.DefaultDate),
	)
	requests := consumers.NewAnalysisRequestConsumer(analyzer, kafka_client.NewResultPublisher(), resultStore)

	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_ANALYSIS_REQUEST,
		consumers.WrapConsumer(requests.Start).WithHealthCheck(storeHealthy).Handler())

	if err := kafka_client.StartConsumer(ctx, kafkaCfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
