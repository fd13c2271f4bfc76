package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/clients/kafka_client"
	"github.com/spacesedan/sentidash/internal/db"
	"github.com/spacesedan/sentidash/internal/logging"
	"github.com/spacesedan/sentidash/internal/monitoring"
	"github.com/spacesedan/sentidash/internal/processing"
	"github.com/spacesedan/sentidash/internal/server"
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

	analyzer := processing.NewDefaultAnalyzer(cfg.StopWordsPath,
		processing.WithKeywordCount(cfg.KeywordCount),
		processing.WithWorkers(cfg.BatchWorkers),
		processing.WithDefaultDate(cfg.DefaultDate),
	)

	opts := server.Options{
		Analyzer:       analyzer,
		Store:          resultStore,
		Healthy:        &atomic.Bool{},
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	opts.Healthy.Store(true)

	if cfg.ArchiveEnabled {
		dynamo, err := clients.GetDynamoDBClient(ctx, clients.AWSOptions{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.AWSEndpoint,
		})
		if err != nil {
			slog.Warn("[Main] Archive disabled, DynamoDB unavailable", slog.String("error", err.Error()))
		} else {
			opts.Archive = db.NewArchive(dynamo, cfg.SessionID)
		}
	}

	if cfg.KafkaPublishResults {
		if err := kafka_client.InitProducer(kafka_client.NewKafkaConfig(cfg.KafkaBroker, cfg.KafkaGroupID)); err != nil {
			slog.Warn("[Main] Result publishing disabled", slog.String("error", err.Error()))
		} else {
			defer kafka_client.CloseProducer()
			opts.Publisher = kafka_client.NewResultPublisher()
		}
	}

	go monitoring.MonitorHealth(ctx, "result-store", resultStore, opts.Healthy, monitoring.HEALTHCHECK_TIMER)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.NewRouter(opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("[Main] Dashboard API listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Shutdown error", slog.String("error", err.Error()))
	}
}
