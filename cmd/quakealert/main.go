// Command quakealert performs one evaluation pass over the Kandilli live feed
// and notifies a Telegram chat about nearby earthquakes. It is meant to be
// started by an external scheduler every few minutes.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafkaadapter "github.com/couchcryptid/quake-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/kandilli"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/telegram"
	"github.com/couchcryptid/quake-alert-service/internal/config"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
	"github.com/couchcryptid/quake-alert-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := kandilli.NewClient(cfg.FeedURL, cfg.FeedTimeout, logger)

	if !cfg.TelegramEnabled() {
		logger.Warn("telegram credentials missing, notifications will not be delivered")
	}
	messenger := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID,
		cfg.TelegramTextTimeout, cfg.TelegramPhotoTimeout, logger)

	// Map images are feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var maps pipeline.MapRenderer
	if cfg.MapboxEnabled {
		maps = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxStyle, cfg.MapboxTimeout, logger)
		logger.Info("mapbox static maps enabled", "style", cfg.MapboxStyle, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox static maps disabled")
	}

	var publisher pipeline.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("notification outbox enabled", "topic", cfg.KafkaTopic)
	}

	dispatcher := pipeline.NewDispatcher(messenger, maps, cfg.Observer, logger, metrics)
	runner := pipeline.NewRunner(feed, dispatcher, publisher, clockwork.NewRealClock(), pipeline.Settings{
		Observer:   cfg.Observer,
		Thresholds: cfg.Thresholds,
		DailyGate:  cfg.DailyGate,
		Location:   cfg.Location,
	}, logger, metrics)

	runner.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.Push(pushCtx, cfg.PushgatewayURL, metrics); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
	}
}
