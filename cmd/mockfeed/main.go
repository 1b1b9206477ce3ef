// Command mockfeed serves a synthetic Kandilli live feed for local end-to-end
// runs of quakealert.
//
// Usage:
//
//	go run ./cmd/mockfeed -addr :8081 -count 60
//	FEED_URL=http://localhost:8081/live go run ./cmd/quakealert
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/quake-alert-service/internal/config"
	"github.com/couchcryptid/quake-alert-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	logger := sharedobs.NewLogger(sharedcfg.EnvOrDefault("LOG_LEVEL", "info"), sharedcfg.EnvOrDefault("LOG_FORMAT", "text"))

	addr := flag.String("addr", ":8081", "listen address")
	lat := flag.Float64("lat", envFloat("OBSERVER_LAT", 41.0082), "centre latitude")
	lon := flag.Float64("lon", envFloat("OBSERVER_LON", 28.9784), "centre longitude")
	count := flag.Int("count", 50, "records per response")
	spread := flag.Float64("spread", 4, "max offset from the centre in degrees")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	failStatus := flag.Int("fail-status", 0, "answer /live with this HTTP status instead of data")
	flag.Parse()

	// Timestamps are published in the same offset quakealert reads them in.
	loc, err := config.LocalZone()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gen := httpadapter.NewGenerator(domain.Geo{Lat: *lat, Lon: *lon}, *count, *spread, *seed,
		clockwork.NewRealClock(), loc)
	srv := httpadapter.NewServer(*addr, gen, *failStatus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}
