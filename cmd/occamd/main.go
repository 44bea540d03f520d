// SPDX-License-Identifier: MIT

// occamd is the streaming subscription optimizer daemon. It wires the service
// catalog, the Redis cache, the upstream availability provider and the
// optimizer together and serves the HTTP API until signalled to stop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/occamtv/occam/internal/api"
	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/catalog"
	"github.com/occamtv/occam/internal/config"
	"github.com/occamtv/occam/internal/health"
	"github.com/occamtv/occam/internal/log"
	"github.com/occamtv/occam/internal/optimize"
	"github.com/occamtv/occam/internal/provider"
	"github.com/occamtv/occam/internal/provider/streamavail"
	"github.com/occamtv/occam/internal/provider/watchmode"
	"github.com/occamtv/occam/internal/telemetry"
)

// Build metadata, injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("occamd %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	if err := run(); err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("daemon failed")
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "occam", Version: version})
	logger := log.Base()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		ServiceName:    "occam",
		ServiceVersion: version,
		ExporterType:   cfg.TraceExporter,
		Endpoint:       cfg.TraceEndpoint,
		SamplingRate:   cfg.TraceSample,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	store, err := catalog.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	data, err := cache.New(ctx, cache.Config{
		URL:       cfg.RedisURL,
		QueueSize: cfg.CacheQueueSize,
		LocalTTL:  cfg.LocalCacheTTL,
	}, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("cache: %w", err)
	}

	var upstream provider.Provider
	switch cfg.Provider {
	case config.ProviderDirectIMDB:
		upstream = streamavail.New(data, cfg.StreamingAPIKey, cfg.StreamingAPIURL,
			streamavail.Config{SearchTTL: cfg.SearchCacheTTL}, logger)
	case config.ProviderProxiedID:
		upstream, err = watchmode.New(ctx, data, store, cfg.StreamingAPIKey, cfg.StreamingAPIURL,
			watchmode.Config{SearchTTL: cfg.SearchCacheTTL}, logger)
		if err != nil {
			store.Close()
			_ = data.Close()
			return fmt.Errorf("provider: %w", err)
		}
	}

	optimizer := optimize.New(upstream, store, logger)

	hm := health.NewManager(version)
	hm.RegisterChecker(health.NewPingChecker("redis", 0, data.Ping))
	hm.RegisterChecker(health.NewPingChecker("postgres", 0, store.Ping))

	server := api.New(upstream, optimizer, hm, api.Config{RateLimitRPS: cfg.RateLimitRPS})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.MetricsListen != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           metricsHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("provider", string(cfg.Provider)).
			Msg("api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	if metricsServer != nil {
		g.Go(func() error {
			logger.Info().Str("addr", metricsServer.Addr).Msg("metrics listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	logger.Info().Str("version", version).Msg("occam started")
	err = g.Wait()

	// No request can arrive anymore. Drain queued cache writes, flush spans,
	// then release the connections.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if derr := data.Shutdown(shutdownCtx); derr != nil {
		logger.Warn().Err(derr).Msg("cache drain incomplete")
	}
	if terr := tracing.Shutdown(shutdownCtx); terr != nil {
		logger.Warn().Err(terr).Msg("trace flush incomplete")
	}
	store.Close()
	if cerr := data.Close(); cerr != nil {
		logger.Warn().Err(cerr).Msg("redis close failed")
	}

	logger.Info().Msg("occam stopped")
	return err
}

// metricsHandler serves the Prometheus registry on its own mux so the
// metrics listener exposes nothing else.
func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
