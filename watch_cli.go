package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

const metricsEndpoint = "/metrics"

// runWatchCli follows the mempool until interrupted.
// Example: ogmios watch --record --max-age 1h
func runWatchCli(ctx context.Context, config *Config, args []string, out io.Writer) error {
	logger := log.FromContext(ctx)

	var (
		record   bool
		quiet    bool
		interval time.Duration
		maxAge   time.Duration
	)
	fs := newFlagSet("watch", out)
	fs.BoolVar(&record, "record", false, "record seen transactions in the database")
	fs.BoolVar(&quiet, "quiet", false, "do not print transactions")
	fs.DurationVar(&interval, "interval", 0, "pause between snapshots")
	fs.DurationVar(&maxAge, "max-age", 0, "prune recorded transactions not seen for this long")
	if err := fs.Parse(args); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := NewMetricsWithRegistry(registry)

	client, err := ogmios.Dial(ctx, config.WebsocketURL, config.websocketConfig(), config.connConfig(metrics))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", config.WebsocketURL, err)
	}
	defer client.Close()

	var store *MempoolStore
	if record {
		db, err := ConnectToDB(config.DB, logger)
		if err != nil {
			return fmt.Errorf("failed to setup database: %w", err)
		}
		store = NewMempoolStore(db)
		go metrics.RecordMetricsPeriodically(ctx, store, 15*time.Second)
	}

	metricsServer := newMetricsServer(config.MetricsListenAddr, registry)
	go func() {
		logger.Info("Prometheus metrics available", "listenAddr", config.MetricsListenAddr, "endpoint", metricsEndpoint)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failure", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down metrics server", "error", err)
		}
	}()

	opts := WatchOptions{Interval: interval, MaxAge: maxAge}
	if !quiet {
		opts.Out = out
	}
	watcher := NewMempoolWatcher(client, store, metrics, opts)

	logger.Info("watching mempool", "url", config.WebsocketURL, "record", record)
	err = watcher.Run(ctx)
	logger.Info("stopped watching mempool")
	return err
}

func newMetricsServer(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
