package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/broker"
	"github.com/sagarc03/edgeserve/cache"
	"github.com/sagarc03/edgeserve/config"
	edgehttp "github.com/sagarc03/edgeserve/http"
	"github.com/sagarc03/edgeserve/keybackend"
	"github.com/sagarc03/edgeserve/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the edge HTTP server.

On SIGINT or SIGTERM the server stops accepting requests, finishes in-flight
ones, and waits for pending cache writes and notifications before exiting.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8787, "HTTP server port (env: EDGESERVE_SERVER_PORT)")
	serveCmd.Flags().String("cache-type", "", "response cache: memory, redis, none (env: EDGESERVE_CACHE_TYPE)")
	serveCmd.Flags().String("broker-url", "", "broker publish URL; empty disables notifications (env: EDGESERVE_BROKER_URL)")
	serveCmd.Flags().String("metrics-addr", "", "metrics listen address, e.g. :9100 (env: EDGESERVE_METRICS_ADDR)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	blobs, closeBlobs, err := openBlobStore(ctx, cfg.Blob)
	if err != nil {
		return err
	}
	defer func() { _ = closeBlobs() }()
	slog.Info("opened blob store", "type", cfg.Blob.Type)

	names, closeNames, err := keybackend.NewNameStore(ctx, cfg.Names)
	if err != nil {
		return err
	}
	defer func() { _ = closeNames() }()
	slog.Info("opened name store", "type", cfg.Names.Type)

	respCache, closeCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()
	slog.Info("opened response cache", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)

	var notifier edgeserve.Notifier
	if cfg.Broker.Enabled() {
		n, err := broker.New(cfg.Broker)
		if err != nil {
			return err
		}
		notifier = n
		slog.Info("download notifications enabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tasks := edgeserve.NewBackground(cfg.Server.TaskTimeout, m.TaskDone)

	service, err := edgeserve.NewService(blobs, names)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := edgehttp.NewHandler(&edgehttp.HandlerConfig{
		ClientIPHeader: cfg.Server.ClientIPHeader,
		MaxCacheBytes:  cfg.Cache.MaxObjectBytes,
		Cache:          respCache,
		Notifier:       notifier,
		Tasks:          tasks,
		Metrics:        m,
	}, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		return listen(server)
	})

	if metricsServer != nil {
		g.Go(func() error {
			slog.Info("starting metrics server", "addr", metricsServer.Addr)
			return listen(metricsServer)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "err", err)
			}
		}

		if err := tasks.Wait(shutdownCtx); err != nil {
			slog.Warn("abandoning background tasks", "err", err)
		}
		return nil
	})

	return g.Wait()
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
