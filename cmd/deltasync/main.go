package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/deltasync/deltasync/internal/config"
	"github.com/deltasync/deltasync/internal/core/alerting"
	"github.com/deltasync/deltasync/internal/core/conflict"
	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/monitor"
	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/internal/core/optimizer"
	"github.com/deltasync/deltasync/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/deltasync.yaml", "path to the yaml config file")
	flag.Parse()

	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.Load(*configPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("deltasync exited", log.Err(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(cfg.Metrics, logger)
	alerts := alerting.NewEngine(cfg.Alerting, logger)
	alerts.RegisterHandler(alerting.LogHandler(logger))

	// The replication engine plugs its sync and resolution callbacks in
	// here. The standalone binary runs with no-op callbacks so the
	// observability surface can be exercised on its own.
	resolvers := conflict.NewResolverRegistry()
	syncFn := func(ctx context.Context, peerID string) error { return nil }

	opt := optimizer.New(cfg.Optimizer, logger, collector, syncFn, resolvers)
	source := monitor.NewAggregateHealthSource(collector, opt.Monitor())
	coordinator := monitor.NewCoordinator(cfg.Monitoring, logger, collector, alerts, source)

	hub := server.NewAlertHub(logger)
	alerts.RegisterHandler(hub.Broadcast)
	httpServer := server.NewHTTPServer(cfg.Server, logger, coordinator, opt, hub)

	if err := opt.Start(); err != nil {
		return err
	}
	if err := coordinator.Start(); err != nil {
		opt.Stop()
		return err
	}
	if err := httpServer.Start(); err != nil {
		coordinator.Stop()
		opt.Stop()
		return err
	}
	logger.Info("deltasync started",
		log.String("logLevel", cfg.LogLevel),
		log.String("host", cfg.Server.Host),
		log.Int("port", cfg.Server.Port))

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.StopTimeout)
	defer cancel()

	g, _ := errgroup.WithContext(shutdownCtx)
	g.Go(func() error { return httpServer.Stop(shutdownCtx) })
	g.Go(func() error { coordinator.Stop(); return nil })
	g.Go(func() error { opt.Stop(); return nil })
	return g.Wait()
}
