// ladderflow-server runs the HTTP analysis service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/api"
	"github.com/ladderflow/ladderflow/pkg/config"
	"github.com/ladderflow/ladderflow/pkg/events"
	"github.com/ladderflow/ladderflow/pkg/logging"
	"github.com/ladderflow/ladderflow/pkg/metrics"
	"github.com/ladderflow/ladderflow/pkg/snapshot"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level))
	registry := metrics.DefaultRegistry()

	analyzer := analysis.New(analysis.Options{
		Workers: cfg.Analysis.Workers,
		Logger:  logger.With(logging.Component("analysis")),
	})
	store := analysis.NewStore(cfg.Analysis.MaxContexts)

	opts := api.Options{
		Registry: registry,
		Logger:   logger.With(logging.Component("api")),
	}

	if cfg.Snapshot.Enabled {
		snapshots, err := snapshot.NewStore(cfg.Snapshot.Dir,
			logger.With(logging.Component("snapshot")))
		if err != nil {
			logger.Error("Snapshot store unavailable", logging.Error(err))
			os.Exit(1)
		}
		opts.Snapshots = snapshots
	}

	if cfg.Events.Enabled {
		publisher, err := events.NewPublisher(cfg.Events.Addr,
			logger.With(logging.Component("events")), registry)
		if err != nil {
			logger.Error("Event publisher unavailable", logging.Error(err))
			os.Exit(1)
		}
		defer publisher.Close()
		opts.Publisher = publisher
	}

	server, err := api.NewServer(cfg, analyzer, store, opts)
	if err != nil {
		logger.Error("Server init failed", logging.Error(err))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", logging.Error(err))
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("Signal received, shutting down", logging.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Shutdown failed", logging.Error(err))
			os.Exit(1)
		}
	}
}
