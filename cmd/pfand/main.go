package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-arndt/pfand/internal/api"
	"github.com/p-arndt/pfand/internal/broker"
	"github.com/p-arndt/pfand/internal/config"
	"github.com/p-arndt/pfand/internal/reaper"
	"github.com/p-arndt/pfand/internal/sandbox"
	"github.com/p-arndt/pfand/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "path to pfand.yaml")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	if cfg.APIKey == "" {
		logger.Warn("no API key configured — running in open access mode")
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	sc, err := sandbox.New()
	if err != nil {
		logger.Error("docker client", "error", err)
		os.Exit(1)
	}
	defer sc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sc.Ping(ctx); err != nil {
		logger.Error("docker ping failed — is Docker running?", "error", err)
		os.Exit(1)
	}
	logger.Info("docker connection OK")

	if err := sandbox.SweepLeftovers(ctx, sc, logger); err != nil {
		logger.Warn("sweep leftovers", "error", err)
	}

	reservoir, err := sandbox.NewReservoir(ctx, sc, cfg, logger)
	if err != nil {
		logger.Error("warm reservoir", "error", err)
		os.Exit(1)
	}
	logger.Info("reservoir warm", "capacity", cfg.Capacity, "image", cfg.Image)

	brk, err := broker.New(cfg, st, broker.PoolReservoir(reservoir), logger)
	if err != nil {
		logger.Error("broker init", "error", err)
		os.Exit(1)
	}

	rpr := reaper.New(st, brk, time.Duration(cfg.ReapIntervalSeconds)*time.Second, logger)
	go rpr.Run(ctx)

	srv := api.NewServer(cfg, brk, logger)

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Listen)
	fmt.Fprintf(os.Stderr, "\n  pfand daemon ready at http://%s\n\n", cfg.Listen)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	// Outstanding leases go back to the pool, then the containers come down.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer drainCancel()
	brk.Shutdown(drainCtx)
	sandbox.DrainReservoir(reservoir, logger)
	logger.Info("shutdown complete")
}
