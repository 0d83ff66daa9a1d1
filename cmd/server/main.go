package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/quizshow/internal/config"
	"github.com/playperu/quizshow/internal/database"
	"github.com/playperu/quizshow/internal/handler/health"
	"github.com/playperu/quizshow/internal/seed"
	"github.com/playperu/quizshow/internal/server"
	"github.com/playperu/quizshow/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	data, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("loading seed data: %w", err)
	}

	// --- Sessions ---
	if cfg.DBDir != database.Memory {
		if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
			return fmt.Errorf("creating db dir: %w", err)
		}
	}
	sessions := session.NewRegistry(session.Options{
		Dir:    cfg.DBDir,
		Buffer: cfg.SubscriberBuffer,
		Seed:   data,
		Logger: logger,
	})
	defer sessions.Close()

	checks := make(map[string]health.Checker, len(cfg.Sessions))
	for _, name := range cfg.Sessions {
		s, err := sessions.Open(ctx, name)
		if err != nil {
			return fmt.Errorf("opening session: %w", err)
		}
		checks["session:"+name] = s
	}
	logger.Info("sessions ready", "sessions", sessions.Names(), "dir", cfg.DBDir)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Options{
		Sessions:    sessions,
		KeepAlive:   cfg.SSEKeepAlive,
		CORSOrigins: cfg.CORSOrigins,
		Health:      health.NewHandler(logger, checks).Routes(),
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
