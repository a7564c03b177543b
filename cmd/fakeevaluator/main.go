// Command fakeevaluator serves sample conversations over the evaluator API so
// the dashboard can be run without the real service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/runixer/evalboard/internal/app"
	"github.com/runixer/evalboard/internal/config"
	"github.com/runixer/evalboard/internal/fixture"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := app.LoadEnv(); err != nil {
		slog.Warn("failed to load .env, relying on environment variables", "error", err)
	}

	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	seedPath := flag.String("seed", "", "YAML seed file (overrides fixture.seed_path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seedPath != "" {
		cfg.Fixture.SeedPath = *seedPath
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("fake evaluator failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config) error {
	store, err := fixture.NewStore(logger, cfg.Fixture.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	total, err := store.CountConversations(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		seed, err := loadSeed(cfg.Fixture.SeedPath)
		if err != nil {
			return err
		}
		if err := store.Seed(ctx, seed); err != nil {
			return err
		}
	} else {
		logger.Info("Database already populated, skipping seed", "conversations", total)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Fixture.ListenPort,
		Handler:           fixture.NewHandler(store, cfg.Fixture.Version, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("fake evaluator shutdown failed", "error", err)
		}
	}()

	logger.Info("Starting fake evaluator", "port", cfg.Fixture.ListenPort, "database", cfg.Fixture.DatabasePath, "metrics", "/metrics")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Fake evaluator stopped")
	return nil
}

func loadSeed(path string) (fixture.SeedFile, error) {
	if path == "" {
		return fixture.DefaultSeed()
	}
	return fixture.LoadSeed(path)
}
