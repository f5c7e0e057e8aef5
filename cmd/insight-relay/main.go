package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"moneymanager/internal/cli"
	"moneymanager/internal/completion"
	"moneymanager/internal/config"
	apphttp "moneymanager/internal/http"
	"moneymanager/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "insight-relay:", err)
		os.Exit(1)
	}
}

func completionConfig(cfg *config.Config) completion.Config {
	return completion.Config{
		Provider: cfg.InsightProvider,
		Options: completion.Options{
			APIKey: cfg.APIKey(),
			Model:  cfg.InsightModel,
		},
		BaseURL: cfg.OpenRouterBaseURL,
		Referer: cfg.RelayReferer,
	}
}

func run() error {
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.ValidateRelay(); err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, os.Stdout, log.ComponentRelay)

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	completer, err := completion.New(ctx, completionConfig(cfg))
	if err != nil {
		return fmt.Errorf("create completion provider: %w", err)
	}
	if cfg.APIKey() == "" {
		logger.Warn("No API key configured; analyze requests will fail",
			log.FieldProvider, completer.Name(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:         ":" + cfg.RelayPort,
		RateLimit:    cfg.RelayRateLimit,
		AllowOrigins: cfg.AllowOrigins(),
	}, completer, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting insight relay",
			"port", cfg.RelayPort,
			log.FieldProvider, completer.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RelayShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("Insight relay stopped")
		return nil
	})

	return g.Wait()
}
