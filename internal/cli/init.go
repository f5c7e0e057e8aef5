// Package cli provides the initialization shared by cmd/moneymanager and
// cmd/insight-relay.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moneymanager/internal/amqp"
	"moneymanager/internal/backend"
	"moneymanager/internal/config"
	"moneymanager/internal/log"
	"moneymanager/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the logger described by cfg, writing to w, and makes it
// the default logger.
func SetupLogger(cfg *config.Config, w io.Writer, component string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    log.Format(cfg.LogFormat),
		Component: component,
		Output:    w,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads .env and the environment, then validates the
// settings every command shares.
func LoadAndValidateConfig() (*config.Config, error) {
	LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Session is an open store plus whatever has to be released with it.
type Session struct {
	Store *storage.Store
	Feed  *amqp.Client

	cleanups []func() error
}

// OpenStore opens the configured backend behind a Store and, when AMQP_URL
// is set, attaches the change feed. A feed that cannot connect is logged
// and skipped.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Session, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Session{Store: storage.NewStore(res.Backend, logger)}
	s.cleanups = append(s.cleanups, s.Store.Close)

	if cfg.AMQPURL != "" {
		feed, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change feed",
				log.FieldError, err.Error(),
				log.FieldErrorType, log.ErrorTypeNetwork)
		} else {
			detach := feed.Attach(s.Store)
			s.Feed = feed
			s.cleanups = append(s.cleanups, func() error { detach(); return feed.Close() })
			logger.Info("Change feed enabled", "exchange", cfg.AMQPExchange)
		}
	}
	return s, nil
}

// Close releases the session in reverse order of acquisition.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		if err := s.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.cleanups = nil
	return errors.Join(errs...)
}

// GracefulShutdown returns a context that is cancelled on SIGINT or SIGTERM.
// The returned stop function releases the signal handler.
func GracefulShutdown(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
