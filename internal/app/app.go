package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/ratechat-server/internal/config"
	"github.com/vovakirdan/ratechat-server/internal/core"
	"github.com/vovakirdan/ratechat-server/internal/rates"
	"github.com/vovakirdan/ratechat-server/internal/service/exchange"
	"github.com/vovakirdan/ratechat-server/internal/store"
	"github.com/vovakirdan/ratechat-server/internal/store/filelog"
	"github.com/vovakirdan/ratechat-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/ratechat-server/internal/transport/http"
)

const shutdownReason = "server shutting down"

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	registry        *core.Registry
	rates           *rates.Client
	journal         store.ExchangeLog
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	journal, err := openJournal(cfg.ExchangeLog)
	if err != nil {
		return nil, fmt.Errorf("init exchange log: %w", err)
	}

	logger.Info().
		Str("driver", cfg.ExchangeLog.Driver).
		Str("path", cfg.ExchangeLog.Path).
		Msg("exchange log initialized")

	ratesClient := rates.NewClient(rates.Options{
		BaseURL:             cfg.Rates.BaseURL,
		Timeout:             cfg.Rates.RequestTimeout,
		MaxIdleConnsPerHost: cfg.Rates.MaxIdleConnsPerHost,
	}, logger)

	ex := exchange.New(ratesClient, exchange.Options{
		BaseCurrency:         cfg.Rates.BaseCurrency,
		Currencies:           cfg.Rates.Currencies,
		MaxConcurrentLookups: cfg.Rates.MaxConcurrentLookups,
	}, logger)

	registry := core.NewRegistry(core.RandomName, logger)
	broadcaster := core.NewBroadcaster(registry, cfg.WriteTimeout, logger)
	dispatcher := core.NewDispatcher(broadcaster, ex, journal, logger)

	server := transporthttp.NewServer(transporthttp.Deps{
		Registry:   registry,
		Dispatcher: dispatcher,
		Exchange:   ex,
		Journal:    journal,
	}, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		registry:        registry,
		rates:           ratesClient,
		journal:         journal,
		log:             logger,
	}, nil
}

func openJournal(cfg config.ExchangeLogConfig) (store.ExchangeLog, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.New(cfg.Path)
	case "file", "":
		return filelog.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown exchange log driver %q", cfg.Driver)
	}
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("starting ratechat server")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		// Shutdown does not wait for hijacked websocket connections.
		a.registry.CloseAll(shutdownReason)
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the journal and upstream connections.
func (a *App) cleanup() {
	a.rates.CloseIdleConnections()
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close exchange log")
		} else {
			a.log.Info().Msg("exchange log closed")
		}
	}
}
