// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/handler"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/metrics"
	"github.com/MKhiriev/go-sync-keeper/internal/server"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/internal/workers"
)

// readyTimeout bounds the startup connectivity check of the remote.
const readyTimeout = 30 * time.Second

type App struct {
	ledger    store.Ledger
	transport adapter.Transport
	services  *service.Services
	workers   *workers.Workers
	server    server.Server

	fatal  chan error
	logger *logger.Logger
}

// NewApp opens the ledger and the transport and builds every component.
// Invalid profiles are logged and dropped; no valid profile is an error.
func NewApp(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	profiles, err := cfg.ValidProfiles()
	if err != nil {
		log.Error().Err(err).Str("func", "NewApp").Msg("some sync profiles are skipped")
	}
	if len(profiles) == 0 {
		return nil, config.ErrNoProfiles
	}

	if err = cfg.Adapter.Validate(); err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()

	ledger, err := store.NewLedger(ctx, cfg.Storage.DB, clock, log)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	transport, err := adapter.NewTransport(cfg.Adapter, log)
	if err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("create transport: %w", err)
	}

	m := metrics.New()
	services, err := service.NewServices(ledger, transport, cfg, clock, m, log)
	if err != nil {
		_ = transport.Close()
		_ = ledger.Close()
		return nil, fmt.Errorf("create services: %w", err)
	}

	app := &App{
		ledger:    ledger,
		transport: transport,
		services:  services,
		fatal:     make(chan error, 1),
		logger:    log,
	}

	app.workers, err = workers.NewWorkers(profiles, services.CycleRunner, cfg.Workers.SkipInitialRun, app.onFatal, log)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	handlers, err := handler.NewHandlers(services, m.Handler(), cfg.Server, log)
	switch {
	case errors.Is(err, handler.ErrNoHandlersAreCreated):
		log.Info().Msg("status server disabled")
	case err != nil:
		_ = app.Close()
		return nil, err
	default:
		if app.server, err = server.NewServer(handlers, cfg.Server, log); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	log.Info().Int("profiles", len(profiles)).Str("adapter", cfg.Adapter.Kind).Msg("app initialised")
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	a.checkRemote(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.workers.Run(ctx)
		return nil
	})

	if a.server != nil {
		g.Go(func() error {
			return a.server.RunServer(ctx)
		})
	}

	g.Go(func() error {
		select {
		case err := <-a.fatal:
			return fmt.Errorf("%w: %w", ErrFatal, err)
		case <-ctx.Done():
			return nil
		}
	})

	err := g.Wait()
	a.logger.Info().Msg("app stopped")
	return err
}

func (a *App) RunOnce(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	a.checkRemote(ctx)
	return a.workers.RunOnce(ctx)
}

func (a *App) Close() error {
	return errors.Join(a.transport.Close(), a.ledger.Close())
}

// Services exposes the wired services, mainly for the CLI.
func (a *App) Services() *service.Services {
	return a.services
}

// checkRemote logs whether the remote answers. An unreachable remote does
// not stop the daemon; uploads fail per candidate until it is back.
func (a *App) checkRemote(ctx context.Context) {
	if err := adapter.WaitReady(ctx, a.transport, a.logger, readyTimeout); err != nil {
		a.logger.Error().Err(err).Str("func", "App.checkRemote").Msg("remote is not reachable, starting anyway")
		return
	}
	a.logger.Info().Msg("remote is reachable")
}

func (a *App) onFatal(err error) {
	select {
	case a.fatal <- err:
	default:
	}
}
