// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/models"
)

type Workers struct {
	cron        *cron.Cron
	workers     []*ProfileWorker
	skipInitial bool

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewWorkers registers one cron entry per profile. A profile whose schedule
// cannot be parsed fails construction.
func NewWorkers(
	profiles []models.Profile,
	runner service.CycleRunner,
	skipInitialRun bool,
	onFatal FatalHandler,
	log *logger.Logger,
) (*Workers, error) {
	cl := cronLogger{log}
	w := &Workers{
		cron:        cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		skipInitial: skipInitialRun,
		logger:      log,
	}

	for _, p := range profiles {
		pw := NewProfileWorker(p, runner, onFatal, log)
		if _, err := w.cron.AddFunc(p.Schedule(), func() { w.trigger(pw) }); err != nil {
			return nil, fmt.Errorf("%w: profile %s: %w", ErrInvalidSchedule, p.ID(), err)
		}
		w.workers = append(w.workers, pw)
	}

	return w, nil
}

// Start starts the scheduler. Cycles run with a context derived from ctx.
// Unless initial runs are disabled every profile starts a cycle right away.
func (w *Workers) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.cron.Start()
	w.logger.Info().Int("profiles", len(w.workers)).Msg("scheduler started")

	if w.skipInitial {
		return
	}
	for _, pw := range w.workers {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			pw.Run(w.runContext())
		}()
	}
}

// Stop stops scheduling new cycles, cancels the running ones and waits for
// them to return or for ctx to expire.
func (w *Workers) Stop(ctx context.Context) error {
	stopped := w.cron.Stop()

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		w.logger.Warn().Msg("scheduler stop timed out, cycles still running")
		return ctx.Err()
	}
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (w *Workers) Run(ctx context.Context) {
	w.Start(ctx)
	<-ctx.Done()
	_ = w.Stop(context.WithoutCancel(ctx))
}

// RunOnce runs one cycle of every profile concurrently and returns the
// first fatal error.
func (w *Workers) RunOnce(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, pw := range w.workers {
		g.Go(func() error {
			return pw.run(ctx)
		})
	}
	return g.Wait()
}

func (w *Workers) trigger(pw *ProfileWorker) {
	w.wg.Add(1)
	defer w.wg.Done()
	pw.Run(w.runContext())
}

func (w *Workers) runContext() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}
