// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// ProfileWorker runs the cycles of one profile. Triggers arriving while a
// cycle is in flight are skipped by the run guard.
type ProfileWorker struct {
	profile models.Profile
	runner  service.CycleRunner
	guard   *service.RunGuard
	onFatal FatalHandler
	logger  *logger.Logger
}

func NewProfileWorker(profile models.Profile, runner service.CycleRunner, onFatal FatalHandler, log *logger.Logger) *ProfileWorker {
	return &ProfileWorker{
		profile: profile,
		runner:  runner,
		guard:   service.NewRunGuard(),
		onFatal: onFatal,
		logger:  log,
	}
}

func (w *ProfileWorker) Run(ctx context.Context) {
	_ = w.run(ctx)
}

// run executes one cycle and returns only errors that must stop the process.
func (w *ProfileWorker) run(ctx context.Context) error {
	_, err := w.runner.RunCycle(ctx, w.profile, w.guard)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, store.ErrLedgerIO):
		w.logger.Error().Err(err).
			Str("func", "ProfileWorker.run").
			Str("profile", w.profile.ID()).
			Msg("ledger is unusable")
		if w.onFatal != nil {
			w.onFatal(err)
		}
		return err
	default:
		// already logged by the cycle runner; the next trigger retries
		return nil
	}
}

// Profile returns the profile the worker reconciles.
func (w *ProfileWorker) Profile() models.Profile {
	return w.profile
}
