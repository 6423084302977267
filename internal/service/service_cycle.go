// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/metrics"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

type cycleRunner struct {
	reconciler Reconciler
	sweeper    Sweeper
	status     StatusService
	ids        *utils.UUIDGenerator
	clock      clockwork.Clock
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewCycleRunner(
	reconciler Reconciler,
	sweeper Sweeper,
	status StatusService,
	clock clockwork.Clock,
	m *metrics.Metrics,
	log *logger.Logger,
) CycleRunner {
	return &cycleRunner{
		reconciler: reconciler,
		sweeper:    sweeper,
		status:     status,
		ids:        utils.NewUUIDGenerator(),
		clock:      clock,
		metrics:    m,
		logger:     log,
	}
}

func (c *cycleRunner) RunCycle(ctx context.Context, profile models.Profile, guard *RunGuard) (models.CycleSummary, error) {
	summary := models.CycleSummary{
		CycleID:   c.ids.Generate(),
		Profile:   profile.ID(),
		StartedAt: c.clock.Now().UTC(),
	}
	log := c.logger.ForCycle(summary.Profile, summary.CycleID)

	if !guard.TryAcquire() {
		summary.Skipped = true
		summary.FinishedAt = summary.StartedAt
		c.metrics.CycleFinished(summary.Profile, metrics.CycleSkipped, 0)
		log.Info().Msg("previous cycle is still running, skipping")
		return summary, nil
	}
	defer guard.Release()

	ctx = log.WithContext(utils.WithCycleID(ctx, summary.CycleID))
	log.Info().Bool("batch", profile.Batch).Msg("cycle started")

	err := c.reconciler.Reconcile(ctx, profile, &summary)
	if err == nil {
		summary.Sweep, err = c.sweeper.Sweep(ctx, profile)
	}

	summary.FinishedAt = c.clock.Now().UTC()
	outcome := metrics.CycleCompleted
	if err != nil {
		summary.Aborted = true
		summary.Error = err.Error()
		outcome = metrics.CycleAborted
	}
	c.metrics.CycleFinished(summary.Profile, outcome, summary.Duration())
	c.status.Record(summary)

	ev := log.Info()
	switch {
	case errors.Is(err, context.Canceled):
		ev = log.Warn()
	case err != nil:
		ev = log.Error().Err(err)
	}
	ev.Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("already_synced", summary.Synced).
		Int("remote_deleted", summary.Sweep.RemoteDeleted).
		Int("local_deleted", summary.Sweep.LocalDeleted).
		Dur("duration", summary.Duration()).
		Msg("cycle finished")

	return summary, err
}
