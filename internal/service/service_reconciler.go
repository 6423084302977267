// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/archive"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/metrics"
	"github.com/MKhiriev/go-sync-keeper/internal/probe"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

type reconciler struct {
	ledger    store.Ledger
	transport adapter.Transport
	prober    probe.Prober
	archiver  archive.Archiver
	clock     clockwork.Clock
	timeout   time.Duration
	metrics   *metrics.Metrics
}

// NewReconciler builds a [Reconciler]. timeout bounds every transport call;
// zero means no bound.
func NewReconciler(
	ledger store.Ledger,
	transport adapter.Transport,
	prober probe.Prober,
	archiver archive.Archiver,
	clock clockwork.Clock,
	timeout time.Duration,
	m *metrics.Metrics,
) Reconciler {
	return &reconciler{
		ledger:    ledger,
		transport: transport,
		prober:    prober,
		archiver:  archiver,
		clock:     clock,
		timeout:   timeout,
		metrics:   m,
	}
}

func (r *reconciler) Reconcile(ctx context.Context, profile models.Profile, summary *models.CycleSummary) error {
	log := logger.FromContext(ctx)

	candidates, base, err := r.candidates(ctx, profile, summary)
	if err != nil {
		return err
	}
	summary.Candidates = len(candidates)

	pending := make([]string, 0, len(candidates))
	for _, c := range candidates {
		synced, err := r.synced(ctx, profile.ID(), c)
		if err != nil {
			return err
		}
		if synced {
			summary.Record(models.CandidateResult{LocalPath: c, Outcome: models.OutcomeAlreadySynced})
			continue
		}
		pending = append(pending, c)
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("unsynced", len(pending)).
		Int("locked", summary.Locked).
		Msg("reconciling")

	for _, c := range pending {
		if err = ctx.Err(); err != nil {
			log.Warn().Msg("cycle cancelled, remaining candidates left for the next cycle")
			return err
		}

		res, err := r.transfer(ctx, profile, base, c)
		if err != nil {
			return err
		}
		summary.Record(res)
	}

	log.Info().
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("reconcile finished")

	return nil
}

// candidates returns the files to consider and the base directory remote
// paths are derived from.
func (r *reconciler) candidates(ctx context.Context, profile models.Profile, summary *models.CycleSummary) ([]string, string, error) {
	if profile.Batch {
		name := archive.Name(profile.LocalDir, r.clock.Now())
		path, err := r.archiver.CreateArchive(ctx, profile.LocalDir, profile.StagingDir, name, profile.Exclude)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrArchiveCreation, err)
		}
		return []string{path}, profile.StagingDir, nil
	}

	scan, err := r.prober.Scan(ctx, profile)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: %w", ErrScan, err)
	}

	summary.Locked = len(scan.Locked)
	r.metrics.Locked(profile.ID(), len(scan.Locked))
	for _, f := range scan.Locked {
		logger.FromContext(ctx).Debug().Str("path", f).Msg("file is busy, retrying next cycle")
	}

	return scan.Candidates, profile.LocalDir, nil
}

func (r *reconciler) synced(ctx context.Context, profile, path string) (bool, error) {
	rec, err := r.ledger.Lookup(ctx, profile, path)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return rec.SyncSuccess, nil
}

// transfer uploads one candidate and commits it to the ledger. Only ledger
// failures are returned; a transport failure is a failed result.
//
// The upload and the ledger write run detached from ctx cancellation so an
// in-flight file is never uploaded without being recorded.
func (r *reconciler) transfer(ctx context.Context, profile models.Profile, base, localPath string) (models.CandidateResult, error) {
	log := logger.FromContext(ctx)
	remotePath := profile.RemotePathFor(base, localPath)
	detached := context.WithoutCancel(ctx)

	upCtx, cancel := withTimeout(detached, r.timeout)
	_, err := r.transport.Upload(upCtx, localPath, remotePath)
	cancel()
	if err != nil {
		r.metrics.Upload(profile.ID(), false)
		log.Error().Err(err).
			Str("func", "reconciler.transfer").
			Str("local_path", localPath).
			Str("remote_path", remotePath).
			Msg("upload failed")
		return models.CandidateResult{
			LocalPath:  localPath,
			RemotePath: remotePath,
			Outcome:    models.OutcomeFailed,
			Reason:     err.Error(),
		}, nil
	}

	if err = r.ledger.Upsert(detached, profile.ID(), localPath, remotePath); err != nil {
		return models.CandidateResult{}, err
	}
	if err = r.ledger.SetSyncStatus(detached, profile.ID(), localPath, true); err != nil {
		return models.CandidateResult{}, err
	}

	r.metrics.Upload(profile.ID(), true)
	log.Info().
		Str("local_path", localPath).
		Str("remote_path", remotePath).
		Msg("file synced")

	return models.CandidateResult{
		LocalPath:  localPath,
		RemotePath: remotePath,
		Outcome:    models.OutcomeUploaded,
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
