// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
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

const day = 24 * time.Hour

type sweeper struct {
	ledger    store.Ledger
	transport adapter.Transport
	clock     clockwork.Clock
	timeout   time.Duration
	metrics   *metrics.Metrics
}

func NewSweeper(
	ledger store.Ledger,
	transport adapter.Transport,
	clock clockwork.Clock,
	timeout time.Duration,
	m *metrics.Metrics,
) Sweeper {
	return &sweeper{
		ledger:    ledger,
		transport: transport,
		clock:     clock,
		timeout:   timeout,
		metrics:   m,
	}
}

func (s *sweeper) Sweep(ctx context.Context, profile models.Profile) (models.SweepSummary, error) {
	var summary models.SweepSummary

	if profile.RemoteRetentionDays > 0 {
		if err := s.sweepRemote(ctx, profile, &summary); err != nil {
			return summary, err
		}
	}

	if profile.Batch && profile.LocalRetentionDays > 0 {
		if err := s.sweepLocal(ctx, profile, &summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// sweepRemote deletes remote entries whose ledger record is older than the
// remote retention. Entries unknown to the ledger are left alone.
func (s *sweeper) sweepRemote(ctx context.Context, profile models.Profile, summary *models.SweepSummary) error {
	log := logger.FromContext(ctx)
	retention := time.Duration(profile.RemoteRetentionDays) * day

	listCtx, cancel := withTimeout(ctx, s.timeout)
	names, err := s.transport.List(listCtx, profile.RemoteDir)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error().Err(err).
			Str("func", "sweeper.sweepRemote").
			Str("remote_dir", profile.RemoteDir).
			Msg("cannot list remote directory, remote sweep skipped")
		return nil
	}

	now := s.clock.Now()
	for _, name := range names {
		if err = ctx.Err(); err != nil {
			return err
		}

		remotePath := models.JoinRemote(profile.RemoteDir, name)
		rec, err := s.ledger.Lookup(ctx, profile.ID(), remotePath)
		if errors.Is(err, store.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if rec.Age(now) <= retention {
			continue
		}

		delCtx, cancel := withTimeout(ctx, s.timeout)
		_, err = s.transport.Delete(delCtx, remotePath)
		cancel()
		if err != nil {
			summary.RemoteFailed++
			s.metrics.RemoteDeletion(profile.ID(), false)
			log.Error().Err(err).
				Str("func", "sweeper.sweepRemote").
				Str("remote_path", remotePath).
				Msg("cannot delete expired remote file")
			continue
		}

		if err = s.ledger.MarkRemoteDeleted(context.WithoutCancel(ctx), profile.ID(), remotePath); err != nil {
			return err
		}

		summary.RemoteDeleted++
		s.metrics.RemoteDeletion(profile.ID(), true)
		log.Info().
			Str("remote_path", remotePath).
			Time("sync_time", rec.SyncTime).
			Msg("expired remote file deleted")
	}

	return nil
}

// sweepLocal deletes staged archives older than the local retention. Age is
// counted in whole calendar days from the timestamp in the archive name.
func (s *sweeper) sweepLocal(ctx context.Context, profile models.Profile, summary *models.SweepSummary) error {
	log := logger.FromContext(ctx)
	origin := filepath.Base(profile.ID())
	now := s.clock.Now()

	entries, err := os.ReadDir(profile.StagingDir)
	if err != nil {
		log.Error().Err(err).
			Str("func", "sweeper.sweepLocal").
			Str("staging_dir", profile.StagingDir).
			Msg("cannot read staging directory, local sweep skipped")
		return nil
	}

	for _, e := range entries {
		if err = ctx.Err(); err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			continue
		}

		stamp, ok := archive.ParseName(e.Name(), origin, now.Location())
		if !ok {
			continue
		}
		if calendarDays(stamp, now) <= profile.LocalRetentionDays {
			continue
		}

		path := filepath.Join(profile.StagingDir, e.Name())
		if err = probe.TryLock(path, os.O_WRONLY|os.O_APPEND); err != nil {
			summary.LocalSkipped++
			s.metrics.LocalDeletion(profile.ID(), metrics.ResultSkipped)
			log.Warn().Err(err).Str("path", path).Msg("expired archive is in use, retrying next cycle")
			continue
		}

		if err = os.Remove(path); err != nil {
			summary.LocalFailed++
			s.metrics.LocalDeletion(profile.ID(), metrics.ResultFailure)
			log.Error().Err(err).
				Str("func", "sweeper.sweepLocal").
				Str("path", path).
				Msg("cannot delete expired archive")
			continue
		}

		summary.LocalDeleted++
		s.metrics.LocalDeletion(profile.ID(), metrics.ResultSuccess)
		log.Info().Str("path", path).Msg("expired archive deleted")
	}

	return nil
}

// calendarDays counts date boundaries between from and to in from's zone.
func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.In(from.Location()).Date()

	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)

	return int(b.Sub(a) / day)
}
