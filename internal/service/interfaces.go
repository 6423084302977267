// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the reconciliation engine: the per-profile run
// guard, the reconciler that uploads unsynced stable files, the retention
// sweeper and the cycle runner that ties them together.
package service

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// Reconciler performs steps 1-4 of a cycle: candidate discovery, ledger
// diff, upload and ledger commit.
type Reconciler interface {
	// Reconcile fills summary with the per-candidate results. Per-candidate
	// transport failures are recorded, not returned. A returned error
	// wraps [ErrArchiveCreation], [ErrScan], store.ErrLedgerIO or the
	// context error.
	Reconcile(ctx context.Context, profile models.Profile, summary *models.CycleSummary) error
}

// Sweeper enforces the retention windows of a profile.
type Sweeper interface {
	// Sweep deletes expired remote entries and, for batch profiles, expired
	// staged archives. Deletion failures are counted, not returned; a
	// returned error wraps store.ErrLedgerIO or the context error.
	Sweep(ctx context.Context, profile models.Profile) (models.SweepSummary, error)
}

// CycleRunner runs one guarded reconciliation cycle.
type CycleRunner interface {
	// RunCycle returns a skipped summary without touching ledger or
	// transport when guard is already held.
	RunCycle(ctx context.Context, profile models.Profile, guard *RunGuard) (models.CycleSummary, error)
}

// StatusService remembers the last cycle summary of each profile.
type StatusService interface {
	Record(summary models.CycleSummary)
	Last(profile string) (models.CycleSummary, bool)
	All() []models.CycleSummary
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
