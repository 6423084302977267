// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

//go:generate mockgen -source=interfaces.go -destination=../mock/ledger_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// Ledger is the durable per-file synchronization state. Every operation is
// scoped by profile id; path arguments match a record by its local path or
// by its remote path.
type Ledger interface {
	// Upsert inserts or replaces the record of localPath: success true,
	// remote-deleted false, timestamp now.
	Upsert(ctx context.Context, profile, localPath, remotePath string) error
	// SetSyncStatus updates timestamp and success flag of the matched
	// record. No-op if none matches.
	SetSyncStatus(ctx context.Context, profile, path string, success bool) error
	// MarkRemoteDeleted sets the remote-deleted flag of the matched record.
	// No-op if none matches.
	MarkRemoteDeleted(ctx context.Context, profile, path string) error
	// Lookup returns the most recently synced matched record or
	// [ErrRecordNotFound].
	Lookup(ctx context.Context, profile, path string) (models.LedgerRecord, error)
	// Remove deletes the matched record. No-op if none matches.
	Remove(ctx context.Context, profile, path string) error
	// List returns all records of a profile ordered by local path.
	List(ctx context.Context, profile string) ([]models.LedgerRecord, error)
	// Close releases the backend.
	Close() error
}

// ErrorClassificator decides whether a failed backend call may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
