// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// sqlLedger is the SQL implementation of [Ledger] over the synced_files
// table. It serves both SQLite and PostgreSQL; the dialect only changes the
// placeholder format.
//
// Retryable driver errors (busy database, dropped connection, deadlock) are
// retried with a short exponential backoff. Whatever still fails is returned
// wrapped in [ErrLedgerIO].
type sqlLedger struct {
	db      *DB
	queries queryBuilder
	clock   clockwork.Clock
	logger  *logger.Logger
}

// NewSQLLedger constructs a [Ledger] backed by an opened and migrated db.
func NewSQLLedger(db *DB, clock clockwork.Clock, log *logger.Logger) Ledger {
	return &sqlLedger{
		db:      db,
		queries: newQueryBuilder(db.dialect),
		clock:   clock,
		logger:  log,
	}
}

func (l *sqlLedger) Upsert(ctx context.Context, profile, localPath, remotePath string) error {
	rec := models.LedgerRecord{
		Identity:    models.Identity(profile, localPath),
		Profile:     profile,
		LocalPath:   localPath,
		RemotePath:  remotePath,
		SyncTime:    l.clock.Now().UTC(),
		SyncSuccess: true,
	}

	query, args, err := l.queries.upsert(rec)
	if err != nil {
		l.logger.Err(err).Str("func", "sqlLedger.Upsert").Msg("failed to create query")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	if err = l.exec(ctx, query, args...); err != nil {
		l.logger.Err(err).
			Str("func", "sqlLedger.Upsert").
			Str("profile", profile).
			Str("local_path", localPath).
			Str("pg_code", postgresError(err)).
			Msg("failed to upsert ledger record")
		return fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrExecutingStatement, err)
	}

	return nil
}

func (l *sqlLedger) SetSyncStatus(ctx context.Context, profile, path string, success bool) error {
	query, args, err := l.queries.setSyncStatus(profile, path, success, l.clock.Now().UTC())
	if err != nil {
		l.logger.Err(err).Str("func", "sqlLedger.SetSyncStatus").Msg("failed to create query")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	if err = l.exec(ctx, query, args...); err != nil {
		l.logger.Err(err).
			Str("func", "sqlLedger.SetSyncStatus").
			Str("profile", profile).
			Str("path", path).
			Bool("success", success).
			Msg("failed to update sync status")
		return fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrExecutingStatement, err)
	}

	return nil
}

func (l *sqlLedger) MarkRemoteDeleted(ctx context.Context, profile, path string) error {
	query, args, err := l.queries.markRemoteDeleted(profile, path)
	if err != nil {
		l.logger.Err(err).Str("func", "sqlLedger.MarkRemoteDeleted").Msg("failed to create query")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	if err = l.exec(ctx, query, args...); err != nil {
		l.logger.Err(err).
			Str("func", "sqlLedger.MarkRemoteDeleted").
			Str("profile", profile).
			Str("path", path).
			Msg("failed to mark remote deleted")
		return fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrExecutingStatement, err)
	}

	return nil
}

func (l *sqlLedger) Lookup(ctx context.Context, profile, path string) (models.LedgerRecord, error) {
	query, args, err := l.queries.lookup(profile, path)
	if err != nil {
		l.logger.Err(err).Str("func", "sqlLedger.Lookup").Msg("failed to create query")
		return models.LedgerRecord{}, fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	var rec models.LedgerRecord
	err = withRetry(ctx, l.db.errorClassificator, func() error {
		return scanRecord(l.db.QueryRowContext(ctx, query, args...), &rec)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.LedgerRecord{}, ErrRecordNotFound
	}
	if err != nil {
		l.logger.Err(err).
			Str("func", "sqlLedger.Lookup").
			Str("profile", profile).
			Str("path", path).
			Msg("failed to look up ledger record")
		return models.LedgerRecord{}, fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrScanningRow, err)
	}

	return rec, nil
}

func (l *sqlLedger) Remove(ctx context.Context, profile, path string) error {
	query, args, err := l.queries.remove(profile, path)
	if err != nil {
		l.logger.Err(err).Str("func", "sqlLedger.Remove").Msg("failed to create query")
		return fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	if err = l.exec(ctx, query, args...); err != nil {
		l.logger.Err(err).
			Str("func", "sqlLedger.Remove").
			Str("profile", profile).
			Str("path", path).
			Msg("failed to remove ledger record")
		return fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrExecutingStatement, err)
	}

	return nil
}

func (l *sqlLedger) List(ctx context.Context, profile string) ([]models.LedgerRecord, error) {
	query, args, err := l.queries.list(profile)
	if err != nil {
		l.logger.Err(err).Str("func", "sqlLedger.List").Msg("failed to create query")
		return nil, fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.logger.Err(err).
			Str("func", "sqlLedger.List").
			Str("profile", profile).
			Msg("failed to execute query for listing ledger records")
		return nil, fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.LedgerRecord, 0, 50)
	for rows.Next() {
		var rec models.LedgerRecord
		if scanErr := scanRecord(rows, &rec); scanErr != nil {
			l.logger.Err(scanErr).
				Str("func", "sqlLedger.List").
				Str("profile", profile).
				Msg("failed to scan ledger row")
			return nil, fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrScanningRow, scanErr)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		l.logger.Err(rowsErr).
			Str("func", "sqlLedger.List").
			Str("profile", profile).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w: %w", ErrLedgerIO, ErrScanningRows, rowsErr)
	}

	return records, nil
}

func (l *sqlLedger) Close() error {
	return l.db.Close()
}

func (l *sqlLedger) exec(ctx context.Context, query string, args ...any) error {
	return withRetry(ctx, l.db.errorClassificator, func() error {
		_, err := l.db.ExecContext(ctx, query, args...)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, rec *models.LedgerRecord) error {
	err := row.Scan(
		&rec.Identity,
		&rec.Profile,
		&rec.LocalPath,
		&rec.RemotePath,
		&rec.SyncTime,
		&rec.SyncSuccess,
		&rec.RemoteDeleted,
	)
	if err != nil {
		return err
	}
	rec.SyncTime = rec.SyncTime.UTC()

	return nil
}
