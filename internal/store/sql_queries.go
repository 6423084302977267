// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-sync-keeper/migrations"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const syncedFilesTable = "synced_files"

var syncedFilesColumns = []string{
	"identity",
	"profile",
	"local_path",
	"remote_path",
	"sync_time",
	"sync_success",
	"remote_deleted",
}

// upsertConflictClause re-derives remote path and timestamp of an existing
// row and resets its flags.
const upsertConflictClause = `ON CONFLICT (identity) DO UPDATE SET
	remote_path = excluded.remote_path,
	sync_time = excluded.sync_time,
	sync_success = excluded.sync_success,
	remote_deleted = excluded.remote_deleted`

// queryBuilder builds ledger statements with the placeholder format of one
// SQL dialect.
type queryBuilder struct {
	sb sq.StatementBuilderType
}

func newQueryBuilder(dialect string) queryBuilder {
	var format sq.PlaceholderFormat = sq.Question
	if dialect == migrations.DialectPostgres {
		format = sq.Dollar
	}

	return queryBuilder{sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

// matchPath restricts a statement to the records of profile whose local or
// remote path equals path.
func matchPath(profile, path string) sq.And {
	return sq.And{
		sq.Eq{"profile": profile},
		sq.Or{
			sq.Eq{"local_path": path},
			sq.Eq{"remote_path": path},
		},
	}
}

func (b queryBuilder) upsert(rec models.LedgerRecord) (string, []any, error) {
	query, args, err := b.sb.Insert(syncedFilesTable).
		Columns(syncedFilesColumns...).
		Values(rec.Identity, rec.Profile, rec.LocalPath, rec.RemotePath, rec.SyncTime, rec.SyncSuccess, rec.RemoteDeleted).
		Suffix(upsertConflictClause).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func (b queryBuilder) setSyncStatus(profile, path string, success bool, at time.Time) (string, []any, error) {
	query, args, err := b.sb.Update(syncedFilesTable).
		Set("sync_time", at).
		Set("sync_success", success).
		Where(matchPath(profile, path)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func (b queryBuilder) markRemoteDeleted(profile, path string) (string, []any, error) {
	query, args, err := b.sb.Update(syncedFilesTable).
		Set("remote_deleted", true).
		Where(matchPath(profile, path)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func (b queryBuilder) lookup(profile, path string) (string, []any, error) {
	query, args, err := b.sb.Select(syncedFilesColumns...).
		From(syncedFilesTable).
		Where(matchPath(profile, path)).
		OrderBy("sync_time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func (b queryBuilder) remove(profile, path string) (string, []any, error) {
	query, args, err := b.sb.Delete(syncedFilesTable).
		Where(matchPath(profile, path)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func (b queryBuilder) list(profile string) (string, []any, error) {
	query, args, err := b.sb.Select(syncedFilesColumns...).
		From(syncedFilesTable).
		Where(sq.Eq{"profile": profile}).
		OrderBy("local_path").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
