// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

// Backend names reported by [Backend].
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

// Backend returns the ledger backend selected by dsn:
//   - "postgres://" or "postgresql://" selects PostgreSQL;
//   - "bolt://" selects the embedded bbolt file;
//   - "sqlite://" or a bare file path selects SQLite.
func Backend(dsn string) (string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(dsn, boltScheme):
		return BackendBolt, nil
	case strings.HasPrefix(dsn, sqliteScheme), !strings.Contains(dsn, "://"):
		return BackendSQLite, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
}

// NewLedger opens the ledger named by cfg.DSN, applying the schema to SQL
// backends.
func NewLedger(ctx context.Context, cfg config.DB, clock clockwork.Clock, log *logger.Logger) (Ledger, error) {
	backend, err := Backend(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if backend == BackendBolt {
		return NewBoltLedger(cfg.DSN, clock, log)
	}

	var db *DB
	if backend == BackendPostgres {
		db, err = NewConnectPostgres(ctx, cfg, log)
	} else {
		db, err = NewConnectSQLite(ctx, cfg, log)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewLedger").Str("backend", backend).Msg("error migrating ledger schema")
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrLedgerIO, err)
	}
	log.Info().Str("func", "NewLedger").Str("backend", backend).Msg("ledger is ready")

	return NewSQLLedger(db, clock, log), nil
}
