// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by ledger methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLedgerIO is returned when the ledger backend cannot be read or
	// written. The reconciliation engine treats it as fatal to the process:
	// continuing without durable state would re-upload or lose work.
	ErrLedgerIO = errors.New("ledger i/o error")

	// ErrRecordNotFound is returned by Lookup when no record matches the
	// requested local or remote path.
	ErrRecordNotFound = errors.New("ledger record not found")

	// ErrUnsupportedDSN is returned by [NewLedger] for a DSN whose scheme
	// selects no known backend.
	ErrUnsupportedDSN = errors.New("unsupported ledger dsn")
)

// Low-level database operation errors. These are wrapped together with
// [ErrLedgerIO] when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan ledger row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan ledger rows")
)
