// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
)

// seedLedger writes one synced record for profile and returns the DSN.
func seedLedger(t *testing.T, profile string) string {
	t.Helper()
	dsn := "bolt://" + filepath.Join(t.TempDir(), "ledger.bolt")
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	l, err := store.NewBoltLedger(dsn, clock, logger.Nop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, l.Upsert(ctx, profile, filepath.Join(profile, "a.txt"), "/backup/a.txt"))
	require.NoError(t, l.SetSyncStatus(ctx, profile, filepath.Join(profile, "a.txt"), true))
	require.NoError(t, l.Close())

	return dsn
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "Build version: ")
	assert.Contains(t, out, "Build commit: ")
}

func TestLedgerList(t *testing.T) {
	profile := t.TempDir()
	dsn := seedLedger(t, profile)

	out, err := execute(t, "--dsn", dsn, "ledger", "list", "--profile", profile)

	require.NoError(t, err)
	assert.Contains(t, out, "LOCAL PATH")
	assert.Contains(t, out, filepath.Join(profile, "a.txt"))
	assert.Contains(t, out, "/backup/a.txt")
	assert.Contains(t, out, "2026-03-10T12:00:00Z")
}

func TestLedgerShowAndRemove(t *testing.T) {
	profile := t.TempDir()
	dsn := seedLedger(t, profile)

	out, err := execute(t, "--dsn", dsn, "ledger", "show", "/backup/a.txt", "--profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, `"remote_path": "/backup/a.txt"`)
	assert.Contains(t, out, `"sync_success": true`)

	out, err = execute(t, "--dsn", dsn, "ledger", "remove", "/backup/a.txt", "--profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "removed /backup/a.txt")

	_, err = execute(t, "--dsn", dsn, "ledger", "show", "/backup/a.txt", "--profile", profile)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestLedgerRequiresProfile(t *testing.T) {
	_, err := execute(t, "ledger", "list")

	assert.Error(t, err)
}

func TestProfileIDIsAbsolute(t *testing.T) {
	id, err := profileID("data/../data/src/")

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(id))
	assert.Equal(t, "src", filepath.Base(id))
}
