// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

func newTestBoltLedger(t *testing.T) (Ledger, *clockwork.FakeClock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger", "synced_files.bolt")
	clock := clockwork.NewFakeClockAt(testNow)

	ledger, err := NewBoltLedger(boltScheme+path, clock, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	return ledger, clock, path
}

func TestBoltLedger_UpsertThenLookupByBothPaths(t *testing.T) {
	ledger, _, _ := newTestBoltLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/a.txt", "/backup/a.txt"))

	byLocal, err := ledger.Lookup(ctx, "/data", "/data/a.txt")
	require.NoError(t, err)
	byRemote, err := ledger.Lookup(ctx, "/data", "/backup/a.txt")
	require.NoError(t, err)

	assert.Equal(t, byLocal, byRemote)
	assert.True(t, byLocal.SyncSuccess)
	assert.False(t, byLocal.RemoteDeleted)
	assert.True(t, testNow.Equal(byLocal.SyncTime))
}

func TestBoltLedger_LookupMissing(t *testing.T) {
	ledger, _, _ := newTestBoltLedger(t)

	_, err := ledger.Lookup(context.Background(), "/data", "/data/none")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestBoltLedger_ProfilesAreIsolated(t *testing.T) {
	ledger, _, _ := newTestBoltLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "/one", "/one/a.txt", "/backup/a.txt"))
	require.NoError(t, ledger.Upsert(ctx, "/two", "/two/a.txt", "/backup/a.txt"))

	require.NoError(t, ledger.MarkRemoteDeleted(ctx, "/one", "/backup/a.txt"))

	one, err := ledger.Lookup(ctx, "/one", "/backup/a.txt")
	require.NoError(t, err)
	two, err := ledger.Lookup(ctx, "/two", "/backup/a.txt")
	require.NoError(t, err)

	assert.True(t, one.RemoteDeleted)
	assert.False(t, two.RemoteDeleted)
	assert.NotEqual(t, one.Identity, two.Identity)
}

func TestBoltLedger_RemoteDeletedIsMonotonic(t *testing.T) {
	ledger, clock, _ := newTestBoltLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/a.txt", "/backup/a.txt"))
	require.NoError(t, ledger.MarkRemoteDeleted(ctx, "/data", "/backup/a.txt"))

	clock.Advance(time.Hour)
	require.NoError(t, ledger.SetSyncStatus(ctx, "/data", "/data/a.txt", true))
	require.NoError(t, ledger.SetSyncStatus(ctx, "/data", "/data/a.txt", false))

	rec, err := ledger.Lookup(ctx, "/data", "/data/a.txt")
	require.NoError(t, err)
	assert.True(t, rec.RemoteDeleted, "status updates must not reset remote-deleted")
	assert.False(t, rec.SyncSuccess)
	assert.True(t, testNow.Add(time.Hour).Equal(rec.SyncTime))

	// only a fresh upsert resets the flag
	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/a.txt", "/backup/a.txt"))
	rec, err = ledger.Lookup(ctx, "/data", "/data/a.txt")
	require.NoError(t, err)
	assert.False(t, rec.RemoteDeleted)
	assert.True(t, rec.SyncSuccess)
}

func TestBoltLedger_SetSyncStatusOnMissingIsNoop(t *testing.T) {
	ledger, _, _ := newTestBoltLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.SetSyncStatus(ctx, "/data", "/data/none", true))
	require.NoError(t, ledger.MarkRemoteDeleted(ctx, "/data", "/data/none"))

	records, err := ledger.List(ctx, "/data")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBoltLedger_UpsertRederivesRemotePath(t *testing.T) {
	ledger, _, _ := newTestBoltLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/a.txt", "/old/a.txt"))
	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/a.txt", "/new/a.txt"))

	_, err := ledger.Lookup(ctx, "/data", "/old/a.txt")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	rec, err := ledger.Lookup(ctx, "/data", "/new/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/data/a.txt", rec.LocalPath)

	records, err := ledger.List(ctx, "/data")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBoltLedger_RemoveAndList(t *testing.T) {
	ledger, _, _ := newTestBoltLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/b.txt", "/backup/b.txt"))
	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/a.txt", "/backup/a.txt"))
	require.NoError(t, ledger.Upsert(ctx, "/data2", "/data2/c.txt", "/backup/c.txt"))

	records, err := ledger.List(ctx, "/data")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/data/a.txt", records[0].LocalPath)
	assert.Equal(t, "/data/b.txt", records[1].LocalPath)

	require.NoError(t, ledger.Remove(ctx, "/data", "/backup/a.txt"))

	_, err = ledger.Lookup(ctx, "/data", "/data/a.txt")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = ledger.Lookup(ctx, "/data", "/backup/a.txt")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	records, err = ledger.List(ctx, "/data")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBoltLedger_PersistsAcrossReopen(t *testing.T) {
	ledger, _, path := newTestBoltLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "/data", "/data/a.txt", "/backup/a.txt"))
	require.NoError(t, ledger.Close())

	reopened, err := NewBoltLedger(path, clockwork.NewFakeClockAt(testNow), logger.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.Lookup(ctx, "/data", "/backup/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/data/a.txt", rec.LocalPath)
}
