// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/mock"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// ── remote sweep ────────────────────────────────────────────────────────────

// TestSweep_RemoteRetention seeds x.zip five days ago and y.zip one day ago
// with a three day retention; only x.zip may be deleted.
func TestSweep_RemoteRetention(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Arrange
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(testNow.Add(-5 * day))
	ledger := newBoltLedger(t, clock)
	transport := mock.NewMockTransport(ctrl)
	p := testProfile()

	require.NoError(t, ledger.Upsert(ctx, p.ID(), "/data/src/x.zip", "/backup/x.zip"))
	require.NoError(t, ledger.SetSyncStatus(ctx, p.ID(), "/data/src/x.zip", true))
	clock.Advance(4 * day)
	require.NoError(t, ledger.Upsert(ctx, p.ID(), "/data/src/y.zip", "/backup/y.zip"))
	require.NoError(t, ledger.SetSyncStatus(ctx, p.ID(), "/data/src/y.zip", true))
	clock.Advance(day)

	transport.EXPECT().List(gomock.Any(), "/backup").Return([]string{"unknown.zip", "x.zip", "y.zip"}, nil)
	transport.EXPECT().Delete(gomock.Any(), "/backup/x.zip").Return(true, nil)

	s := NewSweeper(ledger, transport, clock, time.Second, nil)

	// Act
	summary, err := s.Sweep(ctx, p)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RemoteDeleted)
	assert.Zero(t, summary.RemoteFailed)

	x, err := ledger.Lookup(ctx, p.ID(), "/backup/x.zip")
	require.NoError(t, err)
	assert.True(t, x.RemoteDeleted)

	y, err := ledger.Lookup(ctx, p.ID(), "/backup/y.zip")
	require.NoError(t, err)
	assert.False(t, y.RemoteDeleted)
}

func TestSweep_ExactlyAtRetentionIsKept(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := clockwork.NewFakeClockAt(testNow)
	ledger := mock.NewMockLedger(ctrl)
	transport := mock.NewMockTransport(ctrl)
	p := testProfile()

	transport.EXPECT().List(gomock.Any(), "/backup").Return([]string{"x.zip"}, nil)
	ledger.EXPECT().Lookup(gomock.Any(), p.ID(), "/backup/x.zip").
		Return(models.LedgerRecord{RemotePath: "/backup/x.zip", SyncTime: testNow.Add(-3 * day)}, nil)

	summary, err := NewSweeper(ledger, transport, clock, 0, nil).Sweep(context.Background(), p)

	require.NoError(t, err)
	assert.Zero(t, summary.RemoteDeleted)
}

func TestSweep_DeleteFailureContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := clockwork.NewFakeClockAt(testNow)
	ledger := mock.NewMockLedger(ctrl)
	transport := mock.NewMockTransport(ctrl)
	p := testProfile()
	old := models.LedgerRecord{SyncTime: testNow.Add(-10 * day)}

	transport.EXPECT().List(gomock.Any(), "/backup").Return([]string{"a.zip", "b.zip"}, nil)
	ledger.EXPECT().Lookup(gomock.Any(), p.ID(), gomock.Any()).Return(old, nil).Times(2)
	gomock.InOrder(
		transport.EXPECT().Delete(gomock.Any(), "/backup/a.zip").Return(false, adapter.ErrForbidden),
		transport.EXPECT().Delete(gomock.Any(), "/backup/b.zip").Return(true, nil),
	)
	ledger.EXPECT().MarkRemoteDeleted(gomock.Any(), p.ID(), "/backup/b.zip").Return(nil)

	summary, err := NewSweeper(ledger, transport, clock, time.Second, nil).Sweep(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.RemoteFailed)
	assert.Equal(t, 1, summary.RemoteDeleted)
}

func TestSweep_ListFailureSkipsRemoteSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := mock.NewMockTransport(ctrl)
	transport.EXPECT().List(gomock.Any(), "/backup").Return(nil, adapter.ErrBadGateway)

	summary, err := NewSweeper(mock.NewMockLedger(ctrl), transport, clockwork.NewFakeClockAt(testNow), 0, nil).
		Sweep(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, models.SweepSummary{}, summary)
}

func TestSweep_ZeroRetentionDoesNotList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := testProfile()
	p.RemoteRetentionDays = 0

	// no expectations: any transport or ledger call fails the test
	summary, err := NewSweeper(mock.NewMockLedger(ctrl), mock.NewMockTransport(ctrl), clockwork.NewFakeClockAt(testNow), 0, nil).
		Sweep(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, models.SweepSummary{}, summary)
}

func TestSweep_MarkFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mock.NewMockLedger(ctrl)
	transport := mock.NewMockTransport(ctrl)
	p := testProfile()
	ledgerErr := errors.New("disk I/O error")

	transport.EXPECT().List(gomock.Any(), "/backup").Return([]string{"a.zip"}, nil)
	ledger.EXPECT().Lookup(gomock.Any(), p.ID(), "/backup/a.zip").Return(models.LedgerRecord{SyncTime: testNow.Add(-10 * day)}, nil)
	transport.EXPECT().Delete(gomock.Any(), "/backup/a.zip").Return(true, nil)
	ledger.EXPECT().MarkRemoteDeleted(gomock.Any(), p.ID(), "/backup/a.zip").Return(ledgerErr)

	_, err := NewSweeper(ledger, transport, clockwork.NewFakeClockAt(testNow), 0, nil).Sweep(context.Background(), p)

	assert.ErrorIs(t, err, ledgerErr)
}

// ── local sweep ─────────────────────────────────────────────────────────────

func newLocalProfile(t *testing.T) models.Profile {
	t.Helper()
	root := t.TempDir()
	staging := filepath.Join(root, "staging")
	require.NoError(t, os.Mkdir(staging, 0o755))

	return models.Profile{
		LocalDir:           filepath.Join(root, "source"),
		StagingDir:         staging,
		RemoteDir:          "/backup",
		Batch:              true,
		LocalRetentionDays: 7,
	}
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o600))
	return path
}

// TestSweep_LocalRetention covers source_2024-01-01-10-00-00.zip with seven
// days of local retention, swept ten days later.
func TestSweep_LocalRetention(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Arrange
	p := newLocalProfile(t)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 11, 10, 0, 0, 0, time.Local))

	expired := touch(t, p.StagingDir, "source_2024-01-01-10-00-00.zip")
	fresh := touch(t, p.StagingDir, "source_2024-01-04-23-59-59.zip")
	foreign := touch(t, p.StagingDir, "other_2024-01-01-10-00-00.zip")
	partial := touch(t, p.StagingDir, "source_2024-01-01-10-00-00.zip.part")

	s := NewSweeper(mock.NewMockLedger(ctrl), mock.NewMockTransport(ctrl), clock, 0, nil)

	// Act
	summary, err := s.Sweep(context.Background(), p)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.LocalDeleted)
	assert.NoFileExists(t, expired)
	assert.FileExists(t, fresh)
	assert.FileExists(t, foreign)
	assert.FileExists(t, partial)
}

func TestSweep_LocalSkippedWithoutBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := newLocalProfile(t)
	p.Batch = false
	expired := touch(t, p.StagingDir, "source_2024-01-01-10-00-00.zip")

	_, err := NewSweeper(mock.NewMockLedger(ctrl), mock.NewMockTransport(ctrl),
		clockwork.NewFakeClockAt(time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)), 0, nil).
		Sweep(context.Background(), p)

	require.NoError(t, err)
	assert.FileExists(t, expired)
}

func TestSweep_MissingStagingDirIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := newLocalProfile(t)
	p.StagingDir = filepath.Join(p.StagingDir, "missing")

	summary, err := NewSweeper(mock.NewMockLedger(ctrl), mock.NewMockTransport(ctrl),
		clockwork.NewFakeClockAt(testNow), 0, nil).Sweep(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, models.SweepSummary{}, summary)
}

// ── calendarDays ────────────────────────────────────────────────────────────

func TestCalendarDays(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{
			name: "same day",
			from: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "one minute across midnight",
			from: time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			to:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "ten days",
			from: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC),
			want: 10,
		},
		{
			name: "leap day",
			from: time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendarDays(tt.from, tt.to))
		})
	}
}
