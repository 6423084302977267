// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

//go:build !windows

package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"

	"github.com/MKhiriev/go-sync-keeper/internal/mock"
)

func TestSweep_LocalSkipsArchiveInUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Arrange
	p := newLocalProfile(t)
	expired := touch(t, p.StagingDir, "source_2024-01-01-10-00-00.zip")

	f, err := os.Open(expired)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, unix.Flock(int(f.Fd()), unix.LOCK_EX))

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 11, 10, 0, 0, 0, time.Local))
	s := NewSweeper(mock.NewMockLedger(ctrl), mock.NewMockTransport(ctrl), clock, 0, nil)

	// Act
	summary, err := s.Sweep(context.Background(), p)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.LocalSkipped)
	assert.Zero(t, summary.LocalDeleted)
	assert.FileExists(t, expired)
}
