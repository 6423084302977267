// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// testNow is the wall time every fake clock in this package starts at.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// newBoltLedger opens a real bbolt ledger in a temp dir, driven by clock.
func newBoltLedger(t *testing.T, clock clockwork.Clock) store.Ledger {
	t.Helper()
	l, err := store.NewBoltLedger(filepath.Join(t.TempDir(), "ledger.bolt"), clock, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func testProfile() models.Profile {
	return models.Profile{
		LocalDir:            "/data/src",
		RemoteDir:           "/backup",
		RemoteRetentionDays: 3,
	}
}
