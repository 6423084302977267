// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// LedgerRecord is the persisted synchronization state of one file.
type LedgerRecord struct {
	// Identity is the canonical key of the record, see [Identity].
	Identity string `json:"identity"`

	// Profile is the id of the owning profile.
	Profile string `json:"profile"`

	// LocalPath is the absolute local path of the synced file.
	LocalPath string `json:"local_path"`

	// RemotePath is the remote path the file was uploaded to.
	RemotePath string `json:"remote_path"`

	// SyncTime is the time of the last recorded sync attempt (UTC).
	SyncTime time.Time `json:"sync_time"`

	// SyncSuccess reports whether the last attempt succeeded.
	SyncSuccess bool `json:"sync_success"`

	// RemoteDeleted is set once the retention sweep removed the remote copy.
	RemoteDeleted bool `json:"remote_deleted"`
}

// Identity returns the canonical identity of a local file within a
// profile: hex encoded SHA-256 of the profile id and the local path.
//
// Scoping by profile keeps two profiles whose remote names collide from
// matching each other's records.
func Identity(profile, localPath string) string {
	sum := sha256.Sum256([]byte(profile + "\x00" + localPath))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether path equals the record's local or remote path.
func (r LedgerRecord) Matches(path string) bool {
	return r.LocalPath == path || r.RemotePath == path
}

// Age returns how long ago the record was last synced.
func (r LedgerRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.SyncTime)
}
