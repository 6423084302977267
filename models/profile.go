// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Profile is a single configured sync unit: one local source directory
// mirrored into one remote directory with its own retention windows and
// trigger schedule.
//
// A Profile is immutable for the lifetime of the process and is identified
// by its cleaned local source directory (see [Profile.ID]).
type Profile struct {
	// LocalDir is the source directory whose files are reconciled.
	LocalDir string `json:"local_directory"`

	// StagingDir is the local directory where batch archives are written.
	// Only used when Batch is true.
	StagingDir string `json:"sync_directory,omitempty"`

	// RemoteDir is the destination directory on the remote storage.
	RemoteDir string `json:"remote_directory"`

	// RemoteRetentionDays is the number of days a synced remote entry is
	// kept before the retention sweep deletes it. Zero disables the sweep.
	RemoteRetentionDays int `json:"remote_save_day"`

	// LocalRetentionDays is the number of days a staged archive is kept
	// locally. Zero disables the local sweep.
	LocalRetentionDays int `json:"local_save_day,omitempty"`

	// Batch packs the whole source directory into one zip archive per
	// cycle instead of syncing files one by one.
	Batch bool `json:"zip,omitempty"`

	// Cron is a cron expression ("0 * * * *", "@hourly", "@every 10m").
	// Takes precedence over Interval.
	Cron string `json:"cron,omitempty"`

	// Interval triggers a cycle at a fixed period when Cron is empty.
	Interval time.Duration `json:"-"`

	// Exclude lists doublestar patterns, relative to LocalDir, of files
	// that are never synced or archived.
	Exclude []string `json:"exclude,omitempty"`
}

// ID returns the profile identity: its cleaned local source directory.
func (p Profile) ID() string {
	return filepath.Clean(p.LocalDir)
}

// Schedule returns the cron expression used to trigger the profile. An interval
// is expressed with the "@every" descriptor.
func (p Profile) Schedule() string {
	if p.Cron != "" {
		return p.Cron
	}
	if p.Interval > 0 {
		return "@every " + p.Interval.String()
	}
	return ""
}

// RemotePathFor derives the remote path of a local file. The path of the
// file relative to base (the source directory, or the staging directory for
// archives) is appended to RemoteDir using forward slashes.
//
// The derivation is deterministic, which is what lets the retention sweep
// join a remote listing back to ledger rows.
func (p Profile) RemotePathFor(base, localPath string) string {
	rel, ok := RelativeTo(base, localPath)
	if !ok {
		rel = filepath.Base(localPath)
	}
	return JoinRemote(p.RemoteDir, filepath.ToSlash(rel))
}

// RelativeTo returns target relative to base and reports whether target lies
// inside base. Names that merely start with two dots, like "..cache", are
// inside.
func RelativeTo(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rel, false
	}
	return rel, true
}

// JoinRemote joins a remote directory and a slash separated relative name.
func JoinRemote(remoteDir, name string) string {
	return path.Join("/", remoteDir, name)
}
