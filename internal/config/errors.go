// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid transport settings
	// (for example, unknown kind, missing URL or zero request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid ledger settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates invalid scheduling or probe settings
	// (for example, unknown probe policy or negative settle interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidProfileConfigs indicates a sync profile that cannot run.
	// The profile is skipped; its siblings are unaffected.
	ErrInvalidProfileConfigs = errors.New("invalid profile configuration")
	// ErrNoProfiles indicates that no valid sync profile is left to run.
	ErrNoProfiles = errors.New("no valid sync profiles configured")
)
