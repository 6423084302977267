// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/robfig/cron/v3"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// validate checks that the final merged [StructuredConfig] satisfies the
// process-wide invariants before it is used at startup.
//
// Transport settings are checked by [Adapter.Validate] only by the commands
// that talk to the remote; profiles by [StructuredConfig.ValidProfiles].
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Workers.SettleInterval < 0 || cfg.Workers.DefaultInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Workers.ProbePolicy != ProbeStrict && cfg.Workers.ProbePolicy != ProbeBasic {
		return fmt.Errorf("%w: unknown probe policy %q", ErrInvalidWorkerConfigs, cfg.Workers.ProbePolicy)
	}

	return nil
}

// Validate checks the transport settings.
func (a Adapter) Validate() error {
	if a.URL == "" || a.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	switch a.Kind {
	case AdapterWebDAV, AdapterSFTP:
	case AdapterS3:
		if a.Bucket == "" {
			return fmt.Errorf("%w: s3 requires a bucket", ErrInvalidAdapterConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAdapterConfigs, a.Kind)
	}

	return nil
}

// ValidProfiles normalizes and checks every configured profile. It returns
// the profiles that can run and a joined error describing every dropped
// one; each dropped profile error wraps [ErrInvalidProfileConfigs].
//
// Profiles without a schedule get Workers.DefaultInterval.
func (cfg *StructuredConfig) ValidProfiles() ([]models.Profile, error) {
	valid := make([]models.Profile, 0, len(cfg.Profiles))
	seen := make(map[string]struct{}, len(cfg.Profiles))
	var errs []error

	for i, p := range cfg.Profiles {
		normalized, err := cfg.validateProfile(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("profile #%d (%s): %w", i, p.LocalDir, err))
			continue
		}
		if _, dup := seen[normalized.ID()]; dup {
			errs = append(errs, fmt.Errorf("profile #%d (%s): %w: duplicate local directory",
				i, p.LocalDir, ErrInvalidProfileConfigs))
			continue
		}
		seen[normalized.ID()] = struct{}{}
		valid = append(valid, normalized)
	}

	return valid, errors.Join(errs...)
}

func (cfg *StructuredConfig) validateProfile(p models.Profile) (models.Profile, error) {
	if p.LocalDir == "" {
		return p, fmt.Errorf("%w: empty local directory", ErrInvalidProfileConfigs)
	}
	if p.RemoteDir == "" {
		return p, fmt.Errorf("%w: empty remote directory", ErrInvalidProfileConfigs)
	}
	if p.RemoteRetentionDays < 0 || p.LocalRetentionDays < 0 {
		return p, fmt.Errorf("%w: negative retention", ErrInvalidProfileConfigs)
	}

	localDir, err := filepath.Abs(p.LocalDir)
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidProfileConfigs, err)
	}
	info, err := os.Stat(localDir)
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidProfileConfigs, err)
	}
	if !info.IsDir() {
		return p, fmt.Errorf("%w: %s is not a directory", ErrInvalidProfileConfigs, localDir)
	}
	p.LocalDir = localDir

	if p.Batch {
		if p.StagingDir == "" {
			return p, fmt.Errorf("%w: archive mode requires a sync directory", ErrInvalidProfileConfigs)
		}
		staging, err := filepath.Abs(p.StagingDir)
		if err != nil {
			return p, fmt.Errorf("%w: %w", ErrInvalidProfileConfigs, err)
		}
		if _, inside := models.RelativeTo(localDir, staging); inside {
			return p, fmt.Errorf("%w: sync directory is inside the local directory", ErrInvalidProfileConfigs)
		}
		p.StagingDir = staging
	}

	for _, pattern := range p.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return p, fmt.Errorf("%w: bad exclude pattern %q", ErrInvalidProfileConfigs, pattern)
		}
	}

	if p.Schedule() == "" {
		p.Interval = cfg.Workers.DefaultInterval
	}
	if _, err := cron.ParseStandard(p.Schedule()); err != nil {
		return p, fmt.Errorf("%w: bad schedule %q: %w", ErrInvalidProfileConfigs, p.Schedule(), err)
	}

	return p, nil
}
