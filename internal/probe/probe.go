// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package probe decides which local files are stable enough to sync.
//
// A file is stable when its size does not change over a settle interval and
// no other process holds an exclusive lock on it (strict policy), or simply
// when it can be opened for read-write (basic policy). Unstable files are
// reported as locked and are retried on the next cycle.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

//go:generate mockgen -source=probe.go -destination=../mock/prober_mock.go -package=mock

// Prober classifies local files as accessible or locked.
type Prober interface {
	// Probe returns nil when path is accessible and [ErrFileLocked]
	// otherwise. Strict probing waits the settle interval.
	Probe(ctx context.Context, path string) error

	// Scan enumerates the profile's source directory and probes every file.
	// The settle wait is shared by all files of the scan.
	Scan(ctx context.Context, profile models.Profile) (Scan, error)
}

// Scan is the outcome of probing one source directory.
type Scan struct {
	// Candidates are the stable files, in enumeration order.
	Candidates []string
	// Locked are the files excluded this cycle.
	Locked []string
}

type prober struct {
	policy string
	settle time.Duration
	clock  clockwork.Clock
	logger *logger.Logger
}

// New constructs a [Prober] for policy ([config.ProbeStrict] or
// [config.ProbeBasic]).
func New(policy string, settle time.Duration, clock clockwork.Clock, log *logger.Logger) (Prober, error) {
	switch policy {
	case config.ProbeStrict, config.ProbeBasic:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	return &prober{policy: policy, settle: settle, clock: clock, logger: log}, nil
}

func (p *prober) Probe(ctx context.Context, path string) error {
	if p.policy == config.ProbeBasic {
		return probeBasic(path)
	}

	before, err := fileSize(path)
	if err != nil {
		return err
	}
	if err = p.wait(ctx); err != nil {
		return err
	}

	return probeSettled(path, before)
}

func (p *prober) Scan(ctx context.Context, profile models.Profile) (Scan, error) {
	files, err := Enumerate(profile.LocalDir, profile.Exclude)
	if err != nil {
		return Scan{}, err
	}

	scan := Scan{
		Candidates: make([]string, 0, len(files)),
	}

	if p.policy == config.ProbeBasic {
		for _, f := range files {
			scan.add(f, probeBasic(f))
		}
		return scan, nil
	}

	sizes := make([]int64, len(files))
	for i, f := range files {
		if sizes[i], err = fileSize(f); err != nil {
			sizes[i] = -1
		}
	}

	if len(files) > 0 {
		if err = p.wait(ctx); err != nil {
			return Scan{}, err
		}
	}

	for i, f := range files {
		if sizes[i] < 0 {
			scan.add(f, ErrFileLocked)
			continue
		}
		scan.add(f, probeSettled(f, sizes[i]))
	}

	p.logger.Debug().
		Str("func", "prober.Scan").
		Str("profile", profile.ID()).
		Int("candidates", len(scan.Candidates)).
		Int("locked", len(scan.Locked)).
		Msg("scanned source directory")

	return scan, nil
}

func (s *Scan) add(path string, err error) {
	if err != nil {
		s.Locked = append(s.Locked, path)
		return
	}
	s.Candidates = append(s.Candidates, path)
}

func (p *prober) wait(ctx context.Context) error {
	if p.settle <= 0 {
		return nil
	}

	select {
	case <-p.clock.After(p.settle):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFileLocked, err)
	}
	return info.Size(), nil
}

func probeSettled(path string, before int64) error {
	after, err := fileSize(path)
	if err != nil {
		return err
	}
	if after != before {
		return fmt.Errorf("%w: %s is still growing", ErrFileLocked, path)
	}

	return TryLock(path, os.O_RDONLY)
}

func probeBasic(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileLocked, err)
	}
	return f.Close()
}

// TryLock opens path with flag and takes then drops an exclusive
// non-blocking lock. It returns [ErrFileLocked] when the open or the lock
// fails.
func TryLock(path string, flag int) error {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileLocked, err)
	}
	defer f.Close()

	if err = lockExclusive(f); err != nil {
		return fmt.Errorf("%w: %w", ErrFileLocked, err)
	}
	if err = unlock(f); err != nil && !errors.Is(err, fs.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrFileLocked, err)
	}

	return nil
}
