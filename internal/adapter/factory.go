// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

// NewTransport builds the [Transport] selected by cfg.Kind.
func NewTransport(cfg config.Adapter, log *logger.Logger) (Transport, error) {
	switch cfg.Kind {
	case config.AdapterWebDAV, "":
		return NewWebDAVTransport(cfg, log)
	case config.AdapterS3:
		return NewS3Transport(cfg, log)
	case config.AdapterSFTP:
		return NewSFTPTransport(cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, cfg.Kind)
	}
}

// WaitReady pings t with exponential backoff until it answers, ctx ends or
// maxElapsed passes. A zero maxElapsed pings once.
func WaitReady(ctx context.Context, t Transport, log *logger.Logger, maxElapsed time.Duration) error {
	if maxElapsed <= 0 {
		return t.Ping(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = maxElapsed

	return backoff.RetryNotify(
		func() error { return t.Ping(ctx) },
		backoff.WithContext(b, ctx),
		func(err error, next time.Duration) {
			log.Warn().Err(err).
				Str("func", "adapter.WaitReady").
				Dur("retry_in", next).
				Msg("remote is not reachable yet")
		},
	)
}
