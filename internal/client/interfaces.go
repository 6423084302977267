// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract for runnable applications.
type Client interface {
	// Run starts the application and blocks until ctx ends, a signal
	// arrives or a fatal error occurs.
	Run(ctx context.Context) error

	// RunOnce runs a single cycle of every profile and returns.
	RunOnce(ctx context.Context) error

	// Close releases the ledger and the transport.
	Close() error
}
