// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers schedules the reconciliation cycles of every configured
// profile.
//
// Each profile gets one [Worker] with its own run guard and one cron entry
// built from the profile schedule. [Workers] owns the cron scheduler, runs
// the initial cycle of every profile on start and waits for in-flight
// cycles on stop.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// Run executes one unit of work and returns when it is done or ctx is
// cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// FatalHandler is called when a worker hits an error the process cannot
// recover from, such as an unusable ledger.
type FatalHandler func(err error)
