// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "sync/atomic"

// RunGuard admits at most one cycle of a profile at a time. The zero value
// is an unheld guard. Each profile owns its own guard.
type RunGuard struct {
	held atomic.Bool
}

func NewRunGuard() *RunGuard {
	return &RunGuard{}
}

// TryAcquire takes the guard and reports whether it was free.
func (g *RunGuard) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release frees the guard.
func (g *RunGuard) Release() {
	g.held.Store(false)
}

// Held reports whether a cycle currently holds the guard.
func (g *RunGuard) Held() bool {
	return g.held.Load()
}
