// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the daemon runtime.
//
// It wires the ledger, the remote transport, the reconciliation services,
// the profile scheduler and the optional status server into one process
// lifecycle that ends on SIGINT, SIGTERM or SIGQUIT.
package client
