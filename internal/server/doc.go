// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the status HTTP server of the daemon and shuts it down
// gracefully when the process context ends.
package server
