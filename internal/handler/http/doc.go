// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the read-only status surface of the daemon.
//
// It exposes Prometheus metrics, the build version, the last cycle summary
// of every profile and a liveness probe. Requests get a request id, an
// access log line and gzip compression when the client asks for it.
package http
