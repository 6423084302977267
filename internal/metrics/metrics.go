// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics exposes the daemon's Prometheus metrics.
//
// Every collector is registered on a private registry so tests and
// multiple daemons in one process do not collide on the default one.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "syncer"

// Cycle outcomes.
const (
	CycleCompleted = "completed"
	CycleSkipped   = "skipped"
	CycleAborted   = "aborted"
)

// Action results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

type Metrics struct {
	registry *prometheus.Registry

	Cycles          *prometheus.CounterVec
	CycleDuration   *prometheus.HistogramVec
	Uploads         *prometheus.CounterVec
	LockedFiles     *prometheus.CounterVec
	RemoteDeletions *prometheus.CounterVec
	LocalDeletions  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Reconciliation cycles by outcome.",
		}, []string{"profile", "outcome"}),
		CycleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of completed reconciliation cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"profile"}),
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "File uploads by result.",
		}, []string{"profile", "result"}),
		LockedFiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locked_files_total",
			Help:      "Files excluded from a cycle because they were not stable.",
		}, []string{"profile"}),
		RemoteDeletions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_deletions_total",
			Help:      "Expired remote entries removed by the retention sweep.",
		}, []string{"profile", "result"}),
		LocalDeletions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "local_deletions_total",
			Help:      "Expired staged archives removed by the retention sweep.",
		}, []string{"profile", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) CycleFinished(profile, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(profile, outcome).Inc()
	if outcome == CycleCompleted {
		m.CycleDuration.WithLabelValues(profile).Observe(d.Seconds())
	}
}

func (m *Metrics) Upload(profile string, ok bool) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(profile, result(ok)).Inc()
}

func (m *Metrics) Locked(profile string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.LockedFiles.WithLabelValues(profile).Add(float64(n))
}

func (m *Metrics) RemoteDeletion(profile string, ok bool) {
	if m == nil {
		return
	}
	m.RemoteDeletions.WithLabelValues(profile, result(ok)).Inc()
}

// LocalDeletion counts one staged archive; res is one of the Result constants.
func (m *Metrics) LocalDeletion(profile, res string) {
	if m == nil {
		return
	}
	m.LocalDeletions.WithLabelValues(profile, res).Inc()
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}
