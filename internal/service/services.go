// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/MKhiriev/go-sync-keeper/internal/adapter"
	"github.com/MKhiriev/go-sync-keeper/internal/archive"
	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/metrics"
	"github.com/MKhiriev/go-sync-keeper/internal/probe"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
)

type Services struct {
	AppInfoService AppInfoService
	StatusService  StatusService
	CycleRunner    CycleRunner
}

func NewServices(
	ledger store.Ledger,
	transport adapter.Transport,
	cfg *config.StructuredConfig,
	clock clockwork.Clock,
	m *metrics.Metrics,
	logger *logger.Logger,
) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	prober, err := probe.New(cfg.Workers.ProbePolicy, cfg.Workers.SettleInterval, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("create prober: %w", err)
	}

	status := NewStatusService()
	timeout := cfg.Adapter.RequestTimeout

	return &Services{
		AppInfoService: appInfo,
		StatusService:  status,
		CycleRunner: NewCycleRunner(
			NewReconciler(ledger, transport, prober, archive.NewZipArchiver(nil, logger), clock, timeout, m),
			NewSweeper(ledger, transport, clock, timeout, m),
			status,
			clock,
			m,
			logger,
		),
	}, nil
}
