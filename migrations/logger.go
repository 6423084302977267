// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

// gooseLogger routes goose output into the structured log. Fatalf is logged
// at error level and does not exit; the failing call still returns its
// error to Migrate.
type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info().
		Str("func", "migrations.Migrate").
		Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error().
		Str("func", "migrations.Migrate").
		Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
