// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

// TestNewLogger_RoleField verifies that every entry carries the role label.
func TestNewLogger_RoleField(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("syncer")
	l.Logger = l.Output(&buf)

	l.Info().Msg("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "syncer", entry["role"])
	_, hasTime := entry["time"]
	assert.True(t, hasTime, "expected 'time' field in log entry")
}

// TestNewLogger_CallerFieldName verifies that the caller field is named "func".
func TestNewLogger_CallerFieldName(t *testing.T) {
	NewLogger("caller-role")
	assert.Equal(t, "func", zerolog.CallerFieldName)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

// TestNewFileLogger_WritesFile verifies that entries reach the rotated file.
func TestNewFileLogger_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "sync.log")
	l := NewFileLogger("file-role", config.Log{File: file, Level: "info", MaxSizeMB: 1, MaxBackups: 1})

	l.Info().Msg("to file")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, string(data), "file-role")
}

// TestNewFileLogger_UnknownLevelFallsBackToInfo verifies the level fallback.
func TestNewFileLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	NewFileLogger("level-role", config.Log{Level: "loud"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	NewFileLogger("level-role", config.Log{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	NewLogger("reset")
}

// TestNop_DiscardsOutput verifies that a Nop logger produces no output.
func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	require.NotNil(t, l)
	l.Logger = l.Output(&buf)

	l.Info().Msg("should be discarded")

	assert.Empty(t, buf.String(), "Nop logger should produce no output")
}

// TestForCycle_AddsFields verifies profile and cycle correlation fields.
func TestForCycle_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger("cycle-role")
	parent.Logger = parent.Output(&buf)

	child := parent.ForCycle("/data/docs", "cycle-1")
	assert.NotSame(t, parent, child)
	child.Info().Msg("cycle started")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "/data/docs", entry["profile"])
	assert.Equal(t, "cycle-1", entry["cycle_id"])
	assert.Equal(t, "cycle-role", entry["role"])
}

// TestWithContext_RoundTrip verifies that FromContext returns the attached logger.
func TestWithContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{zerolog.New(&buf).With().Str("ctx-key", "ctx-value").Logger()}
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Info().Msg("from context")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "ctx-value", entry["ctx-key"])
}

// TestFromContext_NotNil verifies that FromContext never returns nil.
func TestFromContext_NotNil(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))
}
