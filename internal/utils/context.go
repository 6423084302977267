// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helpers shared by the daemon:
// typed context keys, id generation, JSON response writing and the HTTP
// client used by the WebDAV transport.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// CycleIDCtxKey is the key used to store the id of the running
// reconciliation cycle in the context.
var CycleIDCtxKey = contextKey("cycleID")

// WithCycleID returns a copy of ctx carrying cycleID.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, CycleIDCtxKey, cycleID)
}

// GetCycleIDFromContext retrieves the cycle id from the context.
//
// Returns ok == false when the value is missing or is not a string.
func GetCycleIDFromContext(ctx context.Context) (string, bool) {
	cycleID, ok := ctx.Value(CycleIDCtxKey).(string)
	return cycleID, ok
}
