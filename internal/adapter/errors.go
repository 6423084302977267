// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"fmt"
)

// ErrTransport is the root of every remote transport failure. A candidate
// whose upload fails with it is recorded as failed and retried next cycle.
var ErrTransport = errors.New("transport error")

// Transport failures mapped from protocol status codes. All of them match
// [ErrTransport] with [errors.Is].
var (
	ErrNotFound            = fmt.Errorf("%w: remote entry not found", ErrTransport)
	ErrUnauthorized        = fmt.Errorf("%w: unauthorized", ErrTransport)
	ErrForbidden           = fmt.Errorf("%w: forbidden", ErrTransport)
	ErrBadRequest          = fmt.Errorf("%w: bad request", ErrTransport)
	ErrConflict            = fmt.Errorf("%w: conflict", ErrTransport)
	ErrLocked              = fmt.Errorf("%w: remote entry locked", ErrTransport)
	ErrInsufficientStorage = fmt.Errorf("%w: insufficient storage", ErrTransport)
	ErrBadGateway          = fmt.Errorf("%w: bad gateway", ErrTransport)
	ErrInternalServerError = fmt.Errorf("%w: internal server error", ErrTransport)
)

var (
	// ErrUnsupportedKind is returned by [NewTransport] for an unknown kind.
	ErrUnsupportedKind = errors.New("unsupported transport kind")
	// ErrLocalFile is returned when the local side of an upload cannot be read.
	ErrLocalFile = fmt.Errorf("%w: local file unreadable", ErrTransport)
)
