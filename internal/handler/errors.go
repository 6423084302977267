// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// ErrNoHandlersAreCreated is returned by NewHandlers when no status server
// address is configured. The daemon then runs without a status surface.
var ErrNoHandlersAreCreated = errors.New("no handlers are created")
