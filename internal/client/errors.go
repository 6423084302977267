// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

// ErrFatal wraps the error that stopped the daemon, for example an unusable
// ledger.
var ErrFatal = errors.New("fatal error, stopping")
