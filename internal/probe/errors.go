// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package probe

import "errors"

var (
	// ErrFileLocked reports a file that is still being written or is held
	// open by another process. It excludes the file from the current cycle
	// and is not a failure.
	ErrFileLocked = errors.New("file is locked")

	// ErrUnknownPolicy is returned by [New] for an unknown policy name.
	ErrUnknownPolicy = errors.New("unknown probe policy")
)
