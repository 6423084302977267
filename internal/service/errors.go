// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrArchiveCreation aborts the cycle of a batch profile whose archive
	// could not be written. Other profiles are unaffected.
	ErrArchiveCreation = errors.New("archive creation failed")

	// ErrScan aborts a cycle whose source directory could not be enumerated.
	ErrScan = errors.New("source directory scan failed")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
