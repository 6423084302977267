// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// Sync profiles can only be declared in the JSON file under "sync". The main
// entry point is [GetStructuredConfig]; profiles are checked separately by
// [StructuredConfig.ValidProfiles] so one broken profile does not stop the
// others.
package config
