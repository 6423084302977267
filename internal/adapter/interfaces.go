// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the remote storage transports used by the
// reconciliation engine.
//
// The primary abstraction is [Transport], which decouples the engine from
// the file-transfer protocol. The package ships WebDAV ([NewWebDAVTransport]),
// S3-compatible ([NewS3Transport]) and SFTP ([NewSFTPTransport])
// implementations; [NewTransport] picks one from configuration.
//
// Remote paths are slash separated and rooted at the configured endpoint
// ("/backup/reports/a.txt"). Every failure wraps [ErrTransport] so callers
// can tell transport failures from local ones with [errors.Is].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-sync-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport moves files to and from one remote storage location.
// Implementations must be safe for sequential use by one cycle at a time
// per profile; different profiles may share one Transport concurrently.
type Transport interface {
	// Upload copies the file at localPath to remotePath, creating missing
	// remote directories and overwriting an existing entry. It returns the
	// remote path written.
	Upload(ctx context.Context, localPath, remotePath string) (string, error)

	// Delete removes the remote entry. It reports false with a nil error when
	// the entry was already absent.
	Delete(ctx context.Context, remotePath string) (bool, error)

	// List returns the names of all files below remoteDir, recursively,
	// relative to remoteDir and slash separated. A missing remoteDir yields
	// an empty list.
	List(ctx context.Context, remoteDir string) ([]string, error)

	// Info returns size and modification time of a remote entry, or
	// [ErrNotFound].
	Info(ctx context.Context, remotePath string) (models.RemoteInfo, error)

	// Ping checks that the remote is reachable and the credentials work.
	Ping(ctx context.Context) error

	// Close releases connections held by the transport.
	Close() error
}
