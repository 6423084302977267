// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// s3Transport is the S3-compatible implementation of [Transport]. Remote
// paths map to object keys in one bucket; directories are key prefixes.
type s3Transport struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewS3Transport constructs an S3 [Transport]. cfg.URL is the endpoint; an
// "http://" scheme disables TLS. Username and Password are the access key
// and the secret key.
func NewS3Transport(cfg config.Adapter, log *logger.Logger) (Transport, error) {
	endpoint, secure, err := s3Endpoint(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Username, cfg.Password, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create s3 client: %w", ErrTransport, err)
	}

	return &s3Transport{client: client, bucket: cfg.Bucket, logger: log}, nil
}

func s3Endpoint(raw string) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("empty address")
	}
	if !strings.Contains(raw, "://") {
		return strings.TrimRight(raw, "/"), true, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, errors.New("address must include host")
	}

	return u.Host, u.Scheme == "https", nil
}

func objectKey(remotePath string) string {
	return strings.TrimPrefix(path.Join("/", remotePath), "/")
}

func (s *s3Transport) Upload(ctx context.Context, localPath, remotePath string) (string, error) {
	info, err := s.client.FPutObject(ctx, s.bucket, objectKey(remotePath), localPath,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", mapS3Error(err)
	}

	s.logger.Debug().
		Str("func", "s3Transport.Upload").
		Str("bucket", s.bucket).
		Str("key", info.Key).
		Int64("size", info.Size).
		Msg("uploaded object")

	return path.Join("/", remotePath), nil
}

func (s *s3Transport) Delete(ctx context.Context, remotePath string) (bool, error) {
	if _, err := s.Info(ctx, remotePath); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectKey(remotePath), minio.RemoveObjectOptions{}); err != nil {
		return false, mapS3Error(err)
	}

	return true, nil
}

func (s *s3Transport) List(ctx context.Context, remoteDir string) ([]string, error) {
	prefix := objectKey(remoteDir)
	if prefix != "" {
		prefix += "/"
	}

	names := make([]string, 0, 64)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, mapS3Error(obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}

	sort.Strings(names)
	return names, nil
}

func (s *s3Transport) Info(ctx context.Context, remotePath string) (models.RemoteInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucket, objectKey(remotePath), minio.StatObjectOptions{})
	if err != nil {
		return models.RemoteInfo{}, mapS3Error(err)
	}

	return models.RemoteInfo{
		Name:     path.Base(stat.Key),
		Size:     stat.Size,
		Modified: stat.LastModified.UTC(),
	}, nil
}

func (s *s3Transport) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return mapS3Error(err)
	}
	if !ok {
		return fmt.Errorf("%w: bucket %q", ErrNotFound, s.bucket)
	}

	return nil
}

func (s *s3Transport) Close() error {
	return nil
}

func mapS3Error(err error) error {
	resp := minio.ToErrorResponse(err)

	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Message)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, resp.Message)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Message)
	}

	return fmt.Errorf("%w: %w", ErrTransport, err)
}
