// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	retryInitialInterval = 50 * time.Millisecond
	retryMaxInterval     = time.Second
	retryMaxAttempts     = 3
)

// withRetry runs op until it succeeds, fails with an error classified as
// [NonRetryable], ctx ends or the attempts are exhausted. The last error of
// op is returned unchanged.
func withRetry(ctx context.Context, classifier ErrorClassificator, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if classifier == nil || classifier.Classify(err) != Retryable {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, retryMaxAttempts), ctx))
}
