/*
 * Copyright © Caesarion Authors. 2025-2026. All rights reserved.
 */

package backoff

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry runs f with exponential backoff until it succeeds or
// maxElapsedTime passes.
func Retry(f backoff.Operation, maxElapsedTime, maxInterval time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsedTime
	b.MaxInterval = maxInterval
	if err := backoff.Retry(f, b); err != nil {
		return err
	}
	return nil
}

// RetryOn runs f up to count times, sleeping interval between attempts,
// retrying only while retriable reports true for the returned error.
func RetryOn(f backoff.Operation, count int, interval time.Duration, retriable func(error) bool) error {
	var err error
	for i := 0; i < count; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i == count-1 || !retriable(err) {
			return err
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
	return err
}
