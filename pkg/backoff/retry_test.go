/*
 * Copyright © Caesarion Authors. 2025-2026. All rights reserved.
 */

package backoff

import (
	"fmt"
	"testing"

	"gotest.tools/assert"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
)

func TestRetryOn(t *testing.T) {
	attempts := 0
	err := RetryOn(func() error {
		attempts++
		if attempts == 1 {
			return caeserrors.NewAlreadyExist("sandbox-12ab34cd")
		}
		return nil
	}, 2, 0, caeserrors.IsAlreadyExist)
	assert.NilError(t, err)
	assert.Equal(t, attempts, 2)
}

func TestRetryOnNonRetriable(t *testing.T) {
	attempts := 0
	wantErr := fmt.Errorf("boom")
	err := RetryOn(func() error {
		attempts++
		return wantErr
	}, 3, 0, caeserrors.IsAlreadyExist)
	assert.Equal(t, err, wantErr)
	assert.Equal(t, attempts, 1)
}

func TestRetryOnExhausted(t *testing.T) {
	attempts := 0
	err := RetryOn(func() error {
		attempts++
		return caeserrors.NewAlreadyExist("sandbox-12ab34cd")
	}, 2, 0, caeserrors.IsAlreadyExist)
	assert.Equal(t, caeserrors.IsAlreadyExist(err), true)
	assert.Equal(t, attempts, 2)
}
