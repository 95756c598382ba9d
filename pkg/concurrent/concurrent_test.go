/*
 * Copyright (c) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package concurrent

import (
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

func TestExecEach(t *testing.T) {
	badErr := errors.New("bad name")

	tests := []struct {
		name          string
		names         []string
		fn            func(string) error
		expectSuccess int
		expectErr     bool
	}{
		{"empty", nil, func(string) error { return nil }, 0, false},
		{"null function", []string{"a", "b"}, nil, 0, false},
		{"all ok", []string{"a", "b", "c"}, func(string) error { return nil }, 3, false},
		{
			"partial failure",
			[]string{"sandbox-1", "sandbox-2", "bad-1"},
			func(name string) error {
				if strings.HasPrefix(name, "bad-") {
					return badErr
				}
				return nil
			},
			2,
			true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			success, err := ExecEach(test.names, test.fn)
			assert.Equal(t, success, test.expectSuccess)
			if test.expectErr {
				assert.ErrorContains(t, err, badErr.Error())
			} else {
				assert.NilError(t, err)
			}
		})
	}
}

func TestExecEachRunsAll(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	names := []string{"sandbox-1", "sandbox-2", "sandbox-3", "sandbox-4"}
	success, err := ExecEach(names, func(name string) error {
		mu.Lock()
		defer mu.Unlock()
		seen[name] = true
		return nil
	})
	assert.NilError(t, err)
	assert.Equal(t, success, len(names))
	assert.Equal(t, len(seen), len(names))
}
