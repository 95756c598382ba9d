/*
 * Copyright (c) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package concurrent

import (
	"sync"
)

// ExecEach runs fn for every name on its own goroutine and waits for all
// of them. It returns the number of successful runs and the first error
// observed, if any.
func ExecEach(names []string, fn func(name string) error) (int, error) {
	if len(names) == 0 || fn == nil {
		return 0, nil
	}
	var wg sync.WaitGroup
	wg.Add(len(names))
	errCh := make(chan error, len(names))
	defer close(errCh)

	for _, name := range names {
		go func(name string) {
			defer wg.Done()
			if err := fn(name); err != nil {
				errCh <- err
			}
		}(name)
	}
	wg.Wait()
	successes := len(names) - len(errCh)
	if len(errCh) > 0 {
		err := <-errCh
		return successes, err
	}
	return successes, nil
}
