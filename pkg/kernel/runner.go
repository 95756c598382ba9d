/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package kernel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"k8s.io/klog/v2"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
)

const (
	// tracebackTail bounds how many stderr lines the error event repeats.
	tracebackTail = 64
	eventBuffer   = 64
	// maxLineBytes bounds a single interpreter output line.
	maxLineBytes = 1 << 20
)

// Runner executes code cells and streams execution events.
type Runner interface {
	// Execute starts one cell. The returned channel closes after a
	// terminal event; cancelling ctx kills the cell.
	Execute(ctx context.Context, code string) (<-chan Event, error)
	// Healthy reports whether the runner can execute code.
	Healthy() bool
}

// subprocessRunner runs each cell as a fresh interpreter process. Cells
// share the working directory but no interpreter state, which keeps the
// sandbox image down to a stock python and this binary.
type subprocessRunner struct {
	command string
	workdir string
	lookErr error
	count   int64
}

func NewSubprocessRunner(command, workdir string) Runner {
	r := &subprocessRunner{command: command, workdir: workdir}
	_, r.lookErr = exec.LookPath(command)
	if r.lookErr != nil {
		klog.Errorf("kernel interpreter %s not usable: %v", command, r.lookErr)
	}
	return r
}

func (r *subprocessRunner) Healthy() bool {
	return r.lookErr == nil
}

func (r *subprocessRunner) Execute(ctx context.Context, code string) (<-chan Event, error) {
	if strings.TrimSpace(code) == "" {
		return nil, caeserrors.NewBadRequest("Missing 'code' field")
	}
	if r.lookErr != nil {
		return nil, caeserrors.NewKernelNotReady(
			fmt.Sprintf("interpreter %s not found: %v", r.command, r.lookErr))
	}

	// -u keeps output unbuffered so lines stream as they are produced.
	cmd := exec.CommandContext(ctx, r.command, "-u", "-c", code)
	cmd.Dir = r.workdir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, caeserrors.NewInternalError(err.Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, caeserrors.NewInternalError(err.Error())
	}
	if err := cmd.Start(); err != nil {
		return nil, caeserrors.NewKernelNotReady(
			fmt.Sprintf("failed to start interpreter: %v", err))
	}
	count := atomic.AddInt64(&r.count, 1)

	events := make(chan Event, eventBuffer)
	go r.pump(ctx, cmd, stdout, stderr, count, events)
	return events, nil
}

// pump relays interpreter output as events and closes the channel after
// the terminal event. A failed cell ends with error; a clean one with an
// execute_result for the last non-empty stdout line, then idle.
func (r *subprocessRunner) pump(ctx context.Context, cmd *exec.Cmd, stdout, stderr io.Reader,
	count int64, events chan<- Event) {
	defer close(events)
	emit(ctx, events, NewStatusEvent(ExecutionStateBusy))

	var (
		lastOut   string
		traceback []string
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, func(line string) {
			if strings.TrimSpace(line) != "" {
				lastOut = line
			}
			emit(ctx, events, NewStreamEvent(StreamStdout, line+"\n"))
		})
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			traceback = append(traceback, line)
			if len(traceback) > tracebackTail {
				traceback = traceback[1:]
			}
			emit(ctx, events, NewStreamEvent(StreamStderr, line+"\n"))
		})
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		ename, evalue := parseTraceback(traceback, err)
		emit(ctx, events, NewErrorEvent(ename, evalue, traceback))
		return
	}
	if lastOut != "" {
		emit(ctx, events, NewExecuteResultEvent(count, lastOut))
	}
	emit(ctx, events, NewStatusEvent(ExecutionStateIdle))
}

// emit delivers the event unless the consumer has gone away.
func emit(ctx context.Context, events chan<- Event, event Event) {
	select {
	case events <- event:
	case <-ctx.Done():
	}
}

func scanLines(r io.Reader, fn func(line string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	// a killed interpreter tears its pipes; whatever was scanned stands
}

// parseTraceback pulls the exception name and message from the last line
// of a Python traceback, such as "NameError: name 'x' is not defined".
// When stderr gives nothing to parse, the exit error is reported instead.
func parseTraceback(lines []string, exitErr error) (string, string) {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if name, value, ok := strings.Cut(line, ":"); ok && isExceptionName(strings.TrimSpace(name)) {
			return strings.TrimSpace(name), strings.TrimSpace(value)
		}
		return "CalledProcessError", line
	}
	return "CalledProcessError", exitErr.Error()
}

// isExceptionName accepts dotted Python identifiers like
// "requests.exceptions.ConnectionError".
func isExceptionName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_' || r == '.':
		case unicode.IsDigit(r):
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
