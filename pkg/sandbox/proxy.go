/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/yeti-teti/Caesarion/pkg/config"
	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	"github.com/yeti-teti/Caesarion/pkg/metrics"
	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
)

const (
	// execErrorBodyLimit caps how much of a failed upstream response gets
	// quoted into the returned error.
	execErrorBodyLimit = 4 << 10
	streamChunkSize    = 32 << 10
)

// ErrCancelled reports an execution that ended because the downstream caller
// went away, not because the sandbox failed. By the time it is raised there
// is nobody left to answer, so handlers treat it as a non-event.
var ErrCancelled = errors.New("execution cancelled by caller")

// Proxy forwards code into a workload's kernel executor and relays the
// NDJSON reply downstream as it arrives. It never buffers, parses, or
// reorders upstream lines; each relayed chunk only refreshes the workload's
// activity stamp so the reaper sees long executions as live.
type Proxy struct {
	driver      orchestrator.Driver
	registry    *Registry
	provisioner *Provisioner
	client      *http.Client

	// ready caches workload id -> service addr once readiness has been
	// observed. Readiness is one-way: entries are never demoted, and a
	// stale entry for a reaped workload just makes the next dial fail
	// as unreachable.
	ready sync.Map
}

func NewProxy(driver orchestrator.Driver, registry *Registry, provisioner *Provisioner) *Proxy {
	return &Proxy{
		driver:      driver,
		registry:    registry,
		provisioner: provisioner,
		client:      newStreamClient(),
	}
}

// newStreamClient builds the shared upstream client. Dialing is bounded,
// reading is not: an execution may legitimately stream output for minutes
// and is ended by caller cancellation rather than a client deadline.
func newStreamClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   time.Duration(config.GetConnectTimeoutSecond()) * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// ExecuteForSession resolves the session's workload, provisioning one on
// first touch, and forwards the execution into sink.
func (p *Proxy) ExecuteForSession(ctx context.Context, sessionID, code string, sink io.Writer) error {
	if strings.TrimSpace(code) == "" {
		return caeserrors.NewBadRequest("Code cannot be empty.")
	}
	workloadID, err := p.provisioner.EnsureWorkload(ctx, sessionID)
	if err != nil {
		return err
	}
	return p.Execute(ctx, workloadID, code, sink)
}

// Execute streams one code execution through the named workload into sink.
// Errors raised before the first byte map cleanly onto HTTP statuses; once
// bytes have flowed the response is committed and the returned error is only
// good for the caller's log.
func (p *Proxy) Execute(ctx context.Context, workloadID, code string, sink io.Writer) error {
	if strings.TrimSpace(code) == "" {
		return caeserrors.NewBadRequest("Code cannot be empty.")
	}
	if !p.registry.Tracked(workloadID) {
		return caeserrors.NewNotFound(caeserrors.SandboxKind, workloadID)
	}
	addr, err := p.readyAddr(ctx, workloadID)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.stream(ctx, workloadID, addr, code, sink)
	metrics.ExecutionDuration.Observe(time.Since(start).Seconds())
	metrics.ExecutionCnt.WithLabelValues(executionOutcome(err)).Inc()
	return err
}

// readyAddr returns the workload's service address, gating on readiness the
// first time a workload is executed against. Workloads created without a
// readiness wait are caught up here under a short deadline.
func (p *Proxy) readyAddr(ctx context.Context, workloadID string) (string, error) {
	if addr, ok := p.ready.Load(workloadID); ok {
		return addr.(string), nil
	}
	workload, err := p.driver.ReadWorkload(ctx, workloadID)
	if err != nil {
		return "", err
	}
	addr := workload.Addr
	if !workload.Ready {
		wait := time.Duration(config.GetExecuteWaitSecond()) * time.Second
		if addr, err = p.driver.WaitReady(ctx, workloadID, wait); err != nil {
			return "", err
		}
	}
	p.ready.Store(workloadID, addr)
	return addr, nil
}

func (p *Proxy) stream(ctx context.Context, workloadID, addr, code string, sink io.Writer) error {
	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return caeserrors.NewInternalError(err.Error())
	}
	url := fmt.Sprintf("http://%s/execute", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return caeserrors.NewInternalError(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := p.client.Do(req)
	if err != nil {
		return classifyConnectError(ctx, workloadID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, execErrorBodyLimit))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("execution failed with status %d", resp.StatusCode)
		}
		return caeserrors.NewUpstreamStatus(resp.StatusCode, msg)
	}

	return p.relay(ctx, workloadID, resp.Body, sink)
}

// relay copies the upstream body into sink chunk by chunk. The loop is
// sequential on purpose: a slow downstream write pauses the upstream read,
// which is how backpressure propagates.
func (p *Proxy) relay(ctx context.Context, workloadID string, body io.Reader, sink io.Writer) error {
	flusher, _ := sink.(http.Flusher)
	buf := make([]byte, streamChunkSize)
	var relayed int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := sink.Write(buf[:n]); writeErr != nil {
				klog.V(4).Infof("downstream writer for sandbox %s went away after %d bytes: %v",
					workloadID, relayed, writeErr)
				return ErrCancelled
			}
			if flusher != nil {
				flusher.Flush()
			}
			relayed += int64(n)
			p.registry.Touch(workloadID)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				klog.V(4).Infof("execution on sandbox %s cancelled by caller after %d bytes", workloadID, relayed)
				return ErrCancelled
			}
			klog.Errorf("sandbox %s dropped the execution stream after %d bytes: %v", workloadID, relayed, readErr)
			return caeserrors.NewUpstreamProtocol(fmt.Sprintf("sandbox %s disconnected unexpectedly", workloadID))
		}
	}
}

// classifyConnectError sorts a transport failure raised before the upstream
// answered: caller cancellation, dial timeout, or plain unreachable.
func classifyConnectError(ctx context.Context, workloadID string, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ErrCancelled
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return caeserrors.NewDeadlineExceeded(fmt.Sprintf("sandbox %s request timed out", workloadID))
	}
	klog.Errorf("cannot connect to sandbox %s: %v", workloadID, err)
	return caeserrors.NewSandboxUnreachable(workloadID)
}

func executionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrCancelled):
		return metrics.OutcomeCancelled
	case caeserrors.IsDeadlineExceeded(err):
		return metrics.OutcomeTimeout
	case caeserrors.IsUpstreamProtocol(err):
		return metrics.OutcomeBroken
	case caeserrors.IsUnavailable(err):
		return metrics.OutcomeUnreachable
	default:
		return metrics.OutcomeUpstream
	}
}
