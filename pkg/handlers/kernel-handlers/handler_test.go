/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package kernel_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	"github.com/yeti-teti/Caesarion/pkg/kernel"
)

// scriptedRunner plays back a canned event sequence for any non-empty cell.
type scriptedRunner struct {
	events  []kernel.Event
	healthy bool
	gotCode string
}

func (r *scriptedRunner) Execute(ctx context.Context, code string) (<-chan kernel.Event, error) {
	if strings.TrimSpace(code) == "" {
		return nil, caeserrors.NewBadRequest("Missing 'code' field")
	}
	r.gotCode = code
	ch := make(chan kernel.Event, len(r.events))
	for _, event := range r.events {
		ch <- event
	}
	close(ch)
	return ch, nil
}

func (r *scriptedRunner) Healthy() bool { return r.healthy }

func newTestEngine(runner kernel.Runner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	InitKernelRouters(e, NewHandler(runner))
	return e
}

func TestExecuteStreamsEvents(t *testing.T) {
	runner := &scriptedRunner{
		healthy: true,
		events: []kernel.Event{
			kernel.NewStatusEvent(kernel.ExecutionStateBusy),
			kernel.NewStreamEvent(kernel.StreamStdout, "4\n"),
			kernel.NewExecuteResultEvent(1, "4"),
			kernel.NewStatusEvent(kernel.ExecutionStateIdle),
		},
	}
	e := newTestEngine(runner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBufferString(`{"code":"print(2+2)"}`))
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))
	assert.Equal(t, "print(2+2)", runner.gotCode)

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "status", first["output_type"])
	assert.Equal(t, "busy", first["execution_state"])

	var last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "status", last["output_type"])
	assert.Equal(t, "idle", last["execution_state"])
}

func TestExecuteMissingCode(t *testing.T) {
	e := newTestEngine(&scriptedRunner{healthy: true})

	for _, body := range []string{``, `{}`, `{"code":""}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(body))
		e.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Contains(t, w.Body.String(), "Missing 'code' field")
	}
}

func TestHealthReady(t *testing.T) {
	e := newTestEngine(&scriptedRunner{healthy: true})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var rsp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	assert.Equal(t, "ok", rsp["status"])
	assert.NotEmpty(t, rsp["timestamp"])
}

func TestHealthKernelUnavailable(t *testing.T) {
	e := newTestEngine(&scriptedRunner{healthy: false})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "kernel interpreter not available")
}
