/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"gotest.tools/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
	mock_orchestrator "github.com/yeti-teti/Caesarion/pkg/orchestrator/mock"
)

func newTestProxy(t *testing.T) (*Proxy, *mock_orchestrator.MockDriver, *Registry) {
	ctrl := gomock.NewController(t)
	driver := mock_orchestrator.NewMockDriver(ctrl)
	registry := NewRegistry()
	provisioner := NewProvisioner(driver, registry, healthyClient{})
	return NewProxy(driver, registry, provisioner), driver, registry
}

// hostport strips the scheme from an httptest server URL so it looks like
// a service address.
func hostport(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func expectReady(driver *mock_orchestrator.MockDriver, workloadID, addr string) {
	driver.EXPECT().ReadWorkload(gomock.Any(), workloadID).
		Return(&orchestrator.Workload{
			ID:     workloadID,
			Status: orchestrator.StatusRunning,
			Ready:  true,
			Addr:   addr,
		}, nil)
}

func TestExecuteStreamsUpstreamBytesVerbatim(t *testing.T) {
	lines := `{"output_type":"stream","name":"stdout","text":"hi\n"}` + "\n" +
		`{"output_type":"error","ename":"NameError","evalue":"name 'x' is not defined","traceback":["..."]}` + "\n"

	var (
		mu       sync.Mutex
		gotPath  string
		gotBody  string
		gotCType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath = r.URL.Path
		gotBody = string(body)
		gotCType = r.Header.Get("Content-Type")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		for _, line := range strings.SplitAfter(lines, "\n") {
			if line == "" {
				continue
			}
			_, _ = io.WriteString(w, line)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	proxy, driver, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")
	expectReady(driver, "sandbox-12ab34cd", hostport(srv))

	var sink bytes.Buffer
	err := proxy.Execute(context.Background(), "sandbox-12ab34cd", "print('hi')\nx", &sink)
	assert.NilError(t, err)
	// byte-exact pass-through, error line included
	assert.Equal(t, sink.String(), lines)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, gotPath, "/execute")
	assert.Equal(t, gotCType, "application/json")
	assert.Equal(t, gotBody, `{"code":"print('hi')\nx"}`)
}

func TestExecuteEmptyCode(t *testing.T) {
	proxy, _, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")

	for _, code := range []string{"", "   ", "\n\t"} {
		err := proxy.Execute(context.Background(), "sandbox-12ab34cd", code, &bytes.Buffer{})
		assert.Assert(t, caeserrors.IsBadRequest(err))
		assert.ErrorContains(t, err, "Code cannot be empty.")
	}
}

func TestExecuteUntrackedWorkload(t *testing.T) {
	proxy, _, _ := newTestProxy(t)

	err := proxy.Execute(context.Background(), "sandbox-12ab34cd", "1+1", &bytes.Buffer{})
	assert.Assert(t, caeserrors.IsNotFound(err))
}

func TestExecuteUnreachableWorkload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := hostport(srv)
	srv.Close() // nothing listens there anymore

	proxy, driver, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")
	expectReady(driver, "sandbox-12ab34cd", addr)

	err := proxy.Execute(context.Background(), "sandbox-12ab34cd", "1+1", &bytes.Buffer{})
	assert.Assert(t, caeserrors.IsUnavailable(err))
	assert.ErrorContains(t, err, "not reachable")
}

func TestExecuteUpstreamStatusPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":"Missing 'code' field"}`)
	}))
	defer srv.Close()

	proxy, driver, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")
	expectReady(driver, "sandbox-12ab34cd", hostport(srv))

	var sink bytes.Buffer
	err := proxy.Execute(context.Background(), "sandbox-12ab34cd", "1+1", &sink)
	var statusErr *apierrors.StatusError
	assert.Assert(t, errors.As(err, &statusErr))
	assert.Equal(t, statusErr.ErrStatus.Code, int32(http.StatusUnprocessableEntity))
	assert.ErrorContains(t, err, "Missing 'code' field")
	// nothing was relayed downstream
	assert.Equal(t, sink.Len(), 0)
}

func TestExecuteMidStreamDisconnect(t *testing.T) {
	line := `{"output_type":"stream","name":"stdout","text":"partial\n"}` + "\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, line)
		w.(http.Flusher).Flush()
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close() // tear the connection mid-body
		}
	}))
	defer srv.Close()

	proxy, driver, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")
	expectReady(driver, "sandbox-12ab34cd", hostport(srv))

	var sink bytes.Buffer
	err := proxy.Execute(context.Background(), "sandbox-12ab34cd", "1+1", &sink)
	assert.Assert(t, caeserrors.IsUpstreamProtocol(err))
	assert.ErrorContains(t, err, "disconnected unexpectedly")
	// the bytes that made it through were already relayed
	assert.Equal(t, sink.String(), line)
}

// cancellingWriter cancels the execution context once the first chunk has
// been written downstream, like a client that hangs up mid-stream.
type cancellingWriter struct {
	cancel context.CancelFunc
	buf    bytes.Buffer
	once   sync.Once
}

func (w *cancellingWriter) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	w.once.Do(w.cancel)
	return n, err
}

func TestExecuteDownstreamCancelPropagatesUpstream(t *testing.T) {
	upstreamDone := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				close(upstreamDone)
				return
			case <-ticker.C:
				_, _ = io.WriteString(w, `{"output_type":"stream","name":"stdout","text":"tick\n"}`+"\n")
				flusher.Flush()
			}
		}
	}))
	defer srv.Close()

	proxy, driver, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")
	expectReady(driver, "sandbox-12ab34cd", hostport(srv))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &cancellingWriter{cancel: cancel}

	err := proxy.Execute(ctx, "sandbox-12ab34cd", "while True: pass", sink)
	assert.Assert(t, errors.Is(err, ErrCancelled))

	select {
	case <-upstreamDone:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream request was not cancelled")
	}
}

func TestExecuteRefreshesActivityPerChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = io.WriteString(w, `{"output_type":"stream","name":"stdout","text":"a\n"}`+"\n")
		flusher.Flush()
		time.Sleep(20 * time.Millisecond)
		_, _ = io.WriteString(w, `{"output_type":"status","execution_state":"idle"}`+"\n")
		flusher.Flush()
	}))
	defer srv.Close()

	proxy, driver, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")
	expectReady(driver, "sandbox-12ab34cd", hostport(srv))

	before, ok := registry.LastActive("sandbox-12ab34cd")
	assert.Equal(t, ok, true)

	err := proxy.Execute(context.Background(), "sandbox-12ab34cd", "print('a')", &bytes.Buffer{})
	assert.NilError(t, err)

	after, ok := registry.LastActive("sandbox-12ab34cd")
	assert.Equal(t, ok, true)
	assert.Assert(t, after.After(before), "streaming chunks must refresh the activity stamp")
}

func TestExecuteWaitsForPendingWorkloadOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"output_type":"status","execution_state":"idle"}`+"\n")
	}))
	defer srv.Close()
	addr := hostport(srv)

	proxy, driver, registry := newTestProxy(t)
	registry.Track("sandbox-12ab34cd")

	driver.EXPECT().ReadWorkload(gomock.Any(), "sandbox-12ab34cd").
		Return(&orchestrator.Workload{ID: "sandbox-12ab34cd", Status: orchestrator.StatusPending}, nil).Times(1)
	driver.EXPECT().WaitReady(gomock.Any(), "sandbox-12ab34cd", gomock.Any()).
		Return(addr, nil).Times(1)

	err := proxy.Execute(context.Background(), "sandbox-12ab34cd", "1+1", &bytes.Buffer{})
	assert.NilError(t, err)

	// the second execution hits the ready cache: no further driver calls
	err = proxy.Execute(context.Background(), "sandbox-12ab34cd", "1+1", &bytes.Buffer{})
	assert.NilError(t, err)
}

func TestExecuteForSessionProvisionsOnFirstTouch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"output_type":"status","execution_state":"idle"}`+"\n")
	}))
	defer srv.Close()
	addr := hostport(srv)

	proxy, driver, registry := newTestProxy(t)

	var created string
	driver.EXPECT().CreateWorkload(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, opts orchestrator.CreateOptions) (*orchestrator.Workload, error) {
			created = name
			return &orchestrator.Workload{ID: name, Status: orchestrator.StatusPending}, nil
		})
	driver.EXPECT().CreateService(gomock.Any(), gomock.Any()).Return(nil)
	driver.EXPECT().WaitReady(gomock.Any(), gomock.Any(), gomock.Any()).Return(addr, nil)
	driver.EXPECT().ReadWorkload(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string) (*orchestrator.Workload, error) {
			return &orchestrator.Workload{ID: name, Status: orchestrator.StatusRunning, Ready: true, Addr: addr}, nil
		})

	var sink bytes.Buffer
	err := proxy.ExecuteForSession(context.Background(), "session-1", "1+1", &sink)
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(created, "sandbox-"))

	bound, ok := registry.Get("session-1")
	assert.Equal(t, ok, true)
	assert.Equal(t, bound, created)
}

func TestExecuteForSessionEmptyCodeShortCircuits(t *testing.T) {
	proxy, _, _ := newTestProxy(t)

	err := proxy.ExecuteForSession(context.Background(), "session-1", "  ", &bytes.Buffer{})
	assert.Assert(t, caeserrors.IsBadRequest(err))
}
