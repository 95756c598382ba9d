/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"gotest.tools/assert"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	"github.com/yeti-teti/Caesarion/pkg/httpclient"
	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
	mock_orchestrator "github.com/yeti-teti/Caesarion/pkg/orchestrator/mock"
)

// healthyClient answers every request with 200 so provisioning tests are not
// gated on the health-confirmation backoff.
type healthyClient struct{}

func (healthyClient) Get(url string, headers ...string) (*httpclient.Result, error) {
	return &httpclient.Result{StatusCode: http.StatusOK}, nil
}

func (healthyClient) Post(url string, body interface{}, headers ...string) (*httpclient.Result, error) {
	return &httpclient.Result{StatusCode: http.StatusOK}, nil
}

func (healthyClient) Put(url string, body interface{}, headers ...string) (*httpclient.Result, error) {
	return &httpclient.Result{StatusCode: http.StatusOK}, nil
}

func (healthyClient) Delete(url string, headers ...string) (*httpclient.Result, error) {
	return &httpclient.Result{StatusCode: http.StatusOK}, nil
}

func (healthyClient) Do(req *http.Request) (*httpclient.Result, error) {
	return &httpclient.Result{StatusCode: http.StatusOK}, nil
}

func newTestProvisioner(t *testing.T) (*Provisioner, *mock_orchestrator.MockDriver, *Registry) {
	ctrl := gomock.NewController(t)
	driver := mock_orchestrator.NewMockDriver(ctrl)
	registry := NewRegistry()
	return NewProvisioner(driver, registry, healthyClient{}), driver, registry
}

func TestEnsureWorkloadCreatesOnceAndCaches(t *testing.T) {
	p, driver, registry := newTestProvisioner(t)

	driver.EXPECT().CreateWorkload(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, opts orchestrator.CreateOptions) (*orchestrator.Workload, error) {
			assert.Equal(t, opts.Labels[orchestrator.LabelLanguage], "python")
			return &orchestrator.Workload{ID: name, Status: orchestrator.StatusPending}, nil
		}).Times(1)
	driver.EXPECT().CreateService(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	driver.EXPECT().WaitReady(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("addr:8000", nil).Times(1)

	first, err := p.EnsureWorkload(context.Background(), "session-1")
	assert.NilError(t, err)
	assert.Assert(t, first != "")

	// second call is a registry hit, no further driver traffic
	second, err := p.EnsureWorkload(context.Background(), "session-1")
	assert.NilError(t, err)
	assert.Equal(t, second, first)
	assert.Equal(t, registry.Tracked(first), true)
}

func TestEnsureWorkloadRetriesWithFreshNameOnConflict(t *testing.T) {
	p, driver, _ := newTestProvisioner(t)

	var names []string
	conflict := driver.EXPECT().CreateWorkload(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, opts orchestrator.CreateOptions) (*orchestrator.Workload, error) {
			names = append(names, name)
			return nil, caeserrors.NewAlreadyExist("pod exists")
		})
	driver.EXPECT().CreateWorkload(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, opts orchestrator.CreateOptions) (*orchestrator.Workload, error) {
			names = append(names, name)
			return &orchestrator.Workload{ID: name}, nil
		}).After(conflict)
	driver.EXPECT().CreateService(gomock.Any(), gomock.Any()).Return(nil)
	driver.EXPECT().WaitReady(gomock.Any(), gomock.Any(), gomock.Any()).Return("addr:8000", nil)

	workloadID, err := p.EnsureWorkload(context.Background(), "session-1")
	assert.NilError(t, err)
	assert.Equal(t, len(names), 2)
	assert.Assert(t, names[0] != names[1])
	assert.Equal(t, workloadID, names[1])
}

func TestEnsureWorkloadCleansUpWhenServiceFails(t *testing.T) {
	p, driver, registry := newTestProvisioner(t)

	driver.EXPECT().CreateWorkload(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&orchestrator.Workload{ID: "sandbox-dead0001"}, nil)
	driver.EXPECT().CreateService(gomock.Any(), gomock.Any()).
		Return(caeserrors.NewUnavailable("kubernetes api: boom"))
	driver.EXPECT().DeleteWorkload(gomock.Any(), gomock.Any()).Return(nil)

	_, err := p.EnsureWorkload(context.Background(), "session-1")
	assert.Assert(t, caeserrors.IsUnavailable(err))
	assert.Equal(t, registry.Tracked("sandbox-dead0001"), false)
}

func TestEnsureWorkloadCleansUpWhenNeverReady(t *testing.T) {
	p, driver, registry := newTestProvisioner(t)

	driver.EXPECT().CreateWorkload(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, opts orchestrator.CreateOptions) (*orchestrator.Workload, error) {
			return &orchestrator.Workload{ID: name}, nil
		})
	driver.EXPECT().CreateService(gomock.Any(), gomock.Any()).Return(nil)
	driver.EXPECT().WaitReady(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", caeserrors.NewDeadlineExceeded("sandbox was not ready within 5m0s"))
	driver.EXPECT().DeleteWorkload(gomock.Any(), gomock.Any()).Return(nil)

	_, err := p.EnsureWorkload(context.Background(), "session-1")
	assert.Assert(t, caeserrors.IsDeadlineExceeded(err))

	_, bound := registry.Get("session-1")
	assert.Equal(t, bound, false)
}

func TestCreateWorkloadDoesNotWaitForReadiness(t *testing.T) {
	p, driver, registry := newTestProvisioner(t)

	driver.EXPECT().CreateWorkload(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, opts orchestrator.CreateOptions) (*orchestrator.Workload, error) {
			return &orchestrator.Workload{ID: name, Status: orchestrator.StatusPending}, nil
		})
	driver.EXPECT().CreateService(gomock.Any(), gomock.Any()).Return(nil)
	// no WaitReady expectation: calling it would fail the test

	workload, err := p.CreateWorkload(context.Background(), "python")
	assert.NilError(t, err)
	assert.Equal(t, workload.Status, orchestrator.StatusPending)
	assert.Equal(t, registry.Tracked(workload.ID), true)
}

func TestCreateWorkloadRejectsUnknownLanguage(t *testing.T) {
	p, _, _ := newTestProvisioner(t)

	_, err := p.CreateWorkload(context.Background(), "ruby")
	assert.Assert(t, caeserrors.IsBadRequest(err))
	assert.ErrorContains(t, err, "Only Python sandboxes are supported")
}

func TestDescribe(t *testing.T) {
	p, driver, _ := newTestProvisioner(t)

	driver.EXPECT().ReadWorkload(gomock.Any(), "sandbox-abc12345").
		Return(&orchestrator.Workload{
			ID:     "sandbox-abc12345",
			Status: orchestrator.StatusRunning,
			Labels: map[string]string{orchestrator.LabelSandbox: orchestrator.SandboxEnabled},
		}, nil)
	driver.EXPECT().ReadWorkload(gomock.Any(), "api-7d9f").
		Return(&orchestrator.Workload{ID: "api-7d9f", Labels: map[string]string{"app": "api"}}, nil)

	workload, err := p.Describe(context.Background(), "sandbox-abc12345")
	assert.NilError(t, err)
	assert.Equal(t, workload.Status, orchestrator.StatusRunning)

	// pods without the sandbox marker stay invisible
	_, err = p.Describe(context.Background(), "api-7d9f")
	assert.Assert(t, caeserrors.IsNotFound(err))
}

func TestDestroyIsIdempotent(t *testing.T) {
	p, driver, registry := newTestProvisioner(t)
	registry.Bind("session-1", "sandbox-aaaa1111")

	driver.EXPECT().DeleteWorkload(gomock.Any(), "sandbox-aaaa1111").Return(nil).Times(2)

	assert.NilError(t, p.Destroy(context.Background(), "sandbox-aaaa1111", "explicit"))
	assert.Equal(t, registry.Tracked("sandbox-aaaa1111"), false)

	// second delete finds nothing and still succeeds
	assert.NilError(t, p.Destroy(context.Background(), "sandbox-aaaa1111", "explicit"))
}
