/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/yeti-teti/Caesarion/pkg/backoff"
	"github.com/yeti-teti/Caesarion/pkg/config"
	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	"github.com/yeti-teti/Caesarion/pkg/httpclient"
	"github.com/yeti-teti/Caesarion/pkg/metrics"
	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
)

// DefaultLanguage is the only kernel the sandbox image ships.
const DefaultLanguage = "python"

const (
	cleanupTimeout     = 30 * time.Second
	healthConfirmTotal = 30 * time.Second
	healthConfirmStep  = 5 * time.Second
)

// Provisioner owns the create side of the sandbox lifecycle: minting
// workload names, bringing up pod and service, waiting for readiness, and
// binding the result to a session.
type Provisioner struct {
	driver   orchestrator.Driver
	registry *Registry
	client   httpclient.Interface
}

func NewProvisioner(driver orchestrator.Driver, registry *Registry, client httpclient.Interface) *Provisioner {
	return &Provisioner{
		driver:   driver,
		registry: registry,
		client:   client,
	}
}

// EnsureWorkload returns the workload serving the session, creating one if
// none is bound. Concurrent calls for the same session share a single
// provisioning flight; the losers receive the winner's workload id. The
// returned workload has passed readiness and a health confirmation.
func (p *Provisioner) EnsureWorkload(ctx context.Context, sessionID string) (string, error) {
	if workloadID, ok := p.registry.Get(sessionID); ok {
		p.registry.Touch(workloadID)
		return workloadID, nil
	}
	return p.registry.EnsureOnce(sessionID, func() (string, error) {
		if workloadID, ok := p.registry.Get(sessionID); ok {
			p.registry.Touch(workloadID)
			return workloadID, nil
		}

		// Detached from the request: a disconnected client must not leak a
		// half-created workload, and a reconnecting one joins the flight.
		createCtx := context.WithoutCancel(ctx)

		var workloadID string
		err := backoff.RetryOn(func() error {
			name := mintWorkloadName()
			if err := p.provision(createCtx, name, DefaultLanguage); err != nil {
				return err
			}
			workloadID = name
			return nil
		}, 2, 0, caeserrors.IsAlreadyExist)
		if err != nil {
			return "", err
		}

		p.registry.Bind(sessionID, workloadID)
		metrics.SandboxCreatedCnt.Inc()
		klog.Infof("session %s bound to sandbox %s", sessionID, workloadID)
		return workloadID, nil
	})
}

// CreateWorkload creates a sandbox that is not bound to any session and does
// not wait for readiness. Its idle clock starts immediately so the reaper
// collects it even if nothing ever executes on it.
func (p *Provisioner) CreateWorkload(ctx context.Context, lang string) (*orchestrator.Workload, error) {
	lang = strings.ToLower(lang)
	if lang == "" {
		lang = DefaultLanguage
	}
	if lang != DefaultLanguage {
		return nil, caeserrors.NewBadRequest("Only Python sandboxes are supported.")
	}
	createCtx := context.WithoutCancel(ctx)

	var workload *orchestrator.Workload
	err := backoff.RetryOn(func() error {
		name := mintWorkloadName()
		w, err := p.createWorkloadAndService(createCtx, name, lang)
		if err != nil {
			return err
		}
		workload = w
		return nil
	}, 2, 0, caeserrors.IsAlreadyExist)
	if err != nil {
		return nil, err
	}

	metrics.SandboxCreatedCnt.Inc()
	klog.Infof("created sandbox %s, language: %s", workload.ID, lang)
	return workload, nil
}

// Destroy deletes the workload's service and pod and drops it from the
// registry. Destroying an unknown or already-deleted workload succeeds.
func (p *Provisioner) Destroy(ctx context.Context, workloadID, reason string) error {
	if err := p.driver.DeleteWorkload(ctx, workloadID); err != nil && !caeserrors.IsNotFound(err) {
		return err
	}
	p.registry.Unbind(workloadID)
	metrics.SandboxDestroyedCnt.WithLabelValues(reason).Inc()
	return nil
}

// List returns every workload carrying the sandbox labels, bound or not.
func (p *Provisioner) List(ctx context.Context) ([]orchestrator.Workload, error) {
	return p.driver.ListWorkloads(ctx, orchestrator.SandboxSelector)
}

// Describe looks up a single workload. Pods that exist but do not carry the
// sandbox marker are reported as not found rather than exposed.
func (p *Provisioner) Describe(ctx context.Context, workloadID string) (*orchestrator.Workload, error) {
	workload, err := p.driver.ReadWorkload(ctx, workloadID)
	if err != nil {
		return nil, err
	}
	if workload.Labels[orchestrator.LabelSandbox] != orchestrator.SandboxEnabled {
		return nil, caeserrors.NewNotFound(caeserrors.SandboxKind, workloadID)
	}
	return workload, nil
}

// provision brings a named workload all the way to confirmed-healthy.
// Any failure after the pod exists tears the partial state down.
func (p *Provisioner) provision(ctx context.Context, name, lang string) error {
	if _, err := p.createWorkloadAndService(ctx, name, lang); err != nil {
		return err
	}

	readyTimeout := time.Duration(config.GetReadyTimeoutSecond()) * time.Second
	addr, err := p.driver.WaitReady(ctx, name, readyTimeout)
	if err != nil {
		p.cleanup(name)
		return err
	}

	if err := p.confirmHealthy(addr); err != nil {
		p.cleanup(name)
		return err
	}
	return nil
}

func (p *Provisioner) createWorkloadAndService(ctx context.Context, name, lang string) (*orchestrator.Workload, error) {
	opts := orchestrator.CreateOptions{
		Image:         config.GetSandboxImage(),
		Port:          int32(config.GetSandboxPort()),
		Labels:        map[string]string{orchestrator.LabelLanguage: lang},
		CpuRequest:    config.GetSandboxCpuRequest(),
		CpuLimit:      config.GetSandboxCpuLimit(),
		MemoryRequest: config.GetSandboxMemoryRequest(),
		MemoryLimit:   config.GetSandboxMemoryLimit(),
	}
	workload, err := p.driver.CreateWorkload(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	// Track as soon as the pod exists so a reaper scan running during
	// provisioning does not classify it as a stray.
	p.registry.Track(name)
	if err := p.driver.CreateService(ctx, name); err != nil {
		// the pod exists but is unreachable without its service
		p.cleanup(name)
		return nil, err
	}
	return workload, nil
}

// confirmHealthy polls the sandbox over its service so endpoint propagation
// lag does not surface to the first execute as a cold 503.
func (p *Provisioner) confirmHealthy(addr string) error {
	url := addr + "/health"
	return backoff.Retry(func() error {
		result, err := p.client.Get(url)
		if err != nil {
			return err
		}
		if !result.IsSuccess() {
			return fmt.Errorf("health probe returned %d", result.StatusCode)
		}
		return nil
	}, healthConfirmTotal, healthConfirmStep)
}

// cleanup tears down partially-created resources. It runs on its own
// context because the caller's may already be done.
func (p *Provisioner) cleanup(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	p.registry.Unbind(name)
	if err := p.driver.DeleteWorkload(ctx, name); err != nil {
		klog.Errorf("failed to clean up sandbox %s: %v", name, err)
		return
	}
	metrics.SandboxDestroyedCnt.WithLabelValues(metrics.ReasonCleanup).Inc()
}

func mintWorkloadName() string {
	return "sandbox-" + uuid.NewString()[:8]
}
