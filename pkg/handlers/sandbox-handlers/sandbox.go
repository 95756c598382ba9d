/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox_handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/yeti-teti/Caesarion/pkg/metrics"
	"github.com/yeti-teti/Caesarion/pkg/sandbox"
	apiutils "github.com/yeti-teti/Caesarion/pkg/utils"
)

func (h *Handler) CreateSandbox(c *gin.Context) {
	handle(c, h.createSandbox)
}

func (h *Handler) ListSandboxes(c *gin.Context) {
	handle(c, h.listSandboxes)
}

func (h *Handler) GetSandbox(c *gin.Context) {
	handle(c, h.getSandbox)
}

func (h *Handler) DeleteSandbox(c *gin.Context) {
	handle(c, h.deleteSandbox)
}

// createSandbox requests a new workload without waiting for readiness;
// the first execute catches up on it.
func (h *Handler) createSandbox(c *gin.Context) (interface{}, error) {
	req := &CreateSandboxRequest{}
	if _, err := apiutils.ParseRequestBody(c.Request, req); err != nil {
		return nil, err
	}
	workload, err := h.provisioner.CreateWorkload(c.Request.Context(), req.Lang)
	if err != nil {
		return nil, err
	}
	return &CreateSandboxResponse{
		ID:     workload.ID,
		Name:   workload.ID,
		Status: statusCreating,
	}, nil
}

func (h *Handler) listSandboxes(c *gin.Context) (interface{}, error) {
	workloads, err := h.provisioner.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	rsp := &ListSandboxesResponse{Sandboxes: make([]SandboxInfo, 0, len(workloads))}
	for _, workload := range workloads {
		rsp.Sandboxes = append(rsp.Sandboxes, SandboxInfo{
			ID:     workload.ID,
			Name:   workload.ID,
			Status: string(workload.Status),
			Ready:  workload.Ready,
		})
	}
	return rsp, nil
}

func (h *Handler) getSandbox(c *gin.Context) (interface{}, error) {
	name := c.Param(paramName)
	workload, err := h.provisioner.Describe(c.Request.Context(), name)
	if err != nil {
		return nil, err
	}
	return &SandboxInfo{
		ID:     workload.ID,
		Name:   workload.ID,
		Status: string(workload.Status),
		Ready:  workload.Ready,
		IP:     workload.Addr,
	}, nil
}

// deleteSandbox is idempotent: deleting a workload that is already gone
// still answers with the deletion message.
func (h *Handler) deleteSandbox(c *gin.Context) (interface{}, error) {
	name := c.Param(paramName)
	if err := h.provisioner.Destroy(c.Request.Context(), name, metrics.ReasonExplicit); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: fmt.Sprintf("Sandbox %s deleted", name)}, nil
}

// ExecuteCode relays one code execution as an NDJSON stream. It bypasses
// handle(): once upstream bytes flow the response is committed and errors
// can only be logged.
func (h *Handler) ExecuteCode(c *gin.Context) {
	name := c.Param(paramName)
	req := &ExecuteRequest{}
	if _, err := apiutils.ParseRequestBody(c.Request, req); err != nil {
		apiutils.AbortWithApiError(c, err)
		return
	}

	sink := newStreamWriter(c.Writer)
	err := h.proxy.Execute(c.Request.Context(), name, req.Code, sink)
	if err == nil || errors.Is(err, sandbox.ErrCancelled) {
		return
	}
	if sink.wrote {
		klog.Errorf("execution on sandbox %s failed mid-stream: %v", name, err)
		return
	}
	apiutils.AbortWithApiError(c, err)
}
