/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package kernel_handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	"github.com/yeti-teti/Caesarion/pkg/kernel"
	apiutils "github.com/yeti-teti/Caesarion/pkg/utils"
)

const ndjsonContentType = "application/x-ndjson"

// Handler serves the in-sandbox surface: code execution against the local
// kernel runner and a readiness probe.
type Handler struct {
	runner kernel.Runner
}

func NewHandler(runner kernel.Runner) *Handler {
	return &Handler{runner: runner}
}

type ExecuteRequest struct {
	Code string `json:"code"`
}

// ExecuteCode runs one code cell and relays its execution events as an
// NDJSON stream, one event per line, flushed as they arrive.
func (h *Handler) ExecuteCode(c *gin.Context) {
	req := &ExecuteRequest{}
	if _, err := apiutils.ParseRequestBody(c.Request, req); err != nil {
		apiutils.AbortWithApiError(c, err)
		return
	}

	events, err := h.runner.Execute(c.Request.Context(), req.Code)
	if err != nil {
		apiutils.AbortWithApiError(c, err)
		return
	}

	c.Header("Content-Type", ndjsonContentType)
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	flusher, _ := c.Writer.(http.Flusher)

	for event := range events {
		line, marshalErr := kernel.MarshalLine(event)
		if marshalErr != nil {
			klog.Errorf("marshal execution event err: %v", marshalErr)
			continue
		}
		if _, writeErr := c.Writer.Write(line); writeErr != nil {
			// The client went away; the request context cancellation
			// stops the runner.
			klog.Errorf("write execution event err: %v", writeErr)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// Health reports whether the kernel runner can execute code.
func (h *Handler) Health(c *gin.Context) {
	if !h.runner.Healthy() {
		apiutils.AbortWithApiError(c, caeserrors.NewKernelNotReady("kernel interpreter not available"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
