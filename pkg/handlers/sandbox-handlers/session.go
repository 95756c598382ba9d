/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox_handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
)

func (h *Handler) InitializeSession(c *gin.Context) {
	handle(c, h.initializeSession)
}

// initializeSession makes sure the session has a confirmed-healthy
// workload. The first call provisions and reports "created"; repeats
// reuse the binding and report "exists".
func (h *Handler) initializeSession(c *gin.Context) (interface{}, error) {
	sessionID := strings.TrimSpace(c.Param(paramSession))
	if sessionID == "" {
		return nil, caeserrors.NewBadRequest("Missing session id.")
	}

	if workloadID, ok := h.registry.Get(sessionID); ok {
		h.registry.Touch(workloadID)
		return &InitializeSessionResponse{
			Status:    "exists",
			SessionID: sessionID,
			SandboxID: workloadID,
		}, nil
	}

	workloadID, err := h.provisioner.EnsureWorkload(c.Request.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	return &InitializeSessionResponse{
		Status:    "created",
		SessionID: sessionID,
		SandboxID: workloadID,
	}, nil
}
