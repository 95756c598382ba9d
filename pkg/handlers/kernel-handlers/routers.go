/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package kernel_handlers

import (
	"github.com/gin-gonic/gin"
)

func InitKernelRouters(e *gin.Engine, h *Handler) {
	e.POST("execute", h.ExecuteCode)
	e.GET("health", h.Health)
}
