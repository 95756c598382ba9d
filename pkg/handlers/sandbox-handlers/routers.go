/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox_handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func InitSandboxRouters(e *gin.Engine, h *Handler) {
	group := e.Group("/")
	{
		group.POST("sandboxes", h.CreateSandbox)
		group.GET("sandboxes", h.ListSandboxes)
		group.GET(fmt.Sprintf("sandboxes/:%s", paramName), h.GetSandbox)
		group.DELETE(fmt.Sprintf("sandboxes/:%s", paramName), h.DeleteSandbox)
		group.POST(fmt.Sprintf("sandboxes/:%s/execute", paramName), h.ExecuteCode)
		group.POST(fmt.Sprintf("sandboxes/:%s/upload", paramName), h.UploadFile)
		group.GET(fmt.Sprintf("sandboxes/:%s/files", paramName), h.ListFiles)
		group.GET(fmt.Sprintf("sandboxes/:%s/attach", paramName), h.AttachShell)

		group.POST(fmt.Sprintf("sessions/:%s/initialize", paramSession), h.InitializeSession)
	}
}
