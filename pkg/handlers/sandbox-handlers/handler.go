/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox_handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
	"github.com/yeti-teti/Caesarion/pkg/sandbox"
	apiutils "github.com/yeti-teti/Caesarion/pkg/utils"
)

const (
	paramName    = "name"
	paramSession = "session"

	jsonContentType   = "application/json; charset=utf-8"
	ndjsonContentType = "application/x-ndjson"

	uploadFormField     = "file"
	defaultShellCommand = "/bin/sh"

	// statusCreating is reported for a sandbox whose pod was just
	// requested and has not been waited on.
	statusCreating = "creating"
)

type Handler struct {
	driver      orchestrator.Driver
	registry    *sandbox.Registry
	provisioner *sandbox.Provisioner
	proxy       *sandbox.Proxy
	ingestor    *sandbox.Ingestor
}

func NewHandler(driver orchestrator.Driver, registry *sandbox.Registry,
	provisioner *sandbox.Provisioner, proxy *sandbox.Proxy, ingestor *sandbox.Ingestor) *Handler {
	return &Handler{
		driver:      driver,
		registry:    registry,
		provisioner: provisioner,
		proxy:       proxy,
		ingestor:    ingestor,
	}
}

type handleFunc func(*gin.Context) (interface{}, error)

func handle(c *gin.Context, fn handleFunc) {
	rsp, err := fn(c)
	if err != nil {
		apiutils.AbortWithApiError(c, err)
		return
	}
	code := http.StatusOK
	// If a status was previously set, use that status in the response.
	if c.Writer.Status() > 0 {
		code = c.Writer.Status()
	}
	switch rspType := rsp.(type) {
	case []byte:
		c.Data(code, jsonContentType, rspType)
	case string:
		c.Data(code, jsonContentType, []byte(rspType))
	default:
		c.JSON(code, rspType)
	}
}

// streamWriter commits the NDJSON response headers on the first relayed
// byte, so failures raised before the stream starts can still shape a
// JSON error response.
type streamWriter struct {
	gin.ResponseWriter
	wrote bool
}

func newStreamWriter(w gin.ResponseWriter) *streamWriter {
	return &streamWriter{ResponseWriter: w}
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if !w.wrote {
		w.Header().Set("Content-Type", ndjsonContentType)
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		w.wrote = true
	}
	return w.ResponseWriter.Write(p)
}
