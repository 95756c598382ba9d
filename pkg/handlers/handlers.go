/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	kernelhandlers "github.com/yeti-teti/Caesarion/pkg/handlers/kernel-handlers"
	"github.com/yeti-teti/Caesarion/pkg/handlers/middleware"
	sandboxhandlers "github.com/yeti-teti/Caesarion/pkg/handlers/sandbox-handlers"
	"github.com/yeti-teti/Caesarion/pkg/kernel"
	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
	"github.com/yeti-teti/Caesarion/pkg/sandbox"
	apiutils "github.com/yeti-teti/Caesarion/pkg/utils"
)

// Deps carries the wired components the gateway surface is built from.
type Deps struct {
	Driver      orchestrator.Driver
	Registry    *sandbox.Registry
	Provisioner *sandbox.Provisioner
	Proxy       *sandbox.Proxy
	Ingestor    *sandbox.Ingestor
}

// InitGatewayHandlers builds the gin engine for gateway mode: the sandbox
// lifecycle and execution routes plus health and metrics.
func InitGatewayHandlers(deps *Deps) *gin.Engine {
	engine := newEngine()

	handler := sandboxhandlers.NewHandler(deps.Driver, deps.Registry, deps.Provisioner, deps.Proxy, deps.Ingestor)
	sandboxhandlers.InitSandboxRouters(engine, handler)

	engine.GET("health", health)
	engine.GET("metrics", gin.WrapH(promhttp.Handler()))
	return engine
}

// InitKernelHandlers builds the gin engine for sandbox mode: only code
// execution against the local runner and the health probe.
func InitKernelHandlers(runner kernel.Runner) *gin.Engine {
	engine := newEngine()
	kernelhandlers.InitKernelRouters(engine, kernelhandlers.NewHandler(runner))
	return engine
}

func newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Logger(), gin.Recovery())
	engine.NoRoute(func(c *gin.Context) {
		apiutils.AbortWithApiError(c, caeserrors.NewNotFoundWithMessage(c.Request.RequestURI+" not found"))
	})
	return engine
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
