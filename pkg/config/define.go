/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package config

const (
	// server
	serverPrefix = "server."
	serverPort   = serverPrefix + "port"

	// sandbox
	sandboxPrefix               = "sandbox."
	sandboxImage                = sandboxPrefix + "image"
	sandboxNamespace            = sandboxPrefix + "namespace"
	sandboxPort                 = sandboxPrefix + "port"
	sandboxReadyTimeoutSecond   = sandboxPrefix + "ready_timeout_second"
	sandboxExecuteWaitSecond    = sandboxPrefix + "execute_wait_second"
	sandboxConnectTimeoutSecond = sandboxPrefix + "connect_timeout_second"
	sandboxUploadDir            = sandboxPrefix + "upload_dir"
	sandboxUploadMaxBytes       = sandboxPrefix + "upload_max_bytes"
	sandboxCpuRequest           = sandboxPrefix + "cpu_request"
	sandboxCpuLimit             = sandboxPrefix + "cpu_limit"
	sandboxMemoryRequest        = sandboxPrefix + "memory_request"
	sandboxMemoryLimit          = sandboxPrefix + "memory_limit"

	// reaper
	reaperPrefix              = "reaper."
	reaperEnable              = reaperPrefix + "enable"
	reaperIdleTimeoutSecond   = reaperPrefix + "idle_timeout_second"
	reaperCheckIntervalSecond = reaperPrefix + "check_interval_second"

	// kernel (in-sandbox mode)
	kernelPrefix  = "kernel."
	kernelCommand = kernelPrefix + "command"
	kernelWorkdir = kernelPrefix + "workdir"
)

// Environment variables honored without a config file. Deployment
// manifests set these on both the gateway and the sandbox pods.
var envBindings = map[string]string{
	sandboxImage:              "SANDBOX_IMAGE",
	sandboxNamespace:          "KUBERNETES_NAMESPACE",
	sandboxUploadDir:          "UPLOAD_DIR",
	reaperIdleTimeoutSecond:   "IDLE_TIMEOUT",
	reaperCheckIntervalSecond: "CHECK_INTERVAL",
}
