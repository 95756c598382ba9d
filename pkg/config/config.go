/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"github.com/spf13/viper"
)

func init() {
	for key, env := range envBindings {
		// BindEnv only fails on an empty key.
		_ = viper.BindEnv(key, env)
	}
}

// SetValue sets a configuration value for the specified key.
func SetValue(key, value string) {
	viper.Set(key, value)
}

// LoadConfig loads configuration from the specified file path. The file is
// optional; environment bindings and defaults apply either way.
func LoadConfig(path string) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	return viper.ReadInConfig()
}

func getString(key, defaultValue string) string {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetString(key)
}

func getBool(key string, defaultValue bool) bool {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetBool(key)
}

func getInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt(key)
}

func getInt64(key string, defaultValue int64) int64 {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt64(key)
}

// GetServerPort returns the gateway API server port.
func GetServerPort() int {
	return getInt(serverPort, 8080)
}

// GetSandboxImage returns the container image used for sandbox workloads.
func GetSandboxImage() string {
	return getString(sandboxImage, "caesarion-sandbox:latest")
}

// GetSandboxNamespace returns the namespace sandbox workloads run in.
func GetSandboxNamespace() string {
	return getString(sandboxNamespace, "app")
}

// GetSandboxPort returns the port the in-sandbox kernel executor listens on.
func GetSandboxPort() int {
	return getInt(sandboxPort, 8000)
}

// GetReadyTimeoutSecond returns how long provisioning waits for a new
// workload to become ready.
func GetReadyTimeoutSecond() int {
	return getInt(sandboxReadyTimeoutSecond, 300)
}

// GetExecuteWaitSecond returns the short readiness wait applied when an
// execute request arrives before the workload has been observed ready.
func GetExecuteWaitSecond() int {
	return getInt(sandboxExecuteWaitSecond, 60)
}

// GetConnectTimeoutSecond returns the dial timeout for kernel-executor
// connections.
func GetConnectTimeoutSecond() int {
	return getInt(sandboxConnectTimeoutSecond, 30)
}

// GetUploadDir returns the in-sandbox directory uploads land in. The
// kernel image decides between /app and /uploaded_files; this must match
// its layout.
func GetUploadDir() string {
	return getString(sandboxUploadDir, "/app")
}

// GetUploadMaxBytes returns the maximum accepted upload size.
func GetUploadMaxBytes() int64 {
	return getInt64(sandboxUploadMaxBytes, 10*1024*1024)
}

func GetSandboxCpuRequest() string {
	return getString(sandboxCpuRequest, "100m")
}

func GetSandboxCpuLimit() string {
	return getString(sandboxCpuLimit, "500m")
}

func GetSandboxMemoryRequest() string {
	return getString(sandboxMemoryRequest, "256Mi")
}

func GetSandboxMemoryLimit() string {
	return getString(sandboxMemoryLimit, "512Mi")
}

// IsReaperEnable returns whether the idle reaper runs.
func IsReaperEnable() bool {
	return getBool(reaperEnable, true)
}

// GetIdleTimeoutSecond returns the idle threshold after which a workload
// is reclaimed.
func GetIdleTimeoutSecond() int {
	return getInt(reaperIdleTimeoutSecond, 3600)
}

// GetCheckIntervalSecond returns the reaper scan interval.
func GetCheckIntervalSecond() int {
	return getInt(reaperCheckIntervalSecond, 3600)
}

// GetKernelCommand returns the interpreter the in-sandbox runner invokes.
func GetKernelCommand() string {
	return getString(kernelCommand, "python3")
}

// GetKernelWorkdir returns the working directory for executed code.
func GetKernelWorkdir() string {
	return getString(kernelWorkdir, "/app")
}
