/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package orchestrator

import "fmt"

// WorkloadStatus is the coarse lifecycle phase of a sandbox workload.
type WorkloadStatus string

const (
	StatusPending WorkloadStatus = "Pending"
	StatusRunning WorkloadStatus = "Running"
	StatusFailed  WorkloadStatus = "Failed"
	StatusUnknown WorkloadStatus = "Unknown"
)

// Label keys and values stamped on every sandbox pod. The reaper and the
// list endpoints select on these, so they must stay stable across releases.
const (
	LabelApp      = "app"
	LabelSandbox  = "sbx"
	LabelLanguage = "sbx_lang"
	LabelPodName  = "pod-name"

	AppSandbox     = "sandbox"
	SandboxEnabled = "1"
)

// SandboxSelector matches every pod this gateway manages.
const SandboxSelector = LabelApp + "=" + AppSandbox + "," + LabelSandbox + "=" + SandboxEnabled

// Workload is the driver's view of one sandbox pod.
type Workload struct {
	// ID is the pod name, unique within the namespace.
	ID     string         `json:"id"`
	Status WorkloadStatus `json:"status"`
	Ready  bool           `json:"ready"`
	// Addr is the in-cluster service address the proxy dials, host:port.
	Addr   string            `json:"addr,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// CreateOptions carries everything CreateWorkload needs beyond the name.
type CreateOptions struct {
	Image         string
	Port          int32
	Env           map[string]string
	Labels        map[string]string
	CpuRequest    string
	CpuLimit      string
	MemoryRequest string
	MemoryLimit   string
}

// ServiceName returns the name of the service fronting the given workload.
func ServiceName(workloadID string) string {
	return workloadID + "-service"
}

// ServiceAddr returns the cluster-internal address the proxy dials.
func ServiceAddr(workloadID, namespace string, port int32) string {
	return fmt.Sprintf("%s.%s.svc.cluster.local:%d", ServiceName(workloadID), namespace, port)
}
