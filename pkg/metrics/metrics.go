/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SandboxesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "caesarion",
		Subsystem: "gateway",
		Name:      "sandboxes_active",
		Help:      "Number of sandbox workloads tracked in the registry",
	})
	SandboxCreatedCnt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "caesarion",
		Subsystem: "gateway",
		Name:      "sandbox_created_total",
		Help:      "Total number of sandbox workloads created",
	})
	SandboxDestroyedCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caesarion",
		Subsystem: "gateway",
		Name:      "sandbox_destroyed_total",
		Help:      "Total number of sandbox workloads destroyed",
	}, []string{"reason"})
	ExecutionCnt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caesarion",
		Subsystem: "gateway",
		Name:      "execution_total",
		Help:      "Total number of proxied code executions",
	}, []string{"outcome"})
	ExecutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "caesarion",
		Subsystem: "gateway",
		Name:      "execution_duration_seconds",
		Help:      "Duration of proxied code executions in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // from 10ms to ~80s
	})
	UploadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "caesarion",
		Subsystem: "gateway",
		Name:      "upload_bytes_total",
		Help:      "Total bytes ingested into sandbox workloads",
	})
	ReaperScanCnt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "caesarion",
		Subsystem: "reaper",
		Name:      "scan_total",
		Help:      "Total number of reaper scans",
	})
	ReaperErrorCnt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "caesarion",
		Subsystem: "reaper",
		Name:      "error_total",
		Help:      "Total number of reaper destroy errors",
	})
)

// Destroy reasons reported on SandboxDestroyedCnt.
const (
	ReasonIdle     = "idle"
	ReasonStray    = "stray"
	ReasonExplicit = "explicit"
	ReasonCleanup  = "cleanup"
)

// Execution outcomes reported on ExecutionCnt.
const (
	OutcomeOK          = "ok"
	OutcomeCancelled   = "cancelled"
	OutcomeUnreachable = "unreachable"
	OutcomeTimeout     = "timeout"
	OutcomeBroken      = "broken"
	OutcomeUpstream    = "upstream_status"
)

func init() {
	prometheus.MustRegister(SandboxesActive)
	prometheus.MustRegister(SandboxCreatedCnt)
	prometheus.MustRegister(SandboxDestroyedCnt)
	prometheus.MustRegister(ExecutionCnt)
	prometheus.MustRegister(ExecutionDuration)
	prometheus.MustRegister(UploadBytes)
	prometheus.MustRegister(ReaperScanCnt)
	prometheus.MustRegister(ReaperErrorCnt)
}
