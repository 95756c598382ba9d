/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package jobs

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/yeti-teti/Caesarion/pkg/concurrent"
	"github.com/yeti-teti/Caesarion/pkg/config"
	"github.com/yeti-teti/Caesarion/pkg/metrics"
)

// IdleReaperJob destroys sandbox workloads that have been idle past the
// configured timeout, and stray workloads the cluster knows but the
// registry does not (typically leftovers from a previous gateway run).
type IdleReaperJob struct{}

// NewIdleReaperJob creates a new IdleReaperJob instance
func NewIdleReaperJob() *IdleReaperJob {
	return &IdleReaperJob{}
}

func (j *IdleReaperJob) Name() string {
	return "idle_reaper"
}

func (j *IdleReaperJob) Schedule() string {
	return fmt.Sprintf("@every %ds", config.GetCheckIntervalSecond())
}

// Run executes one reaper scan. Per-workload failures are logged and
// counted; the scan always moves on to the next workload.
func (j *IdleReaperJob) Run(ctx context.Context, deps *Deps) (*ExecutionStats, error) {
	startTime := time.Now()
	stats := NewExecutionStats()
	metrics.ReaperScanCnt.Inc()

	workloads, err := deps.Provisioner.List(ctx)
	if err != nil {
		klog.Errorf("idle_reaper: failed to list sandbox workloads: %v", err)
		metrics.ReaperErrorCnt.Inc()
		stats.ErrorCount++
		stats.AddMessage(fmt.Sprintf("Failed to list sandbox workloads: %v", err))
		return stats, err
	}
	stats.RecordsProcessed = int64(len(workloads))

	listed := make(map[string]bool, len(workloads))
	var strays []string
	for _, workload := range workloads {
		listed[workload.ID] = true
		if !deps.Registry.Tracked(workload.ID) {
			strays = append(strays, workload.ID)
		}
	}

	// Expired entries may no longer have a live pod; Destroy treats a
	// missing workload as success and still clears the registry entry.
	idleTimeout := time.Duration(config.GetIdleTimeoutSecond()) * time.Second
	expired := deps.Registry.SnapshotExpired(time.Now(), idleTimeout)

	var idleListed int64
	for _, workloadID := range expired {
		if listed[workloadID] {
			idleListed++
		}
	}
	stats.ItemsSkipped = stats.RecordsProcessed - int64(len(strays)) - idleListed

	stats.Merge(j.destroyAll(ctx, deps, strays, metrics.ReasonStray))
	stats.Merge(j.destroyAll(ctx, deps, expired, metrics.ReasonIdle))

	stats.ProcessDuration = time.Since(startTime).Seconds()
	klog.Infof("idle_reaper: scanned %d workloads, deleted %d (stray: %d, idle: %d), skipped %d, errors: %d, took %.2fs",
		stats.RecordsProcessed, stats.ItemsDeleted, len(strays), len(expired),
		stats.ItemsSkipped, stats.ErrorCount, stats.ProcessDuration)
	return stats, nil
}

func (j *IdleReaperJob) destroyAll(ctx context.Context, deps *Deps, names []string, reason string) *ExecutionStats {
	stats := NewExecutionStats()
	if len(names) == 0 {
		return stats
	}
	success, err := concurrent.ExecEach(names, func(name string) error {
		if err := deps.Provisioner.Destroy(ctx, name, reason); err != nil {
			klog.Errorf("idle_reaper: failed to destroy %s sandbox %s: %v", reason, name, err)
			metrics.ReaperErrorCnt.Inc()
			return err
		}
		klog.Infof("idle_reaper: destroyed %s sandbox %s", reason, name)
		return nil
	})
	stats.ItemsDeleted = int64(success)
	if err != nil {
		stats.ErrorCount = int64(len(names) - success)
		stats.AddMessage(fmt.Sprintf("Failed to destroy %d %s sandboxes: %v", len(names)-success, reason, err))
	}
	return stats
}
