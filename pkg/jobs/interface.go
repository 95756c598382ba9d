/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package jobs

import (
	"context"

	"github.com/yeti-teti/Caesarion/pkg/sandbox"
)

// Deps carries the shared state background jobs operate on.
type Deps struct {
	Registry    *sandbox.Registry
	Provisioner *sandbox.Provisioner
}

type Job interface {
	// Name identifies the job in logs.
	Name() string
	// Schedule returns the cron expression the job runs on.
	Schedule() string
	// Run executes one pass of the job.
	Run(ctx context.Context, deps *Deps) (*ExecutionStats, error)
}

var jobs = []Job{}

func InitJobs() {
	jobs = []Job{
		NewIdleReaperJob(),
	}
}
