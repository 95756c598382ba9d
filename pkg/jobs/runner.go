/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"k8s.io/klog/v2"

	"github.com/yeti-teti/Caesarion/pkg/channel"
)

// Runner schedules the registered jobs on a shared cron. Stop blocks
// until any in-flight run has finished, so shutdown never races a
// half-done reaper pass.
type Runner struct {
	cron    *cron.Cron
	deps    *Deps
	tomb    *channel.Tomb
	started bool
}

func NewRunner(deps *Deps) *Runner {
	return &Runner{
		cron: cron.New(),
		deps: deps,
		tomb: channel.NewTomb(),
	}
}

// Start registers every job with the scheduler and starts it.
func (r *Runner) Start(ctx context.Context) error {
	for _, job := range jobs {
		job := job
		if _, err := r.cron.AddFunc(job.Schedule(), func() {
			r.runOne(ctx, job)
		}); err != nil {
			return err
		}
		klog.Infof("registered job %s on schedule %q", job.Name(), job.Schedule())
	}
	r.cron.Start()
	r.started = true

	go func() {
		defer r.tomb.Done()
		<-r.tomb.Stopping()
		// cron.Stop's context completes once in-flight runs return.
		<-r.cron.Stop().Done()
	}()
	return nil
}

func (r *Runner) runOne(ctx context.Context, job Job) {
	if r.tomb.IsStopped() {
		return
	}
	startTime := time.Now()
	stats, err := job.Run(ctx, r.deps)
	if err != nil {
		klog.Errorf("job %s failed after %s: %v", job.Name(), time.Since(startTime), err)
		return
	}
	if stats == nil {
		return
	}
	for _, msg := range stats.Messages {
		klog.Warningf("job %s: %s", job.Name(), msg)
	}
}

// Stop halts the scheduler and waits for in-flight runs.
func (r *Runner) Stop() {
	if !r.started {
		return
	}
	r.tomb.Stop()
	klog.Info("job runner stopped")
}
