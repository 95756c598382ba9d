/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yeti-teti/Caesarion/pkg/metrics"
)

// Registry tracks which workload serves which session and when each
// workload last did useful work. It is the gateway's only session state;
// everything else is reconstructable from the cluster.
//
// The mutex guards the two maps and nothing more. It is never held across
// a call that can block, so a slow provisioning flight cannot stall
// unrelated lookups.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]string    // session id -> workload id
	activity map[string]time.Time // workload id -> last active

	flight singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]string),
		activity: make(map[string]time.Time),
	}
}

// EnsureOnce collapses concurrent first-touch creations for one session:
// every caller blocks on the same flight and receives the workload id the
// winning call produced.
func (r *Registry) EnsureOnce(sessionID string, create func() (string, error)) (string, error) {
	v, err, _ := r.flight.Do(sessionID, func() (interface{}, error) {
		return create()
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Get returns the workload bound to the session, if any.
func (r *Registry) Get(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workloadID, ok := r.sessions[sessionID]
	return workloadID, ok
}

// Bind associates the session with the workload and stamps activity.
func (r *Registry) Bind(sessionID, workloadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = workloadID
	r.activity[workloadID] = time.Now()
	metrics.SandboxesActive.Set(float64(len(r.activity)))
}

// Track stamps activity for a workload that has no session binding yet,
// such as one created through the sandbox API rather than a session
// initialize. The reaper sees it like any other entry.
func (r *Registry) Track(workloadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity[workloadID] = time.Now()
	metrics.SandboxesActive.Set(float64(len(r.activity)))
}

// Touch stamps activity for a tracked workload. Touching an unbound
// workload is a no-op so a late streaming chunk cannot resurrect a
// reaped entry.
func (r *Registry) Touch(workloadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activity[workloadID]; ok {
		r.activity[workloadID] = time.Now()
	}
}

// LastActive returns the workload's last activity stamp.
func (r *Registry) LastActive(workloadID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.activity[workloadID]
	return last, ok
}

// Tracked reports whether the registry knows the workload.
func (r *Registry) Tracked(workloadID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.activity[workloadID]
	return ok
}

// Unbind forgets the workload: its activity entry and every session that
// pointed at it.
func (r *Registry) Unbind(workloadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activity, workloadID)
	for sessionID, id := range r.sessions {
		if id == workloadID {
			delete(r.sessions, sessionID)
		}
	}
	metrics.SandboxesActive.Set(float64(len(r.activity)))
}

// SnapshotExpired returns the workloads idle longer than threshold at the
// given instant. The caller owns destroying them; the registry keeps the
// entries until Unbind.
func (r *Registry) SnapshotExpired(now time.Time, threshold time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []string
	for workloadID, last := range r.activity {
		if now.Sub(last) > threshold {
			expired = append(expired, workloadID)
		}
	}
	return expired
}

// Snapshot returns a copy of the session bindings.
func (r *Registry) Snapshot() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.sessions))
	for sessionID, workloadID := range r.sessions {
		out[sessionID] = workloadID
	}
	return out
}
