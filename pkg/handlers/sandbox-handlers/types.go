/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox_handlers

type CreateSandboxRequest struct {
	Lang string `json:"lang"`
}

type CreateSandboxResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// SandboxInfo describes one sandbox workload. IP carries the service
// endpoint the gateway proxies to and is only set on single-sandbox reads.
type SandboxInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
	IP     string `json:"ip,omitempty"`
}

type ListSandboxesResponse struct {
	Sandboxes []SandboxInfo `json:"sandboxes"`
}

type ExecuteRequest struct {
	Code string `json:"code"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Path     string `json:"path"`
}

type FilesResponse struct {
	// Files is the raw `ls -la` listing of the upload directory.
	Files string `json:"files"`
}

type InitializeSessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	SandboxID string `json:"sandbox_id"`
}
