/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"k8s.io/klog/v2"

	"github.com/yeti-teti/Caesarion/pkg/config"
	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
	"github.com/yeti-teti/Caesarion/pkg/metrics"
	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
)

// Ingestor copies files into running sandboxes over the exec channel, so
// the sandbox image needs no upload surface of its own. Content travels
// base64-encoded through a shell pipeline inside the pod.
type Ingestor struct {
	driver   orchestrator.Driver
	registry *Registry
}

func NewIngestor(driver orchestrator.Driver, registry *Registry) *Ingestor {
	return &Ingestor{
		driver:   driver,
		registry: registry,
	}
}

// Upload writes data into the workload's upload directory and returns the
// in-sandbox path. Uploading counts as activity.
func (i *Ingestor) Upload(ctx context.Context, workloadID, filename string, data []byte) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}
	if maxBytes := config.GetUploadMaxBytes(); int64(len(data)) > maxBytes {
		return "", caeserrors.NewRequestEntityTooLargeError(
			fmt.Sprintf("file %s exceeds the %d byte upload limit", filename, maxBytes))
	}
	if !i.registry.Tracked(workloadID) {
		return "", caeserrors.NewNotFound(caeserrors.SandboxKind, workloadID)
	}

	dir := config.GetUploadDir()
	target := path.Join(dir, filename)
	encoded := base64.StdEncoding.EncodeToString(data)
	command := []string{"sh", "-c",
		fmt.Sprintf("mkdir -p '%s' && echo '%s' | base64 -d > '%s'", dir, encoded, target)}

	if _, err := i.driver.Exec(ctx, workloadID, command); err != nil {
		return "", err
	}

	i.registry.Touch(workloadID)
	metrics.UploadBytes.Add(float64(len(data)))
	klog.Infof("uploaded %s (%d bytes) to sandbox %s", target, len(data), workloadID)
	return target, nil
}

// ListFiles returns the raw directory listing of the upload directory,
// exactly as `ls -la` prints it inside the pod.
func (i *Ingestor) ListFiles(ctx context.Context, workloadID string) (string, error) {
	if !i.registry.Tracked(workloadID) {
		return "", caeserrors.NewNotFound(caeserrors.SandboxKind, workloadID)
	}
	out, err := i.driver.Exec(ctx, workloadID, []string{"ls", "-la", config.GetUploadDir()})
	if err != nil {
		return "", err
	}
	i.registry.Touch(workloadID)
	return out, nil
}

// validateFilename rejects anything that could escape the upload directory
// or break out of the shell pipeline the content travels through.
func validateFilename(filename string) error {
	if filename == "" || filename == "." || filename == ".." {
		return caeserrors.NewBadRequest("Missing or invalid filename.")
	}
	if strings.ContainsAny(filename, "/\\'") {
		return caeserrors.NewBadRequest(fmt.Sprintf("Invalid filename %q.", filename))
	}
	for _, r := range filename {
		if r < 0x20 || r == 0x7f {
			return caeserrors.NewBadRequest(fmt.Sprintf("Invalid filename %q.", filename))
		}
	}
	return nil
}
