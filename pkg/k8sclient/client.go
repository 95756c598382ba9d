/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package k8sclient

import (
	"os"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
)

const (
	DefaultQPS   = float32(50)
	DefaultBurst = 100
)

// NewClientSet creates a Kubernetes clientset and REST config. It resolves
// credentials the controller-runtime way: in-cluster service account when
// available, otherwise the kubeconfig named by kubeConfigPath (or the
// KUBECONFIG / ~/.kube/config fallbacks).
func NewClientSet(kubeConfigPath string) (kubernetes.Interface, *rest.Config, error) {
	restConfig, err := GetRestConfig(kubeConfigPath)
	if err != nil {
		return nil, nil, err
	}
	cli, err := NewClientSetWithRestConfig(restConfig)
	return cli, restConfig, err
}

// NewClientSetWithRestConfig creates a Kubernetes clientset using the
// provided REST config.
func NewClientSetWithRestConfig(cfg *rest.Config) (kubernetes.Interface, error) {
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetRestConfig retrieves the REST configuration with default QPS and
// Burst settings applied.
func GetRestConfig(kubeConfigPath string) (*rest.Config, error) {
	if kubeConfigPath != "" {
		os.Setenv("KUBECONFIG", kubeConfigPath)
	}
	restCfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	restCfg.QPS = DefaultQPS
	restCfg.Burst = DefaultBurst
	return restCfg, nil
}
