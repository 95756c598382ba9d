/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
)

const (
	containerName = "sandbox"

	waitPollInterval = 2 * time.Second
)

// Driver abstracts the cluster operations the gateway needs. The only
// implementation talks to Kubernetes; tests use the generated mock.
type Driver interface {
	// CreateWorkload creates the sandbox pod. It does not create the
	// fronting service and does not wait for readiness.
	CreateWorkload(ctx context.Context, name string, opts CreateOptions) (*Workload, error)
	// CreateService creates the ClusterIP service selecting the pod by its
	// pod-name label.
	CreateService(ctx context.Context, name string) error
	ReadWorkload(ctx context.Context, name string) (*Workload, error)
	// WaitReady blocks until the pod reports Ready with an IP assigned,
	// then returns the service address. A pod in phase Failed aborts the
	// wait with the pod's failure reason.
	WaitReady(ctx context.Context, name string, timeout time.Duration) (string, error)
	ListWorkloads(ctx context.Context, selector string) ([]Workload, error)
	// DeleteWorkload removes the service and then the pod. Missing objects
	// count as success.
	DeleteWorkload(ctx context.Context, name string) error
	// Exec runs a command in the sandbox container and returns the combined
	// stdout and stderr.
	Exec(ctx context.Context, name string, command []string) (string, error)
	// ExecTTY runs an interactive command with a TTY attached, streaming
	// until the command exits or ctx is cancelled.
	ExecTTY(ctx context.Context, name string, command []string, stdin io.Reader, stdout io.Writer, resize remotecommand.TerminalSizeQueue) error
}

type kubeDriver struct {
	clientset  kubernetes.Interface
	restConfig *rest.Config
	namespace  string
	port       int32
}

func NewDriver(clientset kubernetes.Interface, restConfig *rest.Config, namespace string, port int32) Driver {
	return &kubeDriver{
		clientset:  clientset,
		restConfig: restConfig,
		namespace:  namespace,
		port:       port,
	}
}

func (d *kubeDriver) CreateWorkload(ctx context.Context, name string, opts CreateOptions) (*Workload, error) {
	pod, err := buildPod(name, d.namespace, opts)
	if err != nil {
		return nil, err
	}
	created, err := d.clientset.CoreV1().Pods(d.namespace).Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		return nil, translateAPIError(err, name)
	}
	klog.Infof("created sandbox pod %s/%s, image: %s", d.namespace, name, opts.Image)
	return d.toWorkload(created), nil
}

func (d *kubeDriver) CreateService(ctx context.Context, name string) error {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ServiceName(name),
			Namespace: d.namespace,
			Labels: map[string]string{
				LabelApp:     AppSandbox,
				LabelPodName: name,
			},
		},
		Spec: corev1.ServiceSpec{
			Selector: map[string]string{LabelPodName: name},
			Ports: []corev1.ServicePort{
				{
					Name:       "http",
					Port:       d.port,
					TargetPort: intstr.FromInt32(d.port),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
	if _, err := d.clientset.CoreV1().Services(d.namespace).Create(ctx, svc, metav1.CreateOptions{}); err != nil {
		return translateAPIError(err, name)
	}
	return nil
}

func (d *kubeDriver) ReadWorkload(ctx context.Context, name string) (*Workload, error) {
	pod, err := d.clientset.CoreV1().Pods(d.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, translateAPIError(err, name)
	}
	return d.toWorkload(pod), nil
}

func (d *kubeDriver) WaitReady(ctx context.Context, name string, timeout time.Duration) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return "", caeserrors.NewDeadlineExceeded(
					fmt.Sprintf("sandbox %s was not ready within %s", name, timeout))
			}
			return "", waitCtx.Err()
		case <-ticker.C:
			pod, err := d.clientset.CoreV1().Pods(d.namespace).Get(waitCtx, name, metav1.GetOptions{})
			if err != nil {
				return "", translateAPIError(err, name)
			}
			if pod.Status.Phase == corev1.PodFailed {
				return "", caeserrors.NewInternalError(
					fmt.Sprintf("sandbox %s failed to start: %s", name, podFailureReason(pod)))
			}
			if isPodReady(pod) && pod.Status.PodIP != "" {
				return ServiceAddr(name, d.namespace, d.port), nil
			}
			klog.V(4).Infof("waiting for sandbox %s, phase: %s", name, pod.Status.Phase)
		}
	}
}

func (d *kubeDriver) ListWorkloads(ctx context.Context, selector string) ([]Workload, error) {
	pods, err := d.clientset.CoreV1().Pods(d.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, translateAPIError(err, "")
	}
	workloads := make([]Workload, 0, len(pods.Items))
	for i := range pods.Items {
		workloads = append(workloads, *d.toWorkload(&pods.Items[i]))
	}
	return workloads, nil
}

func (d *kubeDriver) DeleteWorkload(ctx context.Context, name string) error {
	err := d.clientset.CoreV1().Services(d.namespace).Delete(ctx, ServiceName(name), metav1.DeleteOptions{})
	if err != nil && !k8serrors.IsNotFound(err) {
		return translateAPIError(err, name)
	}
	err = d.clientset.CoreV1().Pods(d.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !k8serrors.IsNotFound(err) {
		return translateAPIError(err, name)
	}
	klog.Infof("deleted sandbox %s/%s", d.namespace, name)
	return nil
}

func (d *kubeDriver) Exec(ctx context.Context, name string, command []string) (string, error) {
	req := d.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(name).
		Namespace(d.namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: containerName,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(d.restConfig, "POST", req.URL())
	if err != nil {
		return "", caeserrors.NewInternalError(fmt.Sprintf("failed to create SPDY executor: %v", err))
	}

	var stdout, stderr strings.Builder
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
		Tty:    false,
	})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return "", caeserrors.NewNotFound(caeserrors.SandboxKind, name)
		}
		return "", caeserrors.NewSandboxExecFailed(
			fmt.Sprintf("exec in sandbox %s failed: %v, stderr: %s", name, err, stderr.String()))
	}
	return stdout.String() + stderr.String(), nil
}

func (d *kubeDriver) ExecTTY(ctx context.Context, name string, command []string,
	stdin io.Reader, stdout io.Writer, resize remotecommand.TerminalSizeQueue) error {
	req := d.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(name).
		Namespace(d.namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: containerName,
			Command:   command,
			Stdin:     true,
			Stdout:    true,
			Stderr:    true,
			TTY:       true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(d.restConfig, "POST", req.URL())
	if err != nil {
		return caeserrors.NewInternalError(fmt.Sprintf("failed to create SPDY executor: %v", err))
	}

	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:             stdin,
		Stdout:            stdout,
		Stderr:            stdout,
		TerminalSizeQueue: resize,
		Tty:               true,
	})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return caeserrors.NewNotFound(caeserrors.SandboxKind, name)
		}
		return caeserrors.NewSandboxExecFailed(fmt.Sprintf("shell in sandbox %s ended: %v", name, err))
	}
	return nil
}

func (d *kubeDriver) toWorkload(pod *corev1.Pod) *Workload {
	return &Workload{
		ID:     pod.Name,
		Status: phaseToStatus(pod.Status.Phase),
		Ready:  isPodReady(pod),
		Addr:   ServiceAddr(pod.Name, d.namespace, d.port),
		Labels: pod.Labels,
	}
}

func buildPod(name, namespace string, opts CreateOptions) (*corev1.Pod, error) {
	requests, err := parseResourceList(opts.CpuRequest, opts.MemoryRequest)
	if err != nil {
		return nil, caeserrors.NewInternalError(fmt.Sprintf("invalid resource request: %v", err))
	}
	limits, err := parseResourceList(opts.CpuLimit, opts.MemoryLimit)
	if err != nil {
		return nil, caeserrors.NewInternalError(fmt.Sprintf("invalid resource limit: %v", err))
	}

	labels := map[string]string{
		LabelApp:     AppSandbox,
		LabelSandbox: SandboxEnabled,
		LabelPodName: name,
	}
	for k, v := range opts.Labels {
		labels[k] = v
	}

	env := []corev1.EnvVar{{Name: "IS_SANDBOX", Value: "true"}}
	extra := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		env = append(env, corev1.EnvVar{Name: k, Value: opts.Env[k]})
	}

	healthProbe := func(delay, period int32) *corev1.Probe {
		return &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: "/health",
					Port: intstr.FromInt32(opts.Port),
				},
			},
			InitialDelaySeconds: delay,
			PeriodSeconds:       period,
		}
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			// The pod runs untrusted code; it must not see service
			// account credentials.
			AutomountServiceAccountToken:  ptr.To(false),
			TerminationGracePeriodSeconds: ptr.To(int64(5)),
			Containers: []corev1.Container{
				{
					Name:            containerName,
					Image:           opts.Image,
					ImagePullPolicy: corev1.PullIfNotPresent,
					Ports: []corev1.ContainerPort{
						{ContainerPort: opts.Port, Protocol: corev1.ProtocolTCP},
					},
					Env: env,
					Resources: corev1.ResourceRequirements{
						Requests: requests,
						Limits:   limits,
					},
					ReadinessProbe: healthProbe(3, 3),
					LivenessProbe:  healthProbe(15, 10),
				},
			},
		},
	}, nil
}

func parseResourceList(cpu, memory string) (corev1.ResourceList, error) {
	cpuQty, err := resource.ParseQuantity(cpu)
	if err != nil {
		return nil, fmt.Errorf("cpu %q: %w", cpu, err)
	}
	memQty, err := resource.ParseQuantity(memory)
	if err != nil {
		return nil, fmt.Errorf("memory %q: %w", memory, err)
	}
	return corev1.ResourceList{
		corev1.ResourceCPU:    cpuQty,
		corev1.ResourceMemory: memQty,
	}, nil
}

func phaseToStatus(phase corev1.PodPhase) WorkloadStatus {
	switch phase {
	case corev1.PodPending:
		return StatusPending
	case corev1.PodRunning:
		return StatusRunning
	case corev1.PodFailed:
		return StatusFailed
	default:
		return StatusUnknown
	}
}

func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady && cond.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

func podFailureReason(pod *corev1.Pod) string {
	if pod.Status.Message != "" {
		return pod.Status.Message
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.State.Terminated != nil && cs.State.Terminated.Message != "" {
			return cs.State.Terminated.Message
		}
		if cs.State.Waiting != nil && cs.State.Waiting.Message != "" {
			return cs.State.Waiting.Message
		}
	}
	return "unknown reason"
}

// translateAPIError maps raw Kubernetes API errors onto the gateway's error
// space. Anything transient or unclassified surfaces as Unavailable.
func translateAPIError(err error, name string) error {
	switch {
	case k8serrors.IsNotFound(err):
		return caeserrors.NewNotFound(caeserrors.SandboxKind, name)
	case k8serrors.IsAlreadyExists(err):
		return caeserrors.NewAlreadyExist(err.Error())
	case k8serrors.IsForbidden(err):
		return caeserrors.NewForbidden(err.Error())
	case k8serrors.IsInvalid(err) || k8serrors.IsBadRequest(err):
		return caeserrors.NewBadRequest(err.Error())
	default:
		return caeserrors.NewUnavailable(fmt.Sprintf("kubernetes api: %v", err))
	}
}
