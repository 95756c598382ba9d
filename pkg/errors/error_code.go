/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"fmt"
	"net/http"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const CaesarionPrefix = "Caesarion."

/*
   5-digit Error Code Convention: [xx][yyy]
   [xx] Business ID (00–99), used to distinguish errors from different business interfaces.
   00: General errors
   01: Sandbox-related errors
   02: Kernel-related errors
   [yyy] Error code range (000–999)
*/

// public: 00xxx
const (
	InternalError         = CaesarionPrefix + "00001"
	BadRequest            = CaesarionPrefix + "00002"
	Forbidden             = CaesarionPrefix + "00003"
	AlreadyExist          = CaesarionPrefix + "00004"
	NotFound              = CaesarionPrefix + "00005"
	RequestEntityTooLarge = CaesarionPrefix + "00006"
	Unavailable           = CaesarionPrefix + "00007"
	DeadlineExceeded      = CaesarionPrefix + "00008"
	UpstreamProtocol      = CaesarionPrefix + "00009"
	UpstreamStatus        = CaesarionPrefix + "00010"
)

// sandbox: 01xxx
const (
	SandboxNotFound    = CaesarionPrefix + "01001"
	SandboxUnreachable = CaesarionPrefix + "01002"
	SandboxExecFailed  = CaesarionPrefix + "01003"
)

// kernel: 02xxx
const (
	KernelNotReady = CaesarionPrefix + "02001"
)

// SandboxKind is the resource kind used in not-found details.
const SandboxKind = "Sandbox"

// IsCaesarion returns true if the specified error carries a Caesarion reason.
func IsCaesarion(err error) bool {
	if err == nil {
		return false
	}
	return strings.HasPrefix(string(apierrors.ReasonForError(err)), CaesarionPrefix)
}

func IsAlreadyExist(err error) bool {
	return apierrors.ReasonForError(err) == AlreadyExist
}

func IsBadRequest(err error) bool {
	return apierrors.ReasonForError(err) == BadRequest
}

func IsInternal(err error) bool {
	return apierrors.ReasonForError(err) == InternalError
}

func IsNotFound(err error) bool {
	reason := apierrors.ReasonForError(err)
	if reason == NotFound || reason == SandboxNotFound {
		return true
	}
	return false
}

func IsUnavailable(err error) bool {
	reason := apierrors.ReasonForError(err)
	if reason == Unavailable || reason == SandboxUnreachable || reason == KernelNotReady {
		return true
	}
	return false
}

func IsDeadlineExceeded(err error) bool {
	return apierrors.ReasonForError(err) == DeadlineExceeded
}

func IsUpstreamProtocol(err error) bool {
	return apierrors.ReasonForError(err) == UpstreamProtocol
}

func IgnoreFound(err error) error {
	if err == nil || IsNotFound(err) {
		return nil
	}
	return err
}

func GetErrorCode(err error) string {
	if err == nil || !IsCaesarion(err) {
		return ""
	}
	return string(apierrors.ReasonForError(err))
}

func NewBadRequest(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusBadRequest,
		Reason:  BadRequest,
		Message: message,
	}}
}

func NewInternalError(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusInternalServerError,
		Reason:  InternalError,
		Message: fmt.Sprintf("Internal error. %s", message),
	}}
}

func NewAlreadyExist(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusConflict,
		Reason:  AlreadyExist,
		Message: message,
	}}
}

func NewForbidden(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusForbidden,
		Reason:  Forbidden,
		Message: message,
	}}
}

func NotFoundErrorCode(kind string) metav1.StatusReason {
	switch kind {
	case SandboxKind:
		return SandboxNotFound
	default:
		return NotFound
	}
}

func NewNotFound(kind, name string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status: metav1.StatusFailure,
		Code:   http.StatusNotFound,
		Reason: NotFoundErrorCode(kind),
		Details: &metav1.StatusDetails{
			Kind: kind,
			Name: name,
		},
		Message: fmt.Sprintf("%s %s not found.", kind, name),
	}}
}

func NewNotFoundWithMessage(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusNotFound,
		Reason:  NotFound,
		Message: message,
	}}
}

func NewRequestEntityTooLargeError(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusRequestEntityTooLarge,
		Reason:  RequestEntityTooLarge,
		Message: fmt.Sprintf("Request entity is too large: %s", message),
	}}
}

func NewUnavailable(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusServiceUnavailable,
		Reason:  Unavailable,
		Message: message,
	}}
}

// NewSandboxUnreachable reports that the sandbox service endpoint did not
// accept a connection. Surfaced as 503 so callers can retry after the
// workload finishes starting.
func NewSandboxUnreachable(name string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusServiceUnavailable,
		Reason:  SandboxUnreachable,
		Message: fmt.Sprintf("sandbox %s not reachable", name),
	}}
}

func NewDeadlineExceeded(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusGatewayTimeout,
		Reason:  DeadlineExceeded,
		Message: message,
	}}
}

// NewUpstreamProtocol reports a kernel-executor connection that broke
// after the response began.
func NewUpstreamProtocol(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusBadGateway,
		Reason:  UpstreamProtocol,
		Message: message,
	}}
}

// NewUpstreamStatus passes a non-2xx kernel-executor response through with
// its original HTTP status.
func NewUpstreamStatus(code int, message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    int32(code),
		Reason:  UpstreamStatus,
		Message: message,
	}}
}

func NewSandboxExecFailed(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusInternalServerError,
		Reason:  SandboxExecFailed,
		Message: message,
	}}
}

func NewKernelNotReady(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusServiceUnavailable,
		Reason:  KernelNotReady,
		Message: message,
	}}
}
