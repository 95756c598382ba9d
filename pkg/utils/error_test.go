/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gotest.tools/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
)

func TestError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		errorCode string
		httpCode  int
	}{
		{
			"fmt.error",
			fmt.Errorf("test"),
			caeserrors.InternalError,
			http.StatusInternalServerError,
		},
		{
			"caesErrors.badRequest",
			caeserrors.NewBadRequest("test"),
			caeserrors.BadRequest,
			http.StatusBadRequest,
		},
		{
			"caesErrors.sandboxNotFound",
			caeserrors.NewNotFound(caeserrors.SandboxKind, "sandbox-12ab34cd"),
			caeserrors.SandboxNotFound,
			http.StatusNotFound,
		},
		{
			"caesErrors.unreachable",
			caeserrors.NewSandboxUnreachable("sandbox-12ab34cd"),
			caeserrors.SandboxUnreachable,
			http.StatusServiceUnavailable,
		},
		{
			"caesErrors.deadline",
			caeserrors.NewDeadlineExceeded("readiness wait timed out"),
			caeserrors.DeadlineExceeded,
			http.StatusGatewayTimeout,
		},
		{
			"k8s.notFound",
			apierrors.NewNotFound(schema.GroupResource{Resource: "pods"}, "sandbox-12ab34cd"),
			caeserrors.NotFound,
			http.StatusNotFound,
		},
	}
	gin.SetMode(gin.ReleaseMode)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rsp := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rsp)
			AbortWithApiError(c, test.err)
			assert.Equal(t, rsp.Code, test.httpCode)

			apiErr := &CaesarionApiError{}
			err := json.Unmarshal(rsp.Body.Bytes(), apiErr)
			assert.NilError(t, err)
			assert.Equal(t, apiErr.ErrorCode, test.errorCode)
		})
	}
}

func TestParseRequestBody(t *testing.T) {
	type codeBody struct {
		Code string `json:"code"`
	}

	req := httptest.NewRequest(http.MethodPost, "/execute",
		strings.NewReader(`{"code":"print(1)"}`))
	var body codeBody
	raw, err := ParseRequestBody(req, &body)
	assert.NilError(t, err)
	assert.Equal(t, string(raw), `{"code":"print(1)"}`)
	assert.Equal(t, body.Code, "print(1)")

	req = httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(""))
	var empty codeBody
	raw, err = ParseRequestBody(req, &empty)
	assert.NilError(t, err)
	assert.Equal(t, len(raw), 0)

	req = httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader("{not json"))
	var bad codeBody
	_, err = ParseRequestBody(req, &bad)
	assert.Equal(t, caeserrors.IsBadRequest(err), true)
}
