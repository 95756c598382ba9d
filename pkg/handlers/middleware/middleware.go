/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// Logger returns a gin middleware that writes one access log line per
// request through klog, plus one error line per handler error.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		klog.Infof("%s %s %d %v %s", c.Request.Method, path,
			c.Writer.Status(), time.Since(start), c.ClientIP())
		for _, ginErr := range c.Errors {
			klog.Errorf("%s %s: %v", c.Request.Method, path, ginErr.Err)
		}
	}
}
