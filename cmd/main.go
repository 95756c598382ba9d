/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package main

import (
	"fmt"
	"os"

	"github.com/yeti-teti/Caesarion/pkg/server"
)

func main() {
	s, err := newServer()
	if err != nil {
		fmt.Println("failed to new server, err: ", err.Error())
		return
	}
	s.Start()
}

// newServer picks the serving mode: inside a sandbox pod (IS_SANDBOX set)
// only the kernel surface is exposed, otherwise the full gateway.
func newServer() (*server.Server, error) {
	if os.Getenv("IS_SANDBOX") != "" {
		return server.NewSandboxServer()
	}
	return server.NewServer()
}
