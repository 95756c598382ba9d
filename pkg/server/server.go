/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/klogr"
	ctrlruntime "sigs.k8s.io/controller-runtime"

	"github.com/yeti-teti/Caesarion/pkg/config"
	"github.com/yeti-teti/Caesarion/pkg/handlers"
	"github.com/yeti-teti/Caesarion/pkg/httpclient"
	"github.com/yeti-teti/Caesarion/pkg/jobs"
	"github.com/yeti-teti/Caesarion/pkg/k8sclient"
	"github.com/yeti-teti/Caesarion/pkg/kernel"
	klogpkg "github.com/yeti-teti/Caesarion/pkg/klog"
	"github.com/yeti-teti/Caesarion/pkg/options"
	"github.com/yeti-teti/Caesarion/pkg/orchestrator"
	"github.com/yeti-teti/Caesarion/pkg/sandbox"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	opts        *options.Options
	engine      *gin.Engine
	httpServer  *http.Server
	jobRunner   *jobs.Runner
	ctx         context.Context
	sandboxMode bool
	isInited    bool
}

// NewServer builds the gateway server: the Kubernetes-backed sandbox
// lifecycle, the execution proxy and the background reaper.
func NewServer() (*Server, error) {
	return newServer(false)
}

// NewSandboxServer builds the in-sandbox server: a local kernel runner
// behind POST /execute and GET /health.
func NewSandboxServer() (*Server, error) {
	return newServer(true)
}

func newServer(sandboxMode bool) (*Server, error) {
	s := &Server{
		opts:        &options.Options{},
		ctx:         ctrlruntime.SetupSignalHandler(),
		sandboxMode: sandboxMode,
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) init() error {
	gin.SetMode(gin.ReleaseMode)
	var err error
	if err = s.opts.InitFlags(); err != nil {
		klog.ErrorS(err, "failed to parse flags")
		return err
	}
	if err = s.initLogs(); err != nil {
		klog.ErrorS(err, "failed to init logs")
		return err
	}
	if err = s.initConfig(); err != nil {
		klog.ErrorS(err, "failed to init config")
		return err
	}
	if s.sandboxMode {
		s.initKernel()
	} else if err = s.initGateway(); err != nil {
		klog.ErrorS(err, "failed to init gateway")
		return err
	}
	s.isInited = true
	return nil
}

func (s *Server) Start() {
	if !s.isInited {
		klog.Errorf("please init the server first")
		return
	}

	klog.Infof("starting caesarion %s server", s.mode())
	if s.jobRunner != nil {
		if err := s.jobRunner.Start(s.ctx); err != nil {
			klog.ErrorS(err, "failed to start job runner")
			os.Exit(-1)
		}
	}

	go func() {
		if err := s.startHttpServer(); err != nil {
			klog.ErrorS(err, "failed to start http-server")
			os.Exit(-1)
		}
	}()

	<-s.ctx.Done()
	s.Stop()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.jobRunner != nil {
		s.jobRunner.Stop()
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "failed to shutdown http-server")
		}
	}
	klog.Infof("caesarion %s server is stopped", s.mode())
	klog.Flush()
}

func (s *Server) initLogs() error {
	if err := klogpkg.Init(s.opts.LogfilePath, s.opts.LogFileSize); err != nil {
		return err
	}
	ctrlruntime.SetLogger(klogr.NewWithOptions())
	return nil
}

// initConfig loads the optional YAML config file. Without one the env
// bindings and defaults apply.
func (s *Server) initConfig() error {
	if s.opts.Config == "" {
		return nil
	}
	fullPath, err := filepath.Abs(s.opts.Config)
	if err != nil {
		return err
	}
	if err = config.LoadConfig(fullPath); err != nil {
		return fmt.Errorf("config path: %s, err: %v", fullPath, err)
	}
	return nil
}

func (s *Server) initGateway() error {
	clientset, restConfig, err := k8sclient.NewClientSet(s.opts.KubeConfig)
	if err != nil {
		return err
	}
	driver := orchestrator.NewDriver(clientset, restConfig,
		config.GetSandboxNamespace(), int32(config.GetSandboxPort()))
	registry := sandbox.NewRegistry()
	provisioner := sandbox.NewProvisioner(driver, registry, httpclient.NewHttpClient())
	proxy := sandbox.NewProxy(driver, registry, provisioner)
	ingestor := sandbox.NewIngestor(driver, registry)

	s.engine = handlers.InitGatewayHandlers(&handlers.Deps{
		Driver:      driver,
		Registry:    registry,
		Provisioner: provisioner,
		Proxy:       proxy,
		Ingestor:    ingestor,
	})

	if config.IsReaperEnable() {
		jobs.InitJobs()
		s.jobRunner = jobs.NewRunner(&jobs.Deps{
			Registry:    registry,
			Provisioner: provisioner,
		})
	}
	return nil
}

func (s *Server) initKernel() {
	runner := kernel.NewSubprocessRunner(config.GetKernelCommand(), config.GetKernelWorkdir())
	s.engine = handlers.InitKernelHandlers(runner)
}

func (s *Server) startHttpServer() error {
	port := config.GetServerPort()
	if s.sandboxMode {
		port = config.GetSandboxPort()
	}
	if port <= 0 {
		return fmt.Errorf("the server port is not defined")
	}
	s.httpServer = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: s.engine}
	klog.Infof("http-server listen port: %d", port)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		klog.ErrorS(err, "failed to start http server")
		return err
	}
	return nil
}

func (s *Server) mode() string {
	if s.sandboxMode {
		return "sandbox"
	}
	return "gateway"
}
