// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api exposes the governance engine and its collaborators over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/marketplace"
	"github.com/blinklabs-io/daoledger/registry"
	"github.com/blinklabs-io/daoledger/token"
	"github.com/blinklabs-io/daoledger/whitelist"
)

const (
	DefaultListenAddress = ":8080"

	shutdownTimeout = 30 * time.Second
)

type ServerConfig struct {
	Engine        *governance.Engine
	Whitelist     *whitelist.Whitelist
	Registry      *registry.Registry
	Market        *marketplace.Market
	Token         *token.Token
	Logger        *slog.Logger
	ListenAddress string
	// Concurrent requests allowed per client IP. Negative disables the limit
	MaxRequestsPerIP int
}

// Server is the REST API server
type Server struct {
	config     ServerConfig
	logger     *slog.Logger
	router     *gin.Engine
	httpServer *http.Server
	stopCh     chan struct{}
	addr       net.Addr
	ipRequests map[string]int
	mu         sync.Mutex
	ipMu       sync.Mutex
}

func New(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("api: governance engine is required")
	}
	if cfg.Whitelist == nil || cfg.Registry == nil ||
		cfg.Market == nil || cfg.Token == nil {
		return nil, errors.New("api: all collaborators are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.MaxRequestsPerIP == 0 {
		cfg.MaxRequestsPerIP = DefaultMaxRequestsPerIP
	}
	s := &Server{
		config:     cfg,
		logger:     cfg.Logger.With("component", "api"),
		ipRequests: make(map[string]int),
	}
	s.router = s.newRouter()
	return s, nil
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound listener address while the server is running
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the listener and serves in a background goroutine until Stop is
// called or ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 60 * time.Second,
	}
	stopCh := make(chan struct{})
	s.httpServer = server
	s.stopCh = stopCh
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	s.logger.Info("API listener started on " + ln.Addr().String())

	go func() {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
		}
		s.logger.Debug("context cancelled, shutting down API server")
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	stopCh := s.stopCh
	s.httpServer = nil
	s.stopCh = nil
	s.addr = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	close(stopCh)
	s.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}
