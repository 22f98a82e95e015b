/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/semphony/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a long-running component started alongside the HTTP listener.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions describes one process: a listener, its handler and a Service.
type ServerOptions struct {
	ListenAddr      string
	ServiceName     string
	Handler         http.Handler
	Service         Service
	Logger          logger.Logger
	ShutdownTimeout time.Duration
	// Ready, when set, receives the bound address once the listener is open.
	Ready chan<- net.Addr
}

// RunServer starts the service and serves HTTP until ctx is cancelled or the
// process receives SIGINT/SIGTERM, then stops both within ShutdownTimeout.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.ListenAddr, err)
	}

	if opts.Ready != nil {
		opts.Ready <- listener.Addr()
	}

	if opts.Service != nil {
		if err := opts.Service.Start(ctx); err != nil {
			_ = listener.Close()

			return fmt.Errorf("failed to start %s: %w", opts.ServiceName, err)
		}
	}

	srv := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("service", opts.ServiceName).Str("addr", listener.Addr().String()).Msg("Listening")

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var serveErr error

	select {
	case <-ctx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutting down")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Str("service", opts.ServiceName).Msg("Server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stopErr error

	if opts.Service != nil {
		stopErr = opts.Service.Stop(shutdownCtx)
	}

	return errors.Join(serveErr, stopErr, srv.Shutdown(shutdownCtx))
}
