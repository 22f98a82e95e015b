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

// Package api provides the HTTP surface of the control server: client
// channel authorization and the operator endpoints for locks, commands and logs.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/carverauto/semphony/pkg/control"
	"github.com/carverauto/semphony/pkg/db"
	srHttp "github.com/carverauto/semphony/pkg/http"
	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

// Store is the read surface the API needs for resolving path parameters.
type Store interface {
	db.ClientStore
	db.CommandStore
}

// APIServer serves the control HTTP API.
type APIServer struct {
	router          *mux.Router
	corsConfig      models.CORSConfig
	logger          logger.Logger
	store           Store
	locks           *control.LockManager
	dispatcher      *control.Dispatcher
	view            *control.CorrelationView
	appKey          string
	appSecret       string
	pyClientVersion string
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(config models.CORSConfig, log logger.Logger, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: config,
		logger:     log,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithStore sets the client and command store.
func WithStore(store Store) func(*APIServer) {
	return func(server *APIServer) {
		server.store = store
	}
}

// WithLockManager sets the control lock arbiter.
func WithLockManager(m *control.LockManager) func(*APIServer) {
	return func(server *APIServer) {
		server.locks = m
	}
}

// WithDispatcher sets the command dispatcher.
func WithDispatcher(d *control.Dispatcher) func(*APIServer) {
	return func(server *APIServer) {
		server.dispatcher = d
	}
}

// WithCorrelationView sets the log reader used by the result and log endpoints.
func WithCorrelationView(v *control.CorrelationView) func(*APIServer) {
	return func(server *APIServer) {
		server.view = v
	}
}

// WithAppCredentials sets the key and secret used to sign channel subscriptions.
func WithAppCredentials(key, secret string) func(*APIServer) {
	return func(server *APIServer) {
		server.appKey = key
		server.appSecret = secret
	}
}

// WithClientVersion sets the device client version advertised by /client/meta.
func WithClientVersion(version string) func(*APIServer) {
	return func(server *APIServer) {
		server.pyClientVersion = version
	}
}

// Router exposes the underlying router so other handlers, such as the
// websocket hub, can share the listener and middleware.
func (s *APIServer) Router() *mux.Router {
	return s.router
}

func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return srHttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	clientRoutes := s.router.PathPrefix("/client").Subrouter()
	clientRoutes.HandleFunc("/broadcasting/auth", s.handleBroadcastingAuth).Methods(http.MethodPost)
	clientRoutes.HandleFunc("/meta", s.handleClientMeta).Methods(http.MethodGet)

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(srHttp.RequireUser(s.logger))

	protected.HandleFunc("/systems/{id}/lock", s.handleAcquireLock).Methods(http.MethodPost)
	protected.HandleFunc("/systems/{id}/lock", s.handleReleaseLock).Methods(http.MethodDelete)
	protected.HandleFunc("/systems/{id}/lock", s.handleLockStatus).Methods(http.MethodGet)
	protected.HandleFunc("/systems/{id}/logs", s.handleSystemLogs).Methods(http.MethodGet)

	protected.HandleFunc("/clients/{id}/commands", s.handleDispatchCommand).Methods(http.MethodPost)
	protected.HandleFunc("/clients/{id}/screenshot", s.handleScreenshot).Methods(http.MethodPost)
	protected.HandleFunc("/clients/{id}/results/{correlation_id}", s.handleCommandResult).Methods(http.MethodGet)

	// Preflight for any path; CommonMiddleware answers it.
	s.router.Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)

	errResponse := ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeControlError maps core errors onto HTTP status codes.
func (s *APIServer) writeControlError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, control.ErrForbidden):
		writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, db.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
