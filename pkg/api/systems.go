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

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	srHttp "github.com/carverauto/semphony/pkg/http"
	"github.com/carverauto/semphony/pkg/models"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
)

var errInvalidParameter = errors.New("invalid parameter")

func errInvalidQuery(name string) error {
	return fmt.Errorf("%w: %s", errInvalidParameter, name)
}

// LockResponse reports the outcome of an acquire or release.
type LockResponse struct {
	Acquired *bool `json:"acquired,omitempty"`
	Released *bool `json:"released,omitempty"`
}

func (s *APIServer) handleAcquireLock(w http.ResponseWriter, r *http.Request) {
	systemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid system id", http.StatusBadRequest)
		return
	}

	userID, _ := srHttp.UserIDFromContext(r.Context())

	acquired, err := s.locks.AcquireOrRefresh(r.Context(), systemID, userID)
	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	if !acquired {
		writeError(w, "system is controlled by another user", http.StatusConflict)
		return
	}

	s.writeJSON(w, http.StatusOK, LockResponse{Acquired: &acquired})
}

func (s *APIServer) handleReleaseLock(w http.ResponseWriter, r *http.Request) {
	systemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid system id", http.StatusBadRequest)
		return
	}

	userID, _ := srHttp.UserIDFromContext(r.Context())

	released, err := s.locks.Release(r.Context(), systemID, userID)
	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	if !released {
		writeError(w, "control lock is not held by caller", http.StatusForbidden)
		return
	}

	s.writeJSON(w, http.StatusOK, LockResponse{Released: &released})
}

func (s *APIServer) handleLockStatus(w http.ResponseWriter, r *http.Request) {
	systemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid system id", http.StatusBadRequest)
		return
	}

	status, err := s.locks.Status(r.Context(), systemID)
	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, status)
}

// handleSystemLogs returns the correlated activity feed of a system.
// Heartbeats are hidden unless heartbeats=true.
func (s *APIServer) handleSystemLogs(w http.ResponseWriter, r *http.Request) {
	systemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid system id", http.StatusBadRequest)
		return
	}

	filter, err := logFilterFromQuery(r, systemID)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	items, err := s.view.Items(r.Context(), filter)
	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, items)
}

func logFilterFromQuery(r *http.Request, systemID int64) (*models.LogFilter, error) {
	q := r.URL.Query()

	filter := &models.LogFilter{
		SystemID:          systemID,
		ExcludeHeartbeats: true,
		Limit:             defaultLogLimit,
	}

	if v := q.Get("client_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errInvalidQuery("client_id")
		}

		filter.ClientID = id
	}

	if v := q.Get("heartbeats"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errInvalidQuery("heartbeats")
		}

		filter.ExcludeHeartbeats = !include
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return nil, errInvalidQuery("limit")
		}

		filter.Limit = min(limit, maxLogLimit)
	}

	return filter, nil
}
