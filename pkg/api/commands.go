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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carverauto/semphony/pkg/db"
	srHttp "github.com/carverauto/semphony/pkg/http"
	"github.com/carverauto/semphony/pkg/models"
)

// DispatchRequest asks for a command to be run on a client.
type DispatchRequest struct {
	CommandID int64                  `json:"command_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// ScreenshotRequest asks a client for a capture of one monitor.
type ScreenshotRequest struct {
	MonitorNr int `json:"monitor_nr"`
}

// DispatchResponse carries the id that the client echoes in its result.
type DispatchResponse struct {
	CorrelationID string `json:"correlation_id"`
}

func (s *APIServer) clientFromPath(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	clientID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid client id", http.StatusBadRequest)
		return nil, false
	}

	client, err := s.store.GetClient(r.Context(), clientID)
	if err != nil {
		s.writeControlError(w, r, err)
		return nil, false
	}

	return client, true
}

func (s *APIServer) handleDispatchCommand(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CommandID <= 0 {
		writeError(w, "command_id is required", http.StatusUnprocessableEntity)
		return
	}

	client, ok := s.clientFromPath(w, r)
	if !ok {
		return
	}

	command, err := s.store.GetCommand(r.Context(), req.CommandID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, "unknown command", http.StatusUnprocessableEntity)
		return
	}

	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	s.dispatch(w, r, client, command, req.Payload)
}

// handleScreenshot requests a capture, clamping monitor_nr to the monitors
// the client reports.
func (s *APIServer) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	req := ScreenshotRequest{MonitorNr: 1}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusUnprocessableEntity)
			return
		}
	}

	client, ok := s.clientFromPath(w, r)
	if !ok {
		return
	}

	if !client.CanScreenshot {
		writeError(w, "client cannot take screenshots", http.StatusForbidden)
		return
	}

	command, err := s.store.GetCommandByName(r.Context(), models.ScreenshotCommandName)
	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	s.dispatch(w, r, client, command, map[string]interface{}{
		"monitor_nr": client.ClampMonitor(req.MonitorNr),
	})
}

func (s *APIServer) dispatch(
	w http.ResponseWriter, r *http.Request, client *models.Client, command *models.Command, extra map[string]interface{},
) {
	userID, _ := srHttp.UserIDFromContext(r.Context())

	correlationID, err := s.dispatcher.DispatchAs(r.Context(), userID, client, command, extra)
	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, DispatchResponse{CorrelationID: correlationID})
}

// handleCommandResult polls for a command's result. 404 means it has not
// arrived yet.
func (s *APIServer) handleCommandResult(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "invalid client id", http.StatusBadRequest)
		return
	}

	entry, err := s.view.FindResult(r.Context(), clientID, mux.Vars(r)["correlation_id"])
	if err != nil {
		s.writeControlError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}
