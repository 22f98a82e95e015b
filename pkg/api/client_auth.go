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
	"mime"
	"net/http"

	"github.com/carverauto/semphony/pkg/db"
	srHttp "github.com/carverauto/semphony/pkg/http"
	"github.com/carverauto/semphony/pkg/models"
	"github.com/carverauto/semphony/pkg/pusher"
)

var errClientKeyRejected = errors.New("client key rejected")

type broadcastingAuthRequest struct {
	SocketID    string `json:"socket_id"`
	ChannelName string `json:"channel_name"`
}

// BroadcastingAuthResponse is the subscription token for a presence channel.
type BroadcastingAuthResponse struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data"`
}

// ClientMetaResponse tells a device client which version it should run.
type ClientMetaResponse struct {
	PyClientVersion string `json:"py_client_version"`
}

// authenticateClient resolves the active client owning the X-Client-Key header.
func (s *APIServer) authenticateClient(r *http.Request) (*models.Client, error) {
	key := r.Header.Get(srHttp.HeaderClientKey)
	if key == "" {
		return nil, errClientKeyRejected
	}

	client, err := s.store.GetClientByAPIKey(r.Context(), key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errClientKeyRejected
	}

	if err != nil {
		return nil, err
	}

	if !client.IsActive {
		return nil, errClientKeyRejected
	}

	return client, nil
}

func (s *APIServer) writeClientAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errClientKeyRejected) {
		writeError(w, "Forbidden", http.StatusForbidden)

		return
	}

	s.writeControlError(w, r, err)
}

func decodeBroadcastingAuth(r *http.Request) (*broadcastingAuthRequest, error) {
	var req broadcastingAuthRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}

		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req.SocketID = r.PostForm.Get("socket_id")
	req.ChannelName = r.PostForm.Get("channel_name")

	return &req, nil
}

// handleBroadcastingAuth signs a device client's subscription to its own
// presence channel. Both JSON and form bodies are accepted.
func (s *APIServer) handleBroadcastingAuth(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBroadcastingAuth(r)
	if err != nil || req.SocketID == "" || req.ChannelName == "" {
		writeError(w, "socket_id and channel_name are required", http.StatusUnprocessableEntity)

		return
	}

	client, err := s.authenticateClient(r)
	if err != nil {
		s.writeClientAuthError(w, r, err)

		return
	}

	if req.ChannelName != client.Channel() {
		s.logger.Warn().
			Int64("client_id", client.ID).
			Str("channel", req.ChannelName).
			Msg("Client requested a foreign channel")
		writeError(w, "Forbidden", http.StatusForbidden)

		return
	}

	if s.appKey == "" || s.appSecret == "" {
		writeError(w, "broadcasting credentials are not configured", http.StatusInternalServerError)

		return
	}

	channelData, err := pusher.ChannelData(client)
	if err != nil {
		s.writeControlError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, BroadcastingAuthResponse{
		Auth:        pusher.AuthToken(s.appKey, s.appSecret, req.SocketID, req.ChannelName, channelData),
		ChannelData: channelData,
	})
}

func (s *APIServer) handleClientMeta(w http.ResponseWriter, r *http.Request) {
	if _, err := s.authenticateClient(r); err != nil {
		s.writeClientAuthError(w, r, err)

		return
	}

	if s.pyClientVersion == "" {
		writeError(w, "py_client_version is not configured on the server", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, http.StatusOK, ClientMetaResponse{PyClientVersion: s.pyClientVersion})
}
