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

package models

import "time"

// Wire event names carried in log payloads.
const (
	EventServerCommand       = "server-command"
	EventClientCommandResult = "client-command-result"
	EventClientHeartbeat     = "client-heartbeat"
	EventPusherSubscribe     = "pusher:subscribe"
	EventPusherUnsubscribe   = "pusher:unsubscribe"
	EventPusherPing          = "pusher:ping"
	EventPusherPong          = "pusher:pong"

	SummaryHeartbeat     = "Heartbeat"
	SummaryClientOnline  = "Client is online"
	SummaryClientOffline = "Client is offline"

	// LivenessPayloadType tags payload.type on liveness transition entries.
	LivenessPayloadType = "liveness"
)

// LogEntry is an append-only record of traffic to or from a client.
type LogEntry struct {
	ID        int64                  `json:"id"`
	ClientID  int64                  `json:"client_id"`
	SystemID  int64                  `json:"system_id"`
	Direction LogDirection           `json:"direction"`
	Severity  LogSeverity            `json:"severity"`
	CommandID *int64                 `json:"command_id,omitempty"`
	Summary   string                 `json:"summary"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// Event returns payload.event, or "" when absent.
func (e *LogEntry) Event() string {
	s, _ := e.Payload["event"].(string)

	return s
}

// Data returns payload.data when it is an object.
func (e *LogEntry) Data() map[string]interface{} {
	d, _ := e.Payload["data"].(map[string]interface{})

	return d
}

// CorrelationID returns payload.data.correlation_id, or "" when absent.
func (e *LogEntry) CorrelationID() string {
	s, _ := e.Data()["correlation_id"].(string)

	return s
}

// IsHeartbeat reports whether the entry records an inbound heartbeat.
func (e *LogEntry) IsHeartbeat() bool {
	return e.Summary == SummaryHeartbeat
}

// LogFilter selects log entries. Zero-valued fields do not filter.
type LogFilter struct {
	ClientID          int64
	SystemID          int64
	Direction         LogDirection
	Event             string
	CorrelationID     string
	ExcludeHeartbeats bool
	// Limit bounds the result; entries are returned newest first.
	Limit int
}
