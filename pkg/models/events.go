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

import (
	"errors"
	"time"
)

var errNATSURLRequired = errors.New("nats url is required")

// NATSConfig configures NATS connectivity
type NATSConfig struct {
	URL  string     `json:"url"`
	Name string     `json:"name,omitempty"`
	TLS  *TLSConfig `json:"tls,omitempty"`
	// CommandStream carries server-command messages between control nodes and gateways.
	CommandStream string `json:"command_stream,omitempty"`
	// CacheBucket is the KV bucket backing the socket and liveness caches.
	CacheBucket string `json:"cache_bucket,omitempty"`
	Events      *EventsConfig `json:"events,omitempty"`
}

// Validate ensures the NATS configuration is valid
func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return errNATSURLRequired
	}

	return nil
}

// EventsConfig configures the liveness event stream.
type EventsConfig struct {
	Enabled    bool     `json:"enabled"`
	StreamName string   `json:"stream_name"`
	Subjects   []string `json:"subjects"`
}

// Validate fills in stream defaults when events are enabled.
func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.StreamName == "" {
		c.StreamName = "events"
	}

	if len(c.Subjects) == 0 {
		c.Subjects = []string{"events.client.*"}
	}

	return nil
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// ClientLivenessEventData is the payload of a client online/offline CloudEvent.
type ClientLivenessEventData struct {
	ClientID      int64     `json:"client_id"`
	SystemID      int64     `json:"system_id"`
	ClientName    string    `json:"client_name,omitempty"`
	PreviousState string    `json:"previous_state"`
	CurrentState  string    `json:"current_state"`
	IsAlive       bool      `json:"is_alive"`
	Timestamp     time.Time `json:"timestamp"`
	LastSeen      time.Time `json:"last_seen,omitempty"`
}
