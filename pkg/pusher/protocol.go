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

package pusher

import (
	"encoding/json"
	"errors"
	"strings"
)

// Protocol events handled by the hub itself.
const (
	EventConnectionEstablished = "pusher:connection_established"
	EventError                 = "pusher:error"
	EventSubscribe             = "pusher:subscribe"
	EventUnsubscribe           = "pusher:unsubscribe"
	EventPing                  = "pusher:ping"
	EventPong                  = "pusher:pong"

	EventSubscriptionSucceeded = "pusher_internal:subscription_succeeded"
	EventMemberAdded           = "pusher_internal:member_added"
	EventMemberRemoved         = "pusher_internal:member_removed"

	clientEventPrefix     = "client-"
	privateChannelPrefix  = "private-"
	presenceChannelPrefix = "presence-"
)

// Error codes sent in pusher:error frames.
const (
	CodeApplicationNotFound = 4001
	CodeUnauthorized        = 4009
	CodeInvalidMessage      = 4200
	CodeNotSubscribed       = 4301
)

var (
	errInvalidFrame = errors.New("invalid frame")
	errHubClosed    = errors.New("hub is closed")

	// ErrSendQueueFull means every subscriber of a channel refused the message.
	ErrSendQueueFull = errors.New("send queue full on every subscriber")
)

// Frame is a protocol message. Data holds the raw JSON value, which clients
// may send either as an object or as a JSON-encoded string.
type Frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	UserID  string          `json:"user_id,omitempty"`
}

func decodeFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	if f.Event == "" {
		return nil, errInvalidFrame
	}

	return &f, nil
}

// DecodeData unmarshals the frame data into v, unwrapping a string-encoded
// payload first.
func (f *Frame) DecodeData(v interface{}) error {
	if len(f.Data) == 0 {
		return errInvalidFrame
	}

	raw := []byte(f.Data)

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(s)
	}

	return json.Unmarshal(raw, v)
}

// encodeFrame builds an outbound frame. data is sent as a JSON-encoded string
// as the protocol requires.
func encodeFrame(event, channel string, data interface{}) ([]byte, error) {
	f := Frame{Event: event, Channel: channel}

	if data != nil {
		inner, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}

		wrapped, err := json.Marshal(string(inner))
		if err != nil {
			return nil, err
		}

		f.Data = wrapped
	}

	return json.Marshal(f)
}

type subscribeData struct {
	Channel     string `json:"channel"`
	Auth        string `json:"auth,omitempty"`
	ChannelData string `json:"channel_data,omitempty"`
}

type connectionEstablished struct {
	SocketID        string `json:"socket_id"`
	ActivityTimeout int    `json:"activity_timeout"`
}

type errorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type presenceData struct {
	Presence presenceSet `json:"presence"`
}

type presenceSet struct {
	IDs   []string                   `json:"ids"`
	Hash  map[string]json.RawMessage `json:"hash"`
	Count int                        `json:"count"`
}

func isPresence(channel string) bool {
	return strings.HasPrefix(channel, presenceChannelPrefix)
}

func requiresAuth(channel string) bool {
	return isPresence(channel) || strings.HasPrefix(channel, privateChannelPrefix)
}

func isClientEvent(event string) bool {
	return strings.HasPrefix(event, clientEventPrefix)
}
