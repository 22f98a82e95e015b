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

package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

var errTestFixture = errors.New("fixture error")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:    "adds subject when list empty",
			subject: "events.client.online",
			want:    []string{"events.client.online"},
		},
		{
			name:     "keeps list when wildcard matches",
			subjects: []string{"events.client.*"},
			subject:  "events.client.online",
			want:     []string{"events.client.*"},
		},
		{
			name:     "keeps list when greater wildcard matches",
			subjects: []string{"semphony.channels.>"},
			subject:  "semphony.channels.presence-client.3",
			want:     []string{"semphony.channels.>"},
		},
		{
			name:     "appends when unmatched",
			subjects: []string{"events.poller.*"},
			subject:  "events.client.offline",
			want:     []string{"events.poller.*", "events.client.offline"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject)
			if len(result) != len(tc.want) {
				t.Fatalf("expected %d subjects, got %d", len(tc.want), len(result))
			}

			for i := range tc.want {
				if tc.want[i] != result[i] {
					t.Fatalf("result[%d] = %q, want %q", i, result[i], tc.want[i])
				}
			}
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "events.client.online", "events.client.online", true},
		{"single wildcard", "events.*.online", "events.client.online", true},
		{"greater wildcard", "events.>", "events.client.online", true},
		{"greater needs a token", "events.>", "events", false},
		{"no match length", "events.*", "events.client.online", false},
		{"no match tokens", "logs.syslog.*", "events.client.online", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := matchesSubject(tc.pattern, tc.subject); got != tc.expected {
				t.Fatalf("matchesSubject(%q, %q) = %t, want %t", tc.pattern, tc.subject, got, tc.expected)
			}
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"jetstream no stream response", jetstream.ErrNoStreamResponse, true},
		{"jetstream stream not found", jetstream.ErrStreamNotFound, true},
		{"nats stream not found", nats.ErrStreamNotFound, true},
		{"nats no responders", nats.ErrNoResponders, true},
		{"other error", errTestFixture, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := isStreamMissingErr(tc.err); got != tc.expected {
				t.Fatalf("isStreamMissingErr(%v) = %t, want %t", tc.err, got, tc.expected)
			}
		})
	}
}

func runJetStreamServer(t *testing.T) jetstream.JetStream {
	t.Helper()

	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	t.Cleanup(srv.Shutdown)

	nc, err := Connect(&models.NATSConfig{URL: srv.ClientURL(), Name: "semphony-test"}, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	return js
}

func TestEventPublisher_NotifyTransition(t *testing.T) {
	js := runJetStreamServer(t)
	ctx := t.Context()

	cfg := &models.EventsConfig{Enabled: true}
	require.NoError(t, cfg.Validate())

	pub, err := NewEventPublisher(ctx, js, cfg, logger.NewTestLogger())
	require.NoError(t, err)

	lastSeen := time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC)
	client := &models.Client{ID: 3, SystemID: 7, Name: "sem-control"}

	require.NoError(t, pub.NotifyTransition(ctx, client, false, lastSeen))

	stream, err := js.Stream(ctx, cfg.StreamName)
	require.NoError(t, err)

	msg, err := stream.GetLastMsgForSubject(ctx, subjectOffline)
	require.NoError(t, err)

	var event struct {
		models.CloudEvent
		Data models.ClientLivenessEventData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &event))

	assert.Equal(t, livenessType, event.Type)
	assert.Equal(t, subjectOffline, event.Subject)
	assert.Equal(t, int64(3), event.Data.ClientID)
	assert.Equal(t, stateOnline, event.Data.PreviousState)
	assert.Equal(t, stateOffline, event.Data.CurrentState)
	assert.False(t, event.Data.IsAlive)
	assert.True(t, lastSeen.Equal(event.Data.LastSeen))
}

type channelRecorder struct {
	mu     sync.Mutex
	events []commandEnvelope
}

func (r *channelRecorder) Publish(_ context.Context, channel, event string, data interface{}) error {
	raw, ok := data.(json.RawMessage)
	if !ok {
		return errTestFixture
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, commandEnvelope{Channel: channel, Event: event, Data: raw})

	return nil
}

func (r *channelRecorder) snapshot() []commandEnvelope {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]commandEnvelope(nil), r.events...)
}

func TestCommandRelay_DeliversPublishedCommands(t *testing.T) {
	js := runJetStreamServer(t)
	ctx := t.Context()

	pub, err := NewCommandPublisher(ctx, js, "semphony-commands")
	require.NoError(t, err)

	target := &channelRecorder{}
	relay := NewCommandRelay(js, "semphony-commands", "gateway-a", target, logger.NewTestLogger())
	require.NoError(t, relay.Start(ctx))

	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = relay.Stop(stopCtx)
	})

	err = pub.Publish(ctx, "presence-client.3", "server-command", map[string]interface{}{
		"correlation_id": "abc",
		"command_name":   "clickButton",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(target.snapshot()) == 1 }, 10*time.Second, 20*time.Millisecond)

	got := target.snapshot()[0]
	assert.Equal(t, "presence-client.3", got.Channel)
	assert.Equal(t, "server-command", got.Event)
	assert.JSONEq(t, `{"correlation_id":"abc","command_name":"clickButton"}`, string(got.Data))
}

func TestCommandPublisher_RequiresChannel(t *testing.T) {
	js := runJetStreamServer(t)

	pub, err := NewCommandPublisher(t.Context(), js, "semphony-commands")
	require.NoError(t, err)

	require.ErrorIs(t, pub.Publish(t.Context(), "", "server-command", nil), errEmptyChannel)
}
