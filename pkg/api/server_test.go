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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/semphony/pkg/control"
	"github.com/carverauto/semphony/pkg/db/dbtest"
	srHttp "github.com/carverauto/semphony/pkg/http"
	"github.com/carverauto/semphony/pkg/kv"
	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
	"github.com/carverauto/semphony/pkg/pusher"
)

const (
	testAppKey    = "app-key"
	testAppSecret = "app-secret"
	testClientKey = "client-key"
	testVersion   = "1.4.2"

	systemID     int64 = 7
	clientID     int64 = 3
	disabledID   int64 = 4
	acquireCmdID int64 = 42
	rebootCmdID  int64 = 43
	screenshotID int64 = 11

	operatorA = "100"
	operatorB = "200"
)

type capturedMessage struct {
	channel string
	event   string
	data    map[string]interface{}
}

type capturingPublisher struct {
	mu       sync.Mutex
	messages []capturedMessage
}

func (p *capturingPublisher) Publish(_ context.Context, channel, event string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, _ := data.(map[string]interface{})
	p.messages = append(p.messages, capturedMessage{channel: channel, event: event, data: m})

	return nil
}

func (p *capturingPublisher) last(t *testing.T) capturedMessage {
	t.Helper()

	p.mu.Lock()
	defer p.mu.Unlock()

	require.NotEmpty(t, p.messages)

	return p.messages[len(p.messages)-1]
}

type testEnv struct {
	server    *APIServer
	store     *dbtest.Store
	publisher *capturingPublisher
	router    *control.Router
}

func newTestEnv(t *testing.T, options ...func(*APIServer)) *testEnv {
	t.Helper()

	store := dbtest.New()
	monitors := 2

	store.AddSystem(models.System{ID: systemID, Name: "Tescan SEM"})
	store.AddClient(models.Client{
		ID:                clientID,
		SystemID:          systemID,
		Name:              "sem-control",
		APIKey:            testClientKey,
		IsActive:          true,
		CanScreenshot:     true,
		MonitorCount:      &monitors,
		AllowedCommandIDs: []int64{acquireCmdID},
	})
	store.AddClient(models.Client{ID: disabledID, SystemID: systemID, Name: "spare", APIKey: "disabled-key"})
	store.AddCommand(models.Command{ID: acquireCmdID, Name: "acquire", ActionType: models.ActionRequest})
	store.AddCommand(models.Command{ID: rebootCmdID, Name: "reboot", ActionType: models.ActionRequest})
	store.AddCommand(models.Command{ID: screenshotID, Name: models.ScreenshotCommandName, ActionType: models.ActionRequest})

	log := logger.NewTestLogger()
	mem := kv.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })

	publisher := &capturingPublisher{}
	locks := control.NewLockManager(store, log, control.DefaultLockTTL, control.DefaultLockAttempts)

	opts := []func(*APIServer){
		WithStore(store),
		WithLockManager(locks),
		WithDispatcher(control.NewDispatcher(store, publisher, locks, log)),
		WithCorrelationView(control.NewCorrelationView(store)),
		WithAppCredentials(testAppKey, testAppSecret),
		WithClientVersion(testVersion),
	}

	return &testEnv{
		server:    NewAPIServer(models.CORSConfig{AllowedOrigins: []string{"*"}}, log, append(opts, options...)...),
		store:     store,
		publisher: publisher,
		router: control.NewRouter(
			store,
			control.NewSocketClientCache(mem, control.DefaultCacheTTL),
			control.NewHeartbeatCommandCache(mem, control.DefaultHeartbeatCommandTTL),
			control.DefaultHeartbeatKeep,
			log,
		),
	}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	reader := strings.NewReader("")

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if user != "" {
		req.Header.Set(srHttp.HeaderUserID, user)
	}

	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)

	return rr
}

func (e *testEnv) clientRequest(t *testing.T, method, path, key string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")

	if key != "" {
		req.Header.Set(srHttp.HeaderClientKey, key)
	}

	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)

	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())

	return v
}

func TestBroadcastingAuth_SignsOwnPresenceChannel(t *testing.T) {
	env := newTestEnv(t)

	rr := env.clientRequest(t, http.MethodPost, "/client/broadcasting/auth", testClientKey, map[string]string{
		"socket_id":    "1234.5678",
		"channel_name": "presence-client.3",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[BroadcastingAuthResponse](t, rr)
	assert.True(t, strings.HasPrefix(resp.Auth, testAppKey+":"))
	assert.True(t, pusher.VerifyAuth(testAppKey, testAppSecret, "1234.5678", "presence-client.3", resp.ChannelData, resp.Auth))

	var member pusher.Member
	require.NoError(t, json.Unmarshal([]byte(resp.ChannelData), &member))
	assert.Equal(t, "3", member.UserID)
}

func TestBroadcastingAuth_FormBody(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"socket_id": {"1.2"}, "channel_name": {"presence-client.3"}}
	req := httptest.NewRequest(http.MethodPost, "/client/broadcasting/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(srHttp.HeaderClientKey, testClientKey)

	rr := httptest.NewRecorder()
	env.server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestBroadcastingAuth_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		body    map[string]string
		options []func(*APIServer)
		want    int
	}{
		{
			name: "foreign channel",
			key:  testClientKey,
			body: map[string]string{"socket_id": "1.2", "channel_name": "presence-client.4"},
			want: http.StatusForbidden,
		},
		{
			name: "disabled client",
			key:  "disabled-key",
			body: map[string]string{"socket_id": "1.2", "channel_name": "presence-client.4"},
			want: http.StatusForbidden,
		},
		{
			name: "unknown key",
			key:  "nope",
			body: map[string]string{"socket_id": "1.2", "channel_name": "presence-client.3"},
			want: http.StatusForbidden,
		},
		{
			name: "missing key",
			body: map[string]string{"socket_id": "1.2", "channel_name": "presence-client.3"},
			want: http.StatusForbidden,
		},
		{
			name: "missing socket id",
			key:  testClientKey,
			body: map[string]string{"channel_name": "presence-client.3"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name:    "credentials not configured",
			key:     testClientKey,
			body:    map[string]string{"socket_id": "1.2", "channel_name": "presence-client.3"},
			options: []func(*APIServer){WithAppCredentials("", "")},
			want:    http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.options...)

			rr := env.clientRequest(t, http.MethodPost, "/client/broadcasting/auth", tt.key, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestClientMeta(t *testing.T) {
	env := newTestEnv(t)

	rr := env.clientRequest(t, http.MethodGet, "/client/meta", testClientKey, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testVersion, decode[ClientMetaResponse](t, rr).PyClientVersion)

	rr = env.clientRequest(t, http.MethodGet, "/client/meta", "disabled-key", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	unset := newTestEnv(t, WithClientVersion(""))
	rr = unset.clientRequest(t, http.MethodGet, "/client/meta", testClientKey, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestOperatorEndpointsRequireIdentity(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/systems/7/lock", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLockLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/systems/7/lock", operatorA, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, *decode[LockResponse](t, rr).Acquired)

	rr = env.do(t, http.MethodPost, "/api/systems/7/lock", operatorB, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/systems/7/lock", operatorB, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/systems/7/lock", operatorB, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	status := decode[control.LockStatus](t, rr)
	assert.True(t, status.Claimed)
	require.NotNil(t, status.HolderUserID)
	assert.Equal(t, int64(100), *status.HolderUserID)

	rr = env.do(t, http.MethodDelete, "/api/systems/7/lock", operatorA, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/systems/7/lock", operatorB, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLockUnknownSystem(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/systems/99/lock", operatorA, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDispatchCommand(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/clients/3/commands", operatorA, DispatchRequest{CommandID: acquireCmdID})
	assert.Equal(t, http.StatusForbidden, rr.Code, "dispatch without holding the lock")
	assert.Empty(t, env.store.Logs())

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/systems/7/lock", operatorA, nil).Code)

	rr = env.do(t, http.MethodPost, "/api/clients/3/commands", operatorA, DispatchRequest{
		CommandID: acquireCmdID,
		Payload:   map[string]interface{}{"dwell": 3},
	})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	resp := decode[DispatchResponse](t, rr)
	require.NotEmpty(t, resp.CorrelationID)

	msg := env.publisher.last(t)
	assert.Equal(t, "presence-client.3", msg.channel)
	assert.Equal(t, models.EventServerCommand, msg.event)
	assert.Equal(t, resp.CorrelationID, msg.data["correlation_id"])
	assert.Len(t, env.store.Logs(), 1)

	rr = env.do(t, http.MethodPost, "/api/clients/3/commands", operatorA, DispatchRequest{CommandID: rebootCmdID})
	assert.Equal(t, http.StatusForbidden, rr.Code, "command outside the allow-list")

	rr = env.do(t, http.MethodPost, "/api/clients/3/commands", operatorA, DispatchRequest{CommandID: 999})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/clients/77/commands", operatorA, DispatchRequest{CommandID: acquireCmdID})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/clients/3/commands", operatorA, map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestScreenshotClampsMonitor(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/systems/7/lock", operatorA, nil).Code)

	rr := env.do(t, http.MethodPost, "/api/clients/3/screenshot", operatorA, ScreenshotRequest{MonitorNr: 9})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	msg := env.publisher.last(t)
	assert.Equal(t, models.ScreenshotCommandName, msg.data["command_name"])

	payload, ok := msg.data["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, payload["monitor_nr"])
}

func TestCommandResultPolling(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/systems/7/lock", operatorA, nil).Code)

	rr := env.do(t, http.MethodPost, "/api/clients/3/commands", operatorA, DispatchRequest{CommandID: acquireCmdID})
	require.Equal(t, http.StatusAccepted, rr.Code)

	corr := decode[DispatchResponse](t, rr).CorrelationID

	rr = env.do(t, http.MethodGet, "/api/clients/3/results/"+corr, operatorA, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "result still pending")

	frame, err := json.Marshal(map[string]interface{}{
		"event":   models.EventClientCommandResult,
		"channel": "presence-client.3",
		"data": map[string]interface{}{
			"correlation_id": corr,
			"command_id":     acquireCmdID,
			"ok":             true,
		},
	})
	require.NoError(t, err)

	env.router.Handle(ctx, frame, "1.2")

	rr = env.do(t, http.MethodGet, "/api/clients/3/results/"+corr, operatorA, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	entry := decode[models.LogEntry](t, rr)
	assert.Equal(t, models.DirectionInbound, entry.Direction)
	assert.Equal(t, corr, entry.CorrelationID())

	rr = env.do(t, http.MethodGet, "/api/systems/7/logs", operatorA, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	items := decode[[]control.CorrelationItem](t, rr)
	require.Len(t, items, 1)
	assert.Equal(t, corr, items[0].CorrelationID)
	assert.NotNil(t, items[0].Sent)
	assert.NotNil(t, items[0].Received)
}

func TestSystemLogsRejectsBadQuery(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"client_id=x", "heartbeats=maybe", "limit=0"} {
		rr := env.do(t, http.MethodGet, "/api/systems/7/logs?"+q, operatorA, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, q)
	}
}

func TestPreflightIsAnswered(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/clients/3/commands", http.NoBody)
	req.Header.Set("Origin", "http://ui.local")

	rr := httptest.NewRecorder()
	env.server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://ui.local", rr.Header().Get("Access-Control-Allow-Origin"))
}
