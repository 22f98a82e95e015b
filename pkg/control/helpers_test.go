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

package control

import (
	"context"
	"testing"
	"time"

	"github.com/carverauto/semphony/pkg/db/dbtest"
	"github.com/carverauto/semphony/pkg/kv"
	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

const (
	testSystemID  int64 = 7
	testClientID  int64 = 3
	acquireCmdID  int64 = 42
	heartbeatID   int64 = 9
	screenshotID  int64 = 11
	getMetricsID  int64 = 12
	testSocketID        = "1234.5678"
	testUserID    int64 = 100
	otherUserID   int64 = 200
	thirdUserID   int64 = 300
)

var testBase = time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store *dbtest.Store
	kv    *kv.MemoryStore
	log   logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := dbtest.New()
	store.Now = func() time.Time { return testBase }

	store.AddSystem(models.System{ID: testSystemID, Name: "Tescan SEM"})
	store.AddClient(models.Client{
		ID:                testClientID,
		SystemID:          testSystemID,
		Name:              "sem-control",
		APIKey:            "client-key",
		IsActive:          true,
		AllowedCommandIDs: []int64{acquireCmdID, getMetricsID},
	})
	store.AddCommand(models.Command{ID: acquireCmdID, Name: "acquire", ActionType: models.ActionButtonPress})
	store.AddCommand(models.Command{ID: heartbeatID, Name: models.HeartbeatCommandName, ActionType: models.ActionHeartbeat})
	store.AddCommand(models.Command{ID: screenshotID, Name: models.ScreenshotCommandName, ActionType: models.ActionRequest})
	store.AddCommand(models.Command{ID: getMetricsID, Name: "get_metrics", ActionType: models.ActionRequest})

	mem := kv.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })

	return &fixture{store: store, kv: mem, log: logger.NewTestLogger()}
}

func (f *fixture) router() *Router {
	return NewRouter(
		f.store,
		NewSocketClientCache(f.kv, DefaultCacheTTL),
		NewHeartbeatCommandCache(f.kv, DefaultHeartbeatCommandTTL),
		DefaultHeartbeatKeep,
		f.log,
	)
}

func (f *fixture) locks() *LockManager {
	return NewLockManager(f.store, f.log, DefaultLockTTL, DefaultLockAttempts)
}

func (f *fixture) client(t *testing.T, id int64) *models.Client {
	t.Helper()

	c, err := f.store.GetClient(t.Context(), id)
	if err != nil {
		t.Fatalf("GetClient(%d): %v", id, err)
	}

	return c
}

func (f *fixture) command(t *testing.T, id int64) *models.Command {
	t.Helper()

	c, err := f.store.GetCommand(t.Context(), id)
	if err != nil {
		t.Fatalf("GetCommand(%d): %v", id, err)
	}

	return c
}

// recordingPublisher captures published messages.
type recordingPublisher struct {
	channels []string
	events   []string
	data     []map[string]interface{}
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel, event string, data interface{}) error {
	if p.err != nil {
		return p.err
	}

	p.channels = append(p.channels, channel)
	p.events = append(p.events, event)
	p.data = append(p.data, data.(map[string]interface{}))

	return nil
}
