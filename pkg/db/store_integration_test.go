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

package db

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

const testDatabaseURLEnv = "SEMPHONY_TEST_DATABASE_URL"

type fixture struct {
	db        *DB
	systemID  int64
	clientID  int64
	commandID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := os.Getenv(testDatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool, logger.NewTestLogger()))

	f := &fixture{db: New(pool, logger.NewTestLogger())}

	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO systems (name) VALUES ($1) RETURNING id`, "sys-"+uuid.NewString()).Scan(&f.systemID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO commands (name, action_type) VALUES ($1, 'heartbeat') RETURNING id`, "hb-"+uuid.NewString()).Scan(&f.commandID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO clients (system_id, name, api_key) VALUES ($1, 'scope', $2) RETURNING id`,
		f.systemID, uuid.NewString()).Scan(&f.clientID))
	_, err = pool.Exec(ctx, `INSERT INTO client_commands (client_id, command_id) VALUES ($1, $2)`, f.clientID, f.commandID)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM systems WHERE id = $1`, f.systemID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM commands WHERE id = $1`, f.commandID)
	})

	return f
}

func TestIntegrationClientLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.db.GetClient(ctx, f.clientID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.commandID}, c.AllowedCommandIDs)
	assert.True(t, c.IsActive)
	assert.Nil(t, c.MonitorCount)

	_, err = f.db.GetClient(ctx, -1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIntegrationSystemLockSerializes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []int64
	)

	for user := int64(1); user <= 8; user++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := f.db.WithSystemLock(ctx, f.systemID, func(sys *models.System) (bool, error) {
				now := time.Now()
				if sys.IsClaimed(now) {
					return false, nil
				}

				until := now.Add(time.Hour)
				sys.ControlLockedByUserID, sys.ControlLockedUntil = &user, &until

				mu.Lock()
				winners = append(winners, user)
				mu.Unlock()

				return true, nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	require.Len(t, winners, 1)

	sys, err := f.db.GetSystem(ctx, f.systemID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], *sys.ControlLockedByUserID)
}

func TestIntegrationLogsAndPrune(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	for i := 0; i < 13; i++ {
		require.NoError(t, f.db.AppendLog(ctx, &models.LogEntry{
			ClientID:  f.clientID,
			SystemID:  f.systemID,
			Direction: models.DirectionInbound,
			Severity:  models.SeverityInfo,
			CommandID: &f.commandID,
			Summary:   models.SummaryHeartbeat,
			Payload:   map[string]interface{}{"event": models.EventClientHeartbeat},
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	result := &models.LogEntry{
		ClientID:  f.clientID,
		SystemID:  f.systemID,
		Direction: models.DirectionInbound,
		Severity:  models.SeverityError,
		Summary:   "Command result (c-1)",
		Payload: map[string]interface{}{
			"event": models.EventClientCommandResult,
			"data":  map[string]interface{}{"correlation_id": "c-1", "ok": false},
		},
	}
	require.NoError(t, f.db.AppendLog(ctx, result))
	assert.NotZero(t, result.ID)
	assert.False(t, result.CreatedAt.IsZero())

	deleted, err := f.db.PruneHeartbeats(ctx, f.clientID, &f.commandID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	beats, err := f.db.QueryLogs(ctx, &models.LogFilter{ClientID: f.clientID, Event: models.EventClientHeartbeat})
	require.NoError(t, err)
	require.Len(t, beats, 10)
	assert.WithinDuration(t, base.Add(12*time.Second), beats[0].CreatedAt, time.Millisecond)
	assert.WithinDuration(t, base.Add(3*time.Second), beats[9].CreatedAt, time.Millisecond)

	found, err := f.db.QueryLogs(ctx, &models.LogFilter{ClientID: f.clientID, CorrelationID: "c-1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, result.ID, found[0].ID)
	assert.Equal(t, models.SeverityError, found[0].Severity)

	at, ok, err := f.db.LatestActivityAt(ctx, f.clientID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.WithinDuration(t, result.CreatedAt, at, time.Millisecond)
}
