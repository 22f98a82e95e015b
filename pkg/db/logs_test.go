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
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/carverauto/semphony/pkg/models"
)

func TestBuildLogQuery(t *testing.T) {
	sql, args := buildLogQuery(&models.LogFilter{
		ClientID:      7,
		Direction:     models.DirectionInbound,
		Event:         models.EventClientCommandResult,
		CorrelationID: "c-1",
		Limit:         1,
	})

	assert.Contains(t, sql, "client_id = $1 AND direction = $2 AND payload ->> 'event' = $3 AND payload -> 'data' ->> 'correlation_id' = $4")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC LIMIT $5")
	assert.Equal(t, []interface{}{int64(7), "inbound", "client-command-result", "c-1", 1}, args)
}

func TestBuildLogQueryDefaultsAndCaps(t *testing.T) {
	sql, args := buildLogQuery(&models.LogFilter{})
	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []interface{}{defaultLogLimit}, args)

	sql, args = buildLogQuery(&models.LogFilter{SystemID: 3, ExcludeHeartbeats: true, Limit: 50_000})
	assert.Contains(t, sql, "system_id = $1 AND summary <> $2")
	assert.Equal(t, []interface{}{int64(3), models.SummaryHeartbeat, maxLogLimit}, args)
}

func TestIsLockConflict(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := fmt.Errorf("tx: %w", &pgconn.PgError{Code: code})
		assert.True(t, isLockConflict(err), code)
	}

	assert.False(t, isLockConflict(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isLockConflict(assert.AnError))
}

func TestMigrationVersion(t *testing.T) {
	assert.Equal(t, "00001", migrationVersion("00001_control_schema.up.sql"))

	names, err := migrationFiles()
	assert.NoError(t, err)
	assert.Equal(t, []string{"00001_control_schema.up.sql"}, names)
}
