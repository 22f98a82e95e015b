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
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/semphony/pkg/models"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

func (db *DB) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	if entry == nil {
		return ErrLogEntryNil
	}

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("%w: log payload: %w", ErrFailedToInsert, err)
	}

	var createdAt *time.Time
	if !entry.CreatedAt.IsZero() {
		createdAt = &entry.CreatedAt
	}

	err = db.pool.QueryRow(ctx, `INSERT INTO client_logs
		(client_id, system_id, direction, severity, command_id, summary, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
		RETURNING id, created_at`,
		entry.ClientID, entry.SystemID, string(entry.Direction), string(entry.Severity),
		entry.CommandID, entry.Summary, payload, createdAt,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: client log: %w", ErrFailedToInsert, err)
	}

	return nil
}

// logQuery accumulates WHERE clauses with positional arguments.
type logQuery struct {
	where []string
	args  []interface{}
}

func (q *logQuery) add(clause string, arg interface{}) {
	q.args = append(q.args, arg)
	q.where = append(q.where, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(q.args))))
}

func buildLogQuery(filter *models.LogFilter) (string, []interface{}) {
	q := &logQuery{}

	if filter.ClientID != 0 {
		q.add("client_id = ?", filter.ClientID)
	}

	if filter.SystemID != 0 {
		q.add("system_id = ?", filter.SystemID)
	}

	if filter.Direction != "" {
		q.add("direction = ?", string(filter.Direction))
	}

	if filter.Event != "" {
		q.add("payload ->> 'event' = ?", filter.Event)
	}

	if filter.CorrelationID != "" {
		q.add("payload -> 'data' ->> 'correlation_id' = ?", filter.CorrelationID)
	}

	if filter.ExcludeHeartbeats {
		q.add("summary <> ?", models.SummaryHeartbeat)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}

	limit = min(limit, maxLogLimit)

	sql := `SELECT id, client_id, system_id, direction, severity, command_id, summary, payload, created_at FROM client_logs`
	if len(q.where) > 0 {
		sql += " WHERE " + strings.Join(q.where, " AND ")
	}

	q.args = append(q.args, limit)
	sql += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(q.args))

	return sql, q.args
}

func scanLogEntry(row pgx.Row) (*models.LogEntry, error) {
	var (
		entry     models.LogEntry
		direction string
		severity  string
		payload   []byte
	)

	if err := row.Scan(&entry.ID, &entry.ClientID, &entry.SystemID, &direction, &severity,
		&entry.CommandID, &entry.Summary, &payload, &entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: client log: %w", ErrFailedToScan, err)
	}

	var err error

	if entry.Direction, err = models.ParseLogDirection(direction); err != nil {
		return nil, fmt.Errorf("client log %d: %w", entry.ID, err)
	}

	if entry.Severity, err = models.ParseLogSeverity(severity); err != nil {
		return nil, fmt.Errorf("client log %d: %w", entry.ID, err)
	}

	if err := json.Unmarshal(payload, &entry.Payload); err != nil {
		return nil, fmt.Errorf("%w: client log %d payload: %w", ErrFailedToScan, entry.ID, err)
	}

	return &entry, nil
}

func (db *DB) QueryLogs(ctx context.Context, filter *models.LogFilter) ([]*models.LogEntry, error) {
	sql, args := buildLogQuery(filter)

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: client logs: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var entries []*models.LogEntry

	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: client logs: %w", ErrFailedToQuery, err)
	}

	return entries, nil
}

// LatestActivityAt skips liveness entries; counting them would let a transition keep its own client alive.
func (db *DB) LatestActivityAt(ctx context.Context, clientID int64) (time.Time, bool, error) {
	var at time.Time

	err := db.pool.QueryRow(ctx, `SELECT created_at FROM client_logs
		WHERE client_id = $1 AND COALESCE(payload ->> 'type', '') <> $2
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		clientID, models.LivenessPayloadType,
	).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: latest activity for client %d: %w", ErrFailedToQuery, clientID, err)
	}

	return at, true, nil
}

func (db *DB) PruneHeartbeats(ctx context.Context, clientID int64, commandID *int64, keep int) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM client_logs WHERE id IN (
		SELECT id FROM client_logs
		WHERE client_id = $1
		  AND direction = $2
		  AND summary = $3
		  AND ($4::bigint IS NULL OR command_id = $4)
		ORDER BY created_at DESC, id DESC
		OFFSET $5
	)`, clientID, string(models.DirectionInbound), models.SummaryHeartbeat, commandID, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("prune heartbeats for client %d: %w", clientID, err)
	}

	return tag.RowsAffected(), nil
}
