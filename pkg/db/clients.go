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
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/semphony/pkg/models"
)

const selectClient = `SELECT c.id, c.system_id, c.name, c.api_key, c.is_active, c.can_screenshot, c.monitor_count,
	ARRAY(SELECT cc.command_id FROM client_commands cc WHERE cc.client_id = c.id ORDER BY cc.command_id)
FROM clients c`

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client

	err := row.Scan(&c.ID, &c.SystemID, &c.Name, &c.APIKey, &c.IsActive, &c.CanScreenshot, &c.MonitorCount, &c.AllowedCommandIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: client: %w", ErrFailedToScan, err)
	}

	return &c, nil
}

func (db *DB) GetClient(ctx context.Context, clientID int64) (*models.Client, error) {
	c, err := scanClient(db.pool.QueryRow(ctx, selectClient+` WHERE c.id = $1`, clientID))
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", clientID, err)
	}

	return c, nil
}

func (db *DB) GetClientByAPIKey(ctx context.Context, apiKey string) (*models.Client, error) {
	c, err := scanClient(db.pool.QueryRow(ctx, selectClient+` WHERE c.api_key = $1`, apiKey))
	if err != nil {
		return nil, fmt.Errorf("client by api key: %w", err)
	}

	return c, nil
}

func (db *DB) ListActiveClients(ctx context.Context) ([]*models.Client, error) {
	rows, err := db.pool.Query(ctx, selectClient+` WHERE c.is_active ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("%w: active clients: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	var clients []*models.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: active clients: %w", ErrFailedToQuery, err)
	}

	return clients, nil
}
