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

const selectCommand = `SELECT id, name, action_type, COALESCE(description, '') FROM commands`

func scanCommand(row pgx.Row) (*models.Command, error) {
	var (
		cmd        models.Command
		actionType string
	)

	err := row.Scan(&cmd.ID, &cmd.Name, &actionType, &cmd.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: command: %w", ErrFailedToScan, err)
	}

	if cmd.ActionType, err = models.ParseActionType(actionType); err != nil {
		return nil, fmt.Errorf("command %d: %w", cmd.ID, err)
	}

	return &cmd, nil
}

func (db *DB) GetCommand(ctx context.Context, commandID int64) (*models.Command, error) {
	cmd, err := scanCommand(db.pool.QueryRow(ctx, selectCommand+` WHERE id = $1`, commandID))
	if err != nil {
		return nil, fmt.Errorf("command %d: %w", commandID, err)
	}

	return cmd, nil
}

func (db *DB) GetCommandByName(ctx context.Context, name string) (*models.Command, error) {
	cmd, err := scanCommand(db.pool.QueryRow(ctx, selectCommand+` WHERE name = $1 ORDER BY id LIMIT 1`, name))
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", name, err)
	}

	return cmd, nil
}
