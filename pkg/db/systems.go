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

const selectSystem = `SELECT id, name, control_locked_by_user_id, control_locked_until FROM systems WHERE id = $1`

func scanSystem(row pgx.Row) (*models.System, error) {
	var sys models.System

	err := row.Scan(&sys.ID, &sys.Name, &sys.ControlLockedByUserID, &sys.ControlLockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: system: %w", ErrFailedToScan, err)
	}

	return &sys, nil
}

func (db *DB) GetSystem(ctx context.Context, systemID int64) (*models.System, error) {
	sys, err := scanSystem(db.pool.QueryRow(ctx, selectSystem, systemID))
	if err != nil {
		return nil, fmt.Errorf("system %d: %w", systemID, err)
	}

	return sys, nil
}

func (db *DB) WithSystemLock(ctx context.Context, systemID int64, fn SystemMutator) (*models.System, error) {
	var out *models.System

	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+lockTimeout+"'"); err != nil {
			return err
		}

		sys, err := scanSystem(tx.QueryRow(ctx, selectSystem+` FOR UPDATE`, systemID))
		if err != nil {
			return err
		}

		changed, err := fn(sys)
		if err != nil {
			return err
		}

		if changed {
			if _, err := tx.Exec(ctx,
				`UPDATE systems SET control_locked_by_user_id = $2, control_locked_until = $3 WHERE id = $1`,
				sys.ID, sys.ControlLockedByUserID, sys.ControlLockedUntil,
			); err != nil {
				return err
			}
		}

		out = sys

		return nil
	})

	switch {
	case err == nil:
		return out, nil
	case isLockConflict(err):
		return nil, fmt.Errorf("system %d: %w: %w", systemID, ErrLockConflict, err)
	default:
		return nil, fmt.Errorf("system %d: %w", systemID, err)
	}
}
