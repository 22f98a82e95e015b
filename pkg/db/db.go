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

// Package db implements the control stores on Postgres through pgx.
package db

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/semphony/pkg/logger"
)

// lockTimeout bounds how long a lock transaction waits on a contended row
// before Postgres fails it with lock_not_available.
const lockTimeout = "5s"

// DB is the pgx-backed Service.
type DB struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func New(pool *pgxpool.Pool, log logger.Logger) *DB {
	return &DB{pool: pool, logger: log}
}

// Close releases the pool.
func (db *DB) Close() {
	db.pool.Close()
}

var _ Service = (*DB)(nil)
