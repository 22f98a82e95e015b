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
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrLockConflict marks a transaction that lost a serialization, deadlock
	// or lock-timeout race. It is safe to retry.
	ErrLockConflict = errors.New("lock conflict")

	ErrFailedToScan   = errors.New("failed to scan")
	ErrFailedToQuery  = errors.New("failed to query")
	ErrFailedToInsert = errors.New("failed to insert")
	ErrLogEntryNil    = errors.New("log entry is nil")

	ErrCNPGTLSDisabled    = errors.New("cnpg tls: sslmode=disable cannot be combined with tls")
	ErrCNPGTLSIncomplete  = errors.New("cnpg tls: cert_file, key_file, and ca_file are required")
	ErrCNPGInvalidSSLMode = errors.New("cnpg: unsupported sslmode")
)

// Postgres SQLSTATEs that indicate a retryable lock race.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// isLockConflict reports whether err is a retryable concurrency failure.
func isLockConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return true
	default:
		return false
	}
}
