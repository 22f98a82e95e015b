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

//go:generate mockgen -destination=mock_db.go -package=db github.com/carverauto/semphony/pkg/db Service,LockStore,LogStore,ClientStore,CommandStore

package db

import (
	"context"
	"time"

	"github.com/carverauto/semphony/pkg/models"
)

// SystemMutator inspects a system row held under lock and reports whether it
// changed sys in place.
type SystemMutator func(sys *models.System) (changed bool, err error)

// LockStore provides row-locked read-modify-write of a system's control lock.
type LockStore interface {
	// WithSystemLock loads the system with a row lock, runs fn, persists the
	// lock fields when fn reports a change and commits. Lost races surface as
	// ErrLockConflict.
	WithSystemLock(ctx context.Context, systemID int64, fn SystemMutator) (*models.System, error)
	GetSystem(ctx context.Context, systemID int64) (*models.System, error)
}

// LogStore is the append-only client log.
type LogStore interface {
	// AppendLog inserts entry and fills its ID and CreatedAt. A zero CreatedAt
	// defaults to the database clock.
	AppendLog(ctx context.Context, entry *models.LogEntry) error
	// QueryLogs returns matching entries newest first.
	QueryLogs(ctx context.Context, filter *models.LogFilter) ([]*models.LogEntry, error)
	// LatestActivityAt returns the time of the client's most recent entry,
	// ignoring liveness transition entries.
	LatestActivityAt(ctx context.Context, clientID int64) (time.Time, bool, error)
	// PruneHeartbeats deletes all but the keep most recent inbound heartbeat
	// entries of clientID, restricted to commandID when it is set.
	PruneHeartbeats(ctx context.Context, clientID int64, commandID *int64, keep int) (int64, error)
}

// ClientStore reads client records.
type ClientStore interface {
	GetClient(ctx context.Context, clientID int64) (*models.Client, error)
	GetClientByAPIKey(ctx context.Context, apiKey string) (*models.Client, error)
	ListActiveClients(ctx context.Context) ([]*models.Client, error)
}

// CommandStore reads command records.
type CommandStore interface {
	GetCommand(ctx context.Context, commandID int64) (*models.Command, error)
	// GetCommandByName returns the lowest-id command named name.
	GetCommandByName(ctx context.Context, name string) (*models.Command, error)
}

// Service is the full store surface backing the control core.
type Service interface {
	LockStore
	LogStore
	ClientStore
	CommandStore
}
