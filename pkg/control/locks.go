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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/semphony/pkg/db"
	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

const (
	DefaultLockTTL      = 24 * time.Hour
	DefaultLockAttempts = 5

	lockRetryBackoff = 25 * time.Millisecond
)

// LockStatus describes who currently drives a system.
type LockStatus struct {
	SystemID     int64      `json:"system_id"`
	Claimed      bool       `json:"claimed"`
	HolderUserID *int64     `json:"holder_user_id,omitempty"`
	LockedUntil  *time.Time `json:"locked_until,omitempty"`
}

// LockManager arbitrates exclusive control of a system between operators.
// Expiry is evaluated lazily; there is no background sweep.
type LockManager struct {
	store    db.LockStore
	logger   logger.Logger
	ttl      time.Duration
	attempts int
	now      func() time.Time
}

func NewLockManager(store db.LockStore, log logger.Logger, ttl time.Duration, attempts int) *LockManager {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}

	if attempts <= 0 {
		attempts = DefaultLockAttempts
	}

	return &LockManager{
		store:    store,
		logger:   log,
		ttl:      ttl,
		attempts: attempts,
		now:      time.Now,
	}
}

// AcquireOrRefresh claims systemID for userID, or extends the expiry when
// userID already holds it. It returns false without mutating anything when a
// different user holds an unexpired lock.
func (m *LockManager) AcquireOrRefresh(ctx context.Context, systemID, userID int64) (bool, error) {
	var acquired bool

	err := m.withRetry(ctx, systemID, func(sys *models.System) (bool, error) {
		now := m.now()
		acquired = false

		if sys.IsClaimed(now) && *sys.ControlLockedByUserID != userID {
			return false, nil
		}

		holder := userID
		until := now.Add(m.ttl)
		sys.ControlLockedByUserID = &holder
		sys.ControlLockedUntil = &until
		acquired = true

		return true, nil
	})
	if err != nil {
		recordLock(ctx, "acquire", outcomeError)

		return false, err
	}

	if acquired {
		recordLock(ctx, "acquire", outcomeOK)
	} else {
		recordLock(ctx, "acquire", outcomeDenied)
	}

	return acquired, nil
}

// Release clears the lock when userID is the recorded holder. An expired lock
// still recorded for userID is released too.
func (m *LockManager) Release(ctx context.Context, systemID, userID int64) (bool, error) {
	var released bool

	err := m.withRetry(ctx, systemID, func(sys *models.System) (bool, error) {
		released = false

		if sys.ControlLockedByUserID == nil || *sys.ControlLockedByUserID != userID {
			return false, nil
		}

		sys.ControlLockedByUserID = nil
		sys.ControlLockedUntil = nil
		released = true

		return true, nil
	})
	if err != nil {
		recordLock(ctx, "release", outcomeError)

		return false, err
	}

	if released {
		recordLock(ctx, "release", outcomeOK)
	} else {
		recordLock(ctx, "release", outcomeDenied)
	}

	return released, nil
}

// Status reports the current holder, treating an expired lock as free.
func (m *LockManager) Status(ctx context.Context, systemID int64) (*LockStatus, error) {
	sys, err := m.store.GetSystem(ctx, systemID)
	if err != nil {
		return nil, err
	}

	status := &LockStatus{SystemID: systemID}

	if sys.IsClaimed(m.now()) {
		status.Claimed = true
		status.HolderUserID = sys.ControlLockedByUserID
		status.LockedUntil = sys.ControlLockedUntil
	}

	return status, nil
}

// IsHeld reports whether userID holds an unexpired lock on systemID.
func (m *LockManager) IsHeld(ctx context.Context, systemID, userID int64) (bool, error) {
	sys, err := m.store.GetSystem(ctx, systemID)
	if err != nil {
		return false, err
	}

	return sys.IsHeldBy(userID, m.now()), nil
}

// withRetry runs fn under the row lock, retrying lost races a bounded number
// of times. Exhaustion surfaces as ErrStoreUnavailable.
func (m *LockManager) withRetry(ctx context.Context, systemID int64, fn db.SystemMutator) error {
	var lastErr error

	for attempt := 1; attempt <= m.attempts; attempt++ {
		_, err := m.store.WithSystemLock(ctx, systemID, fn)
		if err == nil {
			return nil
		}

		if !errors.Is(err, db.ErrLockConflict) {
			return err
		}

		lastErr = err
		recordLock(ctx, "attempt", outcomeConflict)

		m.logger.Debug().
			Err(err).
			Int64("system_id", systemID).
			Int("attempt", attempt).
			Msg("Control lock transaction conflicted, retrying")

		if attempt == m.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * lockRetryBackoff):
		}
	}

	m.logger.Error().
		Err(lastErr).
		Int64("system_id", systemID).
		Int("attempts", m.attempts).
		Msg("Control lock retries exhausted")

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, lastErr)
}
