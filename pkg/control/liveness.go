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
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

const (
	DefaultLivenessInterval = 10 * time.Second
	DefaultStaleWindow      = 20 * time.Second
)

var errSweepInProgress = errors.New("liveness sweep already in progress")

// LivenessStore is the store surface the liveness tracker needs.
type LivenessStore interface {
	ListActiveClients(ctx context.Context) ([]*models.Client, error)
	LatestActivityAt(ctx context.Context, clientID int64) (time.Time, bool, error)
	AppendLog(ctx context.Context, entry *models.LogEntry) error
}

// LivenessTracker periodically derives each enabled client's online state from
// the recency of its log activity and records one entry per state change.
type LivenessTracker struct {
	store       LivenessStore
	cache       *LivenessCache
	notifier    TransitionNotifier
	interval    time.Duration
	staleWindow time.Duration
	logger      logger.Logger
	now         func() time.Time

	sweeping atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLivenessTracker builds a tracker. notifier may be nil.
func NewLivenessTracker(
	store LivenessStore, cache *LivenessCache, notifier TransitionNotifier,
	interval, staleWindow time.Duration, log logger.Logger,
) *LivenessTracker {
	if interval <= 0 {
		interval = DefaultLivenessInterval
	}

	if staleWindow <= 0 {
		staleWindow = DefaultStaleWindow
	}

	return &LivenessTracker{
		store:       store,
		cache:       cache,
		notifier:    notifier,
		interval:    interval,
		staleWindow: staleWindow,
		logger:      log,
		now:         time.Now,
	}
}

// Start launches the sweep loop and returns immediately.
func (t *LivenessTracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		return nil
	}

	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})

	go t.run(ctx, t.done)

	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (t *LivenessTracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if done == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *LivenessTracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	t.logger.Info().
		Dur("interval", t.interval).
		Dur("stale_window", t.staleWindow).
		Msg("Starting liveness tracker")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("Liveness tracker stopping")
			return
		case <-ticker.C:
			if err := t.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				t.logger.Warn().Err(err).Msg("Liveness sweep failed")
			}
		}
	}
}

// Sweep evaluates every enabled client once. A call made while another sweep
// is running returns errSweepInProgress without doing anything.
func (t *LivenessTracker) Sweep(ctx context.Context) error {
	if !t.sweeping.CompareAndSwap(false, true) {
		return errSweepInProgress
	}
	defer t.sweeping.Store(false)

	clients, err := t.store.ListActiveClients(ctx)
	if err != nil {
		return err
	}

	now := t.now()

	for _, client := range clients {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := t.evaluate(ctx, client, now); err != nil {
			t.logger.Warn().Err(err).Int64("client_id", client.ID).Msg("Failed to evaluate client liveness")
		}
	}

	return nil
}

func (t *LivenessTracker) evaluate(ctx context.Context, client *models.Client, now time.Time) error {
	lastSeen, seen, err := t.store.LatestActivityAt(ctx, client.ID)
	if err != nil {
		return err
	}

	alive := seen && !lastSeen.Before(now.Add(-t.staleWindow))

	previous, known, err := t.cache.Get(ctx, client.ID)
	if err != nil {
		return err
	}

	if known && previous == alive {
		return nil
	}

	if err := t.cache.Put(ctx, client.ID, alive); err != nil {
		return err
	}

	// First observation only seeds the cache.
	if !known {
		return nil
	}

	return t.recordTransition(ctx, client, alive, lastSeen)
}

func (t *LivenessTracker) recordTransition(
	ctx context.Context, client *models.Client, alive bool, lastSeen time.Time,
) error {
	severity, summary := models.SeverityError, models.SummaryClientOffline
	if alive {
		severity, summary = models.SeverityInfo, models.SummaryClientOnline
	}

	err := t.store.AppendLog(ctx, &models.LogEntry{
		ClientID:  client.ID,
		SystemID:  client.SystemID,
		Direction: models.DirectionOutbound,
		Severity:  severity,
		Summary:   summary,
		Payload: map[string]interface{}{
			"type":     models.LivenessPayloadType,
			"is_alive": alive,
		},
	})
	if err != nil {
		return err
	}

	recordTransition(ctx, alive)

	t.logger.Info().
		Int64("client_id", client.ID).
		Bool("alive", alive).
		Time("last_seen", lastSeen).
		Msg(summary)

	if t.notifier == nil {
		return nil
	}

	if err := t.notifier.NotifyTransition(ctx, client, alive, lastSeen); err != nil {
		t.logger.Warn().Err(err).Int64("client_id", client.ID).Msg("Failed to publish liveness transition")
	}

	return nil
}
