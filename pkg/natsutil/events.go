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

package natsutil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

const (
	eventSource     = "semphony/control"
	livenessType    = "com.semphony.client.liveness"
	subjectOnline   = "events.client.online"
	subjectOffline  = "events.client.offline"
	stateOnline     = "online"
	stateOffline    = "offline"
	cloudEventsSpec = "1.0"
)

// EventPublisher publishes client liveness transitions as CloudEvents to a
// JetStream stream.
type EventPublisher struct {
	js     jetstream.JetStream
	stream string
	logger logger.Logger
	now    func() time.Time
}

// NewEventPublisher ensures the configured stream exists and covers the
// liveness subjects.
func NewEventPublisher(
	ctx context.Context, js jetstream.JetStream, cfg *models.EventsConfig, log logger.Logger,
) (*EventPublisher, error) {
	for _, subject := range []string{subjectOnline, subjectOffline} {
		if err := ensureStream(ctx, js, cfg.StreamName, cfg.Subjects, subject); err != nil {
			return nil, err
		}
	}

	return &EventPublisher{
		js:     js,
		stream: cfg.StreamName,
		logger: log,
		now:    time.Now,
	}, nil
}

// NotifyTransition publishes one liveness event for client.
func (p *EventPublisher) NotifyTransition(ctx context.Context, client *models.Client, alive bool, lastSeen time.Time) error {
	previous, current, subject := stateOnline, stateOffline, subjectOffline
	if alive {
		previous, current, subject = stateOffline, stateOnline, subjectOnline
	}

	now := p.now()

	event := models.CloudEvent{
		SpecVersion:     cloudEventsSpec,
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            livenessType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &now,
		Data: models.ClientLivenessEventData{
			ClientID:      client.ID,
			SystemID:      client.SystemID,
			ClientName:    client.Name,
			PreviousState: previous,
			CurrentState:  current,
			IsAlive:       alive,
			Timestamp:     now,
			LastSeen:      lastSeen,
		},
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal liveness event: %w", err)
	}

	ack, err := p.js.Publish(ctx, subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish liveness event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", subject).
		Uint64("seq", ack.Sequence).
		Msg("Published liveness event")

	return nil
}
