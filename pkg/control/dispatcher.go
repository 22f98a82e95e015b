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
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/semphony/pkg/db"
	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

const (
	tracerName = "github.com/carverauto/semphony/pkg/control"

	commandTypeKey = "command_type"
	buttonNameKey  = "button_name"
)

// Dispatcher turns a request to run a command on a client into a
// server-command message on the client's presence channel, and records what
// was sent.
type Dispatcher struct {
	logs      db.LogStore
	publisher Publisher
	locks     *LockManager
	logger    logger.Logger
	tracer    trace.Tracer
	newID     func() string
}

func NewDispatcher(logs db.LogStore, publisher Publisher, locks *LockManager, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		logs:      logs,
		publisher: publisher,
		locks:     locks,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
		newID:     func() string { return uuid.New().String() },
	}
}

// DispatchAs dispatches on behalf of an operator, who must hold the control
// lock of the client's system.
func (d *Dispatcher) DispatchAs(
	ctx context.Context, userID int64, client *models.Client, command *models.Command, extra map[string]interface{},
) (string, error) {
	held, err := d.locks.IsHeld(ctx, client.SystemID, userID)
	if err != nil {
		return "", err
	}

	if !held {
		recordDispatch(ctx, command.Name, outcomeForbidden)

		return "", fmt.Errorf("%w: %w", ErrForbidden, errLockNotHeld)
	}

	return d.Dispatch(ctx, client, command, extra)
}

// Dispatch publishes command to client and returns its correlation id. The
// outbound log entry is written only after the transport accepted the
// message; a rejected or undelivered command leaves no entry.
func (d *Dispatcher) Dispatch(
	ctx context.Context, client *models.Client, command *models.Command, extra map[string]interface{},
) (string, error) {
	ctx, span := d.tracer.Start(ctx, "Dispatch", trace.WithAttributes(
		attribute.Int64("client.id", client.ID),
		attribute.String("command.name", command.Name),
	))
	defer span.End()

	if err := checkAllowed(client, command); err != nil {
		recordDispatch(ctx, command.Name, outcomeForbidden)
		span.SetStatus(codes.Error, err.Error())

		return "", err
	}

	correlationID := d.newID()
	span.SetAttributes(attribute.String("correlation.id", correlationID))

	name, payload := buildMessage(command, extra)
	channel := client.Channel()

	data := map[string]interface{}{
		"client_id":      client.ID,
		"correlation_id": correlationID,
		"command_id":     command.ID,
		"command_name":   name,
		"payload":        payload,
	}

	if err := d.publisher.Publish(ctx, channel, models.EventServerCommand, data); err != nil {
		recordDispatch(ctx, command.Name, outcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")

		return "", fmt.Errorf("publish %s to %s: %w", command.Name, channel, err)
	}

	commandID := command.ID
	entry := &models.LogEntry{
		ClientID:  client.ID,
		SystemID:  client.SystemID,
		Direction: models.DirectionOutbound,
		Severity:  models.SeverityInfo,
		CommandID: &commandID,
		Summary:   "Executed " + command.Name,
		Payload: map[string]interface{}{
			"event":   models.EventServerCommand,
			"channel": channel,
			"data":    data,
		},
	}

	if err := d.logs.AppendLog(ctx, entry); err != nil {
		// The message is already on the wire.
		d.logger.Error().
			Err(err).
			Int64("client_id", client.ID).
			Str("correlation_id", correlationID).
			Str("command", command.Name).
			Msg("Command published but outbound log append failed")

		recordDispatch(ctx, command.Name, outcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "log append failed")

		return "", fmt.Errorf("record dispatch of %s: %w", command.Name, err)
	}

	recordDispatch(ctx, command.Name, outcomeOK)

	d.logger.Debug().
		Int64("client_id", client.ID).
		Str("correlation_id", correlationID).
		Str("command", command.Name).
		Str("message", name).
		Msg("Dispatched command")

	return correlationID, nil
}

func checkAllowed(client *models.Client, command *models.Command) error {
	if !client.IsActive {
		return fmt.Errorf("%w: %w", ErrForbidden, errClientDisabled)
	}

	if command.IsScreenshot() && client.CanScreenshot {
		return nil
	}

	if !client.Allows(command.ID) {
		return fmt.Errorf("%w: %w: %s", ErrForbidden, errCommandNotAllowed, command.Name)
	}

	return nil
}

// buildMessage returns the wire message name and payload for command. The
// caller's extra map is never modified.
func buildMessage(command *models.Command, extra map[string]interface{}) (string, map[string]interface{}) {
	payload := make(map[string]interface{}, len(extra)+1)
	for k, v := range extra {
		payload[k] = v
	}

	if command.IsScreenshot() || command.ActionType != models.ActionButtonPress {
		return command.Name, payload
	}

	selector := models.DefaultCommandType

	if hint, ok := payload[commandTypeKey].(string); ok {
		if parsed, err := models.ParseCommandType(hint); err == nil {
			selector = parsed
		}
	}

	delete(payload, commandTypeKey)
	payload[buttonNameKey] = command.Name

	return string(selector), payload
}
