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
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/carverauto/semphony/pkg/control"

	metricCommandsDispatched  = "semphony_commands_dispatched_total"
	metricInboundEvents       = "semphony_inbound_events_total"
	metricLivenessTransitions = "semphony_liveness_transitions_total"
	metricLockAttempts        = "semphony_lock_attempts_total"

	outcomeOK        = "ok"
	outcomeForbidden = "forbidden"
	outcomeError     = "error"
	outcomeDropped   = "dropped"
	outcomeConflict  = "conflict"
	outcomeDenied    = "denied"
)

//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
var (
	meterOnce         sync.Once
	dispatchCounter   metric.Int64Counter
	inboundCounter    metric.Int64Counter
	transitionCounter metric.Int64Counter
	lockCounter       metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	newCounter := func(name, description string) metric.Int64Counter {
		counter, err := meter.Int64Counter(name, metric.WithDescription(description))
		if err != nil {
			otel.Handle(err)
		}

		return counter
	}

	dispatchCounter = newCounter(metricCommandsDispatched, "Commands dispatched to clients by outcome")
	inboundCounter = newCounter(metricInboundEvents, "Inbound transport events by event name and outcome")
	transitionCounter = newCounter(metricLivenessTransitions, "Client liveness transitions by new state")
	lockCounter = newCounter(metricLockAttempts, "Control lock operations by outcome")
}

func recordDispatch(ctx context.Context, command, outcome string) {
	meterOnce.Do(initMeter)

	if dispatchCounter == nil {
		return
	}

	dispatchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func recordInbound(ctx context.Context, event, outcome string) {
	meterOnce.Do(initMeter)

	if inboundCounter == nil {
		return
	}

	inboundCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}

func recordTransition(ctx context.Context, alive bool) {
	meterOnce.Do(initMeter)

	if transitionCounter == nil {
		return
	}

	state := "offline"
	if alive {
		state = "online"
	}

	transitionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}

func recordLock(ctx context.Context, op, outcome string) {
	meterOnce.Do(initMeter)

	if lockCounter == nil {
		return
	}

	lockCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}
