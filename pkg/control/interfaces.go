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

//go:generate mockgen -destination=mock_control.go -package=control github.com/carverauto/semphony/pkg/control Publisher,TransitionNotifier

package control

import (
	"context"
	"time"

	"github.com/carverauto/semphony/pkg/models"
)

// Publisher delivers an event to every subscriber of a channel. It returns
// once the transport has accepted the message.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, data interface{}) error
}

// TransitionNotifier is told about each client liveness change after it has
// been logged.
type TransitionNotifier interface {
	NotifyTransition(ctx context.Context, client *models.Client, alive bool, lastSeen time.Time) error
}
