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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/semphony/pkg/logger"
)

const (
	// CommandSubjectPrefix prefixes the channel name in command subjects.
	CommandSubjectPrefix = "semphony.channels."

	commandSubjects = CommandSubjectPrefix + ">"

	defaultMaxPullMessages = 10
	defaultPullExpiry      = time.Second
	defaultMaxDeliver      = 3
	defaultAckWait         = 30 * time.Second
)

var errEmptyChannel = errors.New("channel is required")

// ChannelPublisher delivers an event to the local subscribers of a channel.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel, event string, data interface{}) error
}

type commandEnvelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// CommandPublisher sends channel events through a JetStream stream so every
// websocket gateway can deliver them to its own connections.
type CommandPublisher struct {
	js     jetstream.JetStream
	stream string
}

func NewCommandPublisher(ctx context.Context, js jetstream.JetStream, stream string) (*CommandPublisher, error) {
	if err := ensureStream(ctx, js, stream, nil, commandSubjects); err != nil {
		return nil, err
	}

	return &CommandPublisher{js: js, stream: stream}, nil
}

// Publish returns once the stream has acknowledged the message.
func (p *CommandPublisher) Publish(ctx context.Context, channel, event string, data interface{}) error {
	if channel == "" {
		return errEmptyChannel
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", event, err)
	}

	body, err := json.Marshal(commandEnvelope{Channel: channel, Event: event, Data: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", event, err)
	}

	if _, err := p.js.Publish(ctx, CommandSubjectPrefix+channel, body); err != nil {
		return fmt.Errorf("failed to publish %s to stream %s: %w", event, p.stream, err)
	}

	return nil
}

// CommandRelay consumes the command stream on a gateway node and hands each
// message to the local hub. Each node uses its own durable consumer so every
// node sees every message.
type CommandRelay struct {
	js           jetstream.JetStream
	stream       string
	consumerName string
	target       ChannelPublisher
	logger       logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCommandRelay(
	js jetstream.JetStream, stream, consumerName string, target ChannelPublisher, log logger.Logger,
) *CommandRelay {
	return &CommandRelay{
		js:           js,
		stream:       stream,
		consumerName: consumerName,
		target:       target,
		logger:       log,
	}
}

func (r *CommandRelay) consumer(ctx context.Context) (jetstream.Consumer, error) {
	consumer, err := r.js.Consumer(ctx, r.stream, r.consumerName)
	if err == nil {
		return consumer, nil
	}

	consumer, err = r.js.CreateConsumer(ctx, r.stream, jetstream.ConsumerConfig{
		Durable:       r.consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       defaultAckWait,
		MaxDeliver:    defaultMaxDeliver,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		FilterSubject: commandSubjects,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer %s: %w", r.consumerName, err)
	}

	return consumer, nil
}

// Start creates the consumer and begins relaying in the background.
func (r *CommandRelay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return nil
	}

	if err := ensureStream(ctx, r.js, r.stream, nil, commandSubjects); err != nil {
		return err
	}

	consumer, err := r.consumer(ctx)
	if err != nil {
		return err
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go r.run(ctx, consumer, r.done)

	return nil
}

// Stop ends the relay loop and waits for it to exit.
func (r *CommandRelay) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

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

func (r *CommandRelay) run(ctx context.Context, consumer jetstream.Consumer, done chan struct{}) {
	defer close(done)

	r.logger.Info().
		Str("stream", r.stream).
		Str("consumer", r.consumerName).
		Msg("Starting command relay")

	for ctx.Err() == nil {
		msgs, err := consumer.Fetch(defaultMaxPullMessages, jetstream.FetchMaxWait(defaultPullExpiry))
		if err != nil {
			r.logger.Warn().Err(err).Msg("Failed to fetch command messages")

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}

			continue
		}

		for msg := range msgs.Messages() {
			r.handleMessage(ctx, msg)
		}

		if err := msgs.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) && ctx.Err() == nil {
			r.logger.Debug().Err(err).Msg("Command fetch ended with error")
		}
	}
}

func (r *CommandRelay) handleMessage(ctx context.Context, msg jetstream.Msg) {
	var env commandEnvelope
	if err := json.Unmarshal(msg.Data(), &env); err != nil || env.Channel == "" {
		r.logger.Warn().Str("subject", msg.Subject()).Msg("Dropping malformed command message")
		_ = msg.Term()

		return
	}

	if err := r.target.Publish(ctx, env.Channel, env.Event, env.Data); err != nil {
		r.logger.Warn().Err(err).Str("channel", env.Channel).Msg("Failed to relay command, will retry")
		_ = msg.Nak()

		return
	}

	_ = msg.Ack()
}
