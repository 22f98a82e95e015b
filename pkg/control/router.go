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
	"encoding/json"
	"errors"
	"strconv"

	"github.com/carverauto/semphony/pkg/db"
	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

const DefaultHeartbeatKeep = 10

// Fixed summaries for transport housekeeping frames.
var pusherSummaries = map[string]string{
	models.EventPusherSubscribe:   "Subscribed",
	models.EventPusherUnsubscribe: "Unsubscribed",
	models.EventPusherPing:        "Ping",
	models.EventPusherPong:        "Pong",
}

// RouterStore is the store surface the router needs.
type RouterStore interface {
	db.LogStore
	db.ClientStore
	db.CommandStore
}

// Router classifies raw frames received from client connections, attributes
// them to a client and records heartbeats, command results and transport
// housekeeping. Frames it cannot parse or attribute are dropped without error.
type Router struct {
	store         RouterStore
	sockets       *SocketClientCache
	heartbeatCmd  *HeartbeatCommandCache
	heartbeatKeep int
	logger        logger.Logger
}

func NewRouter(
	store RouterStore, sockets *SocketClientCache, heartbeatCmd *HeartbeatCommandCache, keep int, log logger.Logger,
) *Router {
	if keep <= 0 {
		keep = DefaultHeartbeatKeep
	}

	return &Router{
		store:         store,
		sockets:       sockets,
		heartbeatCmd:  heartbeatCmd,
		heartbeatKeep: keep,
		logger:        log,
	}
}

// inboundFrame is a parsed transport frame with data decoded in place.
type inboundFrame struct {
	event   string
	channel interface{}
	data    map[string]interface{}
}

func parseFrame(raw []byte) (*inboundFrame, bool) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}

	event, _ := doc["event"].(string)
	if event == "" {
		return nil, false
	}

	data := doc["data"]

	if s, ok := data.(string); ok {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			data = decoded
		}
	}

	frame := &inboundFrame{event: event, channel: doc["channel"]}

	if m, ok := data.(map[string]interface{}); ok {
		frame.data = m
	} else {
		frame.data = map[string]interface{}{}
	}

	return frame, true
}

// channelName returns the channel a frame names. Subscribe and unsubscribe
// frames carry it inside data.
func (f *inboundFrame) channelName() string {
	if s, ok := f.channel.(string); ok {
		return s
	}

	if f.event == models.EventPusherSubscribe || f.event == models.EventPusherUnsubscribe {
		s, _ := f.data["channel"].(string)
		return s
	}

	return ""
}

// Handle processes one raw frame received on socketID.
func (r *Router) Handle(ctx context.Context, raw []byte, socketID string) {
	frame, ok := parseFrame(raw)
	if !ok {
		return
	}

	// Attribution runs first so any channel-bearing frame seeds the socket cache.
	client, ok := r.resolveClient(ctx, frame, socketID)
	if !ok {
		recordInbound(ctx, frame.event, outcomeDropped)
		return
	}

	_, known := pusherSummaries[frame.event]
	if !known && frame.event != models.EventClientHeartbeat && frame.event != models.EventClientCommandResult {
		recordInbound(ctx, frame.event, outcomeDropped)
		return
	}

	payload := r.sanitize(frame, socketID)

	var err error

	switch frame.event {
	case models.EventClientHeartbeat:
		err = r.storeHeartbeat(ctx, client, payload)
	case models.EventClientCommandResult:
		err = r.storeCommandResult(ctx, client, frame.data, payload)
	default:
		err = r.append(ctx, client, nil, models.SeverityInfo, pusherSummaries[frame.event], payload)
	}

	if err != nil {
		recordInbound(ctx, frame.event, outcomeError)
		r.logger.Warn().
			Err(err).
			Int64("client_id", client.ID).
			Str("event", frame.event).
			Str("socket_id", socketID).
			Msg("Failed to record inbound event")

		return
	}

	recordInbound(ctx, frame.event, outcomeOK)
}

func (r *Router) resolveClient(ctx context.Context, frame *inboundFrame, socketID string) (*models.Client, bool) {
	clientID, fromChannel := models.ClientIDFromChannel(frame.channelName())

	if fromChannel {
		if err := r.sockets.Put(ctx, socketID, clientID); err != nil {
			r.logger.Warn().Err(err).Str("socket_id", socketID).Msg("Failed to cache socket attribution")
		}
	} else {
		cached, found, err := r.sockets.Get(ctx, socketID)
		if err != nil {
			r.logger.Warn().Err(err).Str("socket_id", socketID).Msg("Failed to read socket attribution")
			return nil, false
		}

		if !found {
			return nil, false
		}

		clientID = cached
	}

	client, err := r.store.GetClient(ctx, clientID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			r.logger.Warn().Err(err).Int64("client_id", clientID).Msg("Failed to load client for inbound event")
		}

		return nil, false
	}

	if !client.IsActive {
		return nil, false
	}

	return client, true
}

// sanitize builds the stored envelope. data.auth is never persisted.
func (*Router) sanitize(frame *inboundFrame, socketID string) map[string]interface{} {
	data := make(map[string]interface{}, len(frame.data))
	for k, v := range frame.data {
		if k == "auth" {
			continue
		}

		data[k] = v
	}

	return map[string]interface{}{
		"event":     frame.event,
		"channel":   frame.channel,
		"socket_id": socketID,
		"data":      data,
	}
}

func (r *Router) append(
	ctx context.Context, client *models.Client, commandID *int64, severity models.LogSeverity, summary string,
	payload map[string]interface{},
) error {
	return r.store.AppendLog(ctx, &models.LogEntry{
		ClientID:  client.ID,
		SystemID:  client.SystemID,
		Direction: models.DirectionInbound,
		Severity:  severity,
		CommandID: commandID,
		Summary:   summary,
		Payload:   payload,
	})
}

func (r *Router) storeHeartbeat(ctx context.Context, client *models.Client, payload map[string]interface{}) error {
	commandID := r.heartbeatCommandID(ctx)

	if err := r.append(ctx, client, commandID, models.SeverityInfo, models.SummaryHeartbeat, payload); err != nil {
		return err
	}

	pruned, err := r.store.PruneHeartbeats(ctx, client.ID, commandID, r.heartbeatKeep)
	if err != nil {
		r.logger.Warn().Err(err).Int64("client_id", client.ID).Msg("Failed to prune heartbeats")
		return nil
	}

	if pruned > 0 {
		r.logger.Trace().Int64("client_id", client.ID).Int64("pruned", pruned).Msg("Pruned heartbeats")
	}

	return nil
}

// heartbeatCommandID returns the id of the heartbeat command, or nil when no
// such command exists.
func (r *Router) heartbeatCommandID(ctx context.Context) *int64 {
	if id, found, err := r.heartbeatCmd.Get(ctx); err == nil && found {
		return &id
	}

	cmd, err := r.store.GetCommandByName(ctx, models.HeartbeatCommandName)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			r.logger.Warn().Err(err).Msg("Failed to look up heartbeat command")
		}

		return nil
	}

	if err := r.heartbeatCmd.Put(ctx, cmd.ID); err != nil {
		r.logger.Debug().Err(err).Msg("Failed to cache heartbeat command id")
	}

	id := cmd.ID

	return &id
}

func (r *Router) storeCommandResult(
	ctx context.Context, client *models.Client, data, payload map[string]interface{},
) error {
	commandID := r.resolveResultCommand(ctx, data)

	severity := models.SeverityInfo
	if ok, present := data["ok"].(bool); present && !ok {
		severity = models.SeverityError
	}

	summary := "Command result"
	if corr, _ := data["correlation_id"].(string); corr != "" {
		summary = "Command result (" + corr + ")"
	}

	return r.append(ctx, client, commandID, severity, summary, payload)
}

// resolveResultCommand finds the command a result answers. Button selector
// results are attributed by payload.button_name, which is ambiguous when two
// commands share a button name.
func (r *Router) resolveResultCommand(ctx context.Context, data map[string]interface{}) *int64 {
	if id, ok := parseCommandID(data["command_id"]); ok {
		return &id
	}

	name, _ := data["command_name"].(string)
	if name == "" {
		return nil
	}

	if models.IsButtonSelector(name) {
		inner, _ := data["payload"].(map[string]interface{})
		name, _ = inner[buttonNameKey].(string)

		if name == "" {
			return nil
		}
	}

	cmd, err := r.store.GetCommandByName(ctx, name)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			r.logger.Warn().Err(err).Str("command", name).Msg("Failed to resolve command for result")
		}

		return nil
	}

	id := cmd.ID

	return &id
}

func parseCommandID(v interface{}) (int64, bool) {
	switch id := v.(type) {
	case float64:
		if id != float64(int64(id)) {
			return 0, false
		}

		return int64(id), true
	case string:
		if id == "" {
			return 0, false
		}

		for _, c := range id {
			if c < '0' || c > '9' {
				return 0, false
			}
		}

		n, err := strconv.ParseInt(id, 10, 64)

		return n, err == nil
	default:
		return 0, false
	}
}
