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

// Package pusher serves presence-channel websockets speaking the Pusher
// protocol, as used by the device clients.
package pusher

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/carverauto/semphony/pkg/logger"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 256

	defaultMaxMessageSize  = 10_000
	defaultActivityTimeout = 30 * time.Second

	socketIDPartMax = 1_000_000_000
)

// MessageHandler observes every frame received from a connection, including
// protocol frames, before the hub acts on it.
type MessageHandler interface {
	Handle(ctx context.Context, raw []byte, socketID string)
}

// Config configures a Hub.
type Config struct {
	AppKey          string
	AppSecret       string
	MaxMessageSize  int64
	ActivityTimeout time.Duration
	// AllowedOrigins lists accepted Origin headers; empty or "*" accepts any.
	AllowedOrigins []string
}

// Hub accepts websocket connections, tracks channel subscriptions and fans
// published events out to subscribers.
type Hub struct {
	cfg      Config
	handler  MessageHandler
	logger   logger.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	conns    map[string]*conn
	channels map[string]map[*conn]struct{}
	closed   bool
}

// NewHub builds a hub. handler may be nil.
func NewHub(cfg Config, handler MessageHandler, log logger.Logger) *Hub {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.ActivityTimeout <= 0 {
		cfg.ActivityTimeout = defaultActivityTimeout
	}

	h := &Hub{
		cfg:      cfg,
		handler:  handler,
		logger:   log,
		conns:    make(map[string]*conn),
		channels: make(map[string]map[*conn]struct{}),
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// Register mounts the websocket endpoint on r. path must contain a {key}
// variable.
func (h *Hub) Register(r *mux.Router, path string) {
	r.Handle(path, h).Methods(http.MethodGet)
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")

	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

func newSocketID() (string, error) {
	limit := big.NewInt(socketIDPartMax)

	a, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}

	b, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d.%d", a.Int64(), b.Int64()), nil
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade to WebSocket")
		return
	}

	if key := mux.Vars(r)["key"]; key != h.cfg.AppKey {
		h.rejectConnection(ws, CodeApplicationNotFound, "Application does not exist")
		return
	}

	socketID, err := newSocketID()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to generate socket id")
		_ = ws.Close()

		return
	}

	c := &conn{
		hub:           h,
		ws:            ws,
		socketID:      socketID,
		send:          make(chan []byte, sendQueueSize),
		subscriptions: make(map[string]*Member),
	}

	if !h.add(c) {
		h.rejectConnection(ws, CodeInvalidMessage, "Server is shutting down")
		return
	}

	h.logger.Debug().Str("socket_id", socketID).Str("remote_addr", r.RemoteAddr).Msg("Connection established")

	go c.writePump()

	c.sendFrame(EventConnectionEstablished, "", connectionEstablished{
		SocketID:        socketID,
		ActivityTimeout: int(h.cfg.ActivityTimeout / time.Second),
	})

	c.readPump(r.Context())

	h.remove(c)
}

func (h *Hub) rejectConnection(ws *websocket.Conn, code int, message string) {
	if msg, err := encodeFrame(EventError, "", errorData{Code: code, Message: message}); err == nil {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = ws.WriteMessage(websocket.TextMessage, msg)
	}

	_ = ws.Close()
}

func (h *Hub) add(c *conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.conns[c.socketID] = c

	return true
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()

	delete(h.conns, c.socketID)

	departed := make(map[string]*Member, len(c.subscriptions))

	for channel, m := range c.subscriptions {
		h.unsubscribeLocked(c, channel)
		departed[channel] = m
	}

	h.mu.Unlock()

	c.close()

	for channel, m := range departed {
		h.announceDeparture(channel, m)
	}

	h.logger.Debug().Str("socket_id", c.socketID).Msg("Connection closed")
}

// unsubscribeLocked removes c from channel. h.mu must be held for writing.
func (h *Hub) unsubscribeLocked(c *conn, channel string) {
	delete(c.subscriptions, channel)

	subs := h.channels[channel]
	delete(subs, c)

	if len(subs) == 0 {
		delete(h.channels, channel)
	}
}

func (h *Hub) handleFrame(ctx context.Context, c *conn, raw []byte) {
	if h.handler != nil {
		h.handler.Handle(ctx, raw, c.socketID)
	}

	f, err := decodeFrame(raw)
	if err != nil {
		c.sendError(CodeInvalidMessage, "Invalid message format")
		return
	}

	switch {
	case f.Event == EventPing:
		c.sendFrame(EventPong, "", struct{}{})
	case f.Event == EventPong:
	case f.Event == EventSubscribe:
		h.subscribe(c, f)
	case f.Event == EventUnsubscribe:
		h.unsubscribe(c, f)
	case isClientEvent(f.Event):
		h.relay(c, f)
	}
}

func (h *Hub) subscribe(c *conn, f *Frame) {
	var req subscribeData
	if err := f.DecodeData(&req); err != nil || req.Channel == "" {
		c.sendError(CodeInvalidMessage, "Invalid subscription request")
		return
	}

	presence := isPresence(req.Channel)

	if requiresAuth(req.Channel) {
		signed := ""
		if presence {
			signed = req.ChannelData
		}

		if !VerifyAuth(h.cfg.AppKey, h.cfg.AppSecret, c.socketID, req.Channel, signed, req.Auth) {
			c.sendError(CodeUnauthorized, "Connection is unauthorized")
			return
		}
	}

	var member *Member

	if presence {
		member = &Member{}
		if err := json.Unmarshal([]byte(req.ChannelData), member); err != nil || member.UserID == "" {
			c.sendError(CodeUnauthorized, "Invalid presence channel data")
			return
		}
	}

	h.mu.Lock()

	_, already := c.subscriptions[req.Channel]

	subs := h.channels[req.Channel]
	if subs == nil {
		subs = make(map[*conn]struct{})
		h.channels[req.Channel] = subs
	}

	subs[c] = struct{}{}
	c.subscriptions[req.Channel] = member

	var roster *presenceData
	if presence {
		roster = presenceRoster(req.Channel, subs)
	}

	h.mu.Unlock()

	if presence {
		c.sendFrame(EventSubscriptionSucceeded, req.Channel, roster)
	} else {
		c.sendFrame(EventSubscriptionSucceeded, req.Channel, struct{}{})
	}

	if presence && !already {
		h.broadcastExcept(c, EventMemberAdded, req.Channel, member)
	}

	h.logger.Debug().Str("socket_id", c.socketID).Str("channel", req.Channel).Msg("Subscribed")
}

// presenceRoster snapshots the members of channel. h.mu must be held.
func presenceRoster(channel string, subs map[*conn]struct{}) *presenceData {
	roster := &presenceData{Presence: presenceSet{Hash: make(map[string]json.RawMessage)}}

	for sub := range subs {
		m := sub.subscriptions[channel]
		if m == nil {
			continue
		}

		if _, seen := roster.Presence.Hash[m.UserID]; !seen {
			roster.Presence.IDs = append(roster.Presence.IDs, m.UserID)
		}

		roster.Presence.Hash[m.UserID] = m.UserInfo
	}

	roster.Presence.Count = len(roster.Presence.IDs)

	return roster
}

func (h *Hub) unsubscribe(c *conn, f *Frame) {
	var req subscribeData
	if err := f.DecodeData(&req); err != nil || req.Channel == "" {
		c.sendError(CodeInvalidMessage, "Invalid unsubscribe request")
		return
	}

	h.mu.Lock()

	m, subscribed := c.subscriptions[req.Channel]
	if subscribed {
		h.unsubscribeLocked(c, req.Channel)
	}

	h.mu.Unlock()

	if subscribed {
		h.announceDeparture(req.Channel, m)
	}
}

func (h *Hub) announceDeparture(channel string, m *Member) {
	if m == nil {
		return
	}

	h.broadcastExcept(nil, EventMemberRemoved, channel, Member{UserID: m.UserID})
}

// relay forwards a client event to the other subscribers of its channel.
func (h *Hub) relay(c *conn, f *Frame) {
	h.mu.RLock()
	m, subscribed := c.subscriptions[f.Channel]
	h.mu.RUnlock()

	if !subscribed || !requiresAuth(f.Channel) {
		c.sendError(CodeNotSubscribed, "Client events require a private or presence subscription")
		return
	}

	out := Frame{Event: f.Event, Channel: f.Channel, Data: f.Data}
	if m != nil {
		out.UserID = m.UserID
	}

	msg, err := json.Marshal(out)
	if err != nil {
		return
	}

	h.sendExcept(c, f.Channel, msg)
}

func (h *Hub) broadcastExcept(except *conn, event, channel string, data interface{}) {
	msg, err := encodeFrame(event, channel, data)
	if err != nil {
		h.logger.Warn().Err(err).Str("event", event).Msg("Failed to encode frame")
		return
	}

	h.sendExcept(except, channel, msg)
}

// sendExcept queues msg for the subscribers of channel other than except and
// returns how many were targeted and how many accepted.
func (h *Hub) sendExcept(except *conn, channel string, msg []byte) (attempted, delivered int) {
	h.mu.RLock()

	targets := make([]*conn, 0, len(h.channels[channel]))
	for c := range h.channels[channel] {
		if c != except {
			targets = append(targets, c)
		}
	}

	h.mu.RUnlock()

	for _, c := range targets {
		if c.trySend(msg) {
			delivered++
		} else {
			h.logger.Warn().Str("socket_id", c.socketID).Str("channel", channel).Msg("Send queue full, dropping message")
		}
	}

	return len(targets), delivered
}

// Publish queues event on every subscriber of channel. It returns once the
// message is queued. A channel without subscribers accepts and drops it; a
// channel whose subscribers all refused it returns ErrSendQueueFull.
func (h *Hub) Publish(ctx context.Context, channel, event string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()

	if closed {
		return errHubClosed
	}

	msg, err := encodeFrame(event, channel, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	attempted, delivered := h.sendExcept(nil, channel, msg)
	if attempted > 0 && delivered == 0 {
		return fmt.Errorf("publish %s to %s: %w", event, channel, ErrSendQueueFull)
	}

	h.logger.Debug().
		Str("channel", channel).
		Str("event", event).
		Int("subscribers", delivered).
		Msg("Published event")

	return nil
}

// Close disconnects every connection and rejects further publishes.
func (h *Hub) Close() error {
	h.mu.Lock()

	if h.closed {
		h.mu.Unlock()
		return nil
	}

	h.closed = true

	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}

	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}

	return nil
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// SubscriberCount returns the number of connections subscribed to channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.channels[channel])
}

type conn struct {
	hub      *Hub
	ws       *websocket.Conn
	socketID string

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	// subscriptions maps channel to presence member, nil for other channels.
	// Guarded by hub.mu.
	subscriptions map[string]*Member
}

func (c *conn) trySend(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *conn) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *conn) sendFrame(event, channel string, data interface{}) {
	msg, err := encodeFrame(event, channel, data)
	if err != nil {
		c.hub.logger.Warn().Err(err).Str("event", event).Msg("Failed to encode frame")
		return
	}

	c.trySend(msg)
}

func (c *conn) sendError(code int, message string) {
	c.sendFrame(EventError, "", errorData{Code: code, Message: message})
}

func (c *conn) readPump(ctx context.Context) {
	timeout := c.hub.cfg.ActivityTimeout * 2

	c.ws.SetReadLimit(c.hub.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(timeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(timeout))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				c.hub.logger.Warn().Str("socket_id", c.socketID).Msg("Message exceeded maximum size")
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
				c.hub.logger.Debug().Err(err).Str("socket_id", c.socketID).Msg("Connection closed unexpectedly")
			}

			return
		}

		_ = c.ws.SetReadDeadline(time.Now().Add(timeout))

		c.hub.handleFrame(ctx, c, raw)
	}
}

// writePump owns all writes to the socket. It sends a pusher:ping after each
// activity interval so idle clients prove they are alive.
func (c *conn) writePump() {
	ticker := time.NewTicker(c.hub.cfg.ActivityTimeout)

	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	ping, _ := encodeFrame(EventPing, "", struct{}{})

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.ws.WriteMessage(websocket.TextMessage, ping); err != nil {
				return
			}
		}
	}
}
