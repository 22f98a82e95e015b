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
	"strconv"
	"time"

	"github.com/carverauto/semphony/pkg/kv"
)

const (
	socketClientKeyPrefix = "reverb:socket-client:"
	livenessKeyPrefix     = "clients:liveness:"
	heartbeatCommandKey   = "commands:heartbeat:id"

	DefaultCacheTTL            = 24 * time.Hour
	DefaultHeartbeatCommandTTL = time.Hour
)

// SocketClientCache remembers which client a transport connection belongs to.
// Entries are last-writer-wins.
type SocketClientCache struct {
	store kv.KVStore
	ttl   time.Duration
}

func NewSocketClientCache(store kv.KVStore, ttl time.Duration) *SocketClientCache {
	return &SocketClientCache{store: store, ttl: ttl}
}

func (c *SocketClientCache) Put(ctx context.Context, connID string, clientID int64) error {
	return c.store.Put(ctx, socketClientKeyPrefix+connID, []byte(strconv.FormatInt(clientID, 10)), c.ttl)
}

func (c *SocketClientCache) Get(ctx context.Context, connID string) (int64, bool, error) {
	return getInt(ctx, c.store, socketClientKeyPrefix+connID)
}

// LivenessCache holds the last observed liveness per client.
type LivenessCache struct {
	store kv.KVStore
	ttl   time.Duration
}

func NewLivenessCache(store kv.KVStore, ttl time.Duration) *LivenessCache {
	return &LivenessCache{store: store, ttl: ttl}
}

func livenessKey(clientID int64) string {
	return livenessKeyPrefix + strconv.FormatInt(clientID, 10)
}

func (c *LivenessCache) Put(ctx context.Context, clientID int64, alive bool) error {
	return c.store.Put(ctx, livenessKey(clientID), []byte(strconv.FormatBool(alive)), c.ttl)
}

// Get returns the cached state; ok is false when nothing usable is cached.
func (c *LivenessCache) Get(ctx context.Context, clientID int64) (alive, ok bool, err error) {
	raw, found, err := c.store.Get(ctx, livenessKey(clientID))
	if err != nil || !found {
		return false, false, err
	}

	alive, perr := strconv.ParseBool(string(raw))
	if perr != nil {
		return false, false, nil
	}

	return alive, true, nil
}

// HeartbeatCommandCache memoizes the id of the heartbeat command.
type HeartbeatCommandCache struct {
	store kv.KVStore
	ttl   time.Duration
}

func NewHeartbeatCommandCache(store kv.KVStore, ttl time.Duration) *HeartbeatCommandCache {
	return &HeartbeatCommandCache{store: store, ttl: ttl}
}

func (c *HeartbeatCommandCache) Put(ctx context.Context, commandID int64) error {
	return c.store.Put(ctx, heartbeatCommandKey, []byte(strconv.FormatInt(commandID, 10)), c.ttl)
}

func (c *HeartbeatCommandCache) Get(ctx context.Context) (int64, bool, error) {
	return getInt(ctx, c.store, heartbeatCommandKey)
}

func getInt(ctx context.Context, store kv.KVStore, key string) (int64, bool, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return 0, false, err
	}

	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false, nil
	}

	return v, true, nil
}
