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

//go:generate mockgen -destination=mock_kv.go -package=kv github.com/carverauto/semphony/pkg/kv KVStore

// Package kv provides the TTL key-value store behind the control caches.
package kv

import (
	"context"
	"time"
)

// KVStore is a key-value store with per-entry expiry.
type KVStore interface {
	// Get retrieves the value stored under key. found is false when the key is
	// absent or its TTL has elapsed.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key. A zero ttl keeps the entry until it is
	// deleted or the backend evicts it.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
