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

package kv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const expiryHeaderLen = 8

// NatsStore keeps entries in a JetStream KV bucket. Per-entry expiry is
// carried in an 8-byte header because bucket TTL applies to every key alike;
// the bucket TTL is only a backstop that bounds growth.
type NatsStore struct {
	kv  jetstream.KeyValue
	now func() time.Time
}

// NewNatsStore opens or creates bucket on js. maxTTL becomes the bucket TTL.
func NewNatsStore(ctx context.Context, js jetstream.JetStream, bucket string, maxTTL time.Duration) (*NatsStore, error) {
	if js == nil {
		return nil, errConnRequired
	}

	if bucket == "" {
		return nil, errBucketRequired
	}

	config := jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	}

	if maxTTL > 0 {
		config.TTL = maxTTL
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create KV bucket: %w", err)
	}

	return &NatsStore{kv: kv, now: time.Now}, nil
}

// natsKey maps cache keys onto the NATS KV key alphabet, which has no ':'.
func natsKey(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

func (n *NatsStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := n.kv.Get(ctx, natsKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	raw := entry.Value()
	if len(raw) < expiryHeaderLen {
		return nil, false, fmt.Errorf("%w: %s", errCorruptEntry, key)
	}

	if expires := int64(binary.BigEndian.Uint64(raw[:expiryHeaderLen])); expires != 0 && n.now().UnixNano() >= expires {
		return nil, false, nil
	}

	return raw[expiryHeaderLen:], true, nil
}

func (n *NatsStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	raw := make([]byte, expiryHeaderLen+len(value))

	if ttl > 0 {
		binary.BigEndian.PutUint64(raw[:expiryHeaderLen], uint64(n.now().Add(ttl).UnixNano()))
	}

	copy(raw[expiryHeaderLen:], value)

	if _, err := n.kv.Put(ctx, natsKey(key), raw); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

func (n *NatsStore) Delete(ctx context.Context, key string) error {
	err := n.kv.Delete(ctx, natsKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (*NatsStore) Close() error {
	return nil
}

var _ KVStore = (*NatsStore)(nil)
