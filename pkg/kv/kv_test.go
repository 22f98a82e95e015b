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
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, func() bool {
		return srv.JetStreamEnabled()
	}, 5*time.Second, 50*time.Millisecond, "embedded NATS server not ready for JetStream")

	t.Cleanup(srv.Shutdown)

	return srv
}

// exerciseStore runs the behavior every KVStore must share.
func exerciseStore(t *testing.T, store KVStore, clock *fakeClock) {
	t.Helper()

	ctx := context.Background()

	_, found, err := store.Get(ctx, "clients:liveness:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "clients:liveness:1", []byte("true"), time.Hour))
	require.NoError(t, store.Put(ctx, "commands:heartbeat:id", []byte("7"), 0))

	value, found, err := store.Get(ctx, "clients:liveness:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("true"), value)

	clock.advance(time.Hour)

	_, found, err = store.Get(ctx, "clients:liveness:1")
	require.NoError(t, err)
	assert.False(t, found, "entry must expire once its ttl has elapsed")

	value, found, err = store.Get(ctx, "commands:heartbeat:id")
	require.NoError(t, err)
	assert.True(t, found, "zero ttl entries do not expire")
	assert.Equal(t, []byte("7"), value)

	require.NoError(t, store.Delete(ctx, "commands:heartbeat:id"))
	require.NoError(t, store.Delete(ctx, "commands:heartbeat:id"))

	_, found, err = store.Get(ctx, "commands:heartbeat:id")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	store := NewMemoryStore()
	store.now = clock.now

	exerciseStore(t, store, clock)

	require.NoError(t, store.Close())

	_, _, err := store.Get(context.Background(), "x")
	require.ErrorIs(t, err, errStoreClosed)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	value := []byte("abc")

	require.NoError(t, store.Put(context.Background(), "k", value, 0))
	value[0] = 'z'

	got, _, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestNatsStore(t *testing.T) {
	srv := runJetStreamServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewNatsStore(ctx, js, "semphony-cache-test", 24*time.Hour)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Now()}
	store.now = clock.now

	exerciseStore(t, store, clock)
	require.NoError(t, store.Close())
}

func TestNewNatsStoreValidation(t *testing.T) {
	_, err := NewNatsStore(context.Background(), nil, "bucket", 0)
	require.ErrorIs(t, err, errConnRequired)
}

func TestNatsKey(t *testing.T) {
	assert.Equal(t, "reverb.socket-client.123.456", natsKey("reverb:socket-client:123.456"))
}
