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

// Package dbtest provides an in-memory db.Service for tests of the control core.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/semphony/pkg/db"
	"github.com/carverauto/semphony/pkg/models"
)

// Store keeps systems, clients, commands and logs in maps guarded by one mutex.
// WithSystemLock holds that mutex for the whole callback, which serializes
// lock transactions the way a row lock does.
type Store struct {
	mu        sync.Mutex
	systems   map[int64]models.System
	clients   map[int64]models.Client
	commands  map[int64]models.Command
	logs      []*models.LogEntry
	nextLogID int64

	// Now stamps appended entries that carry no CreatedAt.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		systems:  make(map[int64]models.System),
		clients:  make(map[int64]models.Client),
		commands: make(map[int64]models.Command),
		Now:      time.Now,
	}
}

func (s *Store) AddSystem(sys models.System) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.systems[sys.ID] = sys
}

func (s *Store) AddClient(c models.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.ID] = c
}

func (s *Store) AddCommand(cmd models.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands[cmd.ID] = cmd
}

// Logs returns every stored entry in insertion order.
func (s *Store) Logs() []*models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.LogEntry, len(s.logs))
	for i, e := range s.logs {
		cp := *e
		out[i] = &cp
	}

	return out
}

func cloneSystem(sys models.System) *models.System {
	if sys.ControlLockedByUserID != nil {
		v := *sys.ControlLockedByUserID
		sys.ControlLockedByUserID = &v
	}

	if sys.ControlLockedUntil != nil {
		v := *sys.ControlLockedUntil
		sys.ControlLockedUntil = &v
	}

	return &sys
}

func (s *Store) GetSystem(_ context.Context, systemID int64) (*models.System, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sys, ok := s.systems[systemID]
	if !ok {
		return nil, fmt.Errorf("system %d: %w", systemID, db.ErrNotFound)
	}

	return cloneSystem(sys), nil
}

func (s *Store) WithSystemLock(ctx context.Context, systemID int64, fn db.SystemMutator) (*models.System, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, ok := s.systems[systemID]
	if !ok {
		return nil, fmt.Errorf("system %d: %w", systemID, db.ErrNotFound)
	}

	sys := cloneSystem(stored)

	changed, err := fn(sys)
	if err != nil {
		return nil, err
	}

	if changed {
		s.systems[systemID] = *cloneSystem(*sys)
	}

	return sys, nil
}

func (s *Store) AppendLog(_ context.Context, entry *models.LogEntry) error {
	if entry == nil {
		return db.ErrLogEntryNil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLogID++
	entry.ID = s.nextLogID

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.Now()
	}

	cp := *entry
	s.logs = append(s.logs, &cp)

	return nil
}

func matches(e *models.LogEntry, f *models.LogFilter) bool {
	switch {
	case f.ClientID != 0 && e.ClientID != f.ClientID:
		return false
	case f.SystemID != 0 && e.SystemID != f.SystemID:
		return false
	case f.Direction != "" && e.Direction != f.Direction:
		return false
	case f.Event != "" && e.Event() != f.Event:
		return false
	case f.CorrelationID != "" && e.CorrelationID() != f.CorrelationID:
		return false
	case f.ExcludeHeartbeats && e.Summary == models.SummaryHeartbeat:
		return false
	default:
		return true
	}
}

// newestFirst orders entries by CreatedAt then ID, both descending.
func newestFirst(entries []*models.LogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}

		return entries[i].ID > entries[j].ID
	})
}

func (s *Store) QueryLogs(_ context.Context, filter *models.LogFilter) ([]*models.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.LogEntry

	for _, e := range s.logs {
		if matches(e, filter) {
			cp := *e
			out = append(out, &cp)
		}
	}

	newestFirst(out)

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (s *Store) LatestActivityAt(_ context.Context, clientID int64) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		latest time.Time
		found  bool
	)

	for _, e := range s.logs {
		if e.ClientID != clientID {
			continue
		}

		if t, _ := e.Payload["type"].(string); t == models.LivenessPayloadType {
			continue
		}

		if !found || e.CreatedAt.After(latest) {
			latest, found = e.CreatedAt, true
		}
	}

	return latest, found, nil
}

func (s *Store) PruneHeartbeats(_ context.Context, clientID int64, commandID *int64, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var heartbeats []*models.LogEntry

	for _, e := range s.logs {
		if e.ClientID != clientID || e.Direction != models.DirectionInbound || e.Summary != models.SummaryHeartbeat {
			continue
		}

		if commandID != nil && (e.CommandID == nil || *e.CommandID != *commandID) {
			continue
		}

		heartbeats = append(heartbeats, e)
	}

	newestFirst(heartbeats)

	if len(heartbeats) <= keep {
		return 0, nil
	}

	doomed := make(map[int64]struct{})
	for _, e := range heartbeats[max(keep, 0):] {
		doomed[e.ID] = struct{}{}
	}

	kept := s.logs[:0]

	for _, e := range s.logs {
		if _, ok := doomed[e.ID]; !ok {
			kept = append(kept, e)
		}
	}

	s.logs = kept

	return int64(len(doomed)), nil
}

func (s *Store) GetClient(_ context.Context, clientID int64) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %d: %w", clientID, db.ErrNotFound)
	}

	return &c, nil
}

func (s *Store) GetClientByAPIKey(_ context.Context, apiKey string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.APIKey == apiKey {
			cp := c
			return &cp, nil
		}
	}

	return nil, fmt.Errorf("client by api key: %w", db.ErrNotFound)
}

func (s *Store) ListActiveClients(_ context.Context) ([]*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Client

	for _, c := range s.clients {
		if c.IsActive {
			cp := c
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (s *Store) GetCommand(_ context.Context, commandID int64) (*models.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.commands[commandID]
	if !ok {
		return nil, fmt.Errorf("command %d: %w", commandID, db.ErrNotFound)
	}

	return &cmd, nil
}

func (s *Store) GetCommandByName(_ context.Context, name string) (*models.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *models.Command

	for _, cmd := range s.commands {
		if cmd.Name == name && (found == nil || cmd.ID < found.ID) {
			cp := cmd
			found = &cp
		}
	}

	if found == nil {
		return nil, fmt.Errorf("command %q: %w", name, db.ErrNotFound)
	}

	return found, nil
}

var _ db.Service = (*Store)(nil)
