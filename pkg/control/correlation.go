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
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/carverauto/semphony/pkg/db"
	"github.com/carverauto/semphony/pkg/models"
)

// CorrelationItem is one row of a system's activity feed: either a
// command/result pair sharing a correlation id, or a standalone entry.
type CorrelationItem struct {
	CorrelationID string           `json:"correlation_id,omitempty"`
	ClientID      int64            `json:"client_id"`
	Sent          *models.LogEntry `json:"sent,omitempty"`
	Received      *models.LogEntry `json:"received,omitempty"`
	Entry         *models.LogEntry `json:"entry,omitempty"`
	LatestAt      time.Time        `json:"latest_at"`

	latestID int64
}

// Pending reports whether a sent command has no result yet.
func (i *CorrelationItem) Pending() bool {
	return i.Sent != nil && i.Received == nil
}

func (i *CorrelationItem) observe(e *models.LogEntry) {
	if e.CreatedAt.After(i.LatestAt) || (e.CreatedAt.Equal(i.LatestAt) && e.ID > i.latestID) {
		i.LatestAt, i.latestID = e.CreatedAt, e.ID
	}
}

func standalone(e *models.LogEntry) *CorrelationItem {
	return &CorrelationItem{
		ClientID: e.ClientID,
		Entry:    e,
		LatestAt: e.CreatedAt,
		latestID: e.ID,
	}
}

// BuildCorrelation pairs outbound server-command entries with inbound
// client-command-result entries of the same client and correlation id. An
// entry that fills neither slot, or finds its slot taken by a newer entry, is
// listed on its own. Items are ordered newest first.
func BuildCorrelation(entries []*models.LogEntry) []*CorrelationItem {
	ordered := make([]*models.LogEntry, len(entries))
	copy(ordered, entries)

	// Newest first so each slot keeps the most recent candidate.
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}

		return ordered[i].ID > ordered[j].ID
	})

	groups := make(map[string]*CorrelationItem)

	var items []*CorrelationItem

	for _, e := range ordered {
		corr := e.CorrelationID()
		if corr == "" {
			items = append(items, standalone(e))
			continue
		}

		key := strconv.FormatInt(e.ClientID, 10) + "|" + corr

		group, ok := groups[key]
		if !ok {
			group = &CorrelationItem{CorrelationID: corr, ClientID: e.ClientID}
		}

		switch {
		case group.Sent == nil && e.Direction == models.DirectionOutbound && e.Event() == models.EventServerCommand:
			group.Sent = e
		case group.Received == nil && e.Direction == models.DirectionInbound &&
			e.Event() == models.EventClientCommandResult:
			group.Received = e
		default:
			items = append(items, standalone(e))
			continue
		}

		group.observe(e)

		if !ok {
			groups[key] = group
			items = append(items, group)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].LatestAt.Equal(items[j].LatestAt) {
			return items[i].LatestAt.After(items[j].LatestAt)
		}

		return items[i].latestID > items[j].latestID
	})

	return items
}

// CorrelationView reads the log store and pairs commands with their results.
// It never writes.
type CorrelationView struct {
	logs db.LogStore
}

func NewCorrelationView(logs db.LogStore) *CorrelationView {
	return &CorrelationView{logs: logs}
}

// Items returns the correlated feed for the entries matching filter.
func (v *CorrelationView) Items(ctx context.Context, filter *models.LogFilter) ([]*CorrelationItem, error) {
	entries, err := v.logs.QueryLogs(ctx, filter)
	if err != nil {
		return nil, err
	}

	return BuildCorrelation(entries), nil
}

// FindResult returns the latest inbound result carrying correlationID for
// clientID. db.ErrNotFound means the result has not arrived yet.
func (v *CorrelationView) FindResult(ctx context.Context, clientID int64, correlationID string) (*models.LogEntry, error) {
	entries, err := v.logs.QueryLogs(ctx, &models.LogFilter{
		ClientID:      clientID,
		Direction:     models.DirectionInbound,
		Event:         models.EventClientCommandResult,
		CorrelationID: correlationID,
		Limit:         1,
	})
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("result %s: %w", correlationID, db.ErrNotFound)
	}

	return entries[0], nil
}
