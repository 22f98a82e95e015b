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

package models

import (
	"regexp"
	"strconv"
	"time"
)

const (
	// ScreenshotCommandName is allowed for every client with CanScreenshot set,
	// regardless of its command allow-list.
	ScreenshotCommandName = "get_screenshot"
	HeartbeatCommandName  = "heartbeat"

	clientChannelPrefix = "presence-client."

	defaultMonitorCount = 3
	maxMonitorCount     = 10
)

var clientChannelPattern = regexp.MustCompile(`^presence-client\.(\d+)$`)

// System is a group of clients driven by one operator at a time.
type System struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"name"`
	ControlLockedByUserID *int64     `json:"control_locked_by_user_id,omitempty"`
	ControlLockedUntil    *time.Time `json:"control_locked_until,omitempty"`
}

// IsClaimed reports whether a non-expired control lock is held at now.
// Stale holder fields on an expired lock do not count.
func (s *System) IsClaimed(now time.Time) bool {
	return s.ControlLockedByUserID != nil &&
		s.ControlLockedUntil != nil &&
		s.ControlLockedUntil.After(now)
}

// IsHeldBy reports whether userID holds a non-expired lock at now.
func (s *System) IsHeldBy(userID int64, now time.Time) bool {
	return s.IsClaimed(now) && *s.ControlLockedByUserID == userID
}

// Client is an instrument-control station connected over its presence channel.
type Client struct {
	ID                int64   `json:"id"`
	SystemID          int64   `json:"system_id"`
	Name              string  `json:"name"`
	APIKey            string  `json:"-" sensitive:"true"`
	IsActive          bool    `json:"is_active"`
	CanScreenshot     bool    `json:"can_screenshot"`
	MonitorCount      *int    `json:"monitor_count,omitempty"`
	AllowedCommandIDs []int64 `json:"allowed_command_ids,omitempty"`
}

// Allows reports whether commandID is on the client's allow-list.
func (c *Client) Allows(commandID int64) bool {
	for _, id := range c.AllowedCommandIDs {
		if id == commandID {
			return true
		}
	}

	return false
}

// MonitorMax returns the number of selectable capture sources.
func (c *Client) MonitorMax() int {
	n := defaultMonitorCount
	if c.MonitorCount != nil {
		n = *c.MonitorCount
	}

	return max(1, min(maxMonitorCount, n))
}

// ClampMonitor bounds a requested monitor number to [1, MonitorMax()].
func (c *Client) ClampMonitor(n int) int {
	return max(1, min(c.MonitorMax(), n))
}

// Channel returns the client's presence channel name.
func (c *Client) Channel() string {
	return ClientChannel(c.ID)
}

// Command is a named action a client may be asked to perform.
type Command struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	ActionType  ActionType `json:"action_type"`
	Description string     `json:"description,omitempty"`
}

func (c *Command) IsScreenshot() bool {
	return c.Name == ScreenshotCommandName
}

// ClientChannel returns the presence channel for a client id.
func ClientChannel(clientID int64) string {
	return clientChannelPrefix + strconv.FormatInt(clientID, 10)
}

// ClientIDFromChannel extracts the client id from a presence-client.<id> channel.
func ClientIDFromChannel(channel string) (int64, bool) {
	m := clientChannelPattern.FindStringSubmatch(channel)
	if m == nil {
		return 0, false
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}
