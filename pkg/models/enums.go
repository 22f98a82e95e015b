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
	"errors"
	"fmt"
)

var (
	ErrUnknownActionType   = errors.New("unknown action type")
	ErrUnknownCommandType  = errors.New("unknown command type")
	ErrUnknownLogDirection = errors.New("unknown log direction")
	ErrUnknownLogSeverity  = errors.New("unknown log severity")
)

// ActionType describes how a command is executed on the client.
type ActionType string

const (
	ActionButtonPress ActionType = "button_press"
	ActionRequest     ActionType = "request"
	ActionHeartbeat   ActionType = "heartbeat"
)

// ParseActionType validates a stored action type.
func ParseActionType(s string) (ActionType, error) {
	switch a := ActionType(s); a {
	case ActionButtonPress, ActionRequest, ActionHeartbeat:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownActionType, s)
	}
}

func (a ActionType) MarshalText() ([]byte, error) {
	if _, err := ParseActionType(string(a)); err != nil {
		return nil, err
	}

	return []byte(a), nil
}

func (a *ActionType) UnmarshalText(b []byte) error {
	parsed, err := ParseActionType(string(b))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// CommandType is the selector a button press is delivered under.
type CommandType string

const (
	CommandClickButton CommandType = "clickButton"
	CommandGotoButton  CommandType = "gotoButton"

	DefaultCommandType = CommandClickButton
)

// ParseCommandType validates a button selector.
func ParseCommandType(s string) (CommandType, error) {
	switch c := CommandType(s); c {
	case CommandClickButton, CommandGotoButton:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommandType, s)
	}
}

// IsButtonSelector reports whether name is one of the known button selectors.
func IsButtonSelector(name string) bool {
	_, err := ParseCommandType(name)

	return err == nil
}

func (c CommandType) MarshalText() ([]byte, error) {
	if _, err := ParseCommandType(string(c)); err != nil {
		return nil, err
	}

	return []byte(c), nil
}

func (c *CommandType) UnmarshalText(b []byte) error {
	parsed, err := ParseCommandType(string(b))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// LogDirection records whether an entry was sent to or received from a client.
type LogDirection string

const (
	DirectionOutbound LogDirection = "outbound"
	DirectionInbound  LogDirection = "inbound"
)

func ParseLogDirection(s string) (LogDirection, error) {
	switch d := LogDirection(s); d {
	case DirectionOutbound, DirectionInbound:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLogDirection, s)
	}
}

func (d LogDirection) MarshalText() ([]byte, error) {
	if _, err := ParseLogDirection(string(d)); err != nil {
		return nil, err
	}

	return []byte(d), nil
}

func (d *LogDirection) UnmarshalText(b []byte) error {
	parsed, err := ParseLogDirection(string(b))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// LogSeverity is the severity attached to a log entry.
type LogSeverity string

const (
	SeverityInfo     LogSeverity = "info"
	SeverityError    LogSeverity = "error"
	SeverityCritical LogSeverity = "critical"
)

func ParseLogSeverity(s string) (LogSeverity, error) {
	switch v := LogSeverity(s); v {
	case SeverityInfo, SeverityError, SeverityCritical:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLogSeverity, s)
	}
}

func (s LogSeverity) MarshalText() ([]byte, error) {
	if _, err := ParseLogSeverity(string(s)); err != nil {
		return nil, err
	}

	return []byte(s), nil
}

func (s *LogSeverity) UnmarshalText(b []byte) error {
	parsed, err := ParseLogSeverity(string(b))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}
