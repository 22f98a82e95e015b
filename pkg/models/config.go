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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/semphony/pkg/logger"
)

const (
	TransportModeLocal = "local"
	TransportModeNATS  = "nats"

	CacheBackendMemory = "memory"
	CacheBackendNATS   = "nats"

	defaultListenAddr          = ":8080"
	defaultTransportPath       = "/app/{key}"
	defaultMaxMessageSize      = 10_000
	defaultActivityTimeout     = 30 * time.Second
	defaultLivenessInterval    = 10 * time.Second
	defaultStaleWindow         = 20 * time.Second
	defaultLockTTL             = 24 * time.Hour
	defaultLockAttempts        = 5
	defaultCacheTTL            = 24 * time.Hour
	defaultHeartbeatCommandTTL = time.Hour
	defaultHeartbeatKeep       = 10
	defaultCommandStream       = "semphony-commands"
	defaultCacheBucket         = "semphony-cache"
)

var (
	errInvalidDuration      = errors.New("invalid duration")
	errDatabaseRequired     = errors.New("database configuration is required")
	errDatabaseHostRequired = errors.New("database.host is required")
	errAppCredentials       = errors.New("transport.app_key and transport.app_secret are required")
	errUnknownTransportMode = errors.New("unknown transport mode")
	errUnknownCacheBackend  = errors.New("unknown cache backend")
	errNATSRequiredForMode  = errors.New("nats configuration is required for nats transport or cache")
)

// Duration is a time.Duration that decodes from "10s" strings or nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// TLSConfig names client certificate material.
type TLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file"`
}

// CNPGDatabase configures the Postgres cluster backing the log and lock stores.
type CNPGDatabase struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password" sensitive:"true"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	ApplicationName    string            `json:"application_name,omitempty"`
	CertDir            string            `json:"cert_dir,omitempty"`
	TLS                *TLSConfig        `json:"tls,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod  Duration          `json:"health_check_period,omitempty"`
	StatementTimeout   Duration          `json:"statement_timeout,omitempty"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
}

// TransportConfig configures the presence-channel websocket transport.
type TransportConfig struct {
	// Mode is "local" when this process serves the websockets itself, or "nats"
	// when commands fan out to gateway nodes over JetStream.
	Mode            string   `json:"mode"`
	AppID           string   `json:"app_id"`
	AppKey          string   `json:"app_key"`
	AppSecret       string   `json:"app_secret" sensitive:"true"`
	Path            string   `json:"path"`
	MaxMessageSize  int64    `json:"max_message_size"`
	ActivityTimeout Duration `json:"activity_timeout"`
	AllowedOrigins  []string `json:"allowed_origins,omitempty"`
}

// LivenessConfig configures the periodic online/offline sweep.
type LivenessConfig struct {
	Disabled    bool     `json:"disabled,omitempty"`
	Interval    Duration `json:"interval"`
	StaleWindow Duration `json:"stale_window"`
}

// LockConfig configures control lock arbitration.
type LockConfig struct {
	TTL      Duration `json:"ttl"`
	Attempts int      `json:"attempts"`
}

// CacheConfig configures the socket attribution and liveness caches.
type CacheConfig struct {
	Backend             string   `json:"backend"`
	TTL                 Duration `json:"ttl"`
	HeartbeatCommandTTL Duration `json:"heartbeat_command_ttl"`
	HeartbeatKeep       int      `json:"heartbeat_keep"`
}

// CORSConfig configures cross-origin access to the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// ControlServiceConfig is the configuration of the control server process.
type ControlServiceConfig struct {
	ListenAddr      string          `json:"listen_addr"`
	Logging         *logger.Config  `json:"logging,omitempty"`
	Database        *CNPGDatabase   `json:"database"`
	NATS            *NATSConfig     `json:"nats,omitempty"`
	Transport       TransportConfig `json:"transport"`
	Liveness        LivenessConfig  `json:"liveness"`
	Locks           LockConfig      `json:"locks"`
	Caches          CacheConfig     `json:"caches"`
	CORS            CORSConfig      `json:"cors"`
	PyClientVersion string          `json:"py_client_version,omitempty"`
}

// Normalize fills unset fields with their defaults.
func (c *ControlServiceConfig) Normalize() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	if c.Transport.Mode == "" {
		c.Transport.Mode = TransportModeLocal
	}

	if c.Transport.Path == "" {
		c.Transport.Path = defaultTransportPath
	}

	if c.Transport.MaxMessageSize <= 0 {
		c.Transport.MaxMessageSize = defaultMaxMessageSize
	}

	if c.Transport.ActivityTimeout <= 0 {
		c.Transport.ActivityTimeout = Duration(defaultActivityTimeout)
	}

	if c.Liveness.Interval <= 0 {
		c.Liveness.Interval = Duration(defaultLivenessInterval)
	}

	if c.Liveness.StaleWindow <= 0 {
		c.Liveness.StaleWindow = Duration(defaultStaleWindow)
	}

	if c.Locks.TTL <= 0 {
		c.Locks.TTL = Duration(defaultLockTTL)
	}

	if c.Locks.Attempts <= 0 {
		c.Locks.Attempts = defaultLockAttempts
	}

	if c.Caches.Backend == "" {
		c.Caches.Backend = CacheBackendMemory
	}

	if c.Caches.TTL <= 0 {
		c.Caches.TTL = Duration(defaultCacheTTL)
	}

	if c.Caches.HeartbeatCommandTTL <= 0 {
		c.Caches.HeartbeatCommandTTL = Duration(defaultHeartbeatCommandTTL)
	}

	if c.Caches.HeartbeatKeep <= 0 {
		c.Caches.HeartbeatKeep = defaultHeartbeatKeep
	}

	if c.NATS != nil {
		if c.NATS.CommandStream == "" {
			c.NATS.CommandStream = defaultCommandStream
		}

		if c.NATS.CacheBucket == "" {
			c.NATS.CacheBucket = defaultCacheBucket
		}
	}
}

// Validate reports configuration that cannot be started.
func (c *ControlServiceConfig) Validate() error {
	if c.Database == nil {
		return errDatabaseRequired
	}

	if c.Database.Host == "" {
		return errDatabaseHostRequired
	}

	if c.Transport.AppKey == "" || c.Transport.AppSecret == "" {
		return errAppCredentials
	}

	switch c.Transport.Mode {
	case TransportModeLocal, TransportModeNATS:
	default:
		return fmt.Errorf("%w: %q", errUnknownTransportMode, c.Transport.Mode)
	}

	switch c.Caches.Backend {
	case CacheBackendMemory, CacheBackendNATS:
	default:
		return fmt.Errorf("%w: %q", errUnknownCacheBackend, c.Caches.Backend)
	}

	needsNATS := c.Transport.Mode == TransportModeNATS || c.Caches.Backend == CacheBackendNATS
	if needsNATS {
		if c.NATS == nil {
			return errNATSRequiredForMode
		}

		if err := c.NATS.Validate(); err != nil {
			return err
		}
	}

	if c.NATS != nil && c.NATS.Events != nil {
		if err := c.NATS.Events.Validate(); err != nil {
			return err
		}
	}

	return nil
}
