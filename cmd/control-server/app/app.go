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

// Package app wires the control server together from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/semphony/pkg/api"
	"github.com/carverauto/semphony/pkg/config"
	"github.com/carverauto/semphony/pkg/control"
	"github.com/carverauto/semphony/pkg/db"
	"github.com/carverauto/semphony/pkg/kv"
	"github.com/carverauto/semphony/pkg/lifecycle"
	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
	"github.com/carverauto/semphony/pkg/natsutil"
	"github.com/carverauto/semphony/pkg/pusher"
	"github.com/carverauto/semphony/pkg/version"
)

const serviceName = "semphony-control"

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
	// NodeName names this node's durable command consumer in nats mode.
	// Defaults to the hostname.
	NodeName string
}

// Run boots the control server and blocks until it shuts down.
func Run(ctx context.Context, opts Options) error {
	bootLogger, err := lifecycle.CreateComponentLogger(ctx, "control-boot", nil)
	if err != nil {
		return err
	}

	cfg, err := config.NewConfig(bootLogger).LoadControlConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	if err := lifecycle.InitializeLogger(ctx, cfg.Logging); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "control-main", cfg.Logging)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := lifecycle.ShutdownLogger(); shutdownErr != nil {
			mainLogger.Error().Err(shutdownErr).Msg("Error shutting down logger")
		}
	}()

	if err := initTelemetry(ctx, cfg); err != nil {
		return err
	}

	pool, err := db.NewCNPGPool(ctx, cfg.Database, mainLogger)
	if err != nil {
		return err
	}

	store := db.New(pool, mainLogger)
	defer store.Close()

	if err := db.RunMigrations(ctx, pool, mainLogger); err != nil {
		return err
	}

	var js jetstream.JetStream

	if cfg.NATS != nil {
		nc, err := natsutil.Connect(cfg.NATS, mainLogger)
		if err != nil {
			return err
		}
		defer drain(nc, mainLogger)

		if js, err = jetstream.New(nc); err != nil {
			return fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	cacheStore, err := newCacheStore(ctx, cfg, js)
	if err != nil {
		return err
	}
	defer func() { _ = cacheStore.Close() }()

	router := control.NewRouter(
		store,
		control.NewSocketClientCache(cacheStore, time.Duration(cfg.Caches.TTL)),
		control.NewHeartbeatCommandCache(cacheStore, time.Duration(cfg.Caches.HeartbeatCommandTTL)),
		cfg.Caches.HeartbeatKeep,
		mainLogger,
	)

	hub := pusher.NewHub(pusher.Config{
		AppKey:          cfg.Transport.AppKey,
		AppSecret:       cfg.Transport.AppSecret,
		MaxMessageSize:  cfg.Transport.MaxMessageSize,
		ActivityTimeout: time.Duration(cfg.Transport.ActivityTimeout),
		AllowedOrigins:  cfg.Transport.AllowedOrigins,
	}, router, mainLogger)

	services := lifecycle.Group{}

	var publisher control.Publisher = hub

	if cfg.Transport.Mode == models.TransportModeNATS {
		commands, err := natsutil.NewCommandPublisher(ctx, js, cfg.NATS.CommandStream)
		if err != nil {
			return err
		}

		publisher = commands
		services = append(services, natsutil.NewCommandRelay(js, cfg.NATS.CommandStream, consumerName(opts), hub, mainLogger))
	}

	notifier, err := newNotifier(ctx, cfg, js, mainLogger)
	if err != nil {
		return err
	}

	if !cfg.Liveness.Disabled {
		services = append(services, control.NewLivenessTracker(
			store,
			control.NewLivenessCache(cacheStore, time.Duration(cfg.Caches.TTL)),
			notifier,
			time.Duration(cfg.Liveness.Interval),
			time.Duration(cfg.Liveness.StaleWindow),
			mainLogger,
		))
	}

	services = append(services, lifecycle.StopFunc(hub.Close))

	locks := control.NewLockManager(store, mainLogger, time.Duration(cfg.Locks.TTL), cfg.Locks.Attempts)

	apiServer := api.NewAPIServer(cfg.CORS, mainLogger,
		api.WithStore(store),
		api.WithLockManager(locks),
		api.WithDispatcher(control.NewDispatcher(store, publisher, locks, mainLogger)),
		api.WithCorrelationView(control.NewCorrelationView(store)),
		api.WithAppCredentials(cfg.Transport.AppKey, cfg.Transport.AppSecret),
		api.WithClientVersion(cfg.PyClientVersion),
	)
	hub.Register(apiServer.Router(), cfg.Transport.Path)

	mainLogger.Info().
		Str("version", version.GetFullVersion()).
		Str("transport", cfg.Transport.Mode).
		Str("cache", cfg.Caches.Backend).
		Msg("Starting control server")

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: serviceName,
		Handler:     apiServer,
		Service:     services,
		Logger:      mainLogger,
	})
}

func initTelemetry(ctx context.Context, cfg *models.ControlServiceConfig) error {
	if _, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		OTel:           &cfg.Logging.OTel,
	}); err != nil && !errors.Is(err, logger.ErrOTelTracingDisabled) {
		return err
	}

	if _, err := logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		OTel:           &cfg.Logging.OTel,
	}); err != nil && !errors.Is(err, logger.ErrOTelMetricsDisabled) {
		return err
	}

	return nil
}

func newCacheStore(ctx context.Context, cfg *models.ControlServiceConfig, js jetstream.JetStream) (kv.KVStore, error) {
	if cfg.Caches.Backend == models.CacheBackendNATS {
		return kv.NewNatsStore(ctx, js, cfg.NATS.CacheBucket, time.Duration(cfg.Caches.TTL))
	}

	return kv.NewMemoryStore(), nil
}

// newNotifier returns nil when liveness events are not published.
func newNotifier(
	ctx context.Context, cfg *models.ControlServiceConfig, js jetstream.JetStream, log logger.Logger,
) (control.TransitionNotifier, error) {
	if js == nil || cfg.NATS.Events == nil || !cfg.NATS.Events.Enabled {
		return nil, nil
	}

	return natsutil.NewEventPublisher(ctx, js, cfg.NATS.Events, log)
}

func consumerName(opts Options) string {
	name := opts.NodeName
	if name == "" {
		name, _ = os.Hostname()
	}

	if name == "" {
		name = "control"
	}

	return "relay-" + name
}

func drain(nc *nats.Conn, log logger.Logger) {
	if err := nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("Failed to drain NATS connection")
	}
}
