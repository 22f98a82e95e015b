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

// Package config loads the control server configuration.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/semphony/pkg/logger"
	"github.com/carverauto/semphony/pkg/models"
)

// Environment variables that override secrets in the config file.
const (
	EnvAppKey           = "SEMPHONY_APP_KEY"
	EnvAppSecret        = "SEMPHONY_APP_SECRET"
	EnvDatabasePassword = "SEMPHONY_DATABASE_PASSWORD"
	EnvPyClientVersion  = "PY_CLIENT_VERSION"
)

// ConfigLoader decodes the configuration found at path into dst.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Config holds the configuration loading dependencies.
type Config struct {
	loader ConfigLoader
	logger logger.Logger
	lookup func(string) (string, bool)
}

// NewConfig returns a Config reading JSON files and the process environment.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Config{
		loader: &FileConfigLoader{},
		logger: log,
		lookup: os.LookupEnv,
	}
}

// LoadControlConfig reads path, applies environment overrides, fills defaults
// and validates the result.
func (c *Config) LoadControlConfig(ctx context.Context, path string) (*models.ControlServiceConfig, error) {
	cfg := &models.ControlServiceConfig{}

	if err := c.loader.Load(ctx, path, cfg); err != nil {
		return nil, err
	}

	c.applyEnvOverrides(cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides(cfg *models.ControlServiceConfig) {
	if v, ok := c.env(EnvAppKey); ok {
		cfg.Transport.AppKey = v
	}

	if v, ok := c.env(EnvAppSecret); ok {
		cfg.Transport.AppSecret = v
	}

	if v, ok := c.env(EnvDatabasePassword); ok {
		if cfg.Database == nil {
			cfg.Database = &models.CNPGDatabase{}
		}

		cfg.Database.Password = v
	}

	if v, ok := c.env(EnvPyClientVersion); ok {
		cfg.PyClientVersion = v
	}
}

func (c *Config) env(key string) (string, bool) {
	v, ok := c.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	c.logger.Debug().Str("env", key).Msg("Applying configuration override from environment")

	return strings.TrimSpace(v), true
}
