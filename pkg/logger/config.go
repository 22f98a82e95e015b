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


package logger

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultServiceName  = "semphony-control"
	defaultBatchTimeout = 5 * time.Second
)

// DefaultConfig builds the logging config from the environment. SEMPHONY_*
// names win over the unprefixed ones.
func DefaultConfig() *Config {
	return &Config{
		Level:      envString("info", "SEMPHONY_LOG_LEVEL", "LOG_LEVEL"),
		Debug:      envBool(false, "SEMPHONY_DEBUG", "DEBUG"),
		Output:     envString("stdout", "SEMPHONY_LOG_OUTPUT", "LOG_OUTPUT"),
		TimeFormat: envString("", "SEMPHONY_LOG_TIME_FORMAT", "LOG_TIME_FORMAT"),
		OTel:       DefaultOTelConfig(),
	}
}

// DefaultOTelConfig reads the OTLP exporter environment. Logs-specific
// variables take precedence over the generic OTEL_EXPORTER_OTLP_* ones.
func DefaultOTelConfig() OTelConfig {
	headers := envString("", "OTEL_EXPORTER_OTLP_LOGS_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
	timeout := envString("", "OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", "OTEL_EXPORTER_OTLP_TIMEOUT")

	return OTelConfig{
		Enabled:      envBool(false, "OTEL_LOGS_ENABLED", "OTEL_ENABLED"),
		Endpoint:     envString("", "OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"),
		Headers:      parseOTLPHeaders(headers),
		ServiceName:  envString(defaultServiceName, "OTEL_SERVICE_NAME"),
		BatchTimeout: Duration(parseOTLPTimeout(timeout)),
		Insecure:     envBool(false, "OTEL_EXPORTER_OTLP_LOGS_INSECURE", "OTEL_EXPORTER_OTLP_INSECURE"),
	}
}

// parseOTLPHeaders decodes "k1=v1,k2=v2". Malformed pairs are skipped.
func parseOTLPHeaders(s string) map[string]string {
	headers := make(map[string]string)

	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if k = strings.TrimSpace(k); !ok || k == "" {
			continue
		}

		headers[k] = strings.TrimSpace(v)
	}

	return headers
}

// parseOTLPTimeout accepts plain milliseconds, as the OTLP exporters do, or a
// Go duration string.
func parseOTLPTimeout(s string) time.Duration {
	if s == "" {
		return defaultBatchTimeout
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}

	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}

	return defaultBatchTimeout
}

// envString returns the first non-blank value among keys.
func envString(fallback string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}

	return fallback
}

func envBool(fallback bool, keys ...string) bool {
	v := envString("", keys...)
	if v == "" {
		return fallback
	}

	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}

	return b
}
