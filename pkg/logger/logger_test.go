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
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
)

func TestInit(t *testing.T) {
	err := Init(context.Background(), &Config{Level: "debug", Debug: true, Output: "stdout"})
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(context.Background(), &Config{Level: "loud"})
	require.Error(t, err)
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	SetDebug(false)
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}

func TestNewIsIndependentOfGlobal(t *testing.T) {
	require.NoError(t, Init(context.Background(), &Config{Level: "info"}))

	l, err := New(context.Background(), &Config{Level: "warn", Output: "stderr"})
	require.NoError(t, err)

	l.SetDebug(true)
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
	assert.NotEqual(t, zerolog.Disabled, l.WithComponent("dispatcher").GetLevel())
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("SEMPHONY_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_SERVICE_NAME", "")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stdout", config.Output)
	assert.Equal(t, defaultServiceName, config.OTel.ServiceName)
	assert.False(t, config.OTel.Enabled)
}

func TestDefaultOTelConfigHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer x, tenant = lab")
	t.Setenv("OTEL_EXPORTER_OTLP_TIMEOUT", "2s")

	config := DefaultOTelConfig()

	assert.Equal(t, map[string]string{"authorization": "Bearer x", "tenant": "lab"}, config.Headers)
	assert.Equal(t, Duration(2*time.Second), config.BatchTimeout)
}

func TestDefaultOTelConfigPrefersLogsVariables(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "generic:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "logs:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_TIMEOUT", "1500")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", "")
	t.Setenv("OTEL_ENABLED", "on")
	t.Setenv("OTEL_LOGS_ENABLED", "")

	config := DefaultOTelConfig()

	assert.Equal(t, "logs:4317", config.Endpoint)
	assert.Equal(t, Duration(1500*time.Millisecond), config.BatchTimeout)
	assert.True(t, config.Enabled)
}

func TestParseOTLPHeadersSkipsMalformedPairs(t *testing.T) {
	assert.Equal(t,
		map[string]string{"a": "1", "b": "x=y"},
		parseOTLPHeaders("a=1, junk, =empty,b=x=y"),
	)
	assert.Empty(t, parseOTLPHeaders(""))
}

func TestEnvBool(t *testing.T) {
	t.Setenv("SEMPHONY_DEBUG", "off")
	t.Setenv("DEBUG", "true")
	assert.False(t, envBool(true, "SEMPHONY_DEBUG", "DEBUG"))

	t.Setenv("SEMPHONY_DEBUG", "")
	assert.True(t, envBool(false, "SEMPHONY_DEBUG", "DEBUG"))

	t.Setenv("DEBUG", "maybe")
	assert.True(t, envBool(true, "SEMPHONY_DEBUG", "DEBUG"))
}

func TestDurationUnmarshalJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"1h30m"`), &d))
	assert.Equal(t, Duration(90*time.Minute), d)

	require.NoError(t, json.Unmarshal([]byte(`5000000000`), &d))
	assert.Equal(t, Duration(5*time.Second), d)

	require.ErrorIs(t, json.Unmarshal([]byte(`"soon"`), &d), errInvalidDuration)
	require.ErrorIs(t, json.Unmarshal([]byte(`true`), &d), errInvalidDuration)
}

func TestOTelDisabled(t *testing.T) {
	_, err := NewOTELWriter(context.Background(), OTelConfig{})
	require.ErrorIs(t, err, ErrOTelLoggingDisabled)

	_, err = NewOTELWriter(context.Background(), OTelConfig{Enabled: true})
	require.ErrorIs(t, err, ErrOTelEndpointRequired)

	_, err = InitializeMetrics(context.Background(), MetricsConfig{})
	require.ErrorIs(t, err, ErrOTelMetricsDisabled)

	_, err = InitializeTracing(context.Background(), TracingConfig{OTel: &OTelConfig{Enabled: true}})
	require.ErrorIs(t, err, ErrOTelTracingDisabled)

	require.NoError(t, Shutdown(context.Background()))
}

func TestFormatAttributeValue(t *testing.T) {
	assert.Equal(t, "null", formatAttributeValue(nil))
	assert.Equal(t, "true", formatAttributeValue(true))
	assert.Equal(t, "42", formatAttributeValue(float64(42)))
	assert.JSONEq(t, `{"a":1}`, formatAttributeValue(map[string]interface{}{"a": 1}))

	long := formatAttributeValue(strings.Repeat("é", maxAttributeValueLength))
	assert.LessOrEqual(t, len(long), maxAttributeValueLength)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestMapZerologLevelToOTEL(t *testing.T) {
	assert.Equal(t, log.SeverityWarn, mapZerologLevelToOTEL("WARN"))
	assert.Equal(t, log.SeverityFatal, mapZerologLevelToOTEL("panic"))
	assert.Equal(t, log.SeverityInfo, mapZerologLevelToOTEL("chatty"))
}
