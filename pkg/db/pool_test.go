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

package db

import (
	"errors"
	"testing"

	"github.com/carverauto/semphony/pkg/models"
)

func TestBuildCNPGConnURL_DefaultsSSLModeDisableWithoutTLS(t *testing.T) {
	t.Parallel()

	u, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host:     "cnpg-rw",
		Database: "semphony",
		Username: "control",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("buildCNPGConnURL error: %v", err)
	}

	if got := u.Query().Get("sslmode"); got != "disable" {
		t.Fatalf("sslmode=%q, want %q", got, "disable")
	}

	if got := u.Host; got != "cnpg-rw:5432" {
		t.Fatalf("host=%q, want default port", got)
	}

	if pw, _ := u.User.Password(); pw != "secret" {
		t.Fatalf("password not carried in URL")
	}
}

func TestBuildCNPGConnURL_DefaultsSSLModeVerifyFullWithTLS(t *testing.T) {
	t.Parallel()

	u, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host:     "cnpg-rw",
		Port:     5432,
		Database: "semphony",
		TLS: &models.TLSConfig{
			CertFile: "client.crt",
			KeyFile:  "client.key",
			CAFile:   "ca.crt",
		},
	})
	if err != nil {
		t.Fatalf("buildCNPGConnURL error: %v", err)
	}

	if got := u.Query().Get("sslmode"); got != "verify-full" {
		t.Fatalf("sslmode=%q, want %q", got, "verify-full")
	}
}

func TestBuildCNPGConnURL_RejectsTLSWithSSLModeDisable(t *testing.T) {
	t.Parallel()

	_, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host:     "cnpg-rw",
		Database: "semphony",
		SSLMode:  "disable",
		TLS: &models.TLSConfig{
			CertFile: "client.crt",
			KeyFile:  "client.key",
			CAFile:   "ca.crt",
		},
	})
	if !errors.Is(err, ErrCNPGTLSDisabled) {
		t.Fatalf("error=%v, want %v", err, ErrCNPGTLSDisabled)
	}
}

func TestBuildCNPGConnURL_RejectsIncompleteTLS(t *testing.T) {
	t.Parallel()

	_, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host: "cnpg-rw",
		TLS:  &models.TLSConfig{CertFile: "client.crt"},
	})
	if !errors.Is(err, ErrCNPGTLSIncomplete) {
		t.Fatalf("error=%v, want %v", err, ErrCNPGTLSIncomplete)
	}
}

func TestBuildCNPGConnURL_TLSPathsResolveViaCertDir(t *testing.T) {
	t.Parallel()

	u, err := buildCNPGConnURL(&models.CNPGDatabase{
		Host:     "cnpg-rw",
		Database: "semphony",
		CertDir:  "/etc/semphony/cnpg",
		TLS: &models.TLSConfig{
			CertFile: "client.crt",
			KeyFile:  "/abs/client.key",
			CAFile:   "ca.crt",
		},
	})
	if err != nil {
		t.Fatalf("buildCNPGConnURL error: %v", err)
	}

	q := u.Query()
	if got := q.Get("sslcert"); got != "/etc/semphony/cnpg/client.crt" {
		t.Fatalf("sslcert=%q", got)
	}

	if got := q.Get("sslkey"); got != "/abs/client.key" {
		t.Fatalf("sslkey=%q", got)
	}

	if got := q.Get("sslrootcert"); got != "/etc/semphony/cnpg/ca.crt" {
		t.Fatalf("sslrootcert=%q", got)
	}
}

func TestResolveCNPGSSLMode_UsesRuntimeParamsFallback(t *testing.T) {
	t.Parallel()

	got, err := resolveCNPGSSLMode(&models.CNPGDatabase{
		ExtraRuntimeParams: map[string]string{"sslmode": "Verify-CA"},
	})
	if err != nil {
		t.Fatalf("resolveCNPGSSLMode error: %v", err)
	}

	if got != "verify-ca" {
		t.Fatalf("sslmode=%q, want %q", got, "verify-ca")
	}
}

func TestResolveCNPGSSLMode_RejectsUnknown(t *testing.T) {
	t.Parallel()

	_, err := resolveCNPGSSLMode(&models.CNPGDatabase{SSLMode: "sometimes"})
	if !errors.Is(err, ErrCNPGInvalidSSLMode) {
		t.Fatalf("error=%v, want %v", err, ErrCNPGInvalidSSLMode)
	}
}
