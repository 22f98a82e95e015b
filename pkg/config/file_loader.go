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


package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrConfigNotFound is returned when the config path does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrEmptyConfig is returned for a file holding nothing but whitespace.
	ErrEmptyConfig = errors.New("config file is empty")
)

// FileConfigLoader decodes a single JSON document from disk.
type FileConfigLoader struct{}

// Load reads path into dst. Trailing content after the document is rejected.
func (*FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyConfig, path)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	if dec.More() {
		return fmt.Errorf("decode config %s: unexpected data after the top-level object", path)
	}

	return nil
}
