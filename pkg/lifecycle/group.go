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

package lifecycle

import (
	"context"
	"errors"
)

// Group starts services in order and stops them in reverse. A failed Start
// stops the services already running.
type Group []Service

func (g Group) Start(ctx context.Context) error {
	for i, svc := range g {
		if err := svc.Start(ctx); err != nil {
			return errors.Join(err, g[:i].Stop(ctx))
		}
	}

	return nil
}

func (g Group) Stop(ctx context.Context) error {
	var errs []error

	for i := len(g) - 1; i >= 0; i-- {
		errs = append(errs, g[i].Stop(ctx))
	}

	return errors.Join(errs...)
}

// StopFunc adapts a shutdown function, such as a Close method, into a
// Service with a no-op Start.
type StopFunc func() error

func (StopFunc) Start(context.Context) error { return nil }

func (f StopFunc) Stop(context.Context) error { return f() }
