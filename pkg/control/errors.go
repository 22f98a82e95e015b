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

package control

import "errors"

var (
	// ErrForbidden rejects an action the caller may not perform: a disabled
	// client, a command outside the allow-list, or a lock the caller does not hold.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreUnavailable means lock arbitration could not reach a decision.
	// Callers must not assume the lock was taken or released.
	ErrStoreUnavailable = errors.New("lock store unavailable")

	errClientDisabled    = errors.New("client is disabled")
	errCommandNotAllowed = errors.New("command is not allowed for client")
	errLockNotHeld       = errors.New("control lock is not held by caller")
)
