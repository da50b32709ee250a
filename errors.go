/*
 * Copyright 2024 Dgraph Labs, Inc. and Contributors
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

package ivfcache

import "github.com/pkg/errors"

var (
	// ErrConfiguration is returned when a policy cannot be built or set up with
	// the requested parameters, e.g. when the pinned working set is heavier
	// than the cache capacity. It is fatal for that configuration only.
	ErrConfiguration = errors.New("invalid cache configuration")
	// ErrUsage is returned when a policy is driven incorrectly: Access before
	// Setup, Setup twice without Reset, or an id missing from the weight table.
	ErrUsage = errors.New("invalid cache usage")
)

func usageErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUsage, format, args...)
}

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}
