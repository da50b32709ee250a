/*
 * Copyright 2019 Dgraph Labs, Inc. and Contributors
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

package z

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	require.Equal(t, int64(42), Seed(42, ""))
	require.Equal(t, Seed(42, "random"), Seed(42, "random"))
	require.NotEqual(t, Seed(42, "random"), Seed(42, "workload"))
	require.NotEqual(t, Seed(42, "random"), Seed(43, "random"))
}

func TestFingerprint(t *testing.T) {
	a := []uint64{0, 1, 0, 2}
	b := []uint64{0, 1, 0, 2}
	c := []uint64{0, 1, 2, 0}
	require.Equal(t, Fingerprint(a), Fingerprint(b))
	require.NotEqual(t, Fingerprint(a), Fingerprint(c))

	type id uint64
	require.Equal(t, Fingerprint(a), Fingerprint([]id{0, 1, 0, 2}))
}

func TestComma(t *testing.T) {
	require.Equal(t, "0", Comma(0))
	require.Equal(t, "1,500", Comma(1500))
	require.Equal(t, "9,223,372,036,854,775,807", Comma(math.MaxInt64))
	require.Equal(t, "18,446,744,073,709,551,615", Comma(math.MaxUint64))
}
