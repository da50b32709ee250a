/*
 * Copyright 2021 Dgraph Labs, Inc. and Contributors
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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := newMetrics()
	m.hit()
	m.miss(1200)
	m.miss(300)
	m.admit()
	m.evict(1200)

	require.Equal(t, uint64(1), m.Hits())
	require.Equal(t, uint64(2), m.Misses())
	require.Equal(t, uint64(1500), m.VectorsRead())
	require.Equal(t, uint64(1), m.ClustersAdmitted())
	require.Equal(t, uint64(1), m.ClustersEvicted())
	require.Equal(t, uint64(1200), m.VectorsEvicted())
	require.InDelta(t, 1.0/3, m.Ratio(), 1e-9)
	require.Equal(t, int64(1), m.EvictedWeights().Count)
	require.Equal(t,
		"hit: 1 miss: 2 vectors-read: 1,500 clusters-admitted: 1 clusters-evicted: 1 "+
			"vectors-evicted: 1,200 accesses-total: 3 hit-ratio: 0.33", m.String())

	m.Clear()
	require.Zero(t, m.Hits()+m.Misses()+m.VectorsRead())
	require.Zero(t, m.Ratio())
	require.Zero(t, m.EvictedWeights().Count)
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	m.hit()
	m.evict(3)
	m.Clear()
	require.Zero(t, m.Hits())
	require.Zero(t, m.Ratio())
	require.Nil(t, m.EvictedWeights())
	require.Equal(t, "", m.String())
}

func TestStringFor(t *testing.T) {
	require.Equal(t, "unidentified", stringFor(doNotUse))
	for i := 0; i < doNotUse; i++ {
		require.NotEqual(t, "unidentified", stringFor(metricType(i)))
	}
}

func TestMetricsStringLargeCounts(t *testing.T) {
	m := newMetrics()
	m.miss(math.MaxUint64)
	require.Contains(t, m.String(), "vectors-read: 18,446,744,073,709,551,615 ")
	require.NotContains(t, m.String(), ": -")
}
