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
	"bytes"
	"fmt"

	"github.com/dgraph-io/ivfcache/z"
)

type metricType int

const (
	// The following 2 keep track of hits and misses.
	hit = iota
	miss
	// vectorsRead is the sum of the weights charged on misses.
	vectorsRead
	// The following 3 keep track of clusters admitted and evicted, and the
	// weight evicted.
	keyAdd
	keyEvict
	costEvict
	// This should be the final enum. Other enums should be set before this.
	doNotUse
)

func stringFor(t metricType) string {
	switch t {
	case hit:
		return "hit"
	case miss:
		return "miss"
	case vectorsRead:
		return "vectors-read"
	case keyAdd:
		return "clusters-admitted"
	case keyEvict:
		return "clusters-evicted"
	case costEvict:
		return "vectors-evicted"
	default:
		return "unidentified"
	}
}

// Metrics holds the counters of one policy instance since its last Setup.
// Policies are single-threaded, so the counters are plain integers.
type Metrics struct {
	all     [doNotUse]uint64
	evicted *z.HistogramData // Weights of evicted clusters.
}

// evictedBounds buckets evicted weights by powers of two up to 16M vectors.
var evictedBounds = z.HistogramBounds(0, 24)

func newMetrics() *Metrics {
	return &Metrics{
		evicted: z.NewHistogramData(evictedBounds),
	}
}

func (p *Metrics) add(t metricType, delta uint64) {
	if p == nil {
		return
	}
	p.all[t] += delta
}

func (p *Metrics) get(t metricType) uint64 {
	if p == nil {
		return 0
	}
	return p.all[t]
}

// hit records an access to a resident cluster.
func (p *Metrics) hit() {
	p.add(hit, 1)
}

// miss records an access to a cluster that had to be read from storage.
func (p *Metrics) miss(weight uint64) {
	p.add(miss, 1)
	p.add(vectorsRead, weight)
}

func (p *Metrics) admit() {
	p.add(keyAdd, 1)
}

func (p *Metrics) evict(weight uint64) {
	if p == nil {
		return
	}
	p.add(keyEvict, 1)
	p.add(costEvict, weight)
	p.evicted.Update(int64(weight))
}

// Hits is the number of accesses that found the cluster resident.
func (p *Metrics) Hits() uint64 {
	return p.get(hit)
}

// Misses is the number of accesses that had to read the cluster.
func (p *Metrics) Misses() uint64 {
	return p.get(miss)
}

// VectorsRead is the total weight read from storage on misses.
func (p *Metrics) VectorsRead() uint64 {
	return p.get(vectorsRead)
}

// ClustersAdmitted is the number of clusters inserted into the resident set.
func (p *Metrics) ClustersAdmitted() uint64 {
	return p.get(keyAdd)
}

// ClustersEvicted is the number of clusters evicted.
func (p *Metrics) ClustersEvicted() uint64 {
	return p.get(keyEvict)
}

// VectorsEvicted is the total weight of all evicted clusters.
func (p *Metrics) VectorsEvicted() uint64 {
	return p.get(costEvict)
}

// Ratio is the number of Hits over all accesses (Hits + Misses).
func (p *Metrics) Ratio() float64 {
	if p == nil {
		return 0.0
	}
	hits, misses := p.get(hit), p.get(miss)
	if hits == 0 && misses == 0 {
		return 0.0
	}
	return float64(hits) / float64(hits+misses)
}

// EvictedWeights returns a copy of the histogram of evicted cluster weights.
func (p *Metrics) EvictedWeights() *z.HistogramData {
	if p == nil {
		return nil
	}
	return p.evicted.Copy()
}

// Clear resets all the metrics.
func (p *Metrics) Clear() {
	if p == nil {
		return
	}
	p.all = [doNotUse]uint64{}
	p.evicted = z.NewHistogramData(evictedBounds)
}

// String returns a string representation of the metrics.
func (p *Metrics) String() string {
	if p == nil {
		return ""
	}
	var buf bytes.Buffer
	for i := 0; i < doNotUse; i++ {
		t := metricType(i)
		fmt.Fprintf(&buf, "%s: %s ", stringFor(t), z.Comma(p.get(t)))
	}
	fmt.Fprintf(&buf, "accesses-total: %s ", z.Comma(p.get(hit)+p.get(miss)))
	fmt.Fprintf(&buf, "hit-ratio: %.2f", p.Ratio())
	return buf.String()
}
