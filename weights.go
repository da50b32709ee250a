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

import "sort"

// ClusterID identifies a partition (inverted list) of the indexed vectors.
type ClusterID uint64

// Weights maps every cluster of an index to its vector count. It is immutable
// once built, so a single table can be shared by any number of policies and
// read from several goroutines.
type Weights struct {
	m     map[ClusterID]uint64
	total uint64
}

// NewWeights copies m into a new weight table. Every weight must be positive.
func NewWeights(m map[ClusterID]uint64) (*Weights, error) {
	w := &Weights{m: make(map[ClusterID]uint64, len(m))}
	for id, weight := range m {
		if weight == 0 {
			return nil, configErrorf("cluster %d has zero weight", id)
		}
		w.m[id] = weight
		w.total += weight
	}
	return w, nil
}

// Weight returns the vector count of id. Looking up an id that is not part of
// the table is a usage error.
func (w *Weights) Weight(id ClusterID) (uint64, error) {
	if w == nil {
		return 0, usageErrorf("weight table not set")
	}
	weight, ok := w.m[id]
	if !ok {
		return 0, usageErrorf("cluster %d not in weight table", id)
	}
	return weight, nil
}

// Has reports whether id is part of the table.
func (w *Weights) Has(id ClusterID) bool {
	_, ok := w.m[id]
	return ok
}

// Len returns the number of clusters.
func (w *Weights) Len() int { return len(w.m) }

// Total returns the sum of all weights.
func (w *Weights) Total() uint64 { return w.total }

// IDs returns all cluster ids in ascending order.
func (w *Weights) IDs() []ClusterID {
	ids := make([]ClusterID, 0, len(w.m))
	for id := range w.m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// weighted is a cluster paired with its weight.
type weighted struct {
	id     ClusterID
	weight uint64
}

// Less orders clusters from least to most preferred for pinning: lighter
// clusters first and, between equal weights, the larger id first.
func (c weighted) Less(other *weighted) bool {
	if c.weight != other.weight {
		return c.weight < other.weight
	}
	return c.id > other.id
}

// Heaviest returns the n heaviest clusters, heaviest first. Equal weights are
// ordered by ascending ClusterID, so the result does not depend on map
// iteration order. If n exceeds Len, every cluster is returned.
func (w *Weights) Heaviest(n int) []ClusterID {
	if n <= 0 {
		return nil
	}
	h := NewMinHeap[weighted]()
	for id, weight := range w.m {
		c := &weighted{id: id, weight: weight}
		if h.Size() < n {
			h.Insert(c)
			continue
		}
		if least, _ := h.Peek(); least.Less(c) {
			h.Replace(c)
		}
	}
	out := make([]ClusterID, h.Size())
	for i := len(out) - 1; i >= 0; i-- {
		c, _ := h.Extract()
		out[i] = c.id
	}
	return out
}
