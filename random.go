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

import (
	"fmt"
	"math/rand"
)

// RandomEvictionCache makes room for a missed cluster by evicting uniformly
// random resident clusters. Eviction happens before insertion, so the cluster
// being admitted is never its own victim. A cluster heavier than the capacity
// empties the cache and is then read without being admitted.
//
// Residents are kept in a dense slice with the most recently used cluster
// last. A hit swaps the cluster into the last slot and an eviction moves the
// last cluster into the freed slot, so only the most recent cluster has a
// known position; the rest of Resident is in no meaningful order. Victims are
// drawn uniformly over the slice, so the order never biases eviction.
//
// The random source is owned by the instance and reseeded at every Setup, so
// two instances with the same seed replaying the same sequence agree exactly.
type RandomEvictionCache struct {
	capacity uint64
	seed     int64
	rng      *rand.Rand
	used     uint64
	weights  *Weights
	// ids and sizes are dense and parallel; pos maps an id to its index.
	ids   []ClusterID
	sizes []uint64
	pos   map[ClusterID]int
	stats *Metrics
}

// NewRandomEvictionCache returns a random-eviction policy holding at most
// capacity vectors.
func NewRandomEvictionCache(capacity uint64, seed int64) *RandomEvictionCache {
	c := &RandomEvictionCache{
		capacity: capacity,
		seed:     seed,
		stats:    newMetrics(),
	}
	c.Reset()
	return c
}

func (c *RandomEvictionCache) Setup(w *Weights) error {
	if w == nil {
		return usageErrorf("%s: nil weight table", c)
	}
	if c.weights != nil {
		return usageErrorf("%s: already set up, Reset first", c)
	}
	c.weights = w
	c.rng = rand.New(rand.NewSource(c.seed))
	return nil
}

func (c *RandomEvictionCache) Reset() {
	c.weights = nil
	c.rng = nil
	c.used = 0
	c.ids = nil
	c.sizes = nil
	c.pos = make(map[ClusterID]int)
	c.stats.Clear()
}

func (c *RandomEvictionCache) Access(id ClusterID) error {
	if c.weights == nil {
		return usageErrorf("%s: access to cluster %d before Setup", c, id)
	}
	if i, ok := c.pos[id]; ok {
		c.stats.hit()
		c.touch(i)
		return nil
	}
	weight, err := c.weights.Weight(id)
	if err != nil {
		return err
	}
	c.stats.miss(weight)
	// Evict before inserting. A cluster heavier than the capacity empties the
	// cache.
	for len(c.ids) > 0 && c.used+weight > c.capacity {
		c.evict(c.rng.Intn(len(c.ids)))
	}
	if weight > c.capacity {
		return nil
	}
	c.pos[id] = len(c.ids)
	c.ids = append(c.ids, id)
	c.sizes = append(c.sizes, weight)
	c.used += weight
	c.stats.admit()
	return nil
}

// touch moves the resident cluster at index i into the last slot.
func (c *RandomEvictionCache) touch(i int) {
	last := len(c.ids) - 1
	if i == last {
		return
	}
	c.ids[i], c.ids[last] = c.ids[last], c.ids[i]
	c.sizes[i], c.sizes[last] = c.sizes[last], c.sizes[i]
	c.pos[c.ids[i]] = i
	c.pos[c.ids[last]] = last
}

// evict removes the resident cluster at index i by moving the last cluster
// into its slot.
func (c *RandomEvictionCache) evict(i int) {
	id, weight := c.ids[i], c.sizes[i]
	last := len(c.ids) - 1
	c.ids[i], c.sizes[i] = c.ids[last], c.sizes[last]
	c.pos[c.ids[i]] = i
	c.ids, c.sizes = c.ids[:last], c.sizes[:last]
	delete(c.pos, id)
	c.used -= weight
	c.stats.evict(weight)
}

func (c *RandomEvictionCache) Capacity() uint64    { return c.capacity }
func (c *RandomEvictionCache) Size() uint64        { return c.used }
func (c *RandomEvictionCache) Hits() uint64        { return c.stats.Hits() }
func (c *RandomEvictionCache) Misses() uint64      { return c.stats.Misses() }
func (c *RandomEvictionCache) VectorsRead() uint64 { return c.stats.VectorsRead() }
func (c *RandomEvictionCache) Metrics() *Metrics   { return c.stats }

// Resident returns the resident clusters. The most recently used cluster
// comes first; the order of the others carries no meaning.
func (c *RandomEvictionCache) Resident() []ClusterID {
	ids := make([]ClusterID, len(c.ids))
	for i, id := range c.ids {
		ids[len(ids)-1-i] = id
	}
	return ids
}

func (c *RandomEvictionCache) String() string {
	return fmt.Sprintf("random(capacity=%d, seed=%d)", c.capacity, c.seed)
}
