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

import "fmt"

// RecencyCache evicts the least recently used clusters until the occupied
// weight fits the capacity. An accessed cluster is always inserted at the
// front first, so a cluster heavier than the whole cache is admitted and then
// immediately evicted, together with everything behind it.
type RecencyCache struct {
	capacity uint64
	used     uint64
	weights  *Weights
	items    map[ClusterID]*element
	order    *list
	stats    *Metrics
}

// NewRecencyCache returns an LRU policy holding at most capacity vectors.
func NewRecencyCache(capacity uint64) *RecencyCache {
	c := &RecencyCache{
		capacity: capacity,
		stats:    newMetrics(),
	}
	c.Reset()
	return c
}

func (c *RecencyCache) Setup(w *Weights) error {
	if w == nil {
		return usageErrorf("%s: nil weight table", c)
	}
	if c.weights != nil {
		return usageErrorf("%s: already set up, Reset first", c)
	}
	c.weights = w
	return nil
}

func (c *RecencyCache) Reset() {
	c.weights = nil
	c.used = 0
	c.items = make(map[ClusterID]*element)
	c.order = newList()
	c.stats.Clear()
}

func (c *RecencyCache) Access(id ClusterID) error {
	if c.weights == nil {
		return usageErrorf("%s: access to cluster %d before Setup", c, id)
	}
	if e, ok := c.items[id]; ok {
		c.stats.hit()
		e.MoveToFront()
		return nil
	}
	weight, err := c.weights.Weight(id)
	if err != nil {
		return err
	}
	c.stats.miss(weight)
	c.stats.admit()
	e := &element{id: id, weight: weight}
	c.order.PushFront(e)
	c.items[id] = e
	c.used += weight

	for c.used > c.capacity {
		c.evict(c.order.Back())
	}
	return nil
}

func (c *RecencyCache) evict(e *element) {
	e.Remove()
	delete(c.items, e.id)
	c.used -= e.weight
	c.stats.evict(e.weight)
}

func (c *RecencyCache) Capacity() uint64      { return c.capacity }
func (c *RecencyCache) Size() uint64          { return c.used }
func (c *RecencyCache) Hits() uint64          { return c.stats.Hits() }
func (c *RecencyCache) Misses() uint64        { return c.stats.Misses() }
func (c *RecencyCache) VectorsRead() uint64   { return c.stats.VectorsRead() }
func (c *RecencyCache) Resident() []ClusterID { return c.order.IDs() }
func (c *RecencyCache) Metrics() *Metrics     { return c.stats }

func (c *RecencyCache) String() string {
	return fmt.Sprintf("lru(capacity=%d)", c.capacity)
}
