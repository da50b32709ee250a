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

// PinnedRecencyCache permanently pins the heaviest clusters of the index and
// runs LRU over the remaining capacity. The pinned clusters are read once at
// Setup, which counts as one miss each, and are never evicted.
type PinnedRecencyCache struct {
	capacity uint64
	pincount int
	used     uint64
	weights  *Weights
	pinned   map[ClusterID]struct{}
	// prefix holds the pinned clusters, heaviest first.
	prefix []ClusterID
	items  map[ClusterID]*element
	order  *list
	stats  *Metrics
}

// NewPinnedRecencyCache returns a policy that pins the pincount heaviest
// clusters within capacity vectors.
func NewPinnedRecencyCache(capacity uint64, pincount int) (*PinnedRecencyCache, error) {
	if pincount < 0 {
		return nil, configErrorf("negative pincount %d", pincount)
	}
	c := &PinnedRecencyCache{
		capacity: capacity,
		pincount: pincount,
		stats:    newMetrics(),
	}
	c.Reset()
	return c, nil
}

// Setup pins the heaviest clusters of w. Ties in weight are broken by
// ascending ClusterID. If the pinned clusters do not fit the capacity, Setup
// returns ErrConfiguration and leaves the instance untouched.
func (c *PinnedRecencyCache) Setup(w *Weights) error {
	if w == nil {
		return usageErrorf("%s: nil weight table", c)
	}
	if c.weights != nil {
		return usageErrorf("%s: already set up, Reset first", c)
	}
	prefix := w.Heaviest(c.pincount)
	var pinnedWeight uint64
	for _, id := range prefix {
		weight, _ := w.Weight(id)
		pinnedWeight += weight
	}
	if pinnedWeight > c.capacity {
		return configErrorf("%s: %d pinned clusters weigh %d vectors, more than the capacity",
			c, len(prefix), pinnedWeight)
	}

	c.weights = w
	c.prefix = prefix
	c.pinned = make(map[ClusterID]struct{}, len(prefix))
	for _, id := range prefix {
		weight, _ := w.Weight(id)
		c.pinned[id] = struct{}{}
		c.stats.miss(weight)
		c.stats.admit()
	}
	c.used = pinnedWeight
	return nil
}

func (c *PinnedRecencyCache) Reset() {
	c.weights = nil
	c.used = 0
	c.prefix = nil
	c.pinned = nil
	c.items = make(map[ClusterID]*element)
	c.order = newList()
	c.stats.Clear()
}

func (c *PinnedRecencyCache) Access(id ClusterID) error {
	if c.weights == nil {
		return usageErrorf("%s: access to cluster %d before Setup", c, id)
	}
	if _, ok := c.pinned[id]; ok {
		c.stats.hit()
		return nil
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

	// Only the evictable suffix is ever trimmed; the pinned weight alone fits.
	for c.used > c.capacity && c.order.Len() > 0 {
		e := c.order.Back()
		e.Remove()
		delete(c.items, e.id)
		c.used -= e.weight
		c.stats.evict(e.weight)
	}
	return nil
}

// Pinned returns the pinned clusters, heaviest first.
func (c *PinnedRecencyCache) Pinned() []ClusterID {
	return append([]ClusterID(nil), c.prefix...)
}

func (c *PinnedRecencyCache) Capacity() uint64    { return c.capacity }
func (c *PinnedRecencyCache) Size() uint64        { return c.used }
func (c *PinnedRecencyCache) Hits() uint64        { return c.stats.Hits() }
func (c *PinnedRecencyCache) Misses() uint64      { return c.stats.Misses() }
func (c *PinnedRecencyCache) VectorsRead() uint64 { return c.stats.VectorsRead() }
func (c *PinnedRecencyCache) Metrics() *Metrics   { return c.stats }

// Resident returns the pinned prefix followed by the evictable clusters from
// most to least recently used.
func (c *PinnedRecencyCache) Resident() []ClusterID {
	return append(c.Pinned(), c.order.IDs()...)
}

func (c *PinnedRecencyCache) String() string {
	return fmt.Sprintf("pinned(capacity=%d, pincount=%d)", c.capacity, c.pincount)
}
