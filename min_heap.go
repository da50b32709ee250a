/*
 * Copyright 2020 Dgraph Labs, Inc. and Contributors
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

// Comparable is implemented by heap elements.
type Comparable[T any] interface {
	Less(other *T) bool
}

// MinHeap is a binary min-heap. Weights.Heaviest keeps the n best pinning
// candidates in one, with the weakest candidate at the root.
type MinHeap[T Comparable[T]] struct {
	items []*T
}

func NewMinHeap[T Comparable[T]]() *MinHeap[T] {
	return &MinHeap[T]{}
}

// Insert adds item to the heap.
func (h *MinHeap[T]) Insert(item *T) {
	h.items = append(h.items, item)
	h.up(len(h.items) - 1)
}

// Extract removes and returns the minimum element.
func (h *MinHeap[T]) Extract() (*T, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	least := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items[last] = nil
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.down(0)
	}
	return least, true
}

// Replace swaps the minimum element for item and returns the old minimum.
// It is cheaper than an Extract followed by an Insert.
func (h *MinHeap[T]) Replace(item *T) (*T, bool) {
	if len(h.items) == 0 {
		h.Insert(item)
		return nil, false
	}
	least := h.items[0]
	h.items[0] = item
	h.down(0)
	return least, true
}

// Peek returns the minimum element without removing it.
func (h *MinHeap[T]) Peek() (*T, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0], true
}

// Size returns the number of elements in the heap.
func (h *MinHeap[T]) Size() int {
	return len(h.items)
}

func (h *MinHeap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !(*h.items[i]).Less(h.items[parent]) {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *MinHeap[T]) down(i int) {
	n := len(h.items)
	for {
		smallest := i
		if l := 2*i + 1; l < n && (*h.items[l]).Less(h.items[smallest]) {
			smallest = l
		}
		if r := 2*i + 2; r < n && (*h.items[r]).Less(h.items[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
