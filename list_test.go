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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPushFront(t *testing.T) {
	l := newList()
	assert.Nil(t, l.Front())

	var elements []*element
	for i := 0; i < 3; i++ {
		e := &element{id: ClusterID(i)}
		elements = append([]*element{e}, elements...)
		l.PushFront(e)

		assert.Equal(t, e, l.Front())
		checkList(t, l, elements)
	}
}

// fill pushes elements so that they end up in the list front to back.
func fill(l *list, elements ...*element) {
	for i := len(elements) - 1; i >= 0; i-- {
		l.PushFront(elements[i])
	}
}

func TestListBack(t *testing.T) {
	l := newList()
	assert.Nil(t, l.Back())

	a, b, c := &element{id: 1}, &element{id: 2}, &element{id: 3}
	fill(l, a, b, c)
	assert.Equal(t, c, l.Back())
	checkList(t, l, []*element{a, b, c})
	require.Equal(t, []ClusterID{1, 2, 3}, l.IDs())

	// Pushing an element that is already linked detaches it first.
	l.PushFront(c)
	checkList(t, l, []*element{c, a, b})
	assert.Equal(t, b, l.Back())
}

func TestListRemove(t *testing.T) {
	t.Run("Detached", func(t *testing.T) {
		e := &element{}
		assert.NotPanics(t, func() { e.Remove() })
	})

	for i := 0; i < 3; i++ {
		l := newList()
		var all, elements []*element
		var remove *element
		for ei := 0; ei < 3; ei++ {
			e := &element{id: ClusterID(ei)}
			all = append(all, e)
			if ei == i {
				remove = e
			} else {
				elements = append(elements, e)
			}
		}
		fill(l, all...)
		t.Run(fmt.Sprintf("Remove%dOf3", i), func(t *testing.T) {
			remove.Remove()
			assert.Nil(t, remove.prev)
			assert.Nil(t, remove.next)
			assert.Nil(t, remove.list)
			checkList(t, l, elements)
		})
	}
}

func TestListMoveToFront(t *testing.T) {
	t.Run("Detached", func(t *testing.T) {
		e := &element{}
		assert.Panics(t, func() { e.MoveToFront() })
	})

	for i := 0; i < 3; i++ {
		l := newList()
		var all, elements []*element
		var move *element
		for ei := 0; ei < 3; ei++ {
			e := &element{id: ClusterID(ei)}
			all = append(all, e)
			if ei == i {
				move = e
				elements = append([]*element{e}, elements...)
			} else {
				elements = append(elements, e)
			}
		}
		fill(l, all...)
		t.Run(fmt.Sprintf("Move%dOf3", i), func(t *testing.T) {
			move.MoveToFront()
			checkList(t, l, elements)
		})
	}
}

func checkList(t *testing.T, l *list, elements []*element) {
	t.Helper()

	root := &l.root
	if !assert.Equal(t, len(elements), l.Len(), "list length") {
		return
	}
	if len(elements) == 0 {
		assert.Equal(t, root, root.next)
		assert.Equal(t, root, root.prev)
		return
	}
	for i, e := range elements {
		assert.Equal(t, l, e.list)
		if i > 0 {
			assert.Equal(t, elements[i-1], e.prev, "internal prev pointer")
		} else {
			assert.Equal(t, root, e.prev, "internal prev pointer")
		}
		if i < len(elements)-1 {
			assert.Equal(t, elements[i+1], e.next, "internal next pointer")
			assert.Equal(t, elements[i+1], e.Next(), "external next pointer")
		} else {
			assert.Equal(t, root, e.next, "internal next pointer")
			assert.Nil(t, e.Next(), "external next pointer")
		}
	}
}
