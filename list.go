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

// list is a doubly linked list of resident clusters, front = most recently
// used. It is modeled on container/list, but elements carry the cluster id and
// weight inline and are linked through a sentinel root, so moving an element
// never allocates. The list must be initialized with newList before use.
type list struct {
	root element
	len  int
}

func newList() *list { return new(list).init() }

func (l *list) init() *list {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
	return l
}

// Len returns the number of elements in the list.
func (l *list) Len() int { return l.len }

// Front returns the first element of the list or nil if the list is empty.
func (l *list) Front() *element {
	if l.len == 0 {
		return nil
	}
	return l.root.next
}

// Back returns the last element of the list or nil if the list is empty.
func (l *list) Back() *element {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

// PushFront inserts e at the front of the list.
func (l *list) PushFront(e *element) {
	l.insertAfter(e, &l.root)
}

func (l *list) insertAfter(e, at *element) {
	if e.list != nil {
		e.Remove()
	}
	e.prev = at
	e.next = at.next
	at.next = e
	e.next.prev = e
	e.list = l
	l.len++
}

// IDs returns the cluster ids from front to back.
func (l *list) IDs() []ClusterID {
	ids := make([]ClusterID, 0, l.len)
	for e := l.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.id)
	}
	return ids
}

// element is a node within a list.
type element struct {
	next, prev *element
	list       *list

	id     ClusterID
	weight uint64
}

// Next returns the next list element or nil.
func (e *element) Next() *element {
	if p := e.next; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// Remove removes e from its list. Removing a detached element is a no-op.
func (e *element) Remove() {
	if e.list == nil {
		return
	}
	e.list.len--
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
	e.list = nil
}

// MoveToFront moves e to the front of its list. e must be in a list.
func (e *element) MoveToFront() {
	root := &e.list.root
	if root.next == e {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = root
	e.next = root.next
	root.next.prev = e
	root.next = e
}
