// DIM Station - decentralized instant-messaging relay
// Copyright (C) 2025 dimchat
//
// This file is part of DIM Station.
//
// DIM Station is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DIM Station is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with DIM Station. If not, see <https://www.gnu.org/licenses/>.

package net

import (
	"container/heap"
	"sync"
	"time"
)

// outboundQueue is a priority queue of ships: higher Priority drains
// first, ties broken by enqueue order. container/heap gives O(log n)
// push/pop without pulling in a third-party priority-queue library for
// what is a purely algorithmic concern.
type outboundQueue struct {
	mu    sync.Mutex
	items shipHeap
	seq   uint64
}

func newOutboundQueue() *outboundQueue {
	q := &outboundQueue{}
	heap.Init(&q.items)
	return q
}

func (q *outboundQueue) Push(s *Ship) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	s.enqueuedAt = now()
	q.seq++
	s.order = q.seq
	heap.Push(&q.items, s)
	return q.items.Len()
}

// Pop returns the highest-priority ready ship, or nil if none is ready
// (either the queue is empty, or every ship is waiting out a backoff).
func (q *outboundQueue) Pop(at time.Time) *Ship {
	q.mu.Lock()
	defer q.mu.Unlock()

	best := -1
	for i, s := range q.items {
		if s.ready(at) && (best < 0 || q.items.Less(i, best)) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return heap.Remove(&q.items, best).(*Ship)
}

// Requeue puts a ship that failed a write attempt back on the queue
// after scheduling its backoff, unless its retry budget is spent.
func (q *outboundQueue) Requeue(s *Ship, at time.Time) bool {
	if s.exhausted() {
		return false
	}
	s.backoff(at)
	q.mu.Lock()
	heap.Push(&q.items, s)
	q.mu.Unlock()
	return true
}

func (q *outboundQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Drain empties the queue, returning every ship still waiting so the
// caller can report a closed-connection error to each handler.
func (q *outboundQueue) Drain() []*Ship {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Ship, len(q.items))
	copy(out, q.items)
	q.items = nil
	return out
}

type shipHeap []*Ship

func (h shipHeap) Len() int { return len(h) }
func (h shipHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].order < h[j].order
}
func (h shipHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *shipHeap) Push(x any) {
	s := x.(*Ship)
	s.index = len(*h)
	*h = append(*h, s)
}
func (h *shipHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}

var timeNow = time.Now

func now() time.Time { return timeNow() }
