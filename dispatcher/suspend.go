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

package dispatcher

import (
	"sync"
	"time"

	"github.com/dimchat/station/core/message"
)

// DefaultSuspendTTL is how long an envelope waits for its sender's
// missing meta/visa before it is dropped with a receipt.
const DefaultSuspendTTL = 300 * time.Second

// DefaultSuspendLimit bounds how many envelopes a single sender may
// have waiting at once; the oldest is dropped on overflow.
const DefaultSuspendLimit = 32

var timeNow = time.Now

type waiting struct {
	env       *message.Reliable
	enqueued  time.Time
}

// suspendQueue holds envelopes whose sender's meta/visa has not yet
// been seen by this station, keyed by sender identity. A later
// envelope from the same sender that itself carries a meta or visa
// releases everything queued for it.
type suspendQueue struct {
	mu       sync.Mutex
	bySender map[string][]waiting
	limit    int
	ttl      time.Duration
}

func newSuspendQueue(limit int, ttl time.Duration) *suspendQueue {
	if limit <= 0 {
		limit = DefaultSuspendLimit
	}
	if ttl <= 0 {
		ttl = DefaultSuspendTTL
	}
	return &suspendQueue{
		bySender: make(map[string][]waiting),
		limit:    limit,
		ttl:      ttl,
	}
}

// Add queues env for sender, dropping the oldest entry if the
// per-sender limit is already reached.
func (q *suspendQueue) Add(sender string, env *message.Reliable) {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := append(q.bySender[sender], waiting{env: env, enqueued: timeNow()})
	if len(list) > q.limit {
		list = list[len(list)-q.limit:]
	}
	q.bySender[sender] = list
}

// Release removes and returns every envelope still queued for sender
// that has not yet expired. Expired entries are reported separately
// so the caller can send a timeout receipt.
func (q *suspendQueue) Release(sender string) (fresh, expired []*message.Reliable) {
	q.mu.Lock()
	list := q.bySender[sender]
	delete(q.bySender, sender)
	q.mu.Unlock()

	now := timeNow()
	for _, w := range list {
		if now.Sub(w.enqueued) > q.ttl {
			expired = append(expired, w.env)
			continue
		}
		fresh = append(fresh, w.env)
	}
	return fresh, expired
}

// Sweep drops every entry older than the TTL across all senders,
// returning them so the caller can send timeout receipts. Intended to
// run on a periodic ticker independent of any particular sender's
// traffic.
func (q *suspendQueue) Sweep() []*message.Reliable {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := timeNow()
	var expired []*message.Reliable
	for sender, list := range q.bySender {
		kept := list[:0]
		for _, w := range list {
			if now.Sub(w.enqueued) > q.ttl {
				expired = append(expired, w.env)
				continue
			}
			kept = append(kept, w)
		}
		if len(kept) == 0 {
			delete(q.bySender, sender)
		} else {
			q.bySender[sender] = kept
		}
	}
	return expired
}
