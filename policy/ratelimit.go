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

// Package policy implements the filter step of the dispatch pipeline:
// per-sender rate limiting and the block/mute decisions backed by
// storage.PolicyStore.
package policy

import (
	"sync"
	"time"
)

// RateLimiter is a per-sender token bucket. It is deliberately
// in-memory and process-local: thresholds aren't specified anywhere a
// production deployment could read them back, so there is nothing
// durable worth persisting across a restart.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64 // tokens added per second
	burst   float64 // bucket capacity
	clock   func() time.Time
}

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter builds a limiter allowing `rate` messages/sec per
// sender, bursting up to `burst`.
func NewRateLimiter(rate, burst float64) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   burst,
		clock:   time.Now,
	}
}

// Allow reports whether sender may send another message right now,
// consuming one token if so.
func (r *RateLimiter) Allow(sender string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	b, ok := r.buckets[sender]
	if !ok {
		b = &tokenBucket{tokens: r.burst - 1, last: now}
		r.buckets[sender] = b
		return true
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens += elapsed * r.rate
	if b.tokens > r.burst {
		b.tokens = r.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Forget drops a sender's bucket, used when a connection closes so
// buckets don't accumulate for senders who will never return.
func (r *RateLimiter) Forget(sender string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buckets, sender)
}
