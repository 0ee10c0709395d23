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

package policy

import (
	"context"
	"sync"
	"time"

	"github.com/dimchat/station/internal/metrics"
	"github.com/dimchat/station/pkg/storage"
)

// Reasons a message is denied before it reaches the dispatcher's
// routing step.
const (
	ReasonBlocked     = "blocked"
	ReasonMuted       = "muted"
	ReasonRateLimited = "rate_limited"
)

// Filter is the dispatch pipeline's policy step: block/mute decisions
// (durable, backed by storage.PolicyStore) plus per-sender rate
// limiting (in-memory only).
type Filter struct {
	store   storage.PolicyStore
	limiter *RateLimiter

	cacheTTL time.Duration
	cacheMu  sync.Mutex
	cache    map[string]cacheEntry
}

type cacheEntry struct {
	record  *storage.PolicyRecord
	expires time.Time
}

// NewFilter builds a Filter. cacheTTL of zero disables the short-lived
// decision cache and always consults the store.
func NewFilter(store storage.PolicyStore, limiter *RateLimiter, cacheTTL time.Duration) *Filter {
	return &Filter{
		store:    store,
		limiter:  limiter,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cacheEntry),
	}
}

// Allow decides whether receiver should see a message from sender.
// On denial it reports a reason (ReasonBlocked/ReasonMuted/
// ReasonRateLimited) and increments the matching metric.
func (f *Filter) Allow(ctx context.Context, sender, receiver string) (allowed bool, reason string, err error) {
	if !f.limiter.Allow(sender) {
		metrics.PolicyDenials.WithLabelValues(ReasonRateLimited).Inc()
		return false, ReasonRateLimited, nil
	}

	record, err := f.lookup(ctx, receiver, sender)
	if err != nil {
		return false, "", err
	}
	if record == nil {
		return true, "", nil
	}
	if record.Blocked {
		metrics.PolicyDenials.WithLabelValues(ReasonBlocked).Inc()
		return false, ReasonBlocked, nil
	}
	if record.Muted {
		metrics.PolicyDenials.WithLabelValues(ReasonMuted).Inc()
		return false, ReasonMuted, nil
	}
	return true, "", nil
}

func (f *Filter) lookup(ctx context.Context, owner, target string) (*storage.PolicyRecord, error) {
	key := owner + "\x00" + target
	if f.cacheTTL > 0 {
		f.cacheMu.Lock()
		entry, ok := f.cache[key]
		f.cacheMu.Unlock()
		if ok && time.Now().Before(entry.expires) {
			return entry.record, nil
		}
	}

	record, err := f.store.Get(ctx, owner, target)
	if err != nil {
		return nil, err
	}

	if f.cacheTTL > 0 {
		f.cacheMu.Lock()
		f.cache[key] = cacheEntry{record: record, expires: time.Now().Add(f.cacheTTL)}
		f.cacheMu.Unlock()
	}
	return record, nil
}

// Invalidate drops a cached decision, called after a block/mute/
// unblock/unmute write so the next lookup sees it immediately.
func (f *Filter) Invalidate(owner, target string) {
	f.cacheMu.Lock()
	delete(f.cache, owner+"\x00"+target)
	f.cacheMu.Unlock()
}
