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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimchat/station/pkg/storage"
	"github.com/dimchat/station/pkg/storage/memory"
)

func TestFilterAllowsByDefault(t *testing.T) {
	store := memory.NewStore()
	f := NewFilter(store.PolicyStore(), NewRateLimiter(100, 100), time.Minute)

	allowed, reason, err := f.Allow(context.Background(), "alice@a", "bob@b")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Empty(t, reason)
}

func TestFilterDeniesBlockedSender(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.PolicyStore().Put(ctx, &storage.PolicyRecord{
		OwnerID: "bob@b", TargetID: "alice@a", Blocked: true, UpdatedAt: time.Now(),
	}))

	f := NewFilter(store.PolicyStore(), NewRateLimiter(100, 100), time.Minute)
	allowed, reason, err := f.Allow(ctx, "alice@a", "bob@b")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, ReasonBlocked, reason)
}

func TestFilterDeniesMutedSender(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.PolicyStore().Put(ctx, &storage.PolicyRecord{
		OwnerID: "bob@b", TargetID: "alice@a", Muted: true, UpdatedAt: time.Now(),
	}))

	f := NewFilter(store.PolicyStore(), NewRateLimiter(100, 100), time.Minute)
	allowed, reason, err := f.Allow(ctx, "alice@a", "bob@b")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, ReasonMuted, reason)
}

func TestFilterRateLimitsSender(t *testing.T) {
	f := NewFilter(memory.NewStore().PolicyStore(), NewRateLimiter(0, 1), time.Minute)

	allowed, _, err := f.Allow(context.Background(), "alice@a", "bob@b")
	require.NoError(t, err)
	assert.True(t, allowed, "first message consumes the single burst token")

	allowed, reason, err := f.Allow(context.Background(), "alice@a", "bob@b")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, ReasonRateLimited, reason)
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	r := NewRateLimiter(10, 1) // refills fully in 100ms
	fixed := time.Unix(1000, 0)
	r.clock = func() time.Time { return fixed }

	assert.True(t, r.Allow("alice@a"))
	assert.False(t, r.Allow("alice@a"), "burst of 1 is exhausted")

	fixed = fixed.Add(200 * time.Millisecond)
	assert.True(t, r.Allow("alice@a"), "token should have refilled")
}
