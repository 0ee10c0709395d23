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

package receptionist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/core/session"
	"github.com/dimchat/station/spool"
)

type fakeSessions struct {
	sessions map[string][]*session.Session
}

func (f *fakeSessions) Lookup(identity string) []*session.Session { return f.sessions[identity] }
func (f *fakeSessions) IsActive(identity string) bool             { return len(f.sessions[identity]) > 0 }

type fakeDeliverer struct {
	fail map[string]bool // envelope signature -> always fails
}

func (d *fakeDeliverer) Deliver(_ context.Context, _ *session.Session, env *message.Reliable) bool {
	return !d.fail[env.PrimaryKey()]
}

func envelope(sig string) *message.Reliable {
	r := &message.Reliable{}
	r.Sender, r.Receiver = "alice@a", "bob@b"
	r.Time = time.Unix(1000, 0)
	r.Signature = []byte(sig)
	return r
}

func newActiveSession(t *testing.T, identity string) *session.Session {
	table := session.New(nil)
	s := table.NewSession(identity, "10.0.0.1:1")
	s.Activate()
	return s
}

func TestReceptionistDrainsSpoolForActiveGuest(t *testing.T) {
	ctx := context.Background()
	store := spool.NewMemoryStore()
	require.NoError(t, store.Append(ctx, "bob@b", envelope("s1")))
	require.NoError(t, store.Append(ctx, "bob@b", envelope("s2")))

	sessions := &fakeSessions{sessions: map[string][]*session.Session{"bob@b": {newActiveSession(t, "bob@b")}}}
	deliver := &fakeDeliverer{fail: map[string]bool{}}

	w := New(store, sessions, deliver, time.Millisecond)
	w.Admit("bob@b")
	w.tickOnce(ctx)

	depth, err := store.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth, "both envelopes should have drained")

	// The next tick loads an empty batch, which retires the guest.
	w.tickOnce(ctx)

	w.mu.Lock()
	_, stillGuest := w.guests["bob@b"]
	w.mu.Unlock()
	assert.False(t, stillGuest, "empty spool should remove the guest")
}

func TestReceptionistStopsAtFirstFullyFailedEnvelope(t *testing.T) {
	ctx := context.Background()
	store := spool.NewMemoryStore()
	require.NoError(t, store.Append(ctx, "bob@b", envelope("ok")))
	require.NoError(t, store.Append(ctx, "bob@b", envelope("blocked")))
	require.NoError(t, store.Append(ctx, "bob@b", envelope("would-have-worked")))

	sessions := &fakeSessions{sessions: map[string][]*session.Session{"bob@b": {newActiveSession(t, "bob@b")}}}
	deliver := &fakeDeliverer{fail: map[string]bool{"blocked": true}}

	w := New(store, sessions, deliver, time.Millisecond)
	w.Admit("bob@b")
	w.tickOnce(ctx)

	batch, err := store.LoadBatch(ctx, "bob@b", 0)
	require.NoError(t, err)
	require.Len(t, batch.Envelopes, 2, "only the leading successful envelope should have been removed")
	assert.Equal(t, "blocked", string(batch.Envelopes[0].Signature))

	w.mu.Lock()
	_, stillGuest := w.guests["bob@b"]
	w.mu.Unlock()
	assert.False(t, stillGuest, "a stalled guest is removed until the next login")
}

func TestReceptionistRemovesGuestWithNoActiveSessions(t *testing.T) {
	ctx := context.Background()
	sessions := &fakeSessions{sessions: map[string][]*session.Session{}}
	w := New(spool.NewMemoryStore(), sessions, &fakeDeliverer{fail: map[string]bool{}}, time.Millisecond)

	w.Admit("ghost@g")
	w.tickOnce(ctx)

	w.mu.Lock()
	_, stillGuest := w.guests["ghost@g"]
	w.mu.Unlock()
	assert.False(t, stillGuest)
}
