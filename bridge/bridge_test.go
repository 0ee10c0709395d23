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

package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimchat/station/core/message"
)

func envelope(sender, receiver, sig string) *message.Reliable {
	return &message.Reliable{
		Secure: message.Secure{
			Sender:   sender,
			Receiver: receiver,
			Time:     time.Unix(0, 0),
			Data:     []byte("cipher"),
		},
		Signature: []byte(sig),
	}
}

type fakeDispatcher struct {
	received []*message.Reliable
}

func (f *fakeDispatcher) Dispatch(_ context.Context, env *message.Reliable) error {
	f.received = append(f.received, env)
	return nil
}

func TestBridgeNeighborsListsConfiguredIDs(t *testing.T) {
	b := New("station@local", []Neighbor{
		{ID: "n1@a", Host: "127.0.0.1", Port: 9001},
		{ID: "n2@b", Host: "127.0.0.1", Port: 9002},
	}, &fakeDispatcher{}, t.TempDir(), time.Second, nil)

	got := b.Neighbors()
	assert.ElementsMatch(t, []string{"n1@a", "n2@b"}, got)
}

func TestBridgeForwardUnknownNeighborErrors(t *testing.T) {
	b := New("station@local", nil, &fakeDispatcher{}, t.TempDir(), time.Second, nil)
	err := b.Forward(context.Background(), "ghost@x", envelope("a@a", "b@b", "s1"))
	require.Error(t, err)
}

func TestBridgeForwardEnqueuesToKnownNeighbor(t *testing.T) {
	b := New("station@local", []Neighbor{{ID: "n1@a", Host: "127.0.0.1", Port: 9001}}, &fakeDispatcher{}, t.TempDir(), time.Second, nil)
	err := b.Forward(context.Background(), "n1@a", envelope("a@a", "b@b", "s1"))
	require.NoError(t, err)

	w := b.workers["n1@a"]
	select {
	case got := <-w.queue:
		assert.Equal(t, "s1", string(got.Signature))
	default:
		t.Fatal("expected envelope queued on worker")
	}
}

func TestWorkerEnqueueRoamsWhenQueueFull(t *testing.T) {
	dir := t.TempDir()
	w := NewWorker("n1@a", "127.0.0.1", 9001, "station@local", &fakeDispatcher{}, newRoamingStore(dir), time.Second, nil)

	for i := 0; i < QueueCapacity; i++ {
		w.queue <- envelope("a@a", "b@b", "filler")
	}
	ctx := context.Background()
	w.Enqueue(ctx, envelope("a@a", "b@b", "overflow"))

	batch, err := loadRoamed(dir, "n1@a")
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "overflow", string(batch[0].Signature))
}

func TestWorkerHandleFrameDropsEnvelopeAddressedToSelf(t *testing.T) {
	disp := &fakeDispatcher{}
	w := NewWorker("n1@a", "127.0.0.1", 9001, "station@local", disp, nil, time.Second, nil)

	env := envelope("n1@a", "station@local", "s1")
	body, err := env.MarshalJSON()
	require.NoError(t, err)

	w.HandleFrame(nil, frameFor(body))
	assert.Empty(t, disp.received, "envelope addressed to this station must not be re-dispatched")
}

func TestWorkerHandleFrameFeedsOtherTrafficToDispatcher(t *testing.T) {
	disp := &fakeDispatcher{}
	w := NewWorker("n1@a", "127.0.0.1", 9001, "station@local", disp, nil, time.Second, nil)

	env := envelope("n1@a", "carol@c", "s1")
	body, err := env.MarshalJSON()
	require.NoError(t, err)

	w.HandleFrame(nil, frameFor(body))
	require.Len(t, disp.received, 1)
	assert.Equal(t, "carol@c", disp.received[0].Receiver)
}

func TestWorkerShipRoamsOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	w := NewWorker("n1@a", "127.0.0.1", 9001, "station@local", &fakeDispatcher{}, newRoamingStore(dir), time.Second, nil)

	env := envelope("a@a", "b@b", "s1")
	w.ship(&failingSender{}, env)

	batch, err := loadRoamed(dir, "n1@a")
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "s1", string(batch[0].Signature))
}

func TestWorkerFlushToRoamingDrainsQueue(t *testing.T) {
	dir := t.TempDir()
	w := NewWorker("n1@a", "127.0.0.1", 9001, "station@local", &fakeDispatcher{}, newRoamingStore(dir), time.Second, nil)
	w.queue <- envelope("a@a", "b@b", "s1")
	w.queue <- envelope("a@a", "b@b", "s2")

	w.flushToRoaming(context.Background())

	batch, err := loadRoamed(dir, "n1@a")
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}
