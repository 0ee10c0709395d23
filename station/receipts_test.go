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

package station

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

func TestReceiptSenderDeliversLocallyWhenSessionActive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	table := session.New(nil)
	_, tr := newBoundSession(t, ctx, table, "alice@station")

	dir := t.TempDir()
	deliverer := newLocalDeliverer(spool.NewFileStore(dir))
	sender := newReceiptSender("station@relay", table, deliverer)

	receipt := message.NewReceipt(message.Delivered)
	err := sender.SendReceipt(ctx, "alice@station", receipt)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(tr.Written()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestReceiptSenderSpoolsWhenRecipientHasNoActiveSession(t *testing.T) {
	ctx := context.Background()
	table := session.New(nil)

	dir := t.TempDir()
	store := spool.NewFileStore(dir)
	deliverer := newLocalDeliverer(store)
	sender := newReceiptSender("station@relay", table, deliverer)

	receipt := message.NewReceipt(message.Delivered)
	err := sender.SendReceipt(ctx, "offline@station", receipt)
	require.NoError(t, err)

	batch, err := store.LoadBatch(ctx, "offline@station", 10)
	require.NoError(t, err)
	assert.Len(t, batch.Envelopes, 1)
}
