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

// Package spool implements the station's offline message store: a
// per-recipient append-only batch of reliable envelopes, with
// signature-based idempotence and bounded-batch load/remove.
package spool

import (
	"context"

	"github.com/dimchat/station/core/message"
)

// DefaultBatchSize is the default bound on a single load_batch call.
const DefaultBatchSize = 20

// Batch is a bounded slice of envelopes loaded from a recipient's
// spool, in append order.
type Batch struct {
	Recipient string
	Envelopes []*message.Reliable
}

// Spool is the offline store's contract. Every recipient's log is
// logically independent; implementations must serialize writers per
// recipient.
type Spool interface {
	// Append adds env to recipient's log. A no-op if env's primary key
	// equals the last appended envelope's (idempotence).
	Append(ctx context.Context, recipient string, env *message.Reliable) error

	// LoadBatch returns up to `limit` envelopes still queued for
	// recipient, oldest first.
	LoadBatch(ctx context.Context, recipient string, limit int) (Batch, error)

	// RemoveBatch drops the first `count` entries of batch from the
	// recipient's log, preserving the rest.
	RemoveBatch(ctx context.Context, batch Batch, count int) error

	// Depth reports how many envelopes are currently queued across all
	// recipients, for the spool-depth gauge.
	Depth(ctx context.Context) (int, error)
}
