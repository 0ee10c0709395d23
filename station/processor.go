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

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/pkg/storage"
)

// metaChecker adapts storage.MetaStore to dispatcher.MetaChecker.
type metaChecker struct {
	store storage.MetaStore
}

func newMetaChecker(store storage.MetaStore) *metaChecker {
	return &metaChecker{store: store}
}

func (c *metaChecker) HasMeta(ctx context.Context, senderID string) (bool, error) {
	return c.store.Exists(ctx, senderID)
}

// commandProcessor implements dispatcher.CommandProcessor for
// self-addressed envelopes other than the handshake (handled earlier,
// per-connection, before a session reaches ACTIVE). Decoding and
// acting on a command's actual content (meta query, search, block,
// report, ...) is the internal command processor's job and lives
// outside this module's scope; this implementation does not
// interpret the body and returns no reply, so nothing is sent back
// to the sender.
type commandProcessor struct {
	stationID string
}

func newCommandProcessor(stationID string) *commandProcessor {
	return &commandProcessor{stationID: stationID}
}

func (p *commandProcessor) Process(_ context.Context, _ *message.Reliable) (*message.Reliable, error) {
	return nil, nil
}
