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

	"github.com/dimchat/station/core/mars"
	"github.com/dimchat/station/core/message"
	relaynet "github.com/dimchat/station/net"
	"github.com/dimchat/station/spool"
)

func newRoamingStore(baseDir string) *spool.FileStore {
	return spool.NewFileStoreIn(baseDir, "roaming")
}

func loadRoamed(baseDir, neighborID string) ([]*message.Reliable, error) {
	store := newRoamingStore(baseDir)
	batch, err := store.LoadBatch(context.Background(), neighborID, 100)
	if err != nil {
		return nil, err
	}
	return batch.Envelopes, nil
}

func frameFor(body []byte) relaynet.Frame {
	return relaynet.Frame{Cmd: mars.CmdSendMsg, Body: body}
}

type failingSender struct{}

func (failingSender) Send(s *relaynet.Ship) {
	if s.Handler != nil {
		s.Handler(errInduced)
	}
}

var errInduced = &inducedError{}

type inducedError struct{}

func (*inducedError) Error() string { return "induced write failure" }
