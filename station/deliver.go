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

	"github.com/dimchat/station/core/mars"
	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/core/session"
	"github.com/dimchat/station/internal/metrics"
	relaynet "github.com/dimchat/station/net"
	"github.com/dimchat/station/spool"
)

// sendableConnection is the slice of *net.Connection's owning Docker
// a session needs exposed to actually push a ship; dockerHandle binds
// the two together so session.Table only ever sees session.Connection.
type sendableConnection interface {
	session.Connection
	Send(body []byte, handler relaynet.CompletionHandler)
}

// dockerHandle pairs a live net.Connection with the net.Docker pumping
// it, so the session table's generic Connection handle can still be
// used to push an outbound ship.
type dockerHandle struct {
	*relaynet.Connection
	docker *relaynet.Docker
}

func newDockerHandle(conn *relaynet.Connection, docker *relaynet.Docker) *dockerHandle {
	return &dockerHandle{Connection: conn, docker: docker}
}

func (h *dockerHandle) Send(body []byte, handler relaynet.CompletionHandler) {
	h.docker.Send(&relaynet.Ship{
		Cmd:        mars.CmdSendMsg,
		Body:       body,
		Priority:   relaynet.Normal,
		MaxRetries: 3,
		Handler:    handler,
	})
}

// localDeliverer implements dispatcher.Deliverer: it hands an
// envelope to a session's bound connection, and — matching the
// Transport/Timeout propagation rule of re-spooling a ship that never
// lands — spools the envelope for the recipient if the asynchronous
// write eventually fails.
type localDeliverer struct {
	spool *spool.FileStore
}

func newLocalDeliverer(store *spool.FileStore) *localDeliverer {
	return &localDeliverer{spool: store}
}

func (d *localDeliverer) Deliver(_ context.Context, s *session.Session, env *message.Reliable) bool {
	conn, ok := s.Connection().(sendableConnection)
	if !ok {
		return false
	}
	body, err := env.MarshalJSON()
	if err != nil {
		return false
	}
	metrics.SessionMessageSize.WithLabelValues("outbound").Observe(float64(len(body)))
	recipient := env.Receiver
	conn.Send(body, func(err error) {
		if err != nil && d.spool != nil {
			_ = d.spool.Append(context.Background(), recipient, env)
		}
	})
	return true
}
