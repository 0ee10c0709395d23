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

package net

import (
	"sync"
	"time"
)

// Connection is the socket-level handle a Docker drives and the
// session table binds an identity to. It satisfies
// core/session.Connection, so a Docker's Connection can be handed
// straight to session.Table.Bind.
type Connection struct {
	transporter Transporter

	mu          sync.RWMutex
	lastInbound time.Time
}

// NewConnection wraps a Transporter.
func NewConnection(t Transporter) *Connection {
	return &Connection{transporter: t, lastInbound: now()}
}

func (c *Connection) RemoteAddress() string { return c.transporter.RemoteAddress() }

func (c *Connection) Kind() string { return c.transporter.Kind() }

func (c *Connection) touch() {
	c.mu.Lock()
	c.lastInbound = now()
	c.mu.Unlock()
}

// IdleFor reports how long it has been since the last inbound frame.
func (c *Connection) IdleFor(at time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return at.Sub(c.lastInbound)
}
