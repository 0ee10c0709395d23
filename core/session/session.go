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

// Package session implements the process-wide registry mapping an
// authenticated identity to its live connections: the tuple
// (identity, connection, session-key, client-address, active,
// created-at) from the relay's data model.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection is the minimal handle the session table needs from a
// live socket. The concrete implementation lives in the net package;
// this interface exists so session has no dependency on it.
type Connection interface {
	RemoteAddress() string
}

// Session is one device's binding to an identity. SessionKey is a
// random server-issued nonce used as the handshake challenge;
// Active flips to true only once the handshake FSM completes.
type Session struct {
	Identity      string
	ClientAddress string
	CreatedAt     time.Time

	mu         sync.RWMutex
	connection Connection
	sessionKey string
	active     bool
}

// Connection returns the currently bound socket handle, or nil if
// the session was created but never bound (between `new` and
// `bind`).
func (s *Session) Connection() Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connection
}

// SessionKey returns the current challenge nonce.
func (s *Session) SessionKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionKey
}

// Active reports whether the handshake has completed for this
// session.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Activate flips the session to active, called by the handshake FSM
// on success.
func (s *Session) Activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}

// Rechallenge replaces the session key with a fresh random value and
// returns it, used when a handshake `start` doesn't match the
// current key.
func (s *Session) Rechallenge() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionKey = newSessionKey()
	s.active = false
	return s.sessionKey
}

func newSessionKey() string {
	return uuid.NewString()
}
