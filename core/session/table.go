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

package session

import (
	"sync"
	"time"

	"github.com/dimchat/station/internal/metrics"
)

// LogoutFunc is invoked with the identity whose last connection just
// closed, firing the USER_LOGOUT notification the dispatcher's
// internal command processor listens for.
type LogoutFunc func(identity string)

// Table is the process-wide session registry: safe for concurrent
// readers, one writer per identity bucket. Multiple devices per
// identity are permitted, matching `lookup(identity) -> [session...]`.
type Table struct {
	mu            sync.RWMutex
	byIdentity    map[string][]*Session
	byConnection  map[Connection]*Session
	onLogout      LogoutFunc
}

// New returns an empty session table.
func New(onLogout LogoutFunc) *Table {
	return &Table{
		byIdentity:   make(map[string][]*Session),
		byConnection: make(map[Connection]*Session),
		onLogout:     onLogout,
	}
}

// NewSession creates or replaces the session for identity with a
// fresh random key and active=false. If a session already exists for
// this identity on the SAME client address it is replaced in place
// (reconnect); otherwise a new device entry is appended.
func (t *Table) NewSession(identity, clientAddress string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &Session{
		Identity:      identity,
		ClientAddress: clientAddress,
		CreatedAt:     now(),
		sessionKey:    newSessionKey(),
	}

	devices := t.byIdentity[identity]
	replaced := false
	for i, existing := range devices {
		if existing.ClientAddress == clientAddress {
			devices[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		devices = append(devices, s)
	}
	t.byIdentity[identity] = devices

	metrics.SessionsCreated.WithLabelValues("success").Inc()
	return s
}

// Bind associates a live connection with an already-created session.
// Once bound, Close(conn) can evict this session.
func (t *Table) Bind(conn Connection, s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s.mu.Lock()
	s.connection = conn
	s.mu.Unlock()
	t.byConnection[conn] = s
}

// Lookup returns every live session for identity (one per device).
func (t *Table) Lookup(identity string) []*Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	devices := t.byIdentity[identity]
	out := make([]*Session, len(devices))
	copy(out, devices)
	return out
}

// IsActive reports whether identity has at least one active session.
func (t *Table) IsActive(identity string) bool {
	for _, s := range t.Lookup(identity) {
		if s.Active() {
			return true
		}
	}
	return false
}

// FindByAddress returns the existing session for (identity,
// clientAddress) without creating one, used by the handshake FSM to
// distinguish a brand new connection from a resend within an
// in-progress handshake.
func (t *Table) FindByAddress(identity, clientAddress string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.byIdentity[identity] {
		if s.ClientAddress == clientAddress {
			return s, true
		}
	}
	return nil, false
}

// SessionFor returns the session bound to conn, if any.
func (t *Table) SessionFor(conn Connection) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byConnection[conn]
	return s, ok
}

// Close evicts the session bound to conn and fires USER_LOGOUT if
// that was the last device for its identity.
func (t *Table) Close(conn Connection) {
	t.mu.Lock()
	s, ok := t.byConnection[conn]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.byConnection, conn)

	devices := t.byIdentity[s.Identity]
	remaining := devices[:0]
	for _, existing := range devices {
		if existing != s {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == 0 {
		delete(t.byIdentity, s.Identity)
	} else {
		t.byIdentity[s.Identity] = remaining
	}
	identity := s.Identity
	lastDevice := len(remaining) == 0
	t.mu.Unlock()

	metrics.SessionsClosed.Inc()
	metrics.SessionDuration.WithLabelValues("lifetime").Observe(now().Sub(s.CreatedAt).Seconds())
	if lastDevice && t.onLogout != nil {
		t.onLogout(identity)
	}
}

// EvictStale drops any session whose connection reports it is no
// longer live, per isAlive. Intended to run on a background ticker
// as a defensive cleanup against connections that vanish without a
// clean Close call.
func (t *Table) EvictStale(isAlive func(Connection) bool) {
	t.mu.Lock()
	var dead []Connection
	for conn := range t.byConnection {
		if !isAlive(conn) {
			dead = append(dead, conn)
		}
	}
	t.mu.Unlock()

	for _, conn := range dead {
		t.Close(conn)
		metrics.SessionsExpired.Inc()
	}
}

// AllActive returns the identity of every account with at least one
// active session, used by the dispatcher to fan a broadcast-addressed
// group envelope out to everyone currently connected.
func (t *Table) AllActive() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byIdentity))
	for identity, devices := range t.byIdentity {
		for _, s := range devices {
			if s.Active() {
				out = append(out, identity)
				break
			}
		}
	}
	return out
}

// Count returns the number of distinct identities currently
// registered (not device count), refreshing the active-sessions
// gauge as a side effect.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active := 0
	for _, devices := range t.byIdentity {
		for _, s := range devices {
			if s.Active() {
				active++
			}
		}
	}
	metrics.SessionsActive.Set(float64(active))
	return len(t.byIdentity)
}

func now() time.Time { return time.Now() }
