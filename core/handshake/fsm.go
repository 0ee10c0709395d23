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

// Package handshake drives the challenge-response state machine that
// flips a session from newly-connected to authenticated: INIT ->
// CHALLENGED -> ACTIVE, with a terminal REJECTED on any verification
// failure.
package handshake

import (
	"fmt"
	"sync"
	"time"

	"github.com/dimchat/station/core/session"
	"github.com/dimchat/station/id"
	"github.com/dimchat/station/internal/logger"
	"github.com/dimchat/station/internal/metrics"
)

// State is one of the four handshake states.
type State int

const (
	StateInit State = iota
	StateChallenged
	StateActive
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateChallenged:
		return "challenged"
	case StateActive:
		return "active"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MetaVerifier is the thin slice of id.Verifier the FSM needs.
type MetaVerifier interface {
	VerifyMeta(meta id.Meta, address id.Address) (bool, error)
}

// Machine drives the FSM for every session in a session.Table. One
// Machine is shared process-wide, matching the "construct once,
// pass by handle" singleton strategy.
type Machine struct {
	table    *session.Table
	verifier MetaVerifier
	log      *logger.StructuredLogger

	mu     sync.Mutex
	states map[*session.Session]State
}

// New builds a Machine bound to table, verifying metas through
// verifier.
func New(table *session.Table, verifier MetaVerifier, log *logger.StructuredLogger) *Machine {
	return &Machine{
		table:    table,
		verifier: verifier,
		log:      log,
		states:   make(map[*session.Session]State),
	}
}

// Start processes one `start` command: identity and address come
// from the envelope's verified sender, clientAddress identifies the
// connection, clientKey is the session key the client currently
// believes (empty on first connect), and meta is the sender's
// attached meta attachment.
//
// Returns the session (nil whenever the state is StateRejected), the
// resulting state, and the session key to reply with on
// StateChallenged (empty otherwise).
func (m *Machine) Start(identity string, address id.Address, clientAddress, clientKey string, meta id.Meta) (*session.Session, State, string, error) {
	start := time.Now()
	defer func() {
		metrics.HandshakeDuration.WithLabelValues("process").Observe(time.Since(start).Seconds())
	}()

	ok, err := m.verifier.VerifyMeta(meta, address)
	if err != nil || !ok {
		metrics.HandshakesFailed.WithLabelValues("invalid").Inc()
		if m.log != nil {
			m.log.Warn("handshake meta verification failed", logger.Field{Key: "identity", Value: identity})
		}
		return nil, StateRejected, "", fmt.Errorf("handshake: meta verification failed for %s: %w", identity, errOrInvalid(err))
	}

	s, existed := m.table.FindByAddress(identity, clientAddress)
	if !existed {
		s = m.table.NewSession(identity, clientAddress)
		m.setState(s, StateInit)
		metrics.HandshakesInitiated.WithLabelValues("server").Inc()
	}

	switch m.stateOf(s) {
	case StateActive:
		return s, StateActive, "", nil

	case StateChallenged:
		if clientKey != "" && clientKey == s.SessionKey() {
			s.Activate()
			m.setState(s, StateActive)
			metrics.HandshakesCompleted.WithLabelValues("success").Inc()
			m.logTransition(identity, clientAddress, StateActive)
			return s, StateActive, "", nil
		}
		key := s.Rechallenge()
		m.logTransition(identity, clientAddress, StateChallenged)
		return s, StateChallenged, key, nil

	default: // StateInit
		key := s.Rechallenge()
		m.setState(s, StateChallenged)
		m.logTransition(identity, clientAddress, StateChallenged)
		return s, StateChallenged, key, nil
	}
}

// Reject forces a session into the terminal REJECTED state,
// e.g. after a post-handshake signature check fails the
// preconditions for ACTIVE (signature verified, address matches
// sender). The caller is expected to close the connection after.
func (m *Machine) Reject(s *session.Session) {
	m.setState(s, StateRejected)
	metrics.HandshakesFailed.WithLabelValues("invalid").Inc()
}

// StateOf reports the FSM's current view of s's state.
func (m *Machine) StateOf(s *session.Session) State {
	return m.stateOf(s)
}

// Forget drops s's FSM state, called when its connection closes.
func (m *Machine) Forget(s *session.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, s)
}

func (m *Machine) stateOf(s *session.Session) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[s]
	if !ok {
		return StateInit
	}
	return st
}

func (m *Machine) setState(s *session.Session, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s] = st
}

func (m *Machine) logTransition(identity, clientAddress string, st State) {
	if m.log == nil {
		return
	}
	m.log.Info("handshake transition",
		logger.Field{Key: "identity", Value: identity},
		logger.Field{Key: "remote_address", Value: clientAddress},
		logger.Field{Key: "state", Value: st.String()},
	)
}

func errOrInvalid(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("meta does not derive the claimed address")
}
