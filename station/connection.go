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
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dimchat/station/core/handshake"
	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/id"
	"github.com/dimchat/station/internal/logger"
	"github.com/dimchat/station/internal/metrics"
	relaynet "github.com/dimchat/station/net"
	"github.com/dimchat/station/pkg/storage"
)

// connHandler is the per-connection net.Delegate: it routes frames to
// the handshake FSM until the session reaches ACTIVE, then to the
// dispatcher, matching the relay's own data-flow order (Connection →
// Docker → Handshake FSM → Dispatcher).
type connHandler struct {
	station *Station
	conn    *relaynet.Connection
	docker  *relaynet.Docker

	mu      sync.Mutex
	session *connSession
}

type connSession struct {
	identity string
	handle   *dockerHandle
}

func newConnHandler(st *Station) *connHandler {
	return &connHandler{station: st}
}

func (h *connHandler) bind(conn *relaynet.Connection, docker *relaynet.Docker) {
	h.conn = conn
	h.docker = docker
}

func (h *connHandler) HandleFrame(_ *relaynet.Connection, frame relaynet.Frame) {
	var env message.Reliable
	if err := json.Unmarshal(frame.Body, &env); err != nil {
		h.logWarn("decode inbound envelope failed", err)
		return
	}
	metrics.SessionMessageSize.WithLabelValues("inbound").Observe(float64(len(frame.Body)))

	active := h.activeIdentity()
	if active == "" {
		h.handleHandshake(env)
		return
	}

	ctx := context.Background()
	if !h.verifySignature(ctx, env) {
		return
	}

	_ = h.station.dispatcher.Dispatch(ctx, &env)
}

// verifySignature looks up the sender's cached meta and checks
// env's detached signature against it, so a station never routes or
// delivers an envelope it cannot attribute to its claimed sender.
func (h *connHandler) verifySignature(ctx context.Context, env message.Reliable) bool {
	meta, err := lookupMeta(ctx, h.station.store.MetaStore(), env.Sender)
	if err != nil {
		h.logWarn("sender meta not on file, dropping envelope", err)
		return false
	}
	ok, err := h.station.verifier.VerifyEnvelope(env.Data, env.Signature, meta)
	if err != nil {
		h.logWarn("envelope signature verification failed", err)
		return false
	}
	if !ok {
		h.logWarn("envelope signature mismatch, dropping envelope", fmt.Errorf("sender %s", env.Sender))
		return false
	}
	return true
}

func (h *connHandler) activeIdentity() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return ""
	}
	return h.session.identity
}

func (h *connHandler) handleHandshake(env message.Reliable) {
	cmd, err := handshake.ParseCommand(env.Data)
	if err != nil {
		h.logWarn("decode handshake command failed", err)
		return
	}

	parsed, err := id.Parse(env.Sender)
	if err != nil {
		h.logWarn("parse handshake sender failed", err)
		return
	}

	handle := newDockerHandle(h.conn, h.docker)
	sess, state, key, err := h.station.handshakeFSM.Start(env.Sender, parsed.Address(), h.conn.RemoteAddress(), cmd.Session, cmd.Meta)
	if err != nil {
		h.logWarn("handshake rejected", err)
		_ = h.docker.Close()
		return
	}
	h.station.sessions.Bind(handle, sess)

	if err := saveMeta(context.Background(), h.station.store.MetaStore(), env.Sender, cmd.Meta); err != nil {
		h.logWarn("cache sender meta failed", err)
	}

	switch state {
	case handshake.StateChallenged:
		h.replyHandshake(handle, env.Sender, handshake.AgainReply(key))
	case handshake.StateActive:
		h.mu.Lock()
		h.session = &connSession{identity: env.Sender, handle: handle}
		h.mu.Unlock()
		h.recordLogin(env.Sender)
		h.station.receptionist.Admit(env.Sender)
		h.replyHandshake(handle, env.Sender, handshake.SuccessReply())
	}
}

// recordLogin saves the at-most-once login record the moment a
// session reaches ACTIVE, matching property 8's "session establishment
// is the login event" reading of the handshake FSM.
func (h *connHandler) recordLogin(identity string) {
	if h.station.login == nil {
		return
	}
	record := &storage.LoginRecord{
		ID:          identity,
		Terminal:    h.conn.RemoteAddress(),
		StationHost: h.station.cfg.Station.Host,
		StationPort: h.station.cfg.Station.Port,
		LoggedInAt:  time.Now(),
	}
	if _, err := h.station.login.Save(context.Background(), record); err != nil {
		h.logWarn("save login record failed", err)
	}
}

func (h *connHandler) replyHandshake(handle *dockerHandle, recipient string, reply handshake.Reply) {
	fields, err := json.Marshal(reply)
	if err != nil {
		return
	}
	out := &message.Reliable{
		Secure: message.Secure{
			Sender:   h.station.stationID,
			Receiver: recipient,
			Time:     time.Now(),
			Data:     fields,
		},
	}
	body, err := out.MarshalJSON()
	if err != nil {
		return
	}
	handle.Send(body, nil)
}

func (h *connHandler) forget() {
	h.mu.Lock()
	sess := h.session
	h.session = nil
	h.mu.Unlock()
	if sess != nil {
		h.station.sessions.Close(sess.handle)
	}
}

func (h *connHandler) logWarn(msg string, err error) {
	if h.station.log == nil {
		return
	}
	h.station.log.Warn("connection: "+msg, logger.Field{Key: "error", Value: err.Error()})
}
