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

// Package dispatcher implements the station's central routing step:
// trace-loop suppression, the policy filter, and the decision between
// local delivery, offline spool, group fan-out, and neighbor bridging
// for every reliable envelope the station accepts.
package dispatcher

import (
	"context"
	"time"

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/core/session"
	"github.com/dimchat/station/id"
	"github.com/dimchat/station/internal/logger"
	"github.com/dimchat/station/internal/metrics"
	"github.com/dimchat/station/policy"
)

// Routing outcomes, matching the dispatch_routes_total metric's labels.
const (
	RouteLocal     = "local"
	RouteSpool     = "spool"
	RouteGroup     = "group"
	RouteNeighbor  = "neighbor"
	RouteBroadcast = "broadcast"
	RouteDropped   = "dropped"
	RouteSelf      = "self"
)

// SessionLookup is the narrow slice of session.Table the dispatcher
// needs to decide whether a receiver is attached to this station.
type SessionLookup interface {
	Lookup(identity string) []*session.Session
	IsActive(identity string) bool
	AllActive() []string
}

// Deliverer hands one envelope to one session's connection, reporting
// whether the transport accepted it.
type Deliverer interface {
	Deliver(ctx context.Context, s *session.Session, env *message.Reliable) bool
}

// SpoolWriter is the narrow slice of spool.Spool the dispatcher needs.
type SpoolWriter interface {
	Append(ctx context.Context, recipient string, env *message.Reliable) error
}

// Pusher is the narrow slice of push.Sink the dispatcher needs.
type Pusher interface {
	Notify(recipient, signature, summary string)
}

// Bridge forwards an envelope to one neighbor station, and reports the
// full neighbor set so broadcast fan-out can exclude stations already
// listed in an envelope's traces.
type Bridge interface {
	Forward(ctx context.Context, neighborID string, env *message.Reliable) error
	Neighbors() []string
}

// MetaChecker reports whether this station already has a sender's
// meta/visa attachment cached, gating the suspend-for-missing-key step.
type MetaChecker interface {
	HasMeta(ctx context.Context, senderID string) (bool, error)
}

// CommandProcessor handles envelopes addressed to the station itself
// (handshake, meta query, login, mute/block, ...). Its reply, if any,
// becomes the dispatcher's output envelope back to the sender.
type CommandProcessor interface {
	Process(ctx context.Context, env *message.Reliable) (*message.Reliable, error)
}

// ReceiptSender delivers a typed receipt back to recipient, taking
// care of enveloping and signing on the dispatcher's behalf.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, recipient string, receipt message.Receipt) error
}

// Dispatcher is the station's routing core. One Dispatcher instance is
// shared process-wide; it holds no per-connection state of its own.
type Dispatcher struct {
	stationID string

	sessions SessionLookup
	deliver  Deliverer
	spool    SpoolWriter
	pusher   Pusher
	bridge   Bridge
	commands CommandProcessor
	receipts ReceiptSender
	filter   *policy.Filter
	meta     MetaChecker
	log      *logger.StructuredLogger

	suspend *suspendQueue
}

// Config bundles a Dispatcher's collaborators. Bridge, MetaChecker and
// ReceiptSender may be nil: a nil Bridge means neighbor forwarding is a
// no-op, a nil MetaChecker disables the suspend step, and a nil
// ReceiptSender silently drops receipts instead of sending them.
type Config struct {
	StationID string

	Sessions SessionLookup
	Deliver  Deliverer
	Spool    SpoolWriter
	Pusher   Pusher
	Bridge   Bridge
	Commands CommandProcessor
	Receipts ReceiptSender
	Filter   *policy.Filter
	Meta     MetaChecker
	Log      *logger.StructuredLogger

	SuspendLimit int
	SuspendTTL   time.Duration
}

// New builds a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		stationID: cfg.StationID,
		sessions:  cfg.Sessions,
		deliver:   cfg.Deliver,
		spool:     cfg.Spool,
		pusher:    cfg.Pusher,
		bridge:    cfg.Bridge,
		commands:  cfg.Commands,
		receipts:  cfg.Receipts,
		filter:    cfg.Filter,
		meta:      cfg.Meta,
		log:       cfg.Log,
		suspend:   newSuspendQueue(cfg.SuspendLimit, cfg.SuspendTTL),
	}
}

// Dispatch is the dispatcher's single entry point: env's signature has
// already been verified by the caller. It never returns an error for
// an ordinary routing outcome — those are reported via metrics and
// receipts — only for a policy store failure. Spool, bridge and
// receipt failures are not reported to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, env *message.Reliable) error {
	start := timeNow()
	defer func() {
		metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.MessageSize.Observe(float64(len(env.Data)))

	if env.HasTrace(d.stationID) && env.IsBroadcastAddressed(d.isBroadcastAddress) {
		metrics.TracesSuppressed.Inc()
		metrics.RoutesTaken.WithLabelValues(RouteDropped).Inc()
		metrics.MessagesProcessed.WithLabelValues("rejected").Inc()
		return nil
	}
	env.AppendTrace(d.stationID)

	if d.filter != nil {
		allowed, reason, err := d.filter.Allow(ctx, env.Sender, env.Receiver)
		if err != nil {
			metrics.MessagesProcessed.WithLabelValues("rejected").Inc()
			return err
		}
		if !allowed {
			d.sendReceipt(ctx, env.Sender, message.NewReceipt("denied: "+reason))
			metrics.RoutesTaken.WithLabelValues(RouteDropped).Inc()
			metrics.MessagesProcessed.WithLabelValues("rejected").Inc()
			return nil
		}
	}

	carriesMeta := env.Meta != nil || env.Visa != nil
	if d.meta != nil && !carriesMeta {
		known, err := d.meta.HasMeta(ctx, env.Sender)
		if err == nil && !known {
			d.suspend.Add(env.Sender, env)
			metrics.MessagesProcessed.WithLabelValues("accepted").Inc()
			return nil
		}
	}

	route := d.route(ctx, env)
	metrics.RoutesTaken.WithLabelValues(route).Inc()
	metrics.MessagesProcessed.WithLabelValues("accepted").Inc()

	if carriesMeta {
		d.releaseSuspended(ctx, env.Sender)
	}
	return nil
}

// releaseSuspended redispatches every envelope that was waiting on
// sender's meta/visa, and sends a timeout receipt for any that had
// already expired.
func (d *Dispatcher) releaseSuspended(ctx context.Context, sender string) {
	fresh, expired := d.suspend.Release(sender)
	for _, env := range fresh {
		_ = d.Dispatch(ctx, env)
	}
	for _, env := range expired {
		d.sendReceipt(ctx, env.Sender, message.NewReceipt("timeout: sender key never arrived"))
	}
}

// SweepSuspended drops suspend-queue entries older than the configured
// TTL, sending each a timeout receipt. Intended to run on a periodic
// ticker independent of message traffic.
func (d *Dispatcher) SweepSuspended(ctx context.Context) {
	for _, env := range d.suspend.Sweep() {
		d.sendReceipt(ctx, env.Sender, message.NewReceipt("timeout: sender key never arrived"))
	}
}

func (d *Dispatcher) route(ctx context.Context, env *message.Reliable) string {
	receiver := env.Receiver

	if receiver == d.stationID {
		return d.routeSelf(ctx, env)
	}

	parsed, err := id.Parse(receiver)
	if err != nil {
		if d.log != nil {
			d.log.Warn("dispatcher: unroutable receiver", logger.Field{Key: "receiver", Value: receiver})
		}
		return RouteDropped
	}

	if parsed.Address().IsBroadcast() && parsed.Name() == "station" {
		return d.routeStationBroadcast(ctx, env)
	}
	if d.bridge != nil && d.isNeighbor(receiver) {
		_ = d.bridge.Forward(ctx, receiver, env)
		return RouteNeighbor
	}
	if parsed.IsGroup() {
		return d.routeGroup(ctx, env, parsed)
	}

	return d.routeToIdentity(ctx, receiver, env, RouteLocal)
}

func (d *Dispatcher) routeSelf(ctx context.Context, env *message.Reliable) string {
	if d.commands == nil {
		return RouteSelf
	}
	reply, err := d.commands.Process(ctx, env)
	if err != nil {
		if d.log != nil {
			d.log.Warn("dispatcher: command processing failed", logger.Field{Key: "error", Value: err.Error()})
		}
		return RouteSelf
	}
	if reply != nil {
		_ = d.Dispatch(ctx, reply)
	}
	return RouteSelf
}

// routeStationBroadcast handles envelopes addressed to the
// distinguished "station@everywhere" form: fan out to every neighbor
// not already in traces, then deliver locally once via the command
// processor.
func (d *Dispatcher) routeStationBroadcast(ctx context.Context, env *message.Reliable) string {
	d.forwardToNeighbors(ctx, env)
	if d.commands != nil {
		_, _ = d.commands.Process(ctx, env)
	}
	return RouteBroadcast
}

// routeGroup handles a group-addressed envelope: the broadcast group
// fans out to every locally active session and to every neighbor;
// any other group is forwarded using the same per-identity routing
// rules as a user receiver, addressed to the group itself (the
// group's member-resolution and assistant-bot lookup are outside the
// dispatcher's routing responsibility).
func (d *Dispatcher) routeGroup(ctx context.Context, env *message.Reliable, group id.ID) string {
	if group.IsBroadcast() {
		for _, identity := range d.sessions.AllActive() {
			d.deliverToIdentity(ctx, identity, env)
		}
		d.forwardToNeighbors(ctx, env)
		return RouteBroadcast
	}
	return d.routeToIdentity(ctx, env.Receiver, env, RouteGroup)
}

// routeToIdentity is the user/group delivery rule shared by every
// non-broadcast receiver: try every active local session first, fall
// through to the offline spool plus a push notification otherwise.
func (d *Dispatcher) routeToIdentity(ctx context.Context, receiver string, env *message.Reliable, onLocalRoute string) string {
	if d.deliverToIdentity(ctx, receiver, env) {
		return onLocalRoute
	}
	if d.spool != nil {
		_ = d.spool.Append(ctx, receiver, env)
	}
	if d.pusher != nil {
		d.pusher.Notify(receiver, env.PrimaryKey(), "new message")
	}
	return RouteSpool
}

// deliverToIdentity enqueues env to every active session for identity,
// reporting whether at least one accepted it.
func (d *Dispatcher) deliverToIdentity(ctx context.Context, identity string, env *message.Reliable) bool {
	if d.sessions == nil || !d.sessions.IsActive(identity) {
		return false
	}
	delivered := false
	for _, s := range d.sessions.Lookup(identity) {
		if !s.Active() {
			continue
		}
		if d.deliver.Deliver(ctx, s, env) {
			delivered = true
		}
	}
	if delivered {
		d.sendReceipt(ctx, env.Sender, message.NewReceipt(message.Delivered))
	}
	return delivered
}

// forwardToNeighbors honors an explicit single-neighbor target if the
// envelope carries one; otherwise it queues env to every neighbor not
// already listed in its traces or its sent-neighbors hint, per the
// loop-suppression rule shared with the octopus bridge.
func (d *Dispatcher) forwardToNeighbors(ctx context.Context, env *message.Reliable) {
	if d.bridge == nil {
		return
	}
	if env.Target != "" {
		_ = d.bridge.Forward(ctx, env.Target, env)
		return
	}
	for _, neighborID := range d.bridge.Neighbors() {
		if env.HasTrace(neighborID) || env.HasSentNeighbor(neighborID) {
			continue
		}
		_ = d.bridge.Forward(ctx, neighborID, env)
	}
}

func (d *Dispatcher) isNeighbor(stationID string) bool {
	for _, neighborID := range d.bridge.Neighbors() {
		if neighborID == stationID {
			return true
		}
	}
	return false
}

func (d *Dispatcher) isBroadcastAddress(address string) bool {
	parsed, err := id.Parse(address)
	if err != nil {
		return false
	}
	return parsed.Address().IsBroadcast()
}

func (d *Dispatcher) sendReceipt(ctx context.Context, recipient string, receipt message.Receipt) {
	if d.receipts == nil {
		return
	}
	_ = d.receipts.SendReceipt(ctx, recipient, receipt)
}
