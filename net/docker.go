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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dimchat/station/core/mars"
	"github.com/dimchat/station/internal/metrics"
)

// ErrShipTimeout is reported to a Ship's CompletionHandler when its
// retry budget is exhausted before a write succeeds.
var ErrShipTimeout = errors.New("net: ship retry budget exhausted")

// DefaultHeartbeatInterval matches the relay's documented liveness
// cadence: a NOOP ping every 30s, connection dropped after three are
// missed in a row.
const DefaultHeartbeatInterval = 30 * time.Second

const missedHeartbeatLimit = 3

// Delegate receives frames pumped off a Docker's inbound loop. Mars
// liveness markers (PING/PONG/NOOP) are intercepted by the Docker
// itself and never reach the delegate.
type Delegate interface {
	HandleFrame(conn *Connection, frame Frame)
}

// Docker owns one connection's inbound pump and outbound priority
// queue: it reads frames and hands data-carrying ones to a Delegate,
// answers liveness pings, and drains queued ships by priority,
// reporting a failed write to the ship's handler at once rather than
// requeueing it, independent of whether the underlying Transporter is
// raw TCP or WebSocket.
type Docker struct {
	Connection  *Connection
	transporter Transporter
	delegate    Delegate
	queue       *outboundQueue

	heartbeatInterval time.Duration

	wakeup    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewDocker builds a Docker around a Transporter. heartbeatInterval of
// zero selects DefaultHeartbeatInterval.
func NewDocker(t Transporter, delegate Delegate, heartbeatInterval time.Duration) *Docker {
	if heartbeatInterval <= 0 {
		heartbeatInterval = DefaultHeartbeatInterval
	}
	metrics.ConnectionsAccepted.WithLabelValues(t.Kind()).Inc()
	return &Docker{
		Connection:        NewConnection(t),
		transporter:       t,
		delegate:          delegate,
		queue:             newOutboundQueue(),
		heartbeatInterval: heartbeatInterval,
		wakeup:            make(chan struct{}, 1),
		closed:            make(chan struct{}),
	}
}

// Send enqueues a ship for delivery. Safe to call concurrently with Run.
func (d *Docker) Send(s *Ship) {
	depth := d.queue.Push(s)
	metrics.OutboundQueueDepth.Observe(float64(depth))
	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

// Run drives the connection until ctx is cancelled or the transporter
// fails. It blocks; callers run it in its own goroutine per connection.
func (d *Docker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go d.inboundLoop(errCh)
	go d.outboundLoop(ctx)
	go d.heartbeatLoop(ctx)

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case runErr = <-errCh:
	}
	_ = d.Close()
	return runErr
}

func (d *Docker) inboundLoop(errCh chan error) {
	for {
		f, err := d.transporter.ReadFrame()
		if err != nil {
			errCh <- err
			return
		}
		d.Connection.touch()

		if mars.IsLiveness(f.Body) {
			if reply, respond := mars.LivenessReply(f.Body); respond {
				d.Send(&Ship{Cmd: mars.CmdNoop, Seq: f.Seq, Body: reply, Priority: Slower, MaxRetries: 1})
			}
			continue
		}
		d.delegate.HandleFrame(d.Connection, f)
	}
}

func (d *Docker) outboundLoop(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.failAll(ctx.Err())
			return
		case <-d.closed:
			d.failAll(errClosed)
			return
		case <-d.wakeup:
		case <-ticker.C:
		}
		d.drainReady()
	}
}

func (d *Docker) drainReady() {
	for {
		s := d.queue.Pop(now())
		if s == nil {
			return
		}
		if s.exhausted() {
			d.report(s, "dropped_timeout", ErrShipTimeout)
			continue
		}
		err := d.transporter.WriteFrame(Frame{Cmd: s.Cmd, Seq: s.Seq, Body: s.Body})
		if err != nil {
			d.report(s, "dropped_transport", err)
			continue
		}
		d.report(s, "written", nil)
	}
}

func (d *Docker) report(s *Ship, outcome string, err error) {
	metrics.ShipLatency.WithLabelValues(outcome).Observe(now().Sub(s.enqueuedAt).Seconds())
	if s.Handler != nil {
		s.Handler(err)
	}
}

func (d *Docker) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(d.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.closed:
			return
		case <-ticker.C:
			if d.Connection.IdleFor(now()) > missedHeartbeatLimit*d.heartbeatInterval {
				_ = d.Close()
				return
			}
			d.Send(&Ship{Cmd: mars.CmdNoop, Priority: Slower, MaxRetries: 1, Body: mars.BodyPing})
		}
	}
}

func (d *Docker) failAll(reason error) {
	for _, s := range d.queue.Drain() {
		if s.Handler != nil {
			s.Handler(reason)
		}
	}
}

// Close shuts the connection down, failing any still-queued ships.
// Safe to call more than once and from multiple goroutines.
func (d *Docker) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.closed)
		err = d.transporter.Close()
		metrics.ConnectionsClosed.Inc()
	})
	return err
}
