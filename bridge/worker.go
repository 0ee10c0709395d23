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

// Package bridge implements the octopus bridge: one Worker per
// neighbor station, each owning a client-side connection, a FIFO send
// queue, and a roaming spool for envelopes that could not be
// delivered before the connection dropped.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	stdnet "net"
	"sync"
	"time"

	"github.com/dimchat/station/core/mars"
	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/internal/logger"
	"github.com/dimchat/station/internal/metrics"
	relaynet "github.com/dimchat/station/net"
	"github.com/dimchat/station/spool"
)

// QueueCapacity bounds a Worker's in-memory FIFO before an enqueue
// spills straight to the roaming store.
const QueueCapacity = 256

// DefaultRedialBackoff is the Worker's starting reconnect delay,
// doubling on each consecutive failure up to maxRedialBackoff.
const DefaultRedialBackoff = time.Second

const maxRedialBackoff = 30 * time.Second

// Dispatcher is the narrow slice of dispatcher.Dispatcher the outer
// messenger needs to feed inbound neighbor traffic back into local
// routing.
type Dispatcher interface {
	Dispatch(ctx context.Context, env *message.Reliable) error
}

// sender is satisfied by *relaynet.Docker; narrowed here so Worker's
// ship-building logic is testable without a real connection.
type sender interface {
	Send(s *relaynet.Ship)
}

// Worker owns one neighbor's outbound FIFO queue and, while connected,
// the client-side Docker pumping frames to and from it. It is the
// octopus bridge's per-neighbor thread: Terminal + queue in the
// relay's own terms.
type Worker struct {
	neighborID string
	host       string
	port       int
	stationID  string

	dispatch          Dispatcher
	roaming           *spool.FileStore
	heartbeatInterval time.Duration
	log               *logger.StructuredLogger

	queue chan *message.Reliable

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewWorker builds a Worker for one neighbor. roaming is the shared
// roaming-spool store (rooted at baseDir/roaming); the Worker appends
// under its own neighborID.
func NewWorker(neighborID, host string, port int, stationID string, dispatch Dispatcher, roaming *spool.FileStore, heartbeatInterval time.Duration, log *logger.StructuredLogger) *Worker {
	return &Worker{
		neighborID:        neighborID,
		host:              host,
		port:              port,
		stationID:         stationID,
		dispatch:          dispatch,
		roaming:           roaming,
		heartbeatInterval: heartbeatInterval,
		log:               log,
		queue:             make(chan *message.Reliable, QueueCapacity),
		done:              make(chan struct{}),
	}
}

// Enqueue queues env for delivery to this neighbor, spooling straight
// to roaming if the in-memory queue is already full.
func (w *Worker) Enqueue(ctx context.Context, env *message.Reliable) {
	select {
	case w.queue <- env:
	default:
		w.roam(ctx, env)
	}
}

// Run dials the neighbor, pumps its connection until it drops, then
// redials with exponential backoff, until ctx is cancelled. Any
// envelope still queued when ctx is cancelled is flushed to the
// roaming spool before Run returns.
func (w *Worker) Run(ctx context.Context) {
	defer w.flushToRoaming(context.Background())
	defer close(w.done)

	backoff := DefaultRedialBackoff
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := stdnet.Dial("tcp", fmt.Sprintf("%s:%d", w.host, w.port))
		if err != nil {
			w.logWarn("dial failed", err)
			if !w.sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = DefaultRedialBackoff
		metrics.NeighborsConnected.Inc()
		w.pump(ctx, relaynet.NewTCPTransporter(conn))
		metrics.NeighborsConnected.Dec()
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxRedialBackoff {
		return maxRedialBackoff
	}
	return d
}

func (w *Worker) pump(ctx context.Context, transporter relaynet.Transporter) {
	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	docker := relaynet.NewDocker(transporter, w, w.heartbeatInterval)
	runDone := make(chan struct{})
	go func() {
		_ = docker.Run(pumpCtx)
		close(runDone)
	}()

	for {
		select {
		case <-runDone:
			return
		case env := <-w.queue:
			w.ship(docker, env)
		}
	}
}

// ship marshals env to the wire format and hands it to sender,
// roaming it on write failure.
func (w *Worker) ship(s sender, env *message.Reliable) {
	body, err := env.MarshalJSON()
	if err != nil {
		w.roam(context.Background(), env)
		return
	}
	s.Send(&relaynet.Ship{
		Cmd:        mars.CmdSendMsg,
		Body:       body,
		Priority:   relaynet.Normal,
		MaxRetries: 3,
		Handler: func(err error) {
			if err != nil {
				w.roam(context.Background(), env)
			}
		},
	})
}

func (w *Worker) roam(ctx context.Context, env *message.Reliable) {
	if w.roaming == nil {
		return
	}
	if err := w.roaming.Append(ctx, w.neighborID, env); err == nil {
		metrics.BridgeRoamed.Inc()
	}
}

func (w *Worker) flushToRoaming(ctx context.Context) {
	for {
		select {
		case env := <-w.queue:
			w.roam(ctx, env)
		default:
			return
		}
	}
}

// HandleFrame is the bridge's outer messenger: envelopes arriving from
// this neighbor are decoded and fed back into the local dispatcher,
// unless they are addressed to this station's own id already (which
// would mean the local station is seeing its own outbound traffic
// reflected back, an impossible loop this guards against anyway).
func (w *Worker) HandleFrame(_ *relaynet.Connection, frame relaynet.Frame) {
	var env message.Reliable
	if err := json.Unmarshal(frame.Body, &env); err != nil {
		w.logWarn("decode inbound envelope failed", err)
		return
	}
	if env.Receiver == w.stationID {
		return
	}
	metrics.BridgeForwarded.WithLabelValues("outer", "success").Inc()
	_ = w.dispatch.Dispatch(context.Background(), &env)
}

func (w *Worker) logWarn(msg string, err error) {
	if w.log == nil {
		return
	}
	w.log.Warn("bridge: "+msg,
		logger.Field{Key: "neighbor", Value: w.neighborID},
		logger.Field{Key: "error", Value: err.Error()},
	)
}
