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
	"fmt"
	"sync"
	"time"

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/internal/logger"
	"github.com/dimchat/station/internal/metrics"
	"github.com/dimchat/station/spool"
)

// Neighbor describes one other station this bridge dials out to. It
// mirrors config.NeighborConfig without importing the config package,
// so bridge stays wireable from any caller that can produce an ID,
// host and port.
type Neighbor struct {
	ID   string
	Host string
	Port int
}

// Bridge is the octopus bridge aggregate: one Worker per configured
// neighbor, each dialing out independently and forwarding local
// traffic to it while feeding the neighbor's own traffic back into
// the local Dispatcher.
type Bridge struct {
	stationID string
	workers   map[string]*Worker
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New builds a Bridge for the given neighbors. roamingBaseDir is the
// spool root; each neighbor's undeliverable envelopes land under
// roamingBaseDir/roaming/{neighborID}.
func New(stationID string, neighbors []Neighbor, dispatch Dispatcher, roamingBaseDir string, heartbeatInterval time.Duration, log *logger.StructuredLogger) *Bridge {
	roaming := spool.NewFileStoreIn(roamingBaseDir, "roaming")
	workers := make(map[string]*Worker, len(neighbors))
	for _, n := range neighbors {
		workers[n.ID] = NewWorker(n.ID, n.Host, n.Port, stationID, dispatch, roaming, heartbeatInterval, log)
	}
	return &Bridge{stationID: stationID, workers: workers}
}

// Start launches every neighbor Worker's dial-and-pump loop. It
// returns immediately; workers run until ctx is cancelled or Stop is
// called.
func (b *Bridge) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	for _, w := range b.workers {
		w := w
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Stop cancels every Worker and waits for their loops to flush
// outstanding envelopes to the roaming spool.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
}

// Forward queues env for delivery to neighborID, satisfying
// dispatcher.Bridge. An unknown neighborID is reported back as an
// error so the dispatcher's caller can decide whether to spool
// instead.
func (b *Bridge) Forward(ctx context.Context, neighborID string, env *message.Reliable) error {
	w, ok := b.workers[neighborID]
	if !ok {
		metrics.BridgeForwarded.WithLabelValues("inner", "failure").Inc()
		return fmt.Errorf("bridge: unknown neighbor %q", neighborID)
	}
	w.Enqueue(ctx, env)
	metrics.BridgeForwarded.WithLabelValues("inner", "success").Inc()
	return nil
}

// Neighbors lists every configured neighbor station ID, satisfying
// dispatcher.Bridge.
func (b *Bridge) Neighbors() []string {
	out := make([]string, 0, len(b.workers))
	for id := range b.workers {
		out = append(out, id)
	}
	return out
}
