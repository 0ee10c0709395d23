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

// Package receptionist implements the background worker that drains
// the offline spool for recipients that just became active, per a
// fixed tick interval.
package receptionist

import (
	"context"
	"sync"
	"time"

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/core/session"
	"github.com/dimchat/station/internal/metrics"
	"github.com/dimchat/station/spool"
)

// DefaultTick is the worker's polling interval.
const DefaultTick = 100 * time.Millisecond

// SpoolReader is the narrow slice of spool.Spool the worker needs.
type SpoolReader interface {
	LoadBatch(ctx context.Context, recipient string, limit int) (spool.Batch, error)
	RemoveBatch(ctx context.Context, batch spool.Batch, count int) error
}

// SessionLookup is the narrow slice of session.Table the worker needs.
type SessionLookup interface {
	Lookup(identity string) []*session.Session
	IsActive(identity string) bool
}

// Deliverer attempts to hand one envelope to one session's connection,
// reporting whether it was accepted by the transport.
type Deliverer interface {
	Deliver(ctx context.Context, s *session.Session, env *message.Reliable) bool
}

// Worker is the single background scanner described by the relay's
// receptionist design: a "new guest" set it drains once per tick.
type Worker struct {
	spool    SpoolReader
	sessions SessionLookup
	deliver  Deliverer
	tick     time.Duration

	mu     sync.Mutex
	guests map[string]struct{}
}

// New builds a Worker. tick of zero selects DefaultTick.
func New(spoolReader SpoolReader, sessions SessionLookup, deliver Deliverer, tick time.Duration) *Worker {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Worker{
		spool:    spoolReader,
		sessions: sessions,
		deliver:  deliver,
		tick:     tick,
		guests:   make(map[string]struct{}),
	}
}

// Admit adds identity to the new-guest set, called by the handshake
// FSM (or USER_LOGIN processing) the moment a session becomes active.
func (w *Worker) Admit(identity string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.guests[identity] = struct{}{}
	metrics.GuestsActive.Set(float64(len(w.guests)))
}

// Run drains the guest set once per tick until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tickOnce(ctx)
		}
	}
}

func (w *Worker) snapshotGuests() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.guests))
	for identity := range w.guests {
		out = append(out, identity)
	}
	return out
}

func (w *Worker) removeGuest(identity string) {
	w.mu.Lock()
	delete(w.guests, identity)
	metrics.GuestsActive.Set(float64(len(w.guests)))
	w.mu.Unlock()
}

// tickOnce runs one pass of the per-tick algorithm: for each guest,
// drain as much of its spool as every currently-active session will
// accept, stopping at the first envelope that every session rejects
// so the remainder stays queued in order for the next login.
func (w *Worker) tickOnce(ctx context.Context) {
	for _, identity := range w.snapshotGuests() {
		if !w.sessions.IsActive(identity) {
			w.removeGuest(identity)
			metrics.SpoolDrains.WithLabelValues("no_session").Inc()
			continue
		}

		batch, err := w.spool.LoadBatch(ctx, identity, spool.DefaultBatchSize)
		if err != nil || len(batch.Envelopes) == 0 {
			w.removeGuest(identity)
			metrics.SpoolDrains.WithLabelValues("emptied").Inc()
			continue
		}

		sessions := w.sessions.Lookup(identity)
		delivered := 0
		stalled := false
		for _, env := range batch.Envelopes {
			if w.deliverToAny(ctx, sessions, env) {
				delivered++
				continue
			}
			stalled = true
			break
		}

		if delivered > 0 {
			_ = w.spool.RemoveBatch(ctx, batch, delivered)
		}
		if stalled {
			w.removeGuest(identity)
			metrics.SpoolDrains.WithLabelValues("stalled").Inc()
		} else {
			metrics.SpoolDrains.WithLabelValues("partial").Inc()
		}
	}
}

func (w *Worker) deliverToAny(ctx context.Context, sessions []*session.Session, env *message.Reliable) bool {
	delivered := false
	for _, s := range sessions {
		if !s.Active() {
			continue
		}
		if w.deliver.Deliver(ctx, s, env) {
			delivered = true
		}
	}
	return delivered
}
