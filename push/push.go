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

// Package push implements the station's best-effort, out-of-band
// notification sink: pluggable backends behind a 60-second dedup
// window per (recipient, signature), with its own bounded queue so a slow
// backend never blocks dispatch.
package push

import (
	"context"
	"sync"
	"time"

	"github.com/dimchat/station/internal/metrics"
)

// DedupWindow is the default interval within which a repeat push for
// the same (recipient, envelope signature) is suppressed.
const DedupWindow = 60 * time.Second

// QueueCapacity bounds the sink's internal queue so Notify never
// blocks the dispatcher for more than a queue-full check.
const QueueCapacity = 1024

// Backend delivers one notification. Implementations must not block
// longer than is reasonable for a single HTTP call or log write;
// Sink already isolates callers from backend latency via its queue.
type Backend interface {
	Push(ctx context.Context, recipient, summary string) error
	Name() string
}

// notification is one queued unit of work.
type notification struct {
	recipient string
	signature string
	summary   string
}

// Sink runs one backend behind a dedup window and a bounded queue,
// draining it on its own goroutine so Notify returns immediately.
type Sink struct {
	backend Backend
	dedup   time.Duration

	queue chan notification

	mu   sync.Mutex
	seen map[string]time.Time // "recipient\x00signature" -> last sent

	done chan struct{}
	stop sync.Once
}

// NewSink builds a Sink over backend. dedup of zero selects DedupWindow.
func NewSink(backend Backend, dedup time.Duration) *Sink {
	if dedup <= 0 {
		dedup = DedupWindow
	}
	return &Sink{
		backend: backend,
		dedup:   dedup,
		queue:   make(chan notification, QueueCapacity),
		seen:    make(map[string]time.Time),
		done:    make(chan struct{}),
	}
}

// Run drains the queue until ctx is cancelled. Call it once, in its
// own goroutine, as part of station startup.
func (s *Sink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case n := <-s.queue:
			err := s.backend.Push(ctx, n.recipient, n.summary)
			status := "success"
			if err != nil {
				status = "failure"
			}
			metrics.PushAttempts.WithLabelValues(s.backend.Name(), status).Inc()
		}
	}
}

// Stop halts Run and is idempotent.
func (s *Sink) Stop() {
	s.stop.Do(func() { close(s.done) })
}

// Notify enqueues a push for recipient, deduplicated within the sink's
// window per (recipient, signature). Never blocks more than a single
// non-blocking channel send; if the queue is full the notification is
// dropped (best-effort, per spec).
func (s *Sink) Notify(recipient, signature, summary string) {
	key := recipient + "\x00" + signature
	now := time.Now()

	s.mu.Lock()
	if last, ok := s.seen[key]; ok && now.Sub(last) < s.dedup {
		s.mu.Unlock()
		metrics.PushDeduplicated.Inc()
		return
	}
	s.seen[key] = now
	s.mu.Unlock()

	select {
	case s.queue <- notification{recipient: recipient, signature: signature, summary: summary}:
	default:
		metrics.PushAttempts.WithLabelValues(s.backend.Name(), "dropped_full_queue").Inc()
	}
}
