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

import "time"

// Priority orders ships on a Docker's outbound queue. Higher values are
// drained first; ships of equal priority are drained FIFO.
type Priority int

const (
	Slower Priority = -1
	Normal Priority = 0
	Urgent Priority = 1
)

// CompletionHandler is invoked exactly once per ship, reporting how it
// left the outbound queue: nil on a successful write, non-nil on a
// timeout (retry budget exhausted) or a transport write failure.
type CompletionHandler func(err error)

// Ship is one outbound unit of work: a frame body plus delivery policy.
// The frame's cmd/seq are carried alongside the body so a Transporter
// that needs them (raw Mars framing) has them, while one that doesn't
// (WebSocket, where the message boundary is the frame) can ignore them.
type Ship struct {
	Cmd      int32
	Seq      int32
	Body     []byte
	Priority Priority

	MaxRetries int
	retries    int
	nextAttempt time.Time

	Handler CompletionHandler

	enqueuedAt time.Time
	order      uint64 // enqueue sequence, managed by outboundQueue
	index      int    // heap bookkeeping, managed by outboundQueue
}

// ready reports whether the ship is eligible to be written right now:
// brand new (never attempted) or its backoff window has elapsed.
func (s *Ship) ready(now time.Time) bool {
	return s.retries == 0 || !now.Before(s.nextAttempt)
}

// exhausted reports whether the ship has used up its retry budget.
func (s *Ship) exhausted() bool {
	return s.MaxRetries > 0 && s.retries > s.MaxRetries
}

// backoff schedules the next retry attempt using simple exponential
// backoff seeded at 30s, per the connection-level retry timeout.
func (s *Ship) backoff(now time.Time) {
	s.retries++
	delay := 30 * time.Second
	for i := 1; i < s.retries; i++ {
		delay *= 2
	}
	s.nextAttempt = now.Add(delay)
}
