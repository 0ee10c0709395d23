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

// Package net implements the station's connection layer: a Transporter
// abstraction over raw sockets and WebSocket, a Docker that pumps
// inbound frames to a delegate and drains an outbound priority queue,
// and the heartbeat that keeps idle connections honest.
package net

import "io"

// Frame is one logical unit exchanged with a peer, independent of how
// the underlying transport delimits it (a Mars header over TCP, or a
// single WebSocket message).
type Frame struct {
	Cmd  int32
	Seq  int32
	Body []byte
}

// Transporter hides the wire-level differences between a raw TCP
// socket framed with Mars headers and a WebSocket connection whose
// message boundaries are themselves the framing. A Docker drives
// either one through this same interface.
type Transporter interface {
	// ReadFrame blocks until the next complete frame arrives, or
	// returns an error (including io.EOF on a clean peer close).
	ReadFrame() (Frame, error)

	// WriteFrame sends a frame to the peer.
	WriteFrame(Frame) error

	// Close releases the underlying socket. Safe to call more than
	// once; subsequent calls are no-ops.
	Close() error

	// RemoteAddress identifies the peer, used as the session table's
	// client-address key.
	RemoteAddress() string

	// Kind names the transport for metrics labeling ("tcp", "websocket").
	Kind() string
}

// errClosed is reported by a Docker to the handler of every ship still
// queued when the Docker is closed.
var errClosed = io.ErrClosedPipe
