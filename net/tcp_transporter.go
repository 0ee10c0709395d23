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
	stdnet "net"
	"sync"

	"github.com/dimchat/station/core/mars"
)

// TCPTransporter reads and writes Mars-framed packages over a raw
// stdnet.Conn, feeding inbound bytes through a core/mars.Stream and
// encoding outbound frames with core/mars.Encode.
type TCPTransporter struct {
	conn   stdnet.Conn
	stream *mars.Stream
	readBuf [32 * 1024]byte

	closeOnce sync.Once
	closeErr  error
}

// NewTCPTransporter wraps an accepted stdnet.Conn.
func NewTCPTransporter(conn stdnet.Conn) *TCPTransporter {
	return &TCPTransporter{
		conn:   conn,
		stream: mars.NewStream(mars.DefaultParseOptions()),
	}
}

func (t *TCPTransporter) ReadFrame() (Frame, error) {
	for {
		pkg, ok, err := t.stream.Next()
		if err != nil {
			return Frame{}, err
		}
		if ok {
			return Frame{Cmd: pkg.Header.Cmd, Seq: pkg.Header.Seq, Body: pkg.Body}, nil
		}

		n, err := t.conn.Read(t.readBuf[:])
		if n > 0 {
			t.stream.Feed(t.readBuf[:n])
		}
		if err != nil {
			return Frame{}, err
		}
	}
}

func (t *TCPTransporter) WriteFrame(f Frame) error {
	_, err := t.conn.Write(mars.Encode(f.Cmd, f.Seq, f.Body))
	return err
}

func (t *TCPTransporter) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func (t *TCPTransporter) RemoteAddress() string {
	return t.conn.RemoteAddr().String()
}

func (t *TCPTransporter) Kind() string { return "tcp" }
