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
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/dimchat/station/core/mars"
)

// WSTransporter carries the same envelope JSON the Mars-framed TCP
// path carries, but uses the WebSocket message boundary as the frame
// delimiter instead of a Mars header: no resync or liveness markers
// are needed because the WebSocket protocol already supplies its own
// control frames (ping/pong/close), which gorilla/websocket answers
// automatically.
type WSTransporter struct {
	conn *websocket.Conn
	seq  int64

	closeOnce sync.Once
	closeErr  error
}

// NewWSTransporter wraps an upgraded *websocket.Conn.
func NewWSTransporter(conn *websocket.Conn) *WSTransporter {
	return &WSTransporter{conn: conn}
}

func (t *WSTransporter) ReadFrame() (Frame, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return Frame{}, err
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		seq := atomic.AddInt64(&t.seq, 1)
		return Frame{Cmd: mars.CmdSendMsg, Seq: int32(seq), Body: data}, nil
	}
}

func (t *WSTransporter) WriteFrame(f Frame) error {
	return t.conn.WriteMessage(websocket.TextMessage, f.Body)
}

func (t *WSTransporter) Close() error {
	t.closeOnce.Do(func() {
		_ = t.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func (t *WSTransporter) RemoteAddress() string {
	return t.conn.RemoteAddr().String()
}

func (t *WSTransporter) Kind() string { return "websocket" }
