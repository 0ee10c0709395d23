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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSTransporterRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	serverReady := make(chan *WSTransporter, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverReady <- NewWSTransporter(conn)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer clientConn.Close()
	client := NewWSTransporter(clientConn)

	serverSide := <-serverReady
	defer serverSide.Close()

	require.NoError(t, client.WriteFrame(Frame{Body: []byte(`{"k":"v"}`)}))

	f, err := serverSide.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"k":"v"}`), f.Body)
	assert.Equal(t, "websocket", serverSide.Kind())
}

func TestWSTransporterAssignsIncrementingSeq(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	serverReady := make(chan *WSTransporter, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverReady <- NewWSTransporter(conn)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer clientConn.Close()
	client := NewWSTransporter(clientConn)

	serverSide := <-serverReady
	defer serverSide.Close()

	require.NoError(t, client.WriteFrame(Frame{Body: []byte("one")}))
	require.NoError(t, client.WriteFrame(Frame{Body: []byte("two")}))

	f1, err := serverSide.ReadFrame()
	require.NoError(t, err)
	f2, err := serverSide.ReadFrame()
	require.NoError(t, err)

	assert.NotEqual(t, f1.Seq, f2.Seq)
}
