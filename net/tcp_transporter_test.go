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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimchat/station/core/mars"
)

func TestTCPTransporterRoundTrip(t *testing.T) {
	client, server := stdnet.Pipe()
	defer client.Close()
	defer server.Close()

	serverSide := NewTCPTransporter(server)
	clientSide := NewTCPTransporter(client)

	go func() {
		_ = clientSide.WriteFrame(Frame{Cmd: mars.CmdSendMsg, Seq: 42, Body: []byte("hello")})
	}()

	f, err := serverSide.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, int32(mars.CmdSendMsg), f.Cmd)
	assert.Equal(t, int32(42), f.Seq)
	assert.Equal(t, []byte("hello"), f.Body)
}

func TestTCPTransporterReadReturnsErrorOnClose(t *testing.T) {
	client, server := stdnet.Pipe()
	defer client.Close()

	serverSide := NewTCPTransporter(server)
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = server.Close()
	}()

	_, err := serverSide.ReadFrame()
	assert.Error(t, err)
}

func TestTCPTransporterKindAndRemoteAddress(t *testing.T) {
	client, server := stdnet.Pipe()
	defer client.Close()
	defer server.Close()

	tr := NewTCPTransporter(server)
	assert.Equal(t, "tcp", tr.Kind())
	assert.NotEmpty(t, tr.RemoteAddress())
}
