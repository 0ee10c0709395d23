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

package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ addr string }

func (f *fakeConn) RemoteAddress() string { return f.addr }

func TestNewSessionStartsInactiveWithFreshKey(t *testing.T) {
	table := New(nil)
	s := table.NewSession("alice@addr1", "10.0.0.1:5000")

	assert.False(t, s.Active())
	assert.NotEmpty(t, s.SessionKey())
}

func TestBindAndLookup(t *testing.T) {
	table := New(nil)
	s := table.NewSession("alice@addr1", "10.0.0.1:5000")
	conn := &fakeConn{addr: "10.0.0.1:5000"}
	table.Bind(conn, s)

	found, ok := table.SessionFor(conn)
	require.True(t, ok)
	assert.Same(t, s, found)

	all := table.Lookup("alice@addr1")
	require.Len(t, all, 1)
	assert.Same(t, s, all[0])
}

func TestMultiDeviceSupport(t *testing.T) {
	table := New(nil)
	table.NewSession("alice@addr1", "phone:1")
	table.NewSession("alice@addr1", "desktop:1")

	all := table.Lookup("alice@addr1")
	assert.Len(t, all, 2)
}

func TestIsActiveRequiresAtLeastOneActiveSession(t *testing.T) {
	table := New(nil)
	s := table.NewSession("alice@addr1", "phone:1")
	assert.False(t, table.IsActive("alice@addr1"))

	s.Activate()
	assert.True(t, table.IsActive("alice@addr1"))
}

func TestCloseFiresLogoutOnlyWhenLastDeviceGone(t *testing.T) {
	var loggedOut []string
	var mu sync.Mutex
	table := New(func(identity string) {
		mu.Lock()
		loggedOut = append(loggedOut, identity)
		mu.Unlock()
	})

	s1 := table.NewSession("alice@addr1", "phone:1")
	s2 := table.NewSession("alice@addr1", "desktop:1")
	conn1 := &fakeConn{addr: "phone:1"}
	conn2 := &fakeConn{addr: "desktop:1"}
	table.Bind(conn1, s1)
	table.Bind(conn2, s2)

	table.Close(conn1)
	mu.Lock()
	assert.Empty(t, loggedOut, "logout must not fire while another device remains")
	mu.Unlock()

	table.Close(conn2)
	mu.Lock()
	assert.Equal(t, []string{"alice@addr1"}, loggedOut)
	mu.Unlock()

	assert.Empty(t, table.Lookup("alice@addr1"))
}

func TestEvictStaleRemovesDeadConnections(t *testing.T) {
	table := New(nil)
	s := table.NewSession("alice@addr1", "phone:1")
	conn := &fakeConn{addr: "phone:1"}
	table.Bind(conn, s)

	table.EvictStale(func(Connection) bool { return false })

	assert.Empty(t, table.Lookup("alice@addr1"))
}

func TestRechallengeResetsActiveAndKey(t *testing.T) {
	table := New(nil)
	s := table.NewSession("alice@addr1", "phone:1")
	s.Activate()
	first := s.SessionKey()

	second := s.Rechallenge()
	assert.NotEqual(t, first, second)
	assert.False(t, s.Active())
}

func TestConcurrentSessionCreation(t *testing.T) {
	table := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			table.NewSession("alice@addr1", "device")
		}(i)
	}
	wg.Wait()

	assert.Len(t, table.Lookup("alice@addr1"), 1, "same client address reconnecting replaces in place")
}
