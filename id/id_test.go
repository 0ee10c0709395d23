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

package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	parsed, err := Parse("alice@abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "alice", parsed.Name())
	assert.Equal(t, "", parsed.Terminal())
	assert.Equal(t, "abcd1234", parsed.Address().String())
	assert.True(t, parsed.IsUser())
}

func TestParseWithTerminal(t *testing.T) {
	parsed, err := Parse("alice/phone@abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "phone", parsed.Terminal())

	other, err := Parse("alice/desk@abcd1234")
	require.NoError(t, err)

	assert.False(t, parsed.Equal(other), "different terminals are distinct identities")
	assert.True(t, parsed.WithoutTerminal().Equal(other.WithoutTerminal()))
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)

	_, err = Parse("no-at-sign")
	assert.Error(t, err)

	_, err = Parse("@missing-name")
	assert.Error(t, err)
}

func TestBroadcastDetection(t *testing.T) {
	assert.True(t, Station.IsBroadcast())
	assert.True(t, Everyone.IsBroadcast())
	assert.True(t, Anyone.IsBroadcast())

	alice, err := Parse("alice@abcd1234")
	require.NoError(t, err)
	assert.False(t, alice.IsBroadcast())
}

func TestIDImmutableValueSemantics(t *testing.T) {
	a, _ := Parse("bob@xyz")
	b := a
	b = New("carol", "", "xyz", NetworkUser)

	assert.Equal(t, "bob", a.Name(), "copying an ID must not mutate the original")
	assert.Equal(t, "carol", b.Name())
}

func TestNetworkTypeHelpers(t *testing.T) {
	assert.True(t, NetworkGroup.IsGroup())
	assert.True(t, NetworkPolylogue.IsGroup())
	assert.False(t, NetworkUser.IsGroup())
	assert.True(t, NetworkStation.IsStation())
	assert.Equal(t, "station", NetworkStation.String())
}
