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

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatchesRegisteredHandler(t *testing.T) {
	reg := NewRegistry()
	called := false
	reg.Register(TypeMute, func(content Content, from, to string) (*Content, error) {
		called = true
		return nil, nil
	})

	_, err := reg.Dispatch(Content{Type: TypeMute}, "alice@a", "bob@b")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRegistryFallsBackToForward(t *testing.T) {
	reg := NewRegistry()

	reply, err := reg.Dispatch(Content{Type: "unknown-type"}, "alice@a", "bob@b")
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, TypeForward, reply.Type)
}

func TestReceiptContentRoundTrip(t *testing.T) {
	r := NewReceipt(Delivered)
	r.Success = []string{"bob@b"}

	content := r.Content()
	assert.Equal(t, TypeReceipt, content.Type)
	assert.Contains(t, string(content.Fields), Delivered)
}
