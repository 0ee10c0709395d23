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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReliable() Reliable {
	r := Reliable{
		Secure: Secure{
			Sender:   "alice@addr1",
			Receiver: "bob@addr2",
			Time:     time.Unix(1700000000, 0).UTC(),
			Data:     []byte("ciphertext"),
		},
		Signature: []byte("sig-bytes"),
	}
	return r
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	original := sampleReliable()
	original.Traces = []string{"station-a"}
	original.Group = "group@everywhere"

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Reliable
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, original.Sender, decoded.Sender)
	assert.Equal(t, original.Receiver, decoded.Receiver)
	assert.Equal(t, original.Data, decoded.Data)
	assert.Equal(t, original.Signature, decoded.Signature)
	assert.Equal(t, original.Traces, decoded.Traces)
	assert.Equal(t, original.Group, decoded.Group)
	assert.True(t, original.Time.Equal(decoded.Time))
}

func TestPrimaryKeyIsSignatureBase64(t *testing.T) {
	r := sampleReliable()
	assert.NotEmpty(t, r.PrimaryKey())

	other := sampleReliable()
	other.Signature = []byte("different-sig")
	assert.NotEqual(t, r.PrimaryKey(), other.PrimaryKey())
}

func TestKeysRoundTrip(t *testing.T) {
	r := sampleReliable()
	r.Keys = map[string][]byte{"bob@addr2": []byte("wrapped-key")}

	encoded, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Reliable
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, r.Keys["bob@addr2"], decoded.Keys["bob@addr2"])
}
