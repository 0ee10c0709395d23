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
)

func TestAppendTraceIdempotent(t *testing.T) {
	r := sampleReliable()

	r.AppendTrace("station-a")
	r.AppendTrace("station-a")
	r.AppendTrace("station-a")

	assert.Equal(t, []string{"station-a"}, r.Traces, "a station appends its own ID at most once")
}

func TestAppendTraceMultipleStations(t *testing.T) {
	r := sampleReliable()
	r.AppendTrace("station-a")
	r.AppendTrace("station-b")

	assert.True(t, r.HasTrace("station-a"))
	assert.True(t, r.HasTrace("station-b"))
	assert.False(t, r.HasTrace("station-c"))
}

func TestIsBroadcastAddressed(t *testing.T) {
	isBroadcast := func(addr string) bool { return addr == "everywhere" || addr == "anywhere" }

	r := sampleReliable()
	r.Receiver = "group@everywhere"
	assert.True(t, r.IsBroadcastAddressed(isBroadcast))

	r.Receiver = "bob@addr2"
	r.Group = ""
	assert.False(t, r.IsBroadcastAddressed(isBroadcast))

	r.Group = "all@everywhere"
	assert.True(t, r.IsBroadcastAddressed(isBroadcast))
}
