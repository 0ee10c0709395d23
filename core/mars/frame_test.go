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

package mars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	for _, cmd := range []int32{CmdSendMsg, CmdNoop, CmdPushMessage} {
		body := []byte(`{"hello":"world"}`)
		encoded := Encode(cmd, 42, body)

		pkg, consumed, outcome, err := Parse(encoded, DefaultParseOptions())
		require.NoError(t, err)
		assert.Equal(t, Complete, outcome)
		assert.Equal(t, len(encoded), consumed)
		assert.Equal(t, cmd, pkg.Header.Cmd)
		assert.Equal(t, int32(42), pkg.Header.Seq)
		assert.Equal(t, body, pkg.Body)
		assert.Equal(t, int(pkg.Header.HeadLen)+len(body), len(encoded))
	}
}

func TestParseNeedsMoreBytes(t *testing.T) {
	full := Encode(CmdSendMsg, 1, []byte("partial body"))

	for _, cut := range []int{0, 4, 10, 19, len(full) - 1} {
		_, _, outcome, err := Parse(full[:cut], DefaultParseOptions())
		require.NoError(t, err)
		assert.Equal(t, NeedMore, outcome, "cut at %d bytes", cut)
	}
}

func TestParseRejectsBadVersion(t *testing.T) {
	full := Encode(CmdSendMsg, 1, []byte("body"))
	full[4] = 0xFF // corrupt version byte

	_, _, outcome, err := Parse(full, DefaultParseOptions())
	assert.Equal(t, FramingErr, outcome)
	assert.Error(t, err)
}

func TestParseRejectsUnknownCmd(t *testing.T) {
	full := Encode(999, 1, []byte("body"))

	_, _, outcome, err := Parse(full, DefaultParseOptions())
	assert.Equal(t, FramingErr, outcome)
	assert.Error(t, err)
}

func TestParseRejectsOversizedFrame(t *testing.T) {
	full := Encode(CmdSendMsg, 1, []byte("body"))
	opts := ParseOptions{MaxFrameSize: 4}

	_, _, outcome, err := Parse(full, opts)
	assert.Equal(t, FramingErr, outcome)
	assert.Error(t, err)
}

func TestLivenessReply(t *testing.T) {
	reply, respond := LivenessReply(BodyPing)
	assert.True(t, respond)
	assert.Equal(t, BodyPong, reply)

	_, respond = LivenessReply(BodyPong)
	assert.False(t, respond)

	reply, respond = LivenessReply(BodyNoop)
	assert.True(t, respond)
	assert.Equal(t, BodyNoop, reply)

	assert.True(t, IsLiveness(BodyPing))
	assert.False(t, IsLiveness([]byte("hello")))
}
