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

import "bytes"

// IsLiveness reports whether body is one of the reserved liveness
// markers, which never reach the dispatcher.
func IsLiveness(body []byte) bool {
	return bytes.Equal(body, BodyPing) || bytes.Equal(body, BodyPong) || bytes.Equal(body, BodyNoop)
}

// LivenessReply computes the connection layer's canned response to a
// liveness body: PING gets PONG, PONG is swallowed (nil), NOOP is
// echoed back.
func LivenessReply(body []byte) (reply []byte, respond bool) {
	switch {
	case bytes.Equal(body, BodyPing):
		return BodyPong, true
	case bytes.Equal(body, BodyPong):
		return nil, false
	case bytes.Equal(body, BodyNoop):
		return BodyNoop, true
	default:
		return nil, false
	}
}
