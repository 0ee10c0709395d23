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

package handshake

import (
	"encoding/json"
	"fmt"

	"github.com/dimchat/station/id"
)

// Command is the content carried inside a reliable envelope addressed
// to the station itself while its session isn't yet ACTIVE: a `start`
// naming the session key the client currently believes (empty on
// first connect) plus the meta needed to verify it.
type Command struct {
	Type    string  `json:"type"`
	Command string  `json:"command"`
	Session string  `json:"session"`
	Meta    id.Meta `json:"meta"`
}

// ParseCommand decodes a handshake Command from an envelope's data.
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("handshake: decode command: %w", err)
	}
	if cmd.Command != "start" {
		return Command{}, fmt.Errorf("handshake: unsupported command %q", cmd.Command)
	}
	return cmd, nil
}

// Reply is the content the station sends back in answer to a Command:
// `again` carries the fresh session key to retry with, `success`
// carries none, and a rejection is instead surfaced as a Receipt.
type Reply struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Session string `json:"session,omitempty"`
}

// AgainReply builds the `again(session-key)` reply for StateChallenged.
func AgainReply(session string) Reply {
	return Reply{Type: "handshake", Command: "again", Session: session}
}

// SuccessReply builds the `success` reply for StateActive.
func SuccessReply() Reply {
	return Reply{Type: "handshake", Command: "success"}
}
