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

// HasTrace reports whether stationID already appears in the
// envelope's trace list.
func (r Reliable) HasTrace(stationID string) bool {
	for _, t := range r.Traces {
		if t == stationID {
			return true
		}
	}
	return false
}

// AppendTrace appends stationID to the trace list, unless it is
// already present — a station appends its own ID at most once per
// envelope, making repeated dispatch of the same envelope idempotent
// with respect to traces.
func (r *Reliable) AppendTrace(stationID string) {
	if r.HasTrace(stationID) {
		return
	}
	r.Traces = append(r.Traces, stationID)
}

// HasSentNeighbor reports whether neighborID already appears in the
// envelope's sent-neighbors list, the bridge's own dedup hint
// alongside the trace list.
func (r Reliable) HasSentNeighbor(neighborID string) bool {
	for _, n := range r.SentNeighbors {
		if n == neighborID {
			return true
		}
	}
	return false
}

// IsBroadcastAddressed reports whether the receiver, or the group
// hint, names one of the distinguished broadcast addresses. Plain
// station-to-station envelopes addressed to a specific neighbor are
// not broadcast; only "@everywhere"/group="everyone" forms are.
func (r Reliable) IsBroadcastAddressed(isBroadcastAddress func(address string) bool) bool {
	if isBroadcastAddress(r.Receiver) {
		return true
	}
	if r.Group != "" && isBroadcastAddress(r.Group) {
		return true
	}
	return false
}
