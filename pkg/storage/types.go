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

package storage

import "time"

// LoginRecord is the last known point-of-presence for an identity: which
// station it logged into, from which terminal, and when. Live sessions
// themselves are never persisted (they die with the process); only the
// login history survives a restart.
type LoginRecord struct {
	ID          string    `json:"id"`
	Terminal    string    `json:"terminal,omitempty"`
	StationHost string    `json:"station_host"`
	StationPort int       `json:"station_port"`
	LoggedInAt  time.Time `json:"logged_in_at"`
}

// MetaRecord caches an identity's immutable Meta: the public key material
// the ID itself was derived from. Once created it is never mutated -
// mirrors the immutability invariant on the ID/Meta pair.
type MetaRecord struct {
	ID        string    `json:"id"`
	Type      int       `json:"type"`
	PublicKey []byte    `json:"public_key"`
	Raw       []byte    `json:"raw"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileRecord caches an identity's mutable signed profile document.
// Unlike Meta it can be replaced; UpdatedAt tracks the most recent one seen.
type ProfileRecord struct {
	ID        string    `json:"id"`
	Data      []byte    `json:"data"`
	Signature []byte    `json:"signature"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupKeyRecord caches a group member's encrypted copy of the group's
// shared message key, so repeat group sends don't require the sender to
// reissue a key to every member.
type GroupKeyRecord struct {
	GroupID   string    `json:"group_id"`
	MemberID  string    `json:"member_id"`
	Key       []byte    `json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PolicyRecord is one owner's standing decision about a target
// identity: blocked (reject all envelopes from target) and/or muted
// (also reject envelopes from target; the policy filter denies them
// just as for a block, with "muted" as the reason, and nothing is
// spooled). Per-sender rate limiting is not persisted here;
// it lives entirely in the dispatcher's in-memory token buckets.
type PolicyRecord struct {
	OwnerID   string    `json:"owner_id"`
	TargetID  string    `json:"target_id"`
	Blocked   bool      `json:"blocked"`
	Muted     bool      `json:"muted"`
	UpdatedAt time.Time `json:"updated_at"`
}
