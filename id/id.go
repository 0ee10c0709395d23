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

// Package id implements the station's identity handle: a textual ID
// partitioned by network type, its derived address, and the broadcast
// forms used to break loops on group/station fan-out.
package id

import (
	"fmt"
	"strings"
)

// NetworkType tags the kind of entity an ID names.
type NetworkType byte

const (
	NetworkUnknown  NetworkType = 0x00
	NetworkUser     NetworkType = 0x08
	NetworkGroup    NetworkType = 0x10
	NetworkPolylogue NetworkType = 0x12
	NetworkStation  NetworkType = 0xA8
	NetworkRobot    NetworkType = 0xC8
)

func (t NetworkType) String() string {
	switch t {
	case NetworkUser:
		return "user"
	case NetworkGroup:
		return "group"
	case NetworkPolylogue:
		return "polylogue"
	case NetworkStation:
		return "station"
	case NetworkRobot:
		return "robot"
	default:
		return "unknown"
	}
}

// IsGroup reports whether the tag names any group-shaped entity.
func (t NetworkType) IsGroup() bool {
	return t == NetworkGroup || t == NetworkPolylogue
}

// IsStation reports whether the tag names a relay station.
func (t NetworkType) IsStation() bool {
	return t == NetworkStation
}

// Broadcast address forms. A broadcast ID's address is one of these
// two distinguished strings regardless of network type.
const (
	everywhere = "everywhere"
	anywhere   = "anywhere"
)

// ID is an opaque, immutable identity handle of the form
// "name/terminal@address", where the terminal suffix is optional.
// Equality and hashing are by string value; once parsed an ID's
// fields never change.
type ID struct {
	raw      string
	name     string
	terminal string
	address  Address
	network  NetworkType
}

// Address is the short, derived form of an ID used for routing and
// broadcast detection. It is a value type: two addresses with the
// same string represent the same place.
type Address struct {
	value   string
	network NetworkType
}

func (a Address) String() string { return a.value }

// Network returns the address's network type tag.
func (a Address) Network() NetworkType { return a.network }

// IsBroadcast reports whether the address names "anywhere" or
// "everywhere" — the distinguished forms that make any ID carrying
// them a broadcast ID.
func (a Address) IsBroadcast() bool {
	return a.value == everywhere || a.value == anywhere
}

// Parse splits a textual handle into an ID. Accepted forms:
//
//	name@address
//	name/terminal@address
//
// The address alone determines the network type: "anywhere" is
// treated as a broadcast user address, "everywhere" as a broadcast
// group/station address, and any other address as a user address.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("id: empty identifier")
	}
	nameAndTerminal, addrPart, ok := strings.Cut(s, "@")
	if !ok || addrPart == "" {
		return ID{}, fmt.Errorf("id: %q missing address component", s)
	}
	name, terminal, _ := strings.Cut(nameAndTerminal, "/")
	if name == "" {
		return ID{}, fmt.Errorf("id: %q missing name component", s)
	}

	network := networkFor(addrPart)
	return ID{
		raw:      s,
		name:     name,
		terminal: terminal,
		address:  Address{value: addrPart, network: network},
		network:  network,
	}, nil
}

// MustParse is Parse but panics on error; used for compile-time-known
// well-known addresses such as station defaults.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return parsed
}

func networkFor(address string) NetworkType {
	switch address {
	case anywhere:
		return NetworkUser
	case everywhere:
		return NetworkGroup
	default:
		return NetworkUser
	}
}

// New builds an ID from explicit parts, deriving the address verbatim
// (used when the caller already knows the address, e.g. a station ID
// built from config rather than parsed off the wire).
func New(name, terminal, address string, network NetworkType) ID {
	return ID{
		raw:      formatRaw(name, terminal, address),
		name:     name,
		terminal: terminal,
		address:  Address{value: address, network: network},
		network:  network,
	}
}

func formatRaw(name, terminal, address string) string {
	if terminal == "" {
		return name + "@" + address
	}
	return name + "/" + terminal + "@" + address
}

func (i ID) String() string { return i.raw }

// Name returns the name component (without terminal or address).
func (i ID) Name() string { return i.name }

// Terminal returns the optional device suffix, or "" if absent.
func (i ID) Terminal() string { return i.terminal }

// Address returns the derived address.
func (i ID) Address() Address { return i.address }

// Network returns the network type tag.
func (i ID) Network() NetworkType { return i.network }

// IsBroadcast reports whether this ID's address is one of the
// distinguished broadcast forms.
func (i ID) IsBroadcast() bool { return i.address.IsBroadcast() }

// IsUser reports whether the ID names a user (or robot) account.
func (i ID) IsUser() bool {
	return i.network == NetworkUser || i.network == NetworkRobot
}

// IsGroup reports whether the ID names a group or polylogue.
func (i ID) IsGroup() bool { return i.network.IsGroup() }

// IsStation reports whether the ID names a relay station.
func (i ID) IsStation() bool { return i.network.IsStation() }

// Equal compares two IDs by their canonical string form. The
// terminal suffix participates in equality: "alice/phone@x" and
// "alice/desk@x" are distinct IDs sharing an address, matching the
// station's multi-device session model.
func (i ID) Equal(other ID) bool { return i.raw == other.raw }

// IsZero reports whether this is the unparsed zero value.
func (i ID) IsZero() bool { return i.raw == "" }

// WithoutTerminal returns the same identity with its device suffix
// stripped, used when indexing meta/profile caches that are keyed by
// account rather than by device.
func (i ID) WithoutTerminal() ID {
	if i.terminal == "" {
		return i
	}
	return New(i.name, "", i.address.value, i.network)
}

// Station is the well-known broadcast station address, used to
// detect "deliver to every neighbor" envelopes per the wire format's
// "station@everywhere" convention.
var Station = New("station", "", everywhere, NetworkStation)

// Everyone is the well-known broadcast group address.
var Everyone = New("everyone", "", everywhere, NetworkGroup)

// Anyone is the well-known broadcast user address.
var Anyone = New("anyone", "", anywhere, NetworkUser)
