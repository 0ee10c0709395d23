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

import "fmt"

// Meta binds a public key to an address. The station treats the
// actual cryptographic verification (does this key really derive
// this address, is this signature valid under it) as an external
// collaborator's job — see Verifier — and only owns the caching and
// write-once discipline around it.
type Meta struct {
	Type      string `json:"type"`
	PublicKey string `json:"key"`      // opaque, base-64 or PEM per Type
	Seed      string `json:"seed,omitempty"`
	Signature string `json:"fingerprint,omitempty"`
}

// Profile (aka Visa/TAI) carries signed, self-described attributes
// for an ID. Verification needs the owner's Meta, so a Profile is
// meaningless without first resolving one.
type Profile struct {
	ID        string         `json:"ID"`
	Data      map[string]any `json:"data"`
	Signature string         `json:"signature"`
}

// Verifier is the thin interface the station calls through for every
// cryptographic primitive: meta/signature verification, and address
// derivation from a key. The concrete implementation (Ed25519, RSA,
// whichever key algorithms Meta.Type names) lives outside this
// module entirely, per the relay's scope boundary.
type Verifier interface {
	// VerifyMeta reports whether meta legitimately derives address.
	VerifyMeta(meta Meta, address Address) (bool, error)
	// VerifyProfile reports whether profile's signature verifies
	// under the public key bound by meta.
	VerifyProfile(profile Profile, meta Meta) (bool, error)
	// VerifyEnvelope reports whether a detached signature over data
	// verifies under the public key bound by meta.
	VerifyEnvelope(data []byte, signature []byte, meta Meta) (bool, error)
}

// ErrMetaMismatch reports that a different meta already exists for
// the same ID — metas are write-once.
var ErrMetaMismatch = fmt.Errorf("id: meta already exists for this identity")
