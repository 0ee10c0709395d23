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

// Package message implements the three nested envelope forms the
// station carries — Instant, Secure, Reliable — and the trace list
// used to break broadcast loops across the neighbor mesh. Only
// Reliable envelopes are ever stored or forwarded by the station.
package message

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Instant is a plaintext envelope. It is produced by a client and
// consumed by a client; the station must never persist one, and in
// practice never constructs one (it only ever sees Secure/Reliable
// forms on the wire).
type Instant struct {
	Sender   string          `json:"sender"`
	Receiver string          `json:"receiver"`
	Time     time.Time       `json:"time"`
	Content  json.RawMessage `json:"content"`
}

// Secure is an envelope whose content has been encrypted by the
// sender, with a per-recipient key mapping for multi-device/group
// delivery.
type Secure struct {
	Sender   string         `json:"sender"`
	Receiver string         `json:"receiver"`
	Time     time.Time      `json:"time"`
	Data     []byte         `json:"-"` // ciphertext; see MarshalJSON
	Keys     map[string][]byte `json:"-"`
}

// Reliable is a Secure envelope plus the sender's signature and the
// attachments needed to route and verify it without decrypting
// anything. This is the only form the station stores or forwards.
type Reliable struct {
	Secure

	Signature []byte `json:"-"`

	Meta          *wireMeta `json:"meta,omitempty"`
	Visa          *wireMeta `json:"visa,omitempty"`
	Key           []byte    `json:"-"`
	Traces        []string  `json:"traces,omitempty"`
	Group         string    `json:"group,omitempty"`
	Target        string    `json:"target,omitempty"`
	SentNeighbors []string  `json:"sent_neighbors,omitempty"`
}

// wireMeta is left as a raw JSON passthrough — the station forwards
// meta/visa attachments without interpreting their contents itself;
// interpretation belongs to the external crypto/profile collaborator.
type wireMeta = json.RawMessage

// wireEnvelope is the on-the-wire JSON shape described by the
// envelope format: base64 for binary fields, everything else plain.
type wireEnvelope struct {
	Sender        string            `json:"sender"`
	Receiver      string            `json:"receiver"`
	Time          int64             `json:"time"` // unix seconds, matching the original wire format
	Data          string            `json:"data"`
	Signature     string            `json:"signature"`
	Key           string            `json:"key,omitempty"`
	Keys          map[string]string `json:"keys,omitempty"`
	Meta          json.RawMessage   `json:"meta,omitempty"`
	Visa          json.RawMessage   `json:"visa,omitempty"`
	Traces        []string          `json:"traces,omitempty"`
	Group         string            `json:"group,omitempty"`
	Target        string            `json:"target,omitempty"`
	SentNeighbors []string          `json:"sent_neighbors,omitempty"`
}

// MarshalJSON renders a Reliable envelope in the wire format: binary
// fields base64-encoded, timestamp as unix seconds.
func (r Reliable) MarshalJSON() ([]byte, error) {
	w := wireEnvelope{
		Sender:        r.Sender,
		Receiver:      r.Receiver,
		Time:          r.Time.Unix(),
		Data:          base64.StdEncoding.EncodeToString(r.Data),
		Signature:     base64.StdEncoding.EncodeToString(r.Signature),
		Meta:          r.Meta,
		Visa:          r.Visa,
		Traces:        r.Traces,
		Group:         r.Group,
		Target:        r.Target,
		SentNeighbors: r.SentNeighbors,
	}
	if len(r.Key) > 0 {
		w.Key = base64.StdEncoding.EncodeToString(r.Key)
	}
	if len(r.Keys) > 0 {
		w.Keys = make(map[string]string, len(r.Keys))
		for member, key := range r.Keys {
			w.Keys[member] = base64.StdEncoding.EncodeToString(key)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire format described above.
func (r *Reliable) UnmarshalJSON(data []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("message: decode envelope: %w", err)
	}
	body, err := base64.StdEncoding.DecodeString(w.Data)
	if err != nil {
		return fmt.Errorf("message: decode data: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(w.Signature)
	if err != nil {
		return fmt.Errorf("message: decode signature: %w", err)
	}
	r.Sender = w.Sender
	r.Receiver = w.Receiver
	r.Time = time.Unix(w.Time, 0).UTC()
	r.Data = body
	r.Signature = sig
	r.Meta = cloneRaw(w.Meta)
	r.Visa = cloneRaw(w.Visa)
	r.Traces = append([]string(nil), w.Traces...)
	r.Group = w.Group
	r.Target = w.Target
	r.SentNeighbors = append([]string(nil), w.SentNeighbors...)
	if w.Key != "" {
		key, err := base64.StdEncoding.DecodeString(w.Key)
		if err != nil {
			return fmt.Errorf("message: decode key: %w", err)
		}
		r.Key = key
	}
	if len(w.Keys) > 0 {
		r.Keys = make(map[string][]byte, len(w.Keys))
		for member, encoded := range w.Keys {
			key, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return fmt.Errorf("message: decode keys[%s]: %w", member, err)
			}
			r.Keys[member] = key
		}
	}
	return nil
}

func cloneRaw(r json.RawMessage) *wireMeta {
	if len(r) == 0 {
		return nil
	}
	cp := append(json.RawMessage(nil), r...)
	return &cp
}

// PrimaryKey returns the envelope's identity: the base-64 encoding of
// its signature. The dispatcher and spool both key on this value.
func (r Reliable) PrimaryKey() string {
	return base64.StdEncoding.EncodeToString(r.Signature)
}
