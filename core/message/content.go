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

import "encoding/json"

// Content is the tagged-variant payload carried inside a decrypted
// envelope body: every control command (handshake, login, meta,
// search, block, report, ...) shares this shape, discriminated by
// Type. The station itself never decrypts a body — this type exists
// so the internal command processor (an external collaborator per
// scope) has something typed to receive once it does.
type Content struct {
	Type   string          `json:"type"`
	Time   int64           `json:"time,omitempty"`
	Fields json.RawMessage `json:"-"`
}

// Known command type discriminators. Listed for reference; the
// station's own state machine only acts on Handshake directly, the
// rest are routed opaquely to the internal processor.
const (
	TypeHandshake = "handshake"
	TypeLogin     = "login"
	TypeMeta      = "meta"
	TypeProfile   = "profile"
	TypeSearch    = "search"
	TypeUsers     = "users"
	TypeContacts  = "contacts"
	TypeMute      = "mute"
	TypeBlock     = "block"
	TypeReport    = "report"
	TypeBroadcast = "broadcast"
	TypeReceipt   = "receipt"
	TypeForward   = "forward"
)

// Handler processes one Content and optionally produces a reply
// Content to be wrapped back into an outbound envelope.
type Handler func(content Content, from, to string) (*Content, error)

// Registry maps a content type discriminator to its Handler,
// populated once at startup. A lookup miss falls back to a
// ForwardContent wrapper rather than an error, matching the "dynamic
// message-type dispatch" design note: unknown content is neither
// rejected nor silently dropped, it is handed back for the caller to
// route elsewhere.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty, ready-to-populate registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register installs handler for contentType, overwriting any
// previous registration — last registration wins, matching the
// teacher's factory-registration style elsewhere in this repo.
func (r *Registry) Register(contentType string, handler Handler) {
	r.handlers[contentType] = handler
}

// Dispatch invokes the handler registered for content.Type, or
// returns a ForwardContent fallback if none is registered.
func (r *Registry) Dispatch(content Content, from, to string) (*Content, error) {
	if handler, ok := r.handlers[content.Type]; ok {
		return handler(content, from, to)
	}
	forward := ForwardContent(content, from, to)
	return &forward, nil
}

// ForwardContent wraps an unrecognised content in a TypeForward
// envelope so the caller can route it onward (e.g. to a group
// assistant) without the registry needing to know every content
// type in advance.
func ForwardContent(original Content, from, to string) Content {
	payload, _ := json.Marshal(map[string]any{
		"forwarded": original,
		"sender":    from,
		"receiver":  to,
	})
	return Content{Type: TypeForward, Fields: payload}
}
