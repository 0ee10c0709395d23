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

// Receipt is the typed reply the station sends back to a sender for
// every recoverable error, and for a handful of success acks (local
// delivery, handshake success). It is never itself forwarded.
type Receipt struct {
	Message string   `json:"message"`
	Success []string `json:"success,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}

// NewReceipt builds a plain success/informational receipt.
func NewReceipt(msg string) Receipt {
	return Receipt{Message: msg}
}

// Content renders the receipt as a Content ready to embed in an
// outbound envelope.
func (r Receipt) Content() Content {
	fields, _ := json.Marshal(r)
	return Content{Type: TypeReceipt, Fields: fields}
}

// Delivered is the receipt text for a successfully locally-delivered
// envelope, matching the S2 scenario's expected wording.
const Delivered = "Message respond"
