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

package station

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/core/session"
)

// ReceiptSessions is the narrow slice of session.Table a receiptSender
// needs to attempt local delivery before spooling.
type ReceiptSessions interface {
	Lookup(identity string) []*session.Session
}

// receiptSender implements dispatcher.ReceiptSender: every recoverable
// error surfaces as a ReceiptCommand envelope back to the sender, per
// spec's error handling design. A receipt is station-originated
// system content, never forwarded or re-verified, so it bypasses
// Dispatch entirely and goes straight to local delivery or the
// offline spool.
type receiptSender struct {
	stationID string
	sessions  ReceiptSessions
	deliver   *localDeliverer
}

func newReceiptSender(stationID string, sessions ReceiptSessions, deliver *localDeliverer) *receiptSender {
	return &receiptSender{stationID: stationID, sessions: sessions, deliver: deliver}
}

func (r *receiptSender) SendReceipt(ctx context.Context, recipient string, receipt message.Receipt) error {
	content := receipt.Content()
	fields, err := json.Marshal(content)
	if err != nil {
		return err
	}
	env := &message.Reliable{
		Secure: message.Secure{
			Sender:   r.stationID,
			Receiver: recipient,
			Time:     time.Now(),
			Data:     fields,
		},
	}

	delivered := false
	for _, s := range r.sessions.Lookup(recipient) {
		if r.deliver.Deliver(ctx, s, env) {
			delivered = true
		}
	}
	if !delivered && r.deliver.spool != nil {
		return r.deliver.spool.Append(ctx, recipient, env)
	}
	return nil
}
