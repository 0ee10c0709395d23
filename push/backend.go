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

package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dimchat/station/internal/logger"
)

// LogBackend records push notifications through the station's
// structured logger instead of an external provider. Useful for
// development and for deployments with no push provider configured.
type LogBackend struct {
	log *logger.StructuredLogger
}

// NewLogBackend builds a LogBackend.
func NewLogBackend(log *logger.StructuredLogger) *LogBackend {
	return &LogBackend{log: log}
}

func (b *LogBackend) Push(_ context.Context, recipient, summary string) error {
	b.log.Info("push notification",
		logger.Field{Key: "recipient", Value: recipient},
		logger.Field{Key: "summary", Value: summary},
	)
	return nil
}

func (b *LogBackend) Name() string { return "log" }

// WebhookBackend POSTs a JSON payload to a configured URL, for
// deployments that front their own APNs/FCM relay behind an HTTP
// endpoint rather than asking the station to speak those protocols
// directly.
type WebhookBackend struct {
	url    string
	client *http.Client
}

// NewWebhookBackend builds a WebhookBackend posting to url.
func NewWebhookBackend(url string) *WebhookBackend {
	return &WebhookBackend{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookPayload struct {
	Recipient string `json:"recipient"`
	Summary   string `json:"summary"`
}

func (b *WebhookBackend) Push(ctx context.Context, recipient, summary string) error {
	body, err := json.Marshal(webhookPayload{Recipient: recipient, Summary: summary})
	if err != nil {
		return fmt.Errorf("push: encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("push: webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (b *WebhookBackend) Name() string { return "webhook" }
