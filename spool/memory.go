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

package spool

import (
	"context"
	"sync"

	"github.com/dimchat/station/core/message"
	"github.com/dimchat/station/internal/metrics"
)

// MemoryStore is an in-process Spool, used for tests and for
// deployments that accept losing queued offline messages on restart.
type MemoryStore struct {
	mu   sync.Mutex
	logs map[string][]*message.Reliable
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string][]*message.Reliable)}
}

func (m *MemoryStore) Append(ctx context.Context, recipient string, env *message.Reliable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[recipient]
	if n := len(log); n > 0 && log[n-1].PrimaryKey() == env.PrimaryKey() {
		return nil
	}
	m.logs[recipient] = append(log, env)
	metrics.SpoolStored.Inc()
	metrics.SpoolDepth.Inc()
	return nil
}

func (m *MemoryStore) LoadBatch(ctx context.Context, recipient string, limit int) (Batch, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[recipient]
	if len(log) > limit {
		log = log[:limit]
	}
	out := make([]*message.Reliable, len(log))
	copy(out, log)
	return Batch{Recipient: recipient, Envelopes: out}, nil
}

func (m *MemoryStore) RemoveBatch(ctx context.Context, batch Batch, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[batch.Recipient]
	if count > len(log) {
		count = len(log)
	}
	m.logs[batch.Recipient] = log[count:]
	if count > 0 {
		metrics.SpoolDelivered.Add(float64(count))
		metrics.SpoolDepth.Sub(float64(count))
	}
	return nil
}

func (m *MemoryStore) Depth(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, log := range m.logs {
		total += len(log)
	}
	return total, nil
}
