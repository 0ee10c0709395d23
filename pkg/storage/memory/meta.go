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

package memory

import (
	"context"
	"fmt"

	"github.com/dimchat/station/pkg/storage"
)

// MetaStore implements storage.MetaStore. Meta is immutable once created -
// Create rejects a second write for the same ID rather than overwriting it.
type MetaStore struct {
	store *Store
}

func (m *MetaStore) Create(ctx context.Context, meta *storage.MetaRecord) error {
	m.store.metasMu.Lock()
	defer m.store.metasMu.Unlock()

	if _, exists := m.store.metas[meta.ID]; exists {
		return fmt.Errorf("meta already exists: %s", meta.ID)
	}

	metaCopy := *meta
	m.store.metas[meta.ID] = &metaCopy
	return nil
}

func (m *MetaStore) Get(ctx context.Context, id string) (*storage.MetaRecord, error) {
	m.store.metasMu.RLock()
	defer m.store.metasMu.RUnlock()

	meta, exists := m.store.metas[id]
	if !exists {
		return nil, fmt.Errorf("meta not found: %s", id)
	}

	metaCopy := *meta
	return &metaCopy, nil
}

func (m *MetaStore) Exists(ctx context.Context, id string) (bool, error) {
	m.store.metasMu.RLock()
	defer m.store.metasMu.RUnlock()

	_, exists := m.store.metas[id]
	return exists, nil
}
