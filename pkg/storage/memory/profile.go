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

// ProfileStore implements storage.ProfileStore
type ProfileStore struct {
	store *Store
}

func (p *ProfileStore) Put(ctx context.Context, profile *storage.ProfileRecord) error {
	p.store.profilesMu.Lock()
	defer p.store.profilesMu.Unlock()

	profileCopy := *profile
	p.store.profiles[profile.ID] = &profileCopy
	return nil
}

func (p *ProfileStore) Get(ctx context.Context, id string) (*storage.ProfileRecord, error) {
	p.store.profilesMu.RLock()
	defer p.store.profilesMu.RUnlock()

	profile, exists := p.store.profiles[id]
	if !exists {
		return nil, fmt.Errorf("profile not found: %s", id)
	}

	profileCopy := *profile
	return &profileCopy, nil
}
