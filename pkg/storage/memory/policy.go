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

	"github.com/dimchat/station/pkg/storage"
)

// PolicyStore implements storage.PolicyStore
type PolicyStore struct {
	store *Store
}

func (p *PolicyStore) Put(ctx context.Context, record *storage.PolicyRecord) error {
	p.store.policiesMu.Lock()
	defer p.store.policiesMu.Unlock()

	owner, exists := p.store.policies[record.OwnerID]
	if !exists {
		owner = make(map[string]*storage.PolicyRecord)
		p.store.policies[record.OwnerID] = owner
	}
	recordCopy := *record
	owner[record.TargetID] = &recordCopy
	return nil
}

func (p *PolicyStore) Get(ctx context.Context, ownerID, targetID string) (*storage.PolicyRecord, error) {
	p.store.policiesMu.RLock()
	defer p.store.policiesMu.RUnlock()

	owner, exists := p.store.policies[ownerID]
	if !exists {
		return nil, nil
	}
	record, exists := owner[targetID]
	if !exists {
		return nil, nil
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (p *PolicyStore) ListBlocked(ctx context.Context, ownerID string) ([]string, error) {
	return p.list(ownerID, func(r *storage.PolicyRecord) bool { return r.Blocked })
}

func (p *PolicyStore) ListMuted(ctx context.Context, ownerID string) ([]string, error) {
	return p.list(ownerID, func(r *storage.PolicyRecord) bool { return r.Muted })
}

func (p *PolicyStore) list(ownerID string, match func(*storage.PolicyRecord) bool) ([]string, error) {
	p.store.policiesMu.RLock()
	defer p.store.policiesMu.RUnlock()

	owner, exists := p.store.policies[ownerID]
	if !exists {
		return nil, nil
	}
	var targets []string
	for target, record := range owner {
		if match(record) {
			targets = append(targets, target)
		}
	}
	return targets, nil
}

func (p *PolicyStore) Delete(ctx context.Context, ownerID, targetID string) error {
	p.store.policiesMu.Lock()
	defer p.store.policiesMu.Unlock()

	owner, exists := p.store.policies[ownerID]
	if !exists {
		return nil
	}
	delete(owner, targetID)
	return nil
}
