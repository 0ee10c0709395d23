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

// GroupKeyStore implements storage.GroupKeyStore
type GroupKeyStore struct {
	store *Store
}

func (g *GroupKeyStore) Put(ctx context.Context, record *storage.GroupKeyRecord) error {
	g.store.groupsMu.Lock()
	defer g.store.groupsMu.Unlock()

	members, exists := g.store.groups[record.GroupID]
	if !exists {
		members = make(map[string]*storage.GroupKeyRecord)
		g.store.groups[record.GroupID] = members
	}

	recordCopy := *record
	members[record.MemberID] = &recordCopy
	return nil
}

func (g *GroupKeyStore) Get(ctx context.Context, groupID, memberID string) (*storage.GroupKeyRecord, error) {
	g.store.groupsMu.RLock()
	defer g.store.groupsMu.RUnlock()

	members, exists := g.store.groups[groupID]
	if !exists {
		return nil, fmt.Errorf("group not found: %s", groupID)
	}

	record, exists := members[memberID]
	if !exists {
		return nil, fmt.Errorf("group key not found: %s/%s", groupID, memberID)
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (g *GroupKeyStore) DeleteGroup(ctx context.Context, groupID string) error {
	g.store.groupsMu.Lock()
	defer g.store.groupsMu.Unlock()

	delete(g.store.groups, groupID)
	return nil
}

func (g *GroupKeyStore) ListMembers(ctx context.Context, groupID string) ([]*storage.GroupKeyRecord, error) {
	g.store.groupsMu.RLock()
	defer g.store.groupsMu.RUnlock()

	members, exists := g.store.groups[groupID]
	if !exists {
		return nil, nil
	}

	records := make([]*storage.GroupKeyRecord, 0, len(members))
	for _, record := range members {
		recordCopy := *record
		records = append(records, &recordCopy)
	}
	return records, nil
}
