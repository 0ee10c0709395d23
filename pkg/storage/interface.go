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

package storage

import "context"

// LoginStore persists the last known point-of-presence per identity
type LoginStore interface {
	Put(ctx context.Context, record *LoginRecord) error
	Get(ctx context.Context, id string) (*LoginRecord, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// MetaStore caches identities' immutable Meta records
type MetaStore interface {
	Create(ctx context.Context, meta *MetaRecord) error
	Get(ctx context.Context, id string) (*MetaRecord, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// ProfileStore caches identities' mutable profile documents
type ProfileStore interface {
	Put(ctx context.Context, profile *ProfileRecord) error
	Get(ctx context.Context, id string) (*ProfileRecord, error)
}

// GroupKeyStore caches per-member copies of group message keys
type GroupKeyStore interface {
	Put(ctx context.Context, record *GroupKeyRecord) error
	Get(ctx context.Context, groupID, memberID string) (*GroupKeyRecord, error)
	DeleteGroup(ctx context.Context, groupID string) error
	ListMembers(ctx context.Context, groupID string) ([]*GroupKeyRecord, error)
}

// PolicyStore persists block/mute decisions keyed by (owner, target).
type PolicyStore interface {
	Put(ctx context.Context, record *PolicyRecord) error
	Get(ctx context.Context, ownerID, targetID string) (*PolicyRecord, error)
	ListBlocked(ctx context.Context, ownerID string) ([]string, error)
	ListMuted(ctx context.Context, ownerID string) ([]string, error)
	Delete(ctx context.Context, ownerID, targetID string) error
}

// Store combines all storage interfaces the station needs
type Store interface {
	LoginStore() LoginStore
	MetaStore() MetaStore
	ProfileStore() ProfileStore
	GroupKeyStore() GroupKeyStore
	PolicyStore() PolicyStore

	// Close closes the storage connection
	Close() error

	// Ping checks the storage connection
	Ping(ctx context.Context) error
}
