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
	"sync"

	"github.com/dimchat/station/pkg/storage"
)

// Store implements storage.Store entirely in memory. It is the default
// backend for tests and single-process deployments.
type Store struct {
	logins   map[string]*storage.LoginRecord
	metas    map[string]*storage.MetaRecord
	profiles map[string]*storage.ProfileRecord
	groups   map[string]map[string]*storage.GroupKeyRecord
	policies map[string]map[string]*storage.PolicyRecord

	loginsMu   sync.RWMutex
	metasMu    sync.RWMutex
	profilesMu sync.RWMutex
	groupsMu   sync.RWMutex
	policiesMu sync.RWMutex

	loginStore    *LoginStore
	metaStore     *MetaStore
	profileStore  *ProfileStore
	groupKeyStore *GroupKeyStore
	policyStore   *PolicyStore
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	s := &Store{
		logins:   make(map[string]*storage.LoginRecord),
		metas:    make(map[string]*storage.MetaRecord),
		profiles: make(map[string]*storage.ProfileRecord),
		groups:   make(map[string]map[string]*storage.GroupKeyRecord),
		policies: make(map[string]map[string]*storage.PolicyRecord),
	}

	s.loginStore = &LoginStore{store: s}
	s.metaStore = &MetaStore{store: s}
	s.profileStore = &ProfileStore{store: s}
	s.groupKeyStore = &GroupKeyStore{store: s}
	s.policyStore = &PolicyStore{store: s}

	return s
}

func (s *Store) LoginStore() storage.LoginStore       { return s.loginStore }
func (s *Store) MetaStore() storage.MetaStore         { return s.metaStore }
func (s *Store) ProfileStore() storage.ProfileStore   { return s.profileStore }
func (s *Store) GroupKeyStore() storage.GroupKeyStore { return s.groupKeyStore }
func (s *Store) PolicyStore() storage.PolicyStore     { return s.policyStore }

// Close closes the store (no-op for memory store)
func (s *Store) Close() error { return nil }

// Ping checks the store (always succeeds for memory store)
func (s *Store) Ping(ctx context.Context) error { return nil }

// Clear removes all data (useful for testing)
func (s *Store) Clear() {
	s.loginsMu.Lock()
	s.logins = make(map[string]*storage.LoginRecord)
	s.loginsMu.Unlock()

	s.metasMu.Lock()
	s.metas = make(map[string]*storage.MetaRecord)
	s.metasMu.Unlock()

	s.profilesMu.Lock()
	s.profiles = make(map[string]*storage.ProfileRecord)
	s.profilesMu.Unlock()

	s.groupsMu.Lock()
	s.groups = make(map[string]map[string]*storage.GroupKeyRecord)
	s.groupsMu.Unlock()

	s.policiesMu.Lock()
	s.policies = make(map[string]map[string]*storage.PolicyRecord)
	s.policiesMu.Unlock()
}
