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

// Package login guards the station's point-of-presence record with
// an at-most-once rule: a login command older than (or no newer
// than) the one already on record for an identity is a no-op, so a
// delayed or replayed login report can never roll a station's view
// of "where is this identity logged in" backwards.
package login

import (
	"context"
	"sync"

	"github.com/dimchat/station/pkg/storage"
)

// Store is the narrow slice of storage.LoginStore this package needs.
type Store interface {
	Put(ctx context.Context, record *storage.LoginRecord) error
	Get(ctx context.Context, id string) (*storage.LoginRecord, error)
}

// Manager serializes save_login/login_command against a single
// identity's record so the read-compare-write isn't racing itself
// across concurrent command processing goroutines; the backing Store
// still owns durability.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a Manager backed by store.
func New(store Store) *Manager {
	return &Manager{store: store, locks: make(map[string]*sync.Mutex)}
}

// Save applies record if and only if no record is on file for
// record.ID, or the one on file is strictly older — record.LoggedInAt
// no later than the stored LoggedInAt is a silent no-op. Returns
// whether the record was actually written.
func (m *Manager) Save(ctx context.Context, record *storage.LoginRecord) (bool, error) {
	lock := m.lockFor(record.ID)
	lock.Lock()
	defer lock.Unlock()

	current, err := m.store.Get(ctx, record.ID)
	if err == nil && !record.LoggedInAt.After(current.LoggedInAt) {
		return false, nil
	}
	if err := m.store.Put(ctx, record); err != nil {
		return false, err
	}
	return true, nil
}

// Current returns the most recently saved record for id, or nil if
// none exists yet.
func (m *Manager) Current(ctx context.Context, id string) (*storage.LoginRecord, error) {
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, nil
	}
	return record, nil
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}
