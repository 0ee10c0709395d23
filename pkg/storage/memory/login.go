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

// LoginStore implements storage.LoginStore
type LoginStore struct {
	store *Store
}

func (l *LoginStore) Put(ctx context.Context, record *storage.LoginRecord) error {
	l.store.loginsMu.Lock()
	defer l.store.loginsMu.Unlock()

	recordCopy := *record
	l.store.logins[record.ID] = &recordCopy
	return nil
}

func (l *LoginStore) Get(ctx context.Context, id string) (*storage.LoginRecord, error) {
	l.store.loginsMu.RLock()
	defer l.store.loginsMu.RUnlock()

	record, exists := l.store.logins[id]
	if !exists {
		return nil, fmt.Errorf("login record not found: %s", id)
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (l *LoginStore) Delete(ctx context.Context, id string) error {
	l.store.loginsMu.Lock()
	defer l.store.loginsMu.Unlock()

	if _, exists := l.store.logins[id]; !exists {
		return fmt.Errorf("login record not found: %s", id)
	}

	delete(l.store.logins, id)
	return nil
}

func (l *LoginStore) Count(ctx context.Context) (int64, error) {
	l.store.loginsMu.RLock()
	defer l.store.loginsMu.RUnlock()

	return int64(len(l.store.logins)), nil
}
