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

package login

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimchat/station/pkg/storage"
)

type fakeStore struct {
	records map[string]*storage.LoginRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*storage.LoginRecord)}
}

func (f *fakeStore) Put(_ context.Context, record *storage.LoginRecord) error {
	copied := *record
	f.records[record.ID] = &copied
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*storage.LoginRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("login record not found: %s", id)
	}
	return record, nil
}

func TestSaveAcceptsFirstLogin(t *testing.T) {
	store := newFakeStore()
	m := New(store)

	saved, err := m.Save(context.Background(), &storage.LoginRecord{ID: "alice@a", LoggedInAt: time.Unix(100, 0)})
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestSaveRejectsStaleLogin(t *testing.T) {
	store := newFakeStore()
	m := New(store)

	_, err := m.Save(context.Background(), &storage.LoginRecord{ID: "alice@a", StationHost: "h1", LoggedInAt: time.Unix(100, 0)})
	require.NoError(t, err)

	saved, err := m.Save(context.Background(), &storage.LoginRecord{ID: "alice@a", StationHost: "h2", LoggedInAt: time.Unix(99, 0)})
	require.NoError(t, err)
	assert.False(t, saved, "a login no newer than the one on file must be a no-op")

	current, err := m.Current(context.Background(), "alice@a")
	require.NoError(t, err)
	assert.Equal(t, "h1", current.StationHost, "the stale write must not have overwritten the record")
}

func TestSaveRejectsEqualTimestamp(t *testing.T) {
	store := newFakeStore()
	m := New(store)
	at := time.Unix(100, 0)

	_, err := m.Save(context.Background(), &storage.LoginRecord{ID: "alice@a", StationHost: "h1", LoggedInAt: at})
	require.NoError(t, err)

	saved, err := m.Save(context.Background(), &storage.LoginRecord{ID: "alice@a", StationHost: "h2", LoggedInAt: at})
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSaveAcceptsNewerLogin(t *testing.T) {
	store := newFakeStore()
	m := New(store)

	_, err := m.Save(context.Background(), &storage.LoginRecord{ID: "alice@a", StationHost: "h1", LoggedInAt: time.Unix(100, 0)})
	require.NoError(t, err)

	saved, err := m.Save(context.Background(), &storage.LoginRecord{ID: "alice@a", StationHost: "h2", LoggedInAt: time.Unix(200, 0)})
	require.NoError(t, err)
	assert.True(t, saved)

	current, err := m.Current(context.Background(), "alice@a")
	require.NoError(t, err)
	assert.Equal(t, "h2", current.StationHost)
}

func TestCurrentReturnsNilWhenNoRecordExists(t *testing.T) {
	m := New(newFakeStore())
	current, err := m.Current(context.Background(), "ghost@a")
	require.NoError(t, err)
	assert.Nil(t, current)
}
