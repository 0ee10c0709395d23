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

package station

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dimchat/station/id"
	"github.com/dimchat/station/pkg/storage"
)

// metaRecordFor packs meta as the raw JSON form storage.MetaRecord
// caches, so a later lookup can recover the exact id.Meta a sender
// presented at handshake time.
func metaRecordFor(identity string, meta id.Meta) (*storage.MetaRecord, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("station: marshal meta for %s: %w", identity, err)
	}
	return &storage.MetaRecord{
		ID:        identity,
		PublicKey: []byte(meta.PublicKey),
		Raw:       raw,
		CreatedAt: time.Now(),
	}, nil
}

// parseMeta recovers the id.Meta a metaRecordFor call packed into
// record.Raw.
func parseMeta(record *storage.MetaRecord) (id.Meta, error) {
	var meta id.Meta
	if err := json.Unmarshal(record.Raw, &meta); err != nil {
		return id.Meta{}, fmt.Errorf("station: unmarshal cached meta for %s: %w", record.ID, err)
	}
	return meta, nil
}

// saveMeta caches meta under identity the first time it is seen.
// Metas are write-once (id.ErrMetaMismatch's contract), so a returning
// client presenting the same meta on every reconnect is expected and
// not an error.
func saveMeta(ctx context.Context, store storage.MetaStore, identity string, meta id.Meta) error {
	record, err := metaRecordFor(identity, meta)
	if err != nil {
		return err
	}
	if err := store.Create(ctx, record); err != nil {
		if exists, existsErr := store.Exists(ctx, identity); existsErr == nil && exists {
			return nil
		}
		return err
	}
	return nil
}

// lookupMeta fetches identity's cached meta for signature
// verification.
func lookupMeta(ctx context.Context, store storage.MetaStore, identity string) (id.Meta, error) {
	record, err := store.Get(ctx, identity)
	if err != nil {
		return id.Meta{}, err
	}
	return parseMeta(record)
}
