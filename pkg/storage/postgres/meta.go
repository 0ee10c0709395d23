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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dimchat/station/pkg/storage"
)

// MetaStore implements storage.MetaStore for PostgreSQL
type MetaStore struct {
	db *pgxpool.Pool
}

func (m *MetaStore) Create(ctx context.Context, meta *storage.MetaRecord) error {
	query := `
		INSERT INTO metas (id, type, public_key, raw, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := m.db.Exec(ctx, query, meta.ID, meta.Type, meta.PublicKey, meta.Raw, meta.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create meta: %w", err)
	}

	return nil
}

func (m *MetaStore) Get(ctx context.Context, id string) (*storage.MetaRecord, error) {
	query := `
		SELECT id, type, public_key, raw, created_at
		FROM metas
		WHERE id = $1
	`

	var result storage.MetaRecord
	err := m.db.QueryRow(ctx, query, id).Scan(
		&result.ID, &result.Type, &result.PublicKey, &result.Raw, &result.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("meta not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meta: %w", err)
	}

	return &result, nil
}

func (m *MetaStore) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM metas WHERE id = $1)`

	var exists bool
	if err := m.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check meta existence: %w", err)
	}

	return exists, nil
}
