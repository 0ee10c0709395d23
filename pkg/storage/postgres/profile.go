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

// ProfileStore implements storage.ProfileStore for PostgreSQL
type ProfileStore struct {
	db *pgxpool.Pool
}

func (p *ProfileStore) Put(ctx context.Context, profile *storage.ProfileRecord) error {
	query := `
		INSERT INTO profiles (id, data, signature, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			signature = EXCLUDED.signature,
			updated_at = EXCLUDED.updated_at
	`

	_, err := p.db.Exec(ctx, query, profile.ID, profile.Data, profile.Signature, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put profile: %w", err)
	}

	return nil
}

func (p *ProfileStore) Get(ctx context.Context, id string) (*storage.ProfileRecord, error) {
	query := `
		SELECT id, data, signature, updated_at
		FROM profiles
		WHERE id = $1
	`

	var result storage.ProfileRecord
	err := p.db.QueryRow(ctx, query, id).Scan(
		&result.ID, &result.Data, &result.Signature, &result.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("profile not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &result, nil
}
