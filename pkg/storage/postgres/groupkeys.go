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

// GroupKeyStore implements storage.GroupKeyStore for PostgreSQL
type GroupKeyStore struct {
	db *pgxpool.Pool
}

func (g *GroupKeyStore) Put(ctx context.Context, record *storage.GroupKeyRecord) error {
	query := `
		INSERT INTO group_keys (group_id, member_id, key, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, member_id) DO UPDATE SET
			key = EXCLUDED.key,
			updated_at = EXCLUDED.updated_at
	`

	_, err := g.db.Exec(ctx, query, record.GroupID, record.MemberID, record.Key, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put group key: %w", err)
	}

	return nil
}

func (g *GroupKeyStore) Get(ctx context.Context, groupID, memberID string) (*storage.GroupKeyRecord, error) {
	query := `
		SELECT group_id, member_id, key, updated_at
		FROM group_keys
		WHERE group_id = $1 AND member_id = $2
	`

	var result storage.GroupKeyRecord
	err := g.db.QueryRow(ctx, query, groupID, memberID).Scan(
		&result.GroupID, &result.MemberID, &result.Key, &result.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("group key not found: %s/%s", groupID, memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group key: %w", err)
	}

	return &result, nil
}

func (g *GroupKeyStore) DeleteGroup(ctx context.Context, groupID string) error {
	query := `DELETE FROM group_keys WHERE group_id = $1`

	_, err := g.db.Exec(ctx, query, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group keys: %w", err)
	}

	return nil
}

func (g *GroupKeyStore) ListMembers(ctx context.Context, groupID string) ([]*storage.GroupKeyRecord, error) {
	query := `
		SELECT group_id, member_id, key, updated_at
		FROM group_keys
		WHERE group_id = $1
	`

	rows, err := g.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var records []*storage.GroupKeyRecord
	for rows.Next() {
		var record storage.GroupKeyRecord
		if err := rows.Scan(&record.GroupID, &record.MemberID, &record.Key, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group key: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group keys: %w", err)
	}

	return records, nil
}
