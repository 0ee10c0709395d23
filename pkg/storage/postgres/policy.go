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

// PolicyStore implements storage.PolicyStore for PostgreSQL
type PolicyStore struct {
	db *pgxpool.Pool
}

func (p *PolicyStore) Put(ctx context.Context, record *storage.PolicyRecord) error {
	query := `
		INSERT INTO policies (owner_id, target_id, blocked, muted, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, target_id) DO UPDATE SET
			blocked = EXCLUDED.blocked,
			muted = EXCLUDED.muted,
			updated_at = EXCLUDED.updated_at
	`
	_, err := p.db.Exec(ctx, query, record.OwnerID, record.TargetID, record.Blocked, record.Muted, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put policy: %w", err)
	}
	return nil
}

func (p *PolicyStore) Get(ctx context.Context, ownerID, targetID string) (*storage.PolicyRecord, error) {
	query := `
		SELECT owner_id, target_id, blocked, muted, updated_at
		FROM policies
		WHERE owner_id = $1 AND target_id = $2
	`
	var result storage.PolicyRecord
	err := p.db.QueryRow(ctx, query, ownerID, targetID).Scan(
		&result.OwnerID, &result.TargetID, &result.Blocked, &result.Muted, &result.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}
	return &result, nil
}

func (p *PolicyStore) ListBlocked(ctx context.Context, ownerID string) ([]string, error) {
	return p.listWhere(ctx, ownerID, "blocked")
}

func (p *PolicyStore) ListMuted(ctx context.Context, ownerID string) ([]string, error) {
	return p.listWhere(ctx, ownerID, "muted")
}

func (p *PolicyStore) listWhere(ctx context.Context, ownerID, column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT target_id FROM policies WHERE owner_id = $1 AND %s = true`, column)
	rows, err := p.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan policy target: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

func (p *PolicyStore) Delete(ctx context.Context, ownerID, targetID string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM policies WHERE owner_id = $1 AND target_id = $2`, ownerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return nil
}
