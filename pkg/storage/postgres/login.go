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

// LoginStore implements storage.LoginStore for PostgreSQL
type LoginStore struct {
	db *pgxpool.Pool
}

func (l *LoginStore) Put(ctx context.Context, record *storage.LoginRecord) error {
	query := `
		INSERT INTO logins (id, terminal, station_host, station_port, logged_in_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			terminal = EXCLUDED.terminal,
			station_host = EXCLUDED.station_host,
			station_port = EXCLUDED.station_port,
			logged_in_at = EXCLUDED.logged_in_at
	`

	_, err := l.db.Exec(ctx, query,
		record.ID, record.Terminal, record.StationHost, record.StationPort, record.LoggedInAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put login record: %w", err)
	}

	return nil
}

func (l *LoginStore) Get(ctx context.Context, id string) (*storage.LoginRecord, error) {
	query := `
		SELECT id, terminal, station_host, station_port, logged_in_at
		FROM logins
		WHERE id = $1
	`

	var result storage.LoginRecord
	err := l.db.QueryRow(ctx, query, id).Scan(
		&result.ID, &result.Terminal, &result.StationHost, &result.StationPort, &result.LoggedInAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("login record not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get login record: %w", err)
	}

	return &result, nil
}

func (l *LoginStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM logins WHERE id = $1`

	result, err := l.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete login record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("login record not found: %s", id)
	}

	return nil
}

func (l *LoginStore) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM logins`

	var count int64
	if err := l.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count login records: %w", err)
	}

	return count, nil
}
